package converter

import (
	"slot-reservation-service/internal/delivery/dto"
	"slot-reservation-service/internal/domain/entity"

	"github.com/google/uuid"
)

// BookingToResponse converts a Booking entity to a BookingResponse DTO
func BookingToResponse(booking *entity.Booking) *dto.BookingResponse {
	if booking == nil {
		return nil
	}

	response := &dto.BookingResponse{
		ID:              booking.ID,
		RequesterID:     booking.RequesterID,
		SlotID:          booking.SlotID,
		Status:          string(booking.Status),
		Notes:           booking.Notes,
		CalendarEventID: booking.CalendarEventID,
		CreatedAt:       booking.CreatedAt,
		UpdatedAt:       booking.UpdatedAt,
	}

	// Include slot info if preloaded
	if booking.Slot.ID != uuid.Nil {
		response.Slot = SlotToResponse(&booking.Slot)
	}

	return response
}

// BookingsToResponses converts a slice of Booking entities to BookingResponse DTOs
func BookingsToResponses(bookings []entity.Booking) []dto.BookingResponse {
	responses := make([]dto.BookingResponse, len(bookings))
	for i, booking := range bookings {
		resp := BookingToResponse(&booking)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
