package converter

import (
	"slot-reservation-service/internal/delivery/dto"
	"slot-reservation-service/internal/domain/entity"
)

// SlotToResponse converts a Slot entity to a SlotResponse DTO
func SlotToResponse(slot *entity.Slot) *dto.SlotResponse {
	if slot == nil {
		return nil
	}

	return &dto.SlotResponse{
		ID:         slot.ID,
		ProviderID: slot.ProviderID,
		Date:       slot.Date.Format("2006-01-02"),
		StartTime:  slot.StartTime,
		EndTime:    slot.EndTime,
		Category:   string(slot.Category),
		Booked:     slot.Booked,
		CreatedAt:  slot.CreatedAt,
		UpdatedAt:  slot.UpdatedAt,
	}
}

// SlotsToResponses converts a slice of Slot entities to SlotResponse DTOs
func SlotsToResponses(slots []entity.Slot) []dto.SlotResponse {
	responses := make([]dto.SlotResponse, len(slots))
	for i, slot := range slots {
		resp := SlotToResponse(&slot)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
