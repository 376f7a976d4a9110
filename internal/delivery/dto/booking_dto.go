package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateBookingRequest struct {
	SlotID uuid.UUID `json:"slot_id" validate:"required"`
	Notes  string    `json:"notes" validate:"omitempty,max=2000"`
}

type BookingOutcomeRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=completed no_show"`
}

// Response DTOs

type BookingResponse struct {
	ID              uuid.UUID     `json:"id"`
	RequesterID     uuid.UUID     `json:"requester_id"`
	SlotID          uuid.UUID     `json:"slot_id"`
	Status          string        `json:"status"`
	Notes           string        `json:"notes,omitempty"`
	CalendarEventID string        `json:"calendar_event_id,omitempty"`
	Slot            *SlotResponse `json:"slot,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}
