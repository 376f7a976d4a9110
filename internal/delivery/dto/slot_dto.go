package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateSlotRequest struct {
	Date      string `json:"date" validate:"required"`       // Format: YYYY-MM-DD
	StartTime string `json:"start_time" validate:"required"` // Format: HH:MM
	EndTime   string `json:"end_time" validate:"required"`   // Format: HH:MM
	Category  string `json:"category" validate:"omitempty,oneof=consultation follow_up emergency"`
}

// Response DTOs

type SlotResponse struct {
	ID         uuid.UUID `json:"id"`
	ProviderID uuid.UUID `json:"provider_id"`
	Date       string    `json:"date"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	Category   string    `json:"category"`
	Booked     bool      `json:"booked"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type SlotListResponse struct {
	Slots []SlotResponse `json:"slots"`
	Total int            `json:"total"`
}
