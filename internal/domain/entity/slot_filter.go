package entity

import "github.com/google/uuid"

// SlotFilter narrows open-slot searches. Zero values mean "no filter".
type SlotFilter struct {
	ProviderID uuid.UUID
	DateFrom   string // YYYY-MM-DD
	DateTo     string // YYYY-MM-DD
	Category   SlotCategory
}
