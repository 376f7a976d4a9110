package entity

import (
	"time"

	"github.com/google/uuid"
)

// SlotCategory represents the kind of appointment a slot is offered for
type SlotCategory string

const (
	SlotCategoryConsultation SlotCategory = "consultation"
	SlotCategoryFollowUp     SlotCategory = "follow_up"
	SlotCategoryEmergency    SlotCategory = "emergency"
)

// IsValid reports whether the category is one of the known values
func (c SlotCategory) IsValid() bool {
	switch c {
	case SlotCategoryConsultation, SlotCategoryFollowUp, SlotCategoryEmergency:
		return true
	}
	return false
}

// Slot represents one bookable time window belonging to one provider.
// The (provider_id, date, start_time) triple is the natural key: a provider
// cannot publish two slots starting at the same instant.
type Slot struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProviderID uuid.UUID    `gorm:"type:uuid;not null;index;uniqueIndex:idx_slots_natural_key" json:"provider_id"`
	Date       time.Time    `gorm:"type:date;not null;uniqueIndex:idx_slots_natural_key" json:"date"`
	StartTime  string       `gorm:"type:time;not null;uniqueIndex:idx_slots_natural_key" json:"start_time"`
	EndTime    string       `gorm:"type:time;not null" json:"end_time"`
	Category   SlotCategory `gorm:"type:varchar(20);not null;default:'consultation'" json:"category"`
	Booked     bool         `gorm:"not null;default:false;index" json:"booked"`
	CreatedAt  time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Provider User `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
}

func (Slot) TableName() string {
	return "slots"
}

// StartsAt combines the slot date and start time into one instant.
// Times are stored as "HH:MM" in the slot's local day.
func (s *Slot) StartsAt() time.Time {
	t, err := time.Parse("15:04", s.StartTime)
	if err != nil {
		return s.Date
	}
	return time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), t.Hour(), t.Minute(), 0, 0, s.Date.Location())
}

// IsAvailable reports whether the slot can still be booked at the given
// instant. A slot whose start has elapsed is expired; that state is derived
// here at read time, never stored.
func (s *Slot) IsAvailable(now time.Time) bool {
	return !s.Booked && s.StartsAt().After(now)
}
