package entity

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusNoShow    BookingStatus = "no_show"
)

// Booking represents one requester's claim on a slot. The slot_id unique
// index backstops the one-active-booking-per-slot invariant at the storage
// layer.
type Booking struct {
	ID              uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RequesterID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"requester_id"`
	SlotID          uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_bookings_active_slot,where:status <> 'cancelled'" json:"slot_id"`
	Status          BookingStatus `gorm:"type:varchar(20);not null;default:'confirmed';index" json:"status"`
	Notes           string        `gorm:"type:text" json:"notes,omitempty"`
	CalendarEventID string        `gorm:"type:varchar(255)" json:"calendar_event_id,omitempty"`
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships. The slot is the source of truth for availability; the
	// back-reference exists for display only.
	Requester User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Slot      Slot `gorm:"foreignKey:SlotID" json:"slot,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

// IsConfirmed checks if the booking is still active
func (b *Booking) IsConfirmed() bool {
	return b.Status == BookingStatusConfirmed
}

// IsTerminal reports whether no further transition is permitted
func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case BookingStatusCompleted, BookingStatusCancelled, BookingStatusNoShow:
		return true
	}
	return false
}
