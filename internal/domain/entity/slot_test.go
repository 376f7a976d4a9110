package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSlotStartsAt(t *testing.T) {
	slot := &Slot{
		ID:        uuid.New(),
		Date:      time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		StartTime: "09:30",
	}

	want := time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)
	if got := slot.StartsAt(); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSlotIsAvailable(t *testing.T) {
	slot := &Slot{
		Date:      time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
	}

	cases := []struct {
		name   string
		booked bool
		now    time.Time
		want   bool
	}{
		{"open and future", false, time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC), true},
		{"booked", true, time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC), false},
		{"at start", false, time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC), false},
		{"after start", false, time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			slot.Booked = tc.booked
			if got := slot.IsAvailable(tc.now); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestSlotCategoryIsValid(t *testing.T) {
	for _, c := range []SlotCategory{SlotCategoryConsultation, SlotCategoryFollowUp, SlotCategoryEmergency} {
		if !c.IsValid() {
			t.Errorf("%s should be valid", c)
		}
	}
	if SlotCategory("walk_in").IsValid() {
		t.Errorf("unknown category accepted")
	}
}
