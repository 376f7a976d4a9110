package entity

import "testing"

func TestBookingStatusChecks(t *testing.T) {
	cases := []struct {
		status    BookingStatus
		confirmed bool
		terminal  bool
	}{
		{BookingStatusConfirmed, true, false},
		{BookingStatusCompleted, false, true},
		{BookingStatusCancelled, false, true},
		{BookingStatusNoShow, false, true},
	}

	for _, tc := range cases {
		b := &Booking{Status: tc.status}
		if b.IsConfirmed() != tc.confirmed {
			t.Errorf("%s: IsConfirmed = %v, want %v", tc.status, b.IsConfirmed(), tc.confirmed)
		}
		if b.IsTerminal() != tc.terminal {
			t.Errorf("%s: IsTerminal = %v, want %v", tc.status, b.IsTerminal(), tc.terminal)
		}
	}
}
