package clock

import (
	"testing"
	"time"
)

func TestFakeClock(t *testing.T) {
	base := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	clk := NewFakeClock(base)

	if !clk.Now().Equal(base) {
		t.Errorf("expected %v, got %v", base, clk.Now())
	}

	clk.Advance(90 * time.Minute)
	if want := base.Add(90 * time.Minute); !clk.Now().Equal(want) {
		t.Errorf("expected %v after advance, got %v", want, clk.Now())
	}

	pinned := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	clk.Set(pinned)
	if !clk.Now().Equal(pinned) {
		t.Errorf("expected %v after set, got %v", pinned, clk.Now())
	}
}

func TestSystemClock(t *testing.T) {
	clk := NewSystemClock()
	before := time.Now().Add(-time.Second)
	after := time.Now().Add(time.Second)

	now := clk.Now()
	if now.Before(before) || now.After(after) {
		t.Errorf("system clock out of range: %v", now)
	}
}
