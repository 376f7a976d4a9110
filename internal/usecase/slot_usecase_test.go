package usecase

import (
	"context"
	"errors"
	"testing"

	"slot-reservation-service/internal/delivery/dto"
	"slot-reservation-service/internal/domain/entity"
	domainRepo "slot-reservation-service/internal/domain/repository"
	"slot-reservation-service/internal/repository"
	"slot-reservation-service/pkg/clock"

	"github.com/google/uuid"
)

type slotFixture struct {
	usecase SlotUsecase
	store   *repository.MemoryReservationStore
	clock   *clock.FakeClock
}

func newSlotFixture() *slotFixture {
	store := repository.NewMemoryReservationStore()
	clk := clock.NewFakeClock(testBase)
	return &slotFixture{
		usecase: NewSlotUsecase(store, testLogger(), clk),
		store:   store,
		clock:   clk,
	}
}

func provider() Principal {
	return Principal{UserID: uuid.New(), RoleID: entity.RoleIDProvider}
}

func TestCreateSlot(t *testing.T) {
	f := newSlotFixture()
	caller := provider()

	slot, err := f.usecase.CreateSlot(context.Background(), &dto.CreateSlotRequest{
		Date:      "2025-01-10",
		StartTime: "09:00",
		EndTime:   "09:30",
		Category:  "follow_up",
	}, caller)
	if err != nil {
		t.Fatalf("CreateSlot failed: %v", err)
	}
	if slot.ProviderID != caller.UserID {
		t.Errorf("slot attributed to wrong provider")
	}
	if slot.Category != string(entity.SlotCategoryFollowUp) {
		t.Errorf("expected follow_up, got %s", slot.Category)
	}
	if slot.Booked {
		t.Errorf("new slot must start open")
	}
}

func TestCreateSlotDefaultsCategory(t *testing.T) {
	f := newSlotFixture()

	slot, err := f.usecase.CreateSlot(context.Background(), &dto.CreateSlotRequest{
		Date:      "2025-01-10",
		StartTime: "09:00",
		EndTime:   "09:30",
	}, provider())
	if err != nil {
		t.Fatalf("CreateSlot failed: %v", err)
	}
	if slot.Category != string(entity.SlotCategoryConsultation) {
		t.Errorf("expected consultation default, got %s", slot.Category)
	}
}

func TestCreateSlotValidation(t *testing.T) {
	f := newSlotFixture()
	caller := provider()

	cases := []struct {
		name string
		req  dto.CreateSlotRequest
		want error
	}{
		{"bad date", dto.CreateSlotRequest{Date: "10-01-2025", StartTime: "09:00", EndTime: "09:30"}, ErrInvalidDateFormat},
		{"bad start time", dto.CreateSlotRequest{Date: "2025-01-10", StartTime: "9am", EndTime: "09:30"}, ErrInvalidTimeFormat},
		{"bad end time", dto.CreateSlotRequest{Date: "2025-01-10", StartTime: "09:00", EndTime: "late"}, ErrInvalidTimeFormat},
		{"inverted range", dto.CreateSlotRequest{Date: "2025-01-10", StartTime: "09:30", EndTime: "09:00"}, ErrInvalidTimeRange},
		{"zero range", dto.CreateSlotRequest{Date: "2025-01-10", StartTime: "09:00", EndTime: "09:00"}, ErrInvalidTimeRange},
		{"bad category", dto.CreateSlotRequest{Date: "2025-01-10", StartTime: "09:00", EndTime: "09:30", Category: "walk_in"}, ErrInvalidCategory},
		{"past start", dto.CreateSlotRequest{Date: "2025-01-09", StartTime: "09:00", EndTime: "09:30"}, ErrSlotInPast},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.usecase.CreateSlot(context.Background(), &tc.req, caller); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSlotRequiresProviderRole(t *testing.T) {
	f := newSlotFixture()

	_, err := f.usecase.CreateSlot(context.Background(), &dto.CreateSlotRequest{
		Date:      "2025-01-10",
		StartTime: "09:00",
		EndTime:   "09:30",
	}, requester())
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestCreateSlotNaturalKeyConflict(t *testing.T) {
	f := newSlotFixture()
	caller := provider()
	req := &dto.CreateSlotRequest{Date: "2025-01-10", StartTime: "09:00", EndTime: "09:30"}

	if _, err := f.usecase.CreateSlot(context.Background(), req, caller); err != nil {
		t.Fatalf("CreateSlot failed: %v", err)
	}
	if _, err := f.usecase.CreateSlot(context.Background(), req, caller); !errors.Is(err, ErrSlotConflict) {
		t.Errorf("expected ErrSlotConflict, got %v", err)
	}

	// Same time is fine for a different provider
	if _, err := f.usecase.CreateSlot(context.Background(), req, provider()); err != nil {
		t.Errorf("distinct provider hit the natural key: %v", err)
	}
}

func TestGetOpenSlotsExcludesBookedAndExpired(t *testing.T) {
	f := newSlotFixture()
	providerID := uuid.New()

	open := seedSlot(t, f.store, providerID, "2025-01-10", "09:00", "09:30")
	booked := seedSlot(t, f.store, providerID, "2025-01-10", "10:00", "10:30")
	expired := seedSlot(t, f.store, providerID, "2025-01-10", "07:00", "07:30")

	booked.Booked = true
	if err := f.store.Transact(context.Background(), txSaveSlot(booked)); err != nil {
		t.Fatalf("mark booked: %v", err)
	}

	list, err := f.usecase.GetOpenSlots(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetOpenSlots failed: %v", err)
	}
	if list.Total != 1 {
		t.Fatalf("expected 1 open slot, got %d", list.Total)
	}
	if list.Slots[0].ID != open.ID {
		t.Errorf("wrong slot listed")
	}
	for _, s := range list.Slots {
		if s.ID == expired.ID {
			t.Errorf("expired slot leaked into open listing")
		}
	}
}

func TestGetOpenSlotsFilters(t *testing.T) {
	f := newSlotFixture()
	p1 := uuid.New()
	p2 := uuid.New()

	seedSlot(t, f.store, p1, "2025-01-10", "09:00", "09:30")
	seedSlot(t, f.store, p1, "2025-01-12", "09:00", "09:30")
	seedSlot(t, f.store, p2, "2025-01-11", "09:00", "09:30")

	byProvider, err := f.usecase.GetOpenSlots(context.Background(), &entity.SlotFilter{ProviderID: p1})
	if err != nil {
		t.Fatalf("GetOpenSlots failed: %v", err)
	}
	if byProvider.Total != 2 {
		t.Errorf("provider filter: expected 2 slots, got %d", byProvider.Total)
	}

	byRange, err := f.usecase.GetOpenSlots(context.Background(), &entity.SlotFilter{DateFrom: "2025-01-11", DateTo: "2025-01-11"})
	if err != nil {
		t.Fatalf("GetOpenSlots failed: %v", err)
	}
	if byRange.Total != 1 {
		t.Errorf("date filter: expected 1 slot, got %d", byRange.Total)
	}
}

func TestGetMySlotsIncludesBookedAndExpired(t *testing.T) {
	f := newSlotFixture()
	caller := provider()

	seedSlot(t, f.store, caller.UserID, "2025-01-10", "07:00", "07:30")
	booked := seedSlot(t, f.store, caller.UserID, "2025-01-10", "09:00", "09:30")
	seedSlot(t, f.store, uuid.New(), "2025-01-10", "09:00", "09:30")

	booked.Booked = true
	if err := f.store.Transact(context.Background(), txSaveSlot(booked)); err != nil {
		t.Fatalf("mark booked: %v", err)
	}

	list, err := f.usecase.GetMySlots(context.Background(), caller)
	if err != nil {
		t.Fatalf("GetMySlots failed: %v", err)
	}
	if list.Total != 2 {
		t.Errorf("expected 2 slots for provider, got %d", list.Total)
	}
}

func TestDeleteSlot(t *testing.T) {
	f := newSlotFixture()
	caller := provider()
	slot := seedSlot(t, f.store, caller.UserID, "2025-01-10", "09:00", "09:30")

	if err := f.usecase.DeleteSlot(context.Background(), slot.ID, caller); err != nil {
		t.Fatalf("DeleteSlot failed: %v", err)
	}

	gone, err := f.store.SlotByID(context.Background(), slot.ID)
	if err != nil {
		t.Fatalf("SlotByID failed: %v", err)
	}
	if gone != nil {
		t.Errorf("slot still present after delete")
	}
}

func TestDeleteSlotErrors(t *testing.T) {
	f := newSlotFixture()
	caller := provider()

	if err := f.usecase.DeleteSlot(context.Background(), uuid.New(), caller); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("expected ErrSlotNotFound, got %v", err)
	}

	slot := seedSlot(t, f.store, caller.UserID, "2025-01-10", "09:00", "09:30")
	if err := f.usecase.DeleteSlot(context.Background(), slot.ID, provider()); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for other provider, got %v", err)
	}
}

func TestDeleteSlotWithActiveBooking(t *testing.T) {
	f := newSlotFixture()
	caller := provider()
	slot := seedSlot(t, f.store, caller.UserID, "2025-01-10", "09:00", "09:30")

	notifier := &recordingNotifier{}
	engine := NewReservationUsecase(f.store, testLogger(), f.clock, notifier)
	booking, err := engine.Book(context.Background(), &dto.CreateBookingRequest{SlotID: slot.ID}, requester())
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}

	if err := f.usecase.DeleteSlot(context.Background(), slot.ID, caller); !errors.Is(err, ErrSlotHasBooking) {
		t.Fatalf("expected ErrSlotHasBooking, got %v", err)
	}

	// After the booking is cancelled the slot can go
	if err := engine.Cancel(context.Background(), booking.ID, caller); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if err := f.usecase.DeleteSlot(context.Background(), slot.ID, caller); err != nil {
		t.Fatalf("DeleteSlot after cancel failed: %v", err)
	}
}

// txSaveSlot writes one slot inside a transaction, for test seeding
func txSaveSlot(slot *entity.Slot) func(tx domainRepo.ReservationTx) error {
	return func(tx domainRepo.ReservationTx) error {
		if _, err := tx.SlotForUpdate(slot.ID); err != nil {
			return err
		}
		return tx.SaveSlot(slot)
	}
}
