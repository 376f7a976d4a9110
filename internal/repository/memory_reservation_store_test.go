package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"slot-reservation-service/internal/domain/entity"
	domainRepo "slot-reservation-service/internal/domain/repository"

	"github.com/google/uuid"
)

func mustSeedSlot(t *testing.T, store *MemoryReservationStore, providerID uuid.UUID, date, start string) *entity.Slot {
	t.Helper()
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("bad date %q: %v", date, err)
	}
	slot := &entity.Slot{
		ProviderID: providerID,
		Date:       d,
		StartTime:  start,
		EndTime:    "23:59",
		Category:   entity.SlotCategoryConsultation,
	}
	if err := store.CreateSlot(context.Background(), slot); err != nil {
		t.Fatalf("seed slot: %v", err)
	}
	return slot
}

func TestTransactRollbackDiscardsWrites(t *testing.T) {
	store := NewMemoryReservationStore()
	slot := mustSeedSlot(t, store, uuid.New(), "2025-01-10", "09:00")

	boom := errors.New("boom")
	var bookingID uuid.UUID

	err := store.Transact(context.Background(), func(tx domainRepo.ReservationTx) error {
		locked, err := tx.SlotForUpdate(slot.ID)
		if err != nil {
			return err
		}

		booking := &entity.Booking{
			RequesterID: uuid.New(),
			SlotID:      locked.ID,
			Status:      entity.BookingStatusConfirmed,
		}
		if err := tx.CreateBooking(booking); err != nil {
			return err
		}
		bookingID = booking.ID

		locked.Booked = true
		if err := tx.SaveSlot(locked); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}

	stored, _ := store.SlotByID(context.Background(), slot.ID)
	if stored.Booked {
		t.Errorf("slot write survived rollback")
	}
	booking, _ := store.BookingByID(context.Background(), bookingID)
	if booking != nil {
		t.Errorf("booking write survived rollback")
	}
}

func TestSlotForUpdateSerializesTransactions(t *testing.T) {
	store := NewMemoryReservationStore()
	slot := mustSeedSlot(t, store, uuid.New(), "2025-01-10", "09:00")

	entered := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan error, 1)
	secondDone := make(chan error, 1)
	var observedBooked bool

	go func() {
		firstDone <- store.Transact(context.Background(), func(tx domainRepo.ReservationTx) error {
			locked, err := tx.SlotForUpdate(slot.ID)
			if err != nil {
				return err
			}
			close(entered)
			<-release
			locked.Booked = true
			return tx.SaveSlot(locked)
		})
	}()

	<-entered
	go func() {
		secondDone <- store.Transact(context.Background(), func(tx domainRepo.ReservationTx) error {
			locked, err := tx.SlotForUpdate(slot.ID)
			if err != nil {
				return err
			}
			observedBooked = locked.Booked
			return nil
		})
	}()

	close(release)

	if err := <-firstDone; err != nil {
		t.Fatalf("first transaction failed: %v", err)
	}
	if err := <-secondDone; err != nil {
		t.Fatalf("second transaction failed: %v", err)
	}

	// The second transaction held off until the first committed, so it must
	// see the committed write, never the pre-lock state.
	if !observedBooked {
		t.Errorf("second transaction read stale slot state")
	}
}

func TestCreateSlotNaturalKey(t *testing.T) {
	store := NewMemoryReservationStore()
	providerID := uuid.New()
	mustSeedSlot(t, store, providerID, "2025-01-10", "09:00")

	dup := &entity.Slot{
		ProviderID: providerID,
		Date:       time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		StartTime:  "09:00",
		EndTime:    "09:30",
	}
	if err := store.CreateSlot(context.Background(), dup); !errors.Is(err, domainRepo.ErrSlotExists) {
		t.Errorf("expected ErrSlotExists, got %v", err)
	}

	// Distinct start time on the same day is allowed
	mustSeedSlot(t, store, providerID, "2025-01-10", "10:00")
}

func TestCreateBookingActiveUniqueness(t *testing.T) {
	store := NewMemoryReservationStore()
	slot := mustSeedSlot(t, store, uuid.New(), "2025-01-10", "09:00")

	book := func(status entity.BookingStatus) error {
		return store.Transact(context.Background(), func(tx domainRepo.ReservationTx) error {
			return tx.CreateBooking(&entity.Booking{
				RequesterID: uuid.New(),
				SlotID:      slot.ID,
				Status:      status,
			})
		})
	}

	if err := book(entity.BookingStatusConfirmed); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	if err := book(entity.BookingStatusConfirmed); !errors.Is(err, domainRepo.ErrBookingExists) {
		t.Fatalf("expected ErrBookingExists, got %v", err)
	}

	// Cancel the active booking, then the slot accepts a new one
	err := store.Transact(context.Background(), func(tx domainRepo.ReservationTx) error {
		active, err := tx.ActiveBookingBySlot(slot.ID)
		if err != nil {
			return err
		}
		active.Status = entity.BookingStatusCancelled
		return tx.SaveBooking(active)
	})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if err := book(entity.BookingStatusConfirmed); err != nil {
		t.Errorf("booking after cancel failed: %v", err)
	}
}

func TestDeleteSlotCommits(t *testing.T) {
	store := NewMemoryReservationStore()
	slot := mustSeedSlot(t, store, uuid.New(), "2025-01-10", "09:00")

	err := store.Transact(context.Background(), func(tx domainRepo.ReservationTx) error {
		if _, err := tx.SlotForUpdate(slot.ID); err != nil {
			return err
		}
		return tx.DeleteSlot(slot.ID)
	})
	if err != nil {
		t.Fatalf("delete transaction failed: %v", err)
	}

	stored, err := store.SlotByID(context.Background(), slot.ID)
	if err != nil {
		t.Fatalf("SlotByID failed: %v", err)
	}
	if stored != nil {
		t.Errorf("slot still present after committed delete")
	}
}
