package repository

import (
	"context"
	"errors"
	"time"

	"slot-reservation-service/internal/domain/entity"

	"github.com/google/uuid"
)

// Storage-level sentinels. Implementations translate their native constraint
// violations into these so callers never inspect driver errors directly.
var (
	ErrSlotExists    = errors.New("slot already exists for this provider at this time")
	ErrBookingExists = errors.New("a booking already references this slot")
)

// ReservationStore is the durable storage the reservation engine runs
// against. Reads outside Transact see committed state only.
type ReservationStore interface {
	// Transact runs fn inside one atomic unit of work. If fn returns an
	// error the transaction is rolled back and no partial write survives.
	Transact(ctx context.Context, fn func(tx ReservationTx) error) error

	SlotByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error)
	OpenSlots(ctx context.Context, filter *entity.SlotFilter, now time.Time) ([]entity.Slot, error)
	SlotsByProvider(ctx context.Context, providerID uuid.UUID) ([]entity.Slot, error)
	CreateSlot(ctx context.Context, slot *entity.Slot) error

	BookingByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	BookingsByRequester(ctx context.Context, requesterID uuid.UUID) ([]entity.Booking, error)
	BookingsByProvider(ctx context.Context, providerID uuid.UUID) ([]entity.Booking, error)
}

// ReservationTx is the unit of work handed to Transact. SlotForUpdate takes
// an exclusive blocking lock on one slot row; the lock is released when the
// transaction ends, atomically with commit or rollback. Locks are per slot,
// so transactions on distinct slots never block each other.
type ReservationTx interface {
	SlotForUpdate(id uuid.UUID) (*entity.Slot, error)
	ActiveBookingBySlot(slotID uuid.UUID) (*entity.Booking, error)
	BookingByID(id uuid.UUID) (*entity.Booking, error)
	CreateBooking(booking *entity.Booking) error
	SaveBooking(booking *entity.Booking) error
	SaveSlot(slot *entity.Slot) error
	DeleteSlot(id uuid.UUID) error
}
