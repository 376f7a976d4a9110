package usecase

import (
	"context"
	"errors"

	"slot-reservation-service/internal/converter"
	"slot-reservation-service/internal/delivery/dto"
	"slot-reservation-service/internal/domain/entity"
	"slot-reservation-service/internal/domain/repository"
	"slot-reservation-service/internal/service"
	"slot-reservation-service/pkg/clock"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrSlotNotFound      = errors.New("slot not found")
	ErrSlotUnavailable   = errors.New("slot is no longer available")
	ErrAlreadyBooked     = errors.New("slot has already been booked")
	ErrInvalidRequester  = errors.New("caller cannot book this slot")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrForbidden         = errors.New("caller may not act on this booking")
	ErrInvalidTransition = errors.New("booking status does not allow this transition")
)

type ReservationUsecase interface {
	Book(ctx context.Context, req *dto.CreateBookingRequest, caller Principal) (*dto.BookingResponse, error)
	Cancel(ctx context.Context, bookingID uuid.UUID, caller Principal) error
	MarkOutcome(ctx context.Context, bookingID uuid.UUID, caller Principal, outcome entity.BookingStatus) error
	GetMyBookings(ctx context.Context, caller Principal) (*dto.BookingListResponse, error)
	GetReceivedBookings(ctx context.Context, caller Principal) (*dto.BookingListResponse, error)
}

type reservationUsecase struct {
	store    repository.ReservationStore
	log      *logrus.Logger
	clock    clock.Clock
	notifier service.Notifier
}

func NewReservationUsecase(
	store repository.ReservationStore,
	log *logrus.Logger,
	clk clock.Clock,
	notifier service.Notifier,
) ReservationUsecase {
	return &reservationUsecase{
		store:    store,
		log:      log,
		clock:    clk,
		notifier: notifier,
	}
}

// Book claims a slot for the caller.
//
// Flow:
// 1. Role and ownership checks, before any lock is taken
// 2. Acquire the slot row exclusively and re-read it under the lock
// 3. Reject if booked, or if the slot's start is not in the future
// 4. Reject if an active booking already references the slot
// 5. Insert the confirmed booking and flip the slot's booked flag
// 6. Commit; lock release is atomic with commit
// 7. Post-commit: fire-and-forget booking-confirmed event
func (u *reservationUsecase) Book(ctx context.Context, req *dto.CreateBookingRequest, caller Principal) (*dto.BookingResponse, error) {
	if caller.RoleID != entity.RoleIDRequester {
		return nil, ErrInvalidRequester
	}

	slot, err := u.store.SlotByID(ctx, req.SlotID)
	if err != nil {
		u.log.Warnf("Failed to find slot %s: %+v", req.SlotID, err)
		return nil, err
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	if slot.ProviderID == caller.UserID {
		return nil, ErrInvalidRequester
	}

	var booking *entity.Booking
	err = u.store.Transact(ctx, func(tx repository.ReservationTx) error {
		// The slot read before locking is untrusted; everything below
		// works on the row as it stands under the lock.
		locked, err := tx.SlotForUpdate(req.SlotID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrSlotNotFound
		}
		if !locked.IsAvailable(u.clock.Now()) {
			return ErrSlotUnavailable
		}

		// Unreachable if the booked flag is maintained correctly, but
		// guards against drift between the flag and the bookings table.
		existing, err := tx.ActiveBookingBySlot(locked.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyBooked
		}

		booking = &entity.Booking{
			RequesterID: caller.UserID,
			SlotID:      locked.ID,
			Status:      entity.BookingStatusConfirmed,
			Notes:       req.Notes,
		}
		if err := tx.CreateBooking(booking); err != nil {
			if errors.Is(err, repository.ErrBookingExists) {
				return ErrAlreadyBooked
			}
			return err
		}

		locked.Booked = true
		if err := tx.SaveSlot(locked); err != nil {
			return err
		}
		slot = locked
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotNotFound), errors.Is(err, ErrSlotUnavailable), errors.Is(err, ErrAlreadyBooked):
		default:
			u.log.Warnf("Failed to book slot %s for requester %s: %+v", req.SlotID, caller.UserID, err)
		}
		return nil, err
	}

	u.notifier.Publish(service.EventBookingConfirmed, bookingEvent(booking, slot))
	u.log.Infof("Booking confirmed: id=%s, slot=%s, requester=%s", booking.ID, slot.ID, caller.UserID)

	booking.Slot = *slot
	return converter.BookingToResponse(booking), nil
}

// Cancel releases a confirmed booking's slot. Only the booking's requester
// or the slot's provider may cancel; both checks run before any lock.
func (u *reservationUsecase) Cancel(ctx context.Context, bookingID uuid.UUID, caller Principal) error {
	booking, err := u.store.BookingByID(ctx, bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return err
	}
	if booking == nil {
		return ErrBookingNotFound
	}
	if caller.UserID != booking.RequesterID && caller.UserID != booking.Slot.ProviderID {
		return ErrForbidden
	}
	if !booking.IsConfirmed() {
		return ErrInvalidTransition
	}

	slot := booking.Slot
	err = u.store.Transact(ctx, func(tx repository.ReservationTx) error {
		locked, err := tx.SlotForUpdate(booking.SlotID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrSlotNotFound
		}

		fresh, err := tx.BookingByID(bookingID)
		if err != nil {
			return err
		}
		if fresh == nil {
			return ErrBookingNotFound
		}
		// Re-checked under the lock; the pre-check above may be stale.
		if !fresh.IsConfirmed() {
			return ErrInvalidTransition
		}

		fresh.Status = entity.BookingStatusCancelled
		if err := tx.SaveBooking(fresh); err != nil {
			return err
		}

		locked.Booked = false
		if err := tx.SaveSlot(locked); err != nil {
			return err
		}
		booking = fresh
		slot = *locked
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrSlotNotFound):
		default:
			u.log.Warnf("Failed to cancel booking %s: %+v", bookingID, err)
		}
		return err
	}

	u.notifier.Publish(service.EventBookingCancelled, bookingEvent(booking, &slot))
	u.log.Infof("Booking cancelled: id=%s, slot=%s", bookingID, slot.ID)
	return nil
}

// MarkOutcome records the post-appointment outcome (completed or no_show).
// Provider-only; allowed only once the slot's start has passed. Terminal
// outcomes never release the slot, its time is already spent.
func (u *reservationUsecase) MarkOutcome(ctx context.Context, bookingID uuid.UUID, caller Principal, outcome entity.BookingStatus) error {
	if outcome != entity.BookingStatusCompleted && outcome != entity.BookingStatusNoShow {
		return ErrInvalidTransition
	}

	booking, err := u.store.BookingByID(ctx, bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return err
	}
	if booking == nil {
		return ErrBookingNotFound
	}
	if caller.UserID != booking.Slot.ProviderID {
		return ErrForbidden
	}
	if !booking.IsConfirmed() {
		return ErrInvalidTransition
	}

	err = u.store.Transact(ctx, func(tx repository.ReservationTx) error {
		locked, err := tx.SlotForUpdate(booking.SlotID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrSlotNotFound
		}
		if locked.StartsAt().After(u.clock.Now()) {
			return ErrInvalidTransition
		}

		fresh, err := tx.BookingByID(bookingID)
		if err != nil {
			return err
		}
		if fresh == nil {
			return ErrBookingNotFound
		}
		if !fresh.IsConfirmed() {
			return ErrInvalidTransition
		}

		fresh.Status = outcome
		return tx.SaveBooking(fresh)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrSlotNotFound):
		default:
			u.log.Warnf("Failed to mark outcome for booking %s: %+v", bookingID, err)
		}
		return err
	}

	u.log.Infof("Booking outcome recorded: id=%s, outcome=%s", bookingID, outcome)
	return nil
}

// GetMyBookings returns all bookings made by the caller, newest first
func (u *reservationUsecase) GetMyBookings(ctx context.Context, caller Principal) (*dto.BookingListResponse, error) {
	bookings, err := u.store.BookingsByRequester(ctx, caller.UserID)
	if err != nil {
		u.log.Warnf("Failed to find bookings for requester %s: %+v", caller.UserID, err)
		return nil, err
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}

// GetReceivedBookings returns all bookings on the caller's slots, newest first
func (u *reservationUsecase) GetReceivedBookings(ctx context.Context, caller Principal) (*dto.BookingListResponse, error) {
	bookings, err := u.store.BookingsByProvider(ctx, caller.UserID)
	if err != nil {
		u.log.Warnf("Failed to find bookings for provider %s: %+v", caller.UserID, err)
		return nil, err
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}

func bookingEvent(booking *entity.Booking, slot *entity.Slot) service.BookingEvent {
	return service.BookingEvent{
		BookingID:   booking.ID,
		SlotID:      slot.ID,
		ProviderID:  slot.ProviderID,
		RequesterID: booking.RequesterID,
		Date:        slot.Date.Format("2006-01-02"),
		StartTime:   slot.StartTime,
		Status:      string(booking.Status),
	}
}
