package usecase

import (
	"context"
	"errors"
	"time"

	"slot-reservation-service/internal/converter"
	"slot-reservation-service/internal/delivery/dto"
	"slot-reservation-service/internal/domain/entity"
	"slot-reservation-service/internal/domain/repository"
	"slot-reservation-service/pkg/clock"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidDateFormat = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInvalidTimeFormat = errors.New("invalid time format, use HH:MM")
	ErrInvalidTimeRange  = errors.New("start time must be before end time")
	ErrInvalidCategory   = errors.New("unknown slot category")
	ErrSlotInPast        = errors.New("slot start must be in the future")
	ErrSlotConflict      = errors.New("a slot already exists at this time")
	ErrSlotHasBooking    = errors.New("slot has an active booking")
)

type SlotUsecase interface {
	CreateSlot(ctx context.Context, req *dto.CreateSlotRequest, caller Principal) (*dto.SlotResponse, error)
	GetOpenSlots(ctx context.Context, filter *entity.SlotFilter) (*dto.SlotListResponse, error)
	GetMySlots(ctx context.Context, caller Principal) (*dto.SlotListResponse, error)
	DeleteSlot(ctx context.Context, slotID uuid.UUID, caller Principal) error
}

type slotUsecase struct {
	store repository.ReservationStore
	log   *logrus.Logger
	clock clock.Clock
}

func NewSlotUsecase(store repository.ReservationStore, log *logrus.Logger, clk clock.Clock) SlotUsecase {
	return &slotUsecase{
		store: store,
		log:   log,
		clock: clk,
	}
}

func (u *slotUsecase) CreateSlot(ctx context.Context, req *dto.CreateSlotRequest, caller Principal) (*dto.SlotResponse, error) {
	if caller.RoleID != entity.RoleIDProvider {
		return nil, ErrForbidden
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}
	start, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}
	end, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}
	if !start.Before(end) {
		return nil, ErrInvalidTimeRange
	}

	category := entity.SlotCategory(req.Category)
	if req.Category == "" {
		category = entity.SlotCategoryConsultation
	}
	if !category.IsValid() {
		return nil, ErrInvalidCategory
	}

	slot := &entity.Slot{
		ProviderID: caller.UserID,
		Date:       date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Category:   category,
	}
	if !slot.StartsAt().After(u.clock.Now()) {
		return nil, ErrSlotInPast
	}

	if err := u.store.CreateSlot(ctx, slot); err != nil {
		if errors.Is(err, repository.ErrSlotExists) {
			return nil, ErrSlotConflict
		}
		u.log.Warnf("Failed to create slot for provider %s: %+v", caller.UserID, err)
		return nil, err
	}

	u.log.Infof("Slot created: id=%s, provider=%s, date=%s %s", slot.ID, caller.UserID, req.Date, req.StartTime)
	return converter.SlotToResponse(slot), nil
}

// GetOpenSlots returns slots that are unbooked and whose start is still in
// the future. Expired-but-unbooked slots never appear here.
func (u *slotUsecase) GetOpenSlots(ctx context.Context, filter *entity.SlotFilter) (*dto.SlotListResponse, error) {
	slots, err := u.store.OpenSlots(ctx, filter, u.clock.Now())
	if err != nil {
		u.log.Warnf("Failed to list open slots: %+v", err)
		return nil, err
	}

	return &dto.SlotListResponse{
		Slots: converter.SlotsToResponses(slots),
		Total: len(slots),
	}, nil
}

// GetMySlots returns all of the caller's slots, booked and expired included
func (u *slotUsecase) GetMySlots(ctx context.Context, caller Principal) (*dto.SlotListResponse, error) {
	if caller.RoleID != entity.RoleIDProvider {
		return nil, ErrForbidden
	}

	slots, err := u.store.SlotsByProvider(ctx, caller.UserID)
	if err != nil {
		u.log.Warnf("Failed to list slots for provider %s: %+v", caller.UserID, err)
		return nil, err
	}

	return &dto.SlotListResponse{
		Slots: converter.SlotsToResponses(slots),
		Total: len(slots),
	}, nil
}

// DeleteSlot removes a slot. Runs under the slot lock so a concurrent Book
// cannot slip a booking in between the check and the delete.
func (u *slotUsecase) DeleteSlot(ctx context.Context, slotID uuid.UUID, caller Principal) error {
	err := u.store.Transact(ctx, func(tx repository.ReservationTx) error {
		slot, err := tx.SlotForUpdate(slotID)
		if err != nil {
			return err
		}
		if slot == nil {
			return ErrSlotNotFound
		}
		if slot.ProviderID != caller.UserID {
			return ErrForbidden
		}

		active, err := tx.ActiveBookingBySlot(slotID)
		if err != nil {
			return err
		}
		if active != nil {
			return ErrSlotHasBooking
		}

		return tx.DeleteSlot(slotID)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotNotFound), errors.Is(err, ErrForbidden), errors.Is(err, ErrSlotHasBooking):
		default:
			u.log.Warnf("Failed to delete slot %s: %+v", slotID, err)
		}
		return err
	}

	u.log.Infof("Slot deleted: id=%s, provider=%s", slotID, caller.UserID)
	return nil
}
