package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"slot-reservation-service/internal/domain/entity"
	domainRepo "slot-reservation-service/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormReservationStore backs the reservation engine with PostgreSQL.
// SlotForUpdate maps to SELECT ... FOR UPDATE, so lock release is atomic
// with commit.
type gormReservationStore struct {
	db *gorm.DB
}

func NewGormReservationStore(db *gorm.DB) domainRepo.ReservationStore {
	return &gormReservationStore{db: db}
}

func (s *gormReservationStore) Transact(ctx context.Context, fn func(tx domainRepo.ReservationTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormReservationTx{tx: tx})
	})
}

func (s *gormReservationStore) SlotByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error) {
	var slot entity.Slot
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &slot, nil
}

// OpenSlots returns unbooked slots whose start instant is still in the
// future. Slots that expired while open are filtered out here rather than
// swept by a background job.
func (s *gormReservationStore) OpenSlots(ctx context.Context, filter *entity.SlotFilter, now time.Time) ([]entity.Slot, error) {
	nowDate := now.Format("2006-01-02")
	nowTime := now.Format("15:04:05")

	query := s.db.WithContext(ctx).
		Where("booked = ?", false).
		Where("(date > ? OR (date = ? AND start_time > ?))", nowDate, nowDate, nowTime)

	if filter != nil {
		if filter.ProviderID != uuid.Nil {
			query = query.Where("provider_id = ?", filter.ProviderID)
		}
		if filter.DateFrom != "" {
			query = query.Where("date >= ?", filter.DateFrom)
		}
		if filter.DateTo != "" {
			query = query.Where("date <= ?", filter.DateTo)
		}
		if filter.Category != "" {
			query = query.Where("category = ?", filter.Category)
		}
	}

	var slots []entity.Slot
	err := query.Order("date ASC, start_time ASC").Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (s *gormReservationStore) SlotsByProvider(ctx context.Context, providerID uuid.UUID) ([]entity.Slot, error) {
	var slots []entity.Slot
	err := s.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("date DESC, start_time DESC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (s *gormReservationStore) CreateSlot(ctx context.Context, slot *entity.Slot) error {
	err := s.db.WithContext(ctx).Create(slot).Error
	if isUniqueViolation(err, "idx_slots_natural_key") {
		return domainRepo.ErrSlotExists
	}
	return err
}

func (s *gormReservationStore) BookingByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := s.db.WithContext(ctx).Preload("Slot").Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (s *gormReservationStore) BookingsByRequester(ctx context.Context, requesterID uuid.UUID) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := s.db.WithContext(ctx).
		Preload("Slot").
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *gormReservationStore) BookingsByProvider(ctx context.Context, providerID uuid.UUID) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := s.db.WithContext(ctx).
		Preload("Slot").
		Joins("JOIN slots ON slots.id = bookings.slot_id").
		Where("slots.provider_id = ?", providerID).
		Order("bookings.created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// gormReservationTx wraps one database transaction.
type gormReservationTx struct {
	tx *gorm.DB
}

func (t *gormReservationTx) SlotForUpdate(id uuid.UUID) (*entity.Slot, error) {
	var slot entity.Slot
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &slot, nil
}

func (t *gormReservationTx) ActiveBookingBySlot(slotID uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := t.tx.
		Where("slot_id = ? AND status <> ?", slotID, entity.BookingStatusCancelled).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (t *gormReservationTx) BookingByID(id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := t.tx.Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (t *gormReservationTx) CreateBooking(booking *entity.Booking) error {
	err := t.tx.Create(booking).Error
	if isUniqueViolation(err, "idx_bookings_active_slot") {
		return domainRepo.ErrBookingExists
	}
	return err
}

func (t *gormReservationTx) SaveBooking(booking *entity.Booking) error {
	return t.tx.Omit("Slot", "Requester").Save(booking).Error
}

func (t *gormReservationTx) SaveSlot(slot *entity.Slot) error {
	return t.tx.Omit("Provider").Save(slot).Error
}

func (t *gormReservationTx) DeleteSlot(id uuid.UUID) error {
	return t.tx.Where("id = ?", id).Delete(&entity.Slot{}).Error
}

// isUniqueViolation checks for a PostgreSQL unique constraint violation
// (code 23505) on the named constraint
func isUniqueViolation(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
