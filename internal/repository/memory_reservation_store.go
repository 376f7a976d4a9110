package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"slot-reservation-service/internal/domain/entity"
	domainRepo "slot-reservation-service/internal/domain/repository"

	"github.com/google/uuid"
)

// MemoryReservationStore is an in-process ReservationStore with the same
// serialization semantics as the PostgreSQL store: SlotForUpdate blocks on a
// per-slot mutex, and all writes buffered in a transaction become visible
// atomically at commit. A transaction that fails leaves no trace.
//
// The per-slot mutex table is a sync.Map so lock entries for never-before-seen
// slot IDs can be created concurrently without a global lock.
type MemoryReservationStore struct {
	mu        sync.Mutex
	slots     map[uuid.UUID]entity.Slot
	bookings  map[uuid.UUID]entity.Booking
	slotLocks sync.Map // uuid.UUID -> *sync.Mutex
}

func NewMemoryReservationStore() *MemoryReservationStore {
	return &MemoryReservationStore{
		slots:    make(map[uuid.UUID]entity.Slot),
		bookings: make(map[uuid.UUID]entity.Booking),
	}
}

func (s *MemoryReservationStore) slotLock(id uuid.UUID) *sync.Mutex {
	lock, _ := s.slotLocks.LoadOrStore(id, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (s *MemoryReservationStore) Transact(ctx context.Context, fn func(tx domainRepo.ReservationTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memoryReservationTx{
		store:           s,
		pendingSlots:    make(map[uuid.UUID]entity.Slot),
		pendingBookings: make(map[uuid.UUID]entity.Booking),
		deletedSlots:    make(map[uuid.UUID]bool),
	}
	// Slot locks are held until the transaction outcome is decided, so
	// release runs after commit below, mirroring FOR UPDATE semantics.
	defer tx.releaseLocks()

	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, slot := range tx.pendingSlots {
		s.slots[id] = slot
	}
	for id, booking := range tx.pendingBookings {
		s.bookings[id] = booking
	}
	for id := range tx.deletedSlots {
		delete(s.slots, id)
	}
	return nil
}

func (s *MemoryReservationStore) SlotByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot, ok := s.slots[id]; ok {
		return &slot, nil
	}
	return nil, nil
}

func (s *MemoryReservationStore) OpenSlots(ctx context.Context, filter *entity.SlotFilter, now time.Time) ([]entity.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var slots []entity.Slot
	for _, slot := range s.slots {
		if !slot.IsAvailable(now) {
			continue
		}
		if filter != nil {
			if filter.ProviderID != uuid.Nil && slot.ProviderID != filter.ProviderID {
				continue
			}
			if filter.DateFrom != "" && slot.Date.Format("2006-01-02") < filter.DateFrom {
				continue
			}
			if filter.DateTo != "" && slot.Date.Format("2006-01-02") > filter.DateTo {
				continue
			}
			if filter.Category != "" && slot.Category != filter.Category {
				continue
			}
		}
		slots = append(slots, slot)
	}

	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Date.Equal(slots[j].Date) {
			return slots[i].Date.Before(slots[j].Date)
		}
		return slots[i].StartTime < slots[j].StartTime
	})
	return slots, nil
}

func (s *MemoryReservationStore) SlotsByProvider(ctx context.Context, providerID uuid.UUID) ([]entity.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var slots []entity.Slot
	for _, slot := range s.slots {
		if slot.ProviderID == providerID {
			slots = append(slots, slot)
		}
	}
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Date.Equal(slots[j].Date) {
			return slots[i].Date.After(slots[j].Date)
		}
		return slots[i].StartTime > slots[j].StartTime
	})
	return slots, nil
}

func (s *MemoryReservationStore) CreateSlot(ctx context.Context, slot *entity.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.slots {
		if existing.ProviderID == slot.ProviderID &&
			existing.Date.Equal(slot.Date) &&
			existing.StartTime == slot.StartTime {
			return domainRepo.ErrSlotExists
		}
	}

	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now()
	}
	slot.UpdatedAt = time.Now()
	s.slots[slot.ID] = *slot
	return nil
}

func (s *MemoryReservationStore) BookingByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if booking, ok := s.bookings[id]; ok {
		if slot, ok := s.slots[booking.SlotID]; ok {
			booking.Slot = slot
		}
		return &booking, nil
	}
	return nil, nil
}

func (s *MemoryReservationStore) BookingsByRequester(ctx context.Context, requesterID uuid.UUID) ([]entity.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var bookings []entity.Booking
	for _, booking := range s.bookings {
		if booking.RequesterID != requesterID {
			continue
		}
		if slot, ok := s.slots[booking.SlotID]; ok {
			booking.Slot = slot
		}
		bookings = append(bookings, booking)
	}
	sortBookingsNewestFirst(bookings)
	return bookings, nil
}

func (s *MemoryReservationStore) BookingsByProvider(ctx context.Context, providerID uuid.UUID) ([]entity.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var bookings []entity.Booking
	for _, booking := range s.bookings {
		slot, ok := s.slots[booking.SlotID]
		if !ok || slot.ProviderID != providerID {
			continue
		}
		booking.Slot = slot
		bookings = append(bookings, booking)
	}
	sortBookingsNewestFirst(bookings)
	return bookings, nil
}

func sortBookingsNewestFirst(bookings []entity.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
}

// memoryReservationTx buffers writes until commit. Reads merge committed
// state with the transaction's own pending writes.
type memoryReservationTx struct {
	store           *MemoryReservationStore
	pendingSlots    map[uuid.UUID]entity.Slot
	pendingBookings map[uuid.UUID]entity.Booking
	deletedSlots    map[uuid.UUID]bool
	locked          []*sync.Mutex
}

func (t *memoryReservationTx) releaseLocks() {
	for _, lock := range t.locked {
		lock.Unlock()
	}
	t.locked = nil
}

func (t *memoryReservationTx) SlotForUpdate(id uuid.UUID) (*entity.Slot, error) {
	lock := t.store.slotLock(id)
	lock.Lock()
	t.locked = append(t.locked, lock)

	if slot, ok := t.pendingSlots[id]; ok {
		return &slot, nil
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if slot, ok := t.store.slots[id]; ok {
		return &slot, nil
	}
	return nil, nil
}

func (t *memoryReservationTx) ActiveBookingBySlot(slotID uuid.UUID) (*entity.Booking, error) {
	for _, booking := range t.pendingBookings {
		if booking.SlotID == slotID && booking.Status != entity.BookingStatusCancelled {
			return &booking, nil
		}
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for id, booking := range t.store.bookings {
		if _, overridden := t.pendingBookings[id]; overridden {
			continue
		}
		if booking.SlotID == slotID && booking.Status != entity.BookingStatusCancelled {
			return &booking, nil
		}
	}
	return nil, nil
}

func (t *memoryReservationTx) BookingByID(id uuid.UUID) (*entity.Booking, error) {
	if booking, ok := t.pendingBookings[id]; ok {
		return &booking, nil
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if booking, ok := t.store.bookings[id]; ok {
		return &booking, nil
	}
	return nil, nil
}

func (t *memoryReservationTx) CreateBooking(booking *entity.Booking) error {
	if booking.Status != entity.BookingStatusCancelled {
		if existing, _ := t.ActiveBookingBySlot(booking.SlotID); existing != nil {
			return domainRepo.ErrBookingExists
		}
	}

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	booking.UpdatedAt = time.Now()
	t.pendingBookings[booking.ID] = *booking
	return nil
}

func (t *memoryReservationTx) SaveBooking(booking *entity.Booking) error {
	booking.UpdatedAt = time.Now()
	stored := *booking
	stored.Slot = entity.Slot{}
	t.pendingBookings[booking.ID] = stored
	return nil
}

func (t *memoryReservationTx) SaveSlot(slot *entity.Slot) error {
	slot.UpdatedAt = time.Now()
	stored := *slot
	stored.Provider = entity.User{}
	t.pendingSlots[slot.ID] = stored
	return nil
}

func (t *memoryReservationTx) DeleteSlot(id uuid.UUID) error {
	delete(t.pendingSlots, id)
	t.deletedSlots[id] = true
	return nil
}
