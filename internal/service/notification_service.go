package service

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"slot-reservation-service/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Event kinds published on the booking channel
const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is the payload delivered to downstream consumers
// (mail/reminder workers subscribed to the channel).
type BookingEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	SlotID      uuid.UUID `json:"slot_id"`
	ProviderID  uuid.UUID `json:"provider_id"`
	RequesterID uuid.UUID `json:"requester_id"`
	Date        string    `json:"date"`
	StartTime   string    `json:"start_time"`
	Status      string    `json:"status"`
}

type eventEnvelope struct {
	Kind      string       `json:"kind"`
	EmittedAt time.Time    `json:"emitted_at"`
	Event     BookingEvent `json:"event"`
}

// Notifier receives booking lifecycle events after the owning transaction
// has committed. Publish must never block the caller and must never return
// an error into the booking path.
type Notifier interface {
	Publish(kind string, event BookingEvent)
}

// RedisNotifier publishes booking events to a Redis channel. Every publish
// runs on its own goroutine with its own timeout context, so an unreachable
// broker delays or drops events but never a booking.
type RedisNotifier struct {
	client  *redis.Client
	log     *logrus.Logger
	channel string
	timeout time.Duration

	wg      sync.WaitGroup
	stopped atomic.Bool
}

func NewRedisNotifier(client *redis.Client, log *logrus.Logger, cfg config.NotifyConfig) *RedisNotifier {
	return &RedisNotifier{
		client:  client,
		log:     log,
		channel: cfg.Channel,
		timeout: cfg.Timeout,
	}
}

func (n *RedisNotifier) Publish(kind string, event BookingEvent) {
	if n.stopped.Load() {
		n.log.Warnf("Notifier stopped, dropping %s event for booking %s", kind, event.BookingID)
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		payload, err := json.Marshal(eventEnvelope{
			Kind:      kind,
			EmittedAt: time.Now().UTC(),
			Event:     event,
		})
		if err != nil {
			n.log.Errorf("Failed to marshal %s event for booking %s: %+v", kind, event.BookingID, err)
			return
		}

		if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
			// Best effort only. Consumers re-sync from the bookings table.
			n.log.Warnf("Failed to publish %s event for booking %s (non-fatal): %+v", kind, event.BookingID, err)
			return
		}

		n.log.Debugf("Published %s event for booking %s", kind, event.BookingID)
	}()
}

// Stop waits for in-flight publishes to finish. Safe to call multiple times.
func (n *RedisNotifier) Stop() {
	if n.stopped.CompareAndSwap(false, true) {
		n.wg.Wait()
		n.log.Info("Notifier stopped")
	}
}
