// Package order keeps the authoritative, process-lifetime set of orders.
// Records never leave process memory; that is a deliberate property of the
// system, not a stopgap.
package order

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sello-app/sello/internal/entity"
)

var storeTracer = otel.Tracer("github.com/sello-app/sello/store/order")

// ConfirmURLBuilder derives the confirmation link for a freshly minted id.
type ConfirmURLBuilder func(id string) string

// Store owns all order records. Every operation takes the store mutex, so
// each read-modify-write is atomic and two concurrent confirmations of the
// same id see exactly one winner.
type Store struct {
	mu     sync.Mutex
	orders map[string]entity.Order
	ids    []string // insertion order, for listing only

	now   func() time.Time
	newID func() string
}

// NewStore builds an empty store with real time and uuid generation.
func NewStore() *Store {
	return &Store{
		orders: make(map[string]entity.Order),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// snapshot detaches a record from store state. The struct copy alone would
// still share the ConfirmedAt pointer with the stored record.
func snapshot(order entity.Order) entity.Order {
	if order.ConfirmedAt != nil {
		confirmedAt := *order.ConfirmedAt
		order.ConfirmedAt = &confirmedAt
	}
	return order
}

// WithClock overrides the store clock. Test hook.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Create mints a unique id, derives the confirmation URL through buildURL,
// and records the order as pending. The returned snapshot is a value copy.
// Input validation is the caller's job; the store only requires an id-keyed
// record.
func (s *Store) Create(ctx context.Context, description string, buildURL ConfirmURLBuilder) entity.Order {
	_, span := storeTracer.Start(ctx, "OrderStore.Create")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for {
		if _, exists := s.orders[id]; !exists {
			break
		}
		id = s.newID()
	}

	order := entity.Order{
		ID:          id,
		Description: description,
		Status:      entity.StatusPending,
		CreatedAt:   s.now(),
	}
	if buildURL != nil {
		order.ConfirmURL = buildURL(id)
	}

	s.orders[id] = order
	s.ids = append(s.ids, id)

	span.SetAttributes(attribute.String("order.id", id))
	return order
}

// List returns a snapshot of all stored orders in insertion order. The
// ordering is for display only; callers must not rely on it for correctness.
func (s *Store) List(ctx context.Context) []entity.Order {
	_, span := storeTracer.Start(ctx, "OrderStore.List")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entity.Order, 0, len(s.ids))
	for _, id := range s.ids {
		if order, ok := s.orders[id]; ok {
			out = append(out, snapshot(order))
		}
	}

	span.SetAttributes(attribute.Int("order.count", len(out)))
	return out
}

// GetByID looks up a single order. A missing id is a valid non-error outcome.
func (s *Store) GetByID(ctx context.Context, id string) (entity.Order, bool) {
	_, span := storeTracer.Start(ctx, "OrderStore.GetByID", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	return snapshot(order), ok
}

// Confirm transitions a pending order to confirmed, setting ConfirmedAt in
// the same step. Confirming an already-confirmed order is a no-op reported
// through alreadyConfirmed; repeated calls never error and never move
// ConfirmedAt. ok is false when the id is unknown.
func (s *Store) Confirm(ctx context.Context, id string) (order entity.Order, alreadyConfirmed bool, ok bool) {
	_, span := storeTracer.Start(ctx, "OrderStore.Confirm", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok = s.orders[id]
	if !ok {
		return entity.Order{}, false, false
	}

	if order.Confirmed() {
		span.SetAttributes(attribute.Bool("order.already_confirmed", true))
		return snapshot(order), true, true
	}

	confirmedAt := s.now()
	order.Status = entity.StatusConfirmed
	order.ConfirmedAt = &confirmedAt
	s.orders[id] = order

	return snapshot(order), false, true
}

// Delete removes a record. It exists solely as the compensating action for
// creation failures downstream and is never exposed as a lifecycle operation.
func (s *Store) Delete(ctx context.Context, id string) {
	_, span := storeTracer.Start(ctx, "OrderStore.Delete", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return
	}
	delete(s.orders, id)
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
}
