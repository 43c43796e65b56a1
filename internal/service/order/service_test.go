package order

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sello-app/sello/internal/config"
	"github.com/sello-app/sello/internal/entity"
	"github.com/sello-app/sello/internal/messaging"
	"github.com/sello-app/sello/internal/qr"
	store "github.com/sello-app/sello/internal/store/order"
	"github.com/sello-app/sello/pkg/errorbank"
)

type publishedEvent struct {
	event string
	key   string
	value []byte
}

type stubPublisher struct {
	published []publishedEvent
	err       error
}

func (s *stubPublisher) Publish(_ context.Context, event string, key, value []byte) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, publishedEvent{event: event, key: string(key), value: value})
	return nil
}

func (s *stubPublisher) Consume(ctx context.Context, _ messaging.Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubPublisher) Topic() string { return "orders.events" }

func testConfig() config.Config {
	return config.Config{
		PublicURL: "http://localhost:3000",
		QR: config.QR{
			Level:      "medium",
			Size:       128,
			Margin:     2,
			Foreground: "#000000",
			Background: "#FFFFFF",
		},
		Cache:     config.Cache{DefaultTTL: time.Minute},
		Messaging: config.Messaging{Enabled: true},
	}
}

func newTestService(t *testing.T, encode Encoder, publisher messaging.Client) (*Service, *store.Store) {
	t.Helper()
	if encode == nil {
		encode = qr.Encode
	}
	st := store.NewStore()
	svc := NewService(Params{
		Store:     st,
		Encoder:   encode,
		Config:    testConfig(),
		Logger:    zap.NewNop(),
		Publisher: publisher,
	})
	return svc, st
}

func TestCreateWithQRScenario(t *testing.T) {
	publisher := &stubPublisher{}
	svc, _ := newTestService(t, nil, publisher)
	ctx := context.Background()

	result, err := svc.CreateWithQR(ctx, "Entrega de credencial")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	order := result.Order
	if order.Status != entity.StatusPending {
		t.Fatalf("expected pending status, got %s", order.Status)
	}
	if want := "http://localhost:3000/orders/" + order.ID + "/confirm"; order.ConfirmURL != want {
		t.Fatalf("expected confirmUrl %s, got %s", want, order.ConfirmURL)
	}
	if result.QR.Content != order.ConfirmURL {
		t.Fatalf("QR content must be the confirmation URL")
	}
	if result.QR.MimeType != "image/png" {
		t.Fatalf("expected image/png, got %s", result.QR.MimeType)
	}
	png, err := base64.StdEncoding.DecodeString(result.QR.ImageBase64)
	if err != nil || len(png) == 0 {
		t.Fatalf("expected decodable non-empty image payload, err=%v", err)
	}

	first, already, err := svc.Confirm(ctx, order.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if already {
		t.Fatalf("first confirmation must not report alreadyConfirmed")
	}
	if first.Status != entity.StatusConfirmed {
		t.Fatalf("expected confirmed status, got %s", first.Status)
	}

	second, already, err := svc.Confirm(ctx, order.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !already {
		t.Fatalf("second confirmation must report alreadyConfirmed")
	}
	if !second.ConfirmedAt.Equal(*first.ConfirmedAt) {
		t.Fatalf("confirmedAt changed on re-confirmation")
	}

	if _, _, err := svc.Confirm(ctx, "b7e1fb3c-0000-4000-8000-000000000000"); errorbank.From(err).Kind() != errorbank.KindNotFound {
		t.Fatalf("expected not_found for unknown id, got %v", err)
	}

	// created once, confirmed once; the idempotent repeat publishes nothing.
	if len(publisher.published) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(publisher.published))
	}
	if publisher.published[0].event != EventOrderCreated {
		t.Fatalf("expected %s, got %s", EventOrderCreated, publisher.published[0].event)
	}
	if publisher.published[1].event != EventOrderConfirmed {
		t.Fatalf("expected %s, got %s", EventOrderConfirmed, publisher.published[1].event)
	}
}

func TestCreateWithQRValidation(t *testing.T) {
	svc, st := newTestService(t, nil, &stubPublisher{})
	ctx := context.Background()

	for _, description := range []string{"", "   "} {
		_, err := svc.CreateWithQR(ctx, description)
		if errorbank.From(err).Kind() != errorbank.KindBadRequest {
			t.Fatalf("description %q: expected bad_request, got %v", description, err)
		}
	}
	if got := st.List(ctx); len(got) != 0 {
		t.Fatalf("rejected creations must not touch the store, found %d orders", len(got))
	}
}

func TestCreateWithQRRollbackOnEncodingFailure(t *testing.T) {
	failing := func(string, qr.Options) ([]byte, error) {
		return nil, errors.New("symbol capacity exceeded")
	}
	svc, st := newTestService(t, failing, &stubPublisher{})
	ctx := context.Background()

	_, err := svc.CreateWithQR(ctx, "orden imposible")
	if errorbank.From(err).Kind() != errorbank.KindUnprocessableEntity {
		t.Fatalf("expected unprocessable_entity, got %v", err)
	}

	if got := st.List(ctx); len(got) != 0 {
		t.Fatalf("expected tentative order to be rolled back, found %d orders", len(got))
	}
}

func TestConfirmURLRoundTrip(t *testing.T) {
	svc, _ := newTestService(t, nil, &stubPublisher{})
	ctx := context.Background()

	created, err := svc.CreateWithQR(ctx, "round trip")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Extract the id the way a scanner-driven client would: from the URL.
	url := created.Order.ConfirmURL
	url = strings.TrimPrefix(url, "http://localhost:3000/orders/")
	id := strings.TrimSuffix(url, "/confirm")

	confirmed, already, err := svc.Confirm(ctx, id)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if already {
		t.Fatalf("expected first confirmation")
	}
	if confirmed.ID != created.Order.ID {
		t.Fatalf("confirmUrl resolved to %s, expected %s", confirmed.ID, created.Order.ID)
	}
}

func TestListReflectsCreations(t *testing.T) {
	svc, _ := newTestService(t, nil, &stubPublisher{})
	ctx := context.Background()

	if got := svc.List(ctx); len(got) != 0 {
		t.Fatalf("expected empty listing, got %d", len(got))
	}

	first, _ := svc.CreateWithQR(ctx, "uno")
	second, _ := svc.CreateWithQR(ctx, "dos")

	got := svc.List(ctx)
	if len(got) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(got))
	}
	if got[0].ID != first.Order.ID || got[1].ID != second.Order.ID {
		t.Fatalf("listing lost insertion order")
	}
}

func TestGetOrder(t *testing.T) {
	svc, _ := newTestService(t, nil, &stubPublisher{})
	ctx := context.Background()

	created, err := svc.CreateWithQR(ctx, "orden")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Get(ctx, created.Order.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != created.Order.ID || got.Description != "orden" {
		t.Fatalf("unexpected order %+v", got)
	}

	if _, err := svc.Get(ctx, "missing"); errorbank.From(err).Kind() != errorbank.KindNotFound {
		t.Fatalf("expected not_found for unknown id, got %v", err)
	}
}

func TestPublishFailureDoesNotAffectOutcome(t *testing.T) {
	publisher := &stubPublisher{err: errors.New("broker unreachable")}
	svc, _ := newTestService(t, nil, publisher)

	result, err := svc.CreateWithQR(context.Background(), "orden")
	if err != nil {
		t.Fatalf("publish failures must not surface to callers, got %v", err)
	}
	if result.Order.ID == "" {
		t.Fatalf("expected a stored order")
	}
}
