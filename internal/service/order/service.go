package order

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/sello-app/sello/internal/cache"
	"github.com/sello-app/sello/internal/config"
	"github.com/sello-app/sello/internal/entity"
	"github.com/sello-app/sello/internal/messaging"
	"github.com/sello-app/sello/internal/qr"
	store "github.com/sello-app/sello/internal/store/order"
	"github.com/sello-app/sello/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/sello-app/sello/service/order")

// Encoder renders text into PNG bytes. Declared as a function type so tests
// can force encoding failures and drive the rollback path.
type Encoder func(content string, opts qr.Options) ([]byte, error)

// QRImage is the transport-ready rendering of a confirmation link.
type QRImage struct {
	Content     string
	ImageBase64 string
	MimeType    string
}

// CreationResult bundles the stored order with its scannable QR code.
type CreationResult struct {
	Order entity.Order
	QR    QRImage
}

// Service is the only component allowed to combine the order store with the
// QR encoder; it enforces the create, encode, compensate protocol.
type Service struct {
	store     *store.Store
	encode    Encoder
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	publisher messaging.Client
	publish   bool
	publicURL string
	qrOpts    qr.Options
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Store     *store.Store
	Encoder   Encoder
	Cache     cache.Store
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		store:     p.Store,
		encode:    p.Encoder,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		logger:    p.Logger,
		publisher: p.Publisher,
		publish:   p.Config.Messaging.Enabled,
		publicURL: p.Config.PublicURL,
		qrOpts: qr.Options{
			Level:      p.Config.QR.Level,
			Size:       p.Config.QR.Size,
			Margin:     p.Config.QR.Margin,
			Foreground: p.Config.QR.Foreground,
			Background: p.Config.QR.Background,
		},
	}
}

// CreateWithQR validates the description, stores a pending order, and encodes
// its confirmation URL. When encoding fails the tentative record is rolled
// back with a single best-effort delete before the failure is reported; there
// is no multi-resource commit to lean on.
func (s *Service) CreateWithQR(ctx context.Context, description string) (CreationResult, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.CreateWithQR")
	defer span.End()

	if strings.TrimSpace(description) == "" {
		return CreationResult{}, errorbank.BadRequest("description must be a non-empty string")
	}

	order := s.store.Create(ctx, description, s.buildConfirmURL)
	span.SetAttributes(attribute.String("order.id", order.ID))

	png, err := s.encodePNG(ctx, order.ConfirmURL)
	if err != nil {
		s.store.Delete(ctx, order.ID)
		span.RecordError(err)
		span.SetStatus(codes.Error, "qr encoding failed")
		return CreationResult{}, errorbank.Unprocessable("could not generate qr code",
			errorbank.WithCause(err), errorbank.WithDetail("orderId", order.ID))
	}

	s.publishEvent(ctx, EventOrderCreated, order.ID, OrderCreatedEvent{
		ID:          order.ID,
		Description: order.Description,
		Status:      string(order.Status),
		CreatedAt:   order.CreatedAt,
	})

	if s.logger != nil {
		s.logger.Info("order created",
			zap.String("id", order.ID),
			zap.String("status", string(order.Status)),
		)
	}

	return CreationResult{
		Order: order,
		QR: QRImage{
			Content:     order.ConfirmURL,
			ImageBase64: base64.StdEncoding.EncodeToString(png),
			MimeType:    qr.MimeType,
		},
	}, nil
}

// Confirm resolves a confirmation link. It delegates to the store and adds no
// policy: unknown ids become not-found errors, repeated confirmations are
// successful idempotent outcomes flagged through alreadyConfirmed.
func (s *Service) Confirm(ctx context.Context, id string) (entity.Order, bool, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Confirm", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	order, alreadyConfirmed, ok := s.store.Confirm(ctx, id)
	if !ok {
		span.SetStatus(codes.Error, "not found")
		return entity.Order{}, false, errorbank.NotFound("order not found")
	}

	if !alreadyConfirmed {
		s.publishEvent(ctx, EventOrderConfirmed, order.ID, OrderConfirmedEvent{
			ID:          order.ID,
			ConfirmedAt: order.ConfirmedAt,
		})
		if s.logger != nil {
			s.logger.Info("order confirmed", zap.String("id", order.ID))
		}
	} else if s.logger != nil {
		s.logger.Info("order was already confirmed", zap.String("id", order.ID))
	}

	return order, alreadyConfirmed, nil
}

// Get retrieves a single order by id.
func (s *Service) Get(ctx context.Context, id string) (entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	order, ok := s.store.GetByID(ctx, id)
	if !ok {
		span.SetStatus(codes.Error, "not found")
		return entity.Order{}, errorbank.NotFound("order not found")
	}
	return order, nil
}

// List returns the current orders in insertion order.
func (s *Service) List(ctx context.Context) []entity.Order {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List")
	defer span.End()

	return s.store.List(ctx)
}

func (s *Service) buildConfirmURL(id string) string {
	return fmt.Sprintf("%s/orders/%s/confirm", s.publicURL, id)
}

// encodePNG renders content through the encoder, consulting the cache first.
// Cache trouble is logged and ignored; only encoder failures propagate.
func (s *Service) encodePNG(ctx context.Context, content string) ([]byte, error) {
	key := qrCacheKey(content, s.qrOpts)

	if s.cache != nil {
		if png, err := s.cache.Get(ctx, key); err == nil {
			return png, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			if s.logger != nil {
				s.logger.Warn("qr cache read failed", zap.Error(err))
			}
		}
	}

	png, err := s.encode(content, s.qrOpts)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, png, s.cacheTTL); err != nil {
			if s.logger != nil {
				s.logger.Warn("qr cache write failed", zap.Error(err))
			}
		}
	}
	return png, nil
}

func qrCacheKey(content string, opts qr.Options) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d|%d|%s|%s",
		content, opts.Level, opts.Size, opts.Margin, opts.Foreground, opts.Background)))
	return "qr:" + hex.EncodeToString(sum[:])
}

func (s *Service) publishEvent(ctx context.Context, event, id string, payload any) {
	if !s.publish || s.publisher == nil {
		return
	}
	value, err := json.Marshal(payload)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("marshal event", zap.String("event", event), zap.Error(err))
		}
		return
	}
	if err := s.publisher.Publish(ctx, event, []byte("order-"+id), value); err != nil {
		if s.logger != nil {
			s.logger.Error("publish event", zap.String("event", event), zap.Error(err))
		}
	}
}
