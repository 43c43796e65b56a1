// Package qr exposes the standalone text-to-QR operation behind POST /qr.
// Unlike the order service it has no awareness of orders; it encodes whatever
// text the caller supplies.
package qr

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/sello-app/sello/internal/cache"
	"github.com/sello-app/sello/internal/config"
	qrenc "github.com/sello-app/sello/internal/qr"
	"github.com/sello-app/sello/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/sello-app/sello/service/qr")

// Result is the encoded image together with its transport metadata.
type Result struct {
	Content     string
	ImageBase64 string
	MimeType    string
	Length      int
}

// Service renders arbitrary text as QR PNGs with the configured defaults.
type Service struct {
	cache    cache.Store
	cacheTTL time.Duration
	logger   *zap.Logger
	opts     qrenc.Options
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Cache  cache.Store
	Config config.Config
	Logger *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		cache:    p.Cache,
		cacheTTL: p.Config.Cache.DefaultTTL,
		logger:   p.Logger,
		opts: qrenc.Options{
			Level:      p.Config.QR.Level,
			Size:       p.Config.QR.Size,
			Margin:     p.Config.QR.Margin,
			Foreground: p.Config.QR.Foreground,
			Background: p.Config.QR.Background,
		},
	}
}

// Encode turns text into a base64 PNG. Empty text is the caller's fault;
// capacity overflows surface as unprocessable, never as a degraded image.
func (s *Service) Encode(ctx context.Context, text string) (Result, error) {
	ctx, span := serviceTracer.Start(ctx, "QRService.Encode")
	defer span.End()

	if strings.TrimSpace(text) == "" {
		return Result{}, errorbank.BadRequest("text must be a non-empty string")
	}

	png, err := s.cachedEncode(ctx, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "qr encoding failed")
		return Result{}, errorbank.Unprocessable("could not generate qr code", errorbank.WithCause(err))
	}

	return Result{
		Content:     text,
		ImageBase64: base64.StdEncoding.EncodeToString(png),
		MimeType:    qrenc.MimeType,
		Length:      len(png),
	}, nil
}

func (s *Service) cachedEncode(ctx context.Context, text string) ([]byte, error) {
	key := s.cacheKey(text)

	if s.cache != nil {
		if png, err := s.cache.Get(ctx, key); err == nil {
			return png, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			if s.logger != nil {
				s.logger.Warn("qr cache read failed", zap.Error(err))
			}
		}
	}

	png, err := qrenc.Encode(text, s.opts)
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

func (s *Service) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d|%d|%s|%s",
		text, s.opts.Level, s.opts.Size, s.opts.Margin, s.opts.Foreground, s.opts.Background)))
	return "qr:" + hex.EncodeToString(sum[:])
}
