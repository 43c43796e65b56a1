package qr

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sello-app/sello/internal/cache"
	"github.com/sello-app/sello/internal/config"
	"github.com/sello-app/sello/pkg/errorbank"
)

type fakeCache struct {
	data map[string][]byte
	sets int
	gets int
	hits int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	f.gets++
	if v, ok := f.data[key]; ok {
		f.hits++
		return v, nil
	}
	return nil, cache.ErrCacheMiss
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.sets++
	f.data[key] = value
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func newTestService(store cache.Store) *Service {
	return NewService(Params{
		Cache: store,
		Config: config.Config{
			QR: config.QR{
				Level:      "medium",
				Size:       128,
				Margin:     2,
				Foreground: "#000000",
				Background: "#FFFFFF",
			},
			Cache: config.Cache{DefaultTTL: time.Minute},
		},
		Logger: zap.NewNop(),
	})
}

func TestEncodeText(t *testing.T) {
	svc := newTestService(nil)

	result, err := svc.Encode(context.Background(), "GCABA-12345")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Content != "GCABA-12345" {
		t.Fatalf("unexpected content %q", result.Content)
	}
	if result.MimeType != "image/png" {
		t.Fatalf("expected image/png, got %s", result.MimeType)
	}
	png, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}
	if result.Length != len(png) || result.Length == 0 {
		t.Fatalf("length %d does not match decoded payload %d", result.Length, len(png))
	}
}

func TestEncodeEmptyText(t *testing.T) {
	svc := newTestService(nil)

	for _, text := range []string{"", "  "} {
		_, err := svc.Encode(context.Background(), text)
		if errorbank.From(err).Kind() != errorbank.KindBadRequest {
			t.Fatalf("text %q: expected bad_request, got %v", text, err)
		}
	}
}

func TestEncodeOverCapacity(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.Encode(context.Background(), strings.Repeat("a", 8000))
	if errorbank.From(err).Kind() != errorbank.KindUnprocessableEntity {
		t.Fatalf("expected unprocessable_entity, got %v", err)
	}
}

func TestEncodeUsesCache(t *testing.T) {
	store := newFakeCache()
	svc := newTestService(store)
	ctx := context.Background()

	first, err := svc.Encode(ctx, "repetido")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if store.sets != 1 {
		t.Fatalf("expected one cache write, got %d", store.sets)
	}

	second, err := svc.Encode(ctx, "repetido")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if store.hits != 1 {
		t.Fatalf("expected a cache hit on the second call, got %d", store.hits)
	}
	if first.ImageBase64 != second.ImageBase64 {
		t.Fatalf("cached payload differs from the original")
	}
}
