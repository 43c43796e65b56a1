package config

import (
	"strings"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.HTTP.Port != 3000 {
		t.Fatalf("expected default port 3000, got %d", cfg.HTTP.Port)
	}
	if cfg.PublicURL != "http://localhost:3000" {
		t.Fatalf("expected public url derived from port, got %s", cfg.PublicURL)
	}
	if cfg.QR.Level != "medium" || cfg.QR.Size != 256 || cfg.QR.Margin != 2 {
		t.Fatalf("unexpected QR defaults: %+v", cfg.QR)
	}
	if cfg.Cache.Driver != "noop" {
		t.Fatalf("cache must default to noop, got %s", cfg.Cache.Driver)
	}
	if cfg.Messaging.Driver != "noop" {
		t.Fatalf("messaging must default to noop, got %s", cfg.Messaging.Driver)
	}
}

func TestNewPublicURLTrimsTrailingSlash(t *testing.T) {
	t.Setenv("PUBLIC_URL", "https://sello.example.com/")

	cfg, err := New()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.PublicURL != "https://sello.example.com" {
		t.Fatalf("expected trimmed public url, got %s", cfg.PublicURL)
	}
}

func TestNewRejectsRelativePublicURL(t *testing.T) {
	t.Setenv("PUBLIC_URL", "sello.example.com")

	if _, err := New(); err == nil || !strings.Contains(err.Error(), "PUBLIC_URL") {
		t.Fatalf("expected PUBLIC_URL error, got %v", err)
	}
}

func TestNewRejectsUnknownQRLevel(t *testing.T) {
	t.Setenv("QR_LEVEL", "extreme")

	if _, err := New(); err == nil || !strings.Contains(err.Error(), "QR level") {
		t.Fatalf("expected QR level error, got %v", err)
	}
}

func TestNewNormalizesQRBounds(t *testing.T) {
	t.Setenv("QR_SIZE", "-10")
	t.Setenv("QR_MARGIN", "-1")

	cfg, err := New()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.QR.Size != 256 {
		t.Fatalf("expected size fallback 256, got %d", cfg.QR.Size)
	}
	if cfg.QR.Margin != 0 {
		t.Fatalf("expected margin clamped to 0, got %d", cfg.QR.Margin)
	}
}

func TestNewValidatesKafkaSettings(t *testing.T) {
	t.Setenv("MESSAGING_ENABLED", "true")
	t.Setenv("MESSAGING_DRIVER", "kafka")
	t.Setenv("KAFKA_TOPIC", "")

	if _, err := New(); err == nil || !strings.Contains(err.Error(), "KAFKA_TOPIC") {
		t.Fatalf("expected KAFKA_TOPIC error, got %v", err)
	}
}
