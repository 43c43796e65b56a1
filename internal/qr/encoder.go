// Package qr turns arbitrary text into PNG image bytes. It is pure and
// stateless; callers own transport concerns such as base64 encoding.
package qr

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// MimeType identifies the raster format produced by Encode.
const MimeType = "image/png"

// Options control the redundancy, geometry, and palette of the symbol.
// The zero value is not usable; start from DefaultOptions.
type Options struct {
	// Level selects the error-correction level: low, medium, high, highest.
	Level string
	// Size is the edge length of the output image in pixels.
	Size int
	// Margin toggles the quiet zone around the code; zero disables it.
	Margin int
	// Foreground and Background are #RRGGBB or #RRGGBBAA hex colors.
	Foreground string
	Background string
}

// DefaultOptions mirror the service defaults: medium redundancy, 256px,
// quiet zone on, opaque black on white.
func DefaultOptions() Options {
	return Options{
		Level:      "medium",
		Size:       256,
		Margin:     2,
		Foreground: "#000000",
		Background: "#FFFFFF",
	}
}

// Encode renders content as a QR PNG. It fails when the content exceeds the
// symbol capacity for the chosen level or when an option is malformed; the
// failure is always reported, never silently degraded.
func Encode(content string, opts Options) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qr: content is required")
	}

	level, err := recoveryLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	code, err := qrcode.New(content, level)
	if err != nil {
		return nil, fmt.Errorf("qr: build symbol: %w", err)
	}

	if opts.Foreground != "" {
		fg, err := parseHexColor(opts.Foreground)
		if err != nil {
			return nil, fmt.Errorf("qr: foreground: %w", err)
		}
		code.ForegroundColor = fg
	}
	if opts.Background != "" {
		bg, err := parseHexColor(opts.Background)
		if err != nil {
			return nil, fmt.Errorf("qr: background: %w", err)
		}
		code.BackgroundColor = bg
	}
	code.DisableBorder = opts.Margin <= 0

	size := opts.Size
	if size <= 0 {
		size = DefaultOptions().Size
	}

	png, err := code.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("qr: render png: %w", err)
	}
	return png, nil
}

func recoveryLevel(name string) (qrcode.RecoveryLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "medium":
		return qrcode.Medium, nil
	case "low":
		return qrcode.Low, nil
	case "high":
		return qrcode.High, nil
	case "highest":
		return qrcode.Highest, nil
	default:
		return qrcode.Medium, fmt.Errorf("qr: unknown error-correction level %q", name)
	}
}

func parseHexColor(s string) (color.Color, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(raw) != 6 && len(raw) != 8 {
		return nil, fmt.Errorf("invalid hex color %q", s)
	}

	v, err := strconv.ParseUint(raw, 16, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid hex color %q", s)
	}

	c := color.RGBA{A: 0xFF}
	if len(raw) == 8 {
		c.A = uint8(v)
		v >>= 8
	}
	c.B = uint8(v)
	c.G = uint8(v >> 8)
	c.R = uint8(v >> 16)
	return c, nil
}
