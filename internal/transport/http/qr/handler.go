package qr

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/sello-app/sello/internal/dto"
	"github.com/sello-app/sello/internal/presentation/http/response"
	service "github.com/sello-app/sello/internal/service/qr"
	"github.com/sello-app/sello/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/sello-app/sello/transport/http/qr")

// Handler exposes the standalone text-to-QR endpoint.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a QR Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.POST("/qr", h.encode)
}

func (h *Handler) encode(c echo.Context) error {
	b := response.New(c)

	var payload struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("text must be a non-empty string", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "qr.encode")
	defer span.End()

	result, err := h.svc.Encode(ctx, payload.Text)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.EncodeResponse{
		Content:     result.Content,
		ImageBase64: result.ImageBase64,
		MimeType:    result.MimeType,
		Length:      result.Length,
	}).Build()
}
