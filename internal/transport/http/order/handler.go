package order

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sello-app/sello/internal/dto"
	"github.com/sello-app/sello/internal/presentation/http/response"
	service "github.com/sello-app/sello/internal/service/order"
	"github.com/sello-app/sello/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/sello-app/sello/transport/http/order")

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance. The confirm route accepts
// GET and POST: scanned QR links arrive as GETs, API clients may POST.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/orders")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id/confirm", h.confirm)
	g.POST("/:id/confirm", h.confirm)
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload struct {
		Description string `json:"description"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("description must be a non-empty string", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create")
	defer span.End()

	result, err := h.svc.CreateWithQR(ctx, payload.Description)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.CreateOrderResponse{
		Order: dto.FromOrder(result.Order),
		QR: dto.QRPayload{
			Content:     result.QR.Content,
			ImageBase64: result.QR.ImageBase64,
			MimeType:    result.QR.MimeType,
		},
	}).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list")
	defer span.End()

	orders := h.svc.List(ctx)

	return b.WithData(dto.OrderListResponse{
		Total: len(orders),
		Data:  dto.FromOrders(orders),
	}).Build()
}

func (h *Handler) confirm(c echo.Context) error {
	b := response.New(c)

	id := c.Param("id")
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.confirm", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	order, alreadyConfirmed, err := h.svc.Confirm(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.ConfirmOrderResponse{
		Order:            dto.FromOrder(order),
		AlreadyConfirmed: alreadyConfirmed,
	}).Build()
}
