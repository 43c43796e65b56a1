package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/sello-app/sello/internal/messaging"
	ordersvc "github.com/sello-app/sello/internal/service/order"
	"github.com/sello-app/sello/internal/worker"
)

var workerTracer = otel.Tracer("github.com/sello-app/sello/worker/order")

// Module registers order lifecycle worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewOrderCreatedHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
		fx.Annotate(
			NewOrderConfirmedHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewOrderCreatedHandler logs freshly created orders consumed off the bus.
func NewOrderCreatedHandler(logger *zap.Logger) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.created", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event ordersvc.OrderCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order created", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}
		logger.Info("order created event processed",
			zap.String("id", event.ID),
			zap.String("status", event.Status),
		)

		return nil
	}

	return worker.HandlerRegistration{
		Event:   ordersvc.EventOrderCreated,
		Handler: handler,
	}
}

// NewOrderConfirmedHandler logs first-time confirmations consumed off the bus.
func NewOrderConfirmedHandler(logger *zap.Logger) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.confirmed", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event ordersvc.OrderConfirmedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order confirmed", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}
		logger.Info("order confirmed event processed", zap.String("id", event.ID))

		return nil
	}

	return worker.HandlerRegistration{
		Event:   ordersvc.EventOrderConfirmed,
		Handler: handler,
	}
}
