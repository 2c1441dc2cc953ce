package listeners

import (
	"context"
	"fmt"
	"strconv"

	"pvb-admin/internal/entities"
	"pvb-admin/internal/events"
	"pvb-admin/pkg/eventbus"
	"pvb-admin/pkg/metrics"

	"go.uber.org/zap"
)

// OrderListener logs and counts order lifecycle events.
type OrderListener struct {
	logger *zap.Logger
}

func NewOrderListener(logger *zap.Logger) *OrderListener {
	return &OrderListener{logger: logger}
}

func (l *OrderListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.OrderSubmittedEventName, l.onSubmitted)
	bus.Subscribe(events.OrderStatusChangedEventName, l.onStatusChanged)
}

func (l *OrderListener) onSubmitted(_ context.Context, event eventbus.Event) error {
	e, ok := event.(events.OrderSubmittedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	metrics.OrdersSubmittedTotal.WithLabelValues(e.ChangeType).Inc()
	l.logger.Info("order submitted",
		zap.Uint64("order_id", e.OrderID),
		zap.String("ticket_id", e.TicketID),
		zap.String("change_type", e.ChangeType),
		zap.String("employee", e.EmployeeName),
		zap.String("submitted_by", e.SubmittedBy),
	)
	return nil
}

func (l *OrderListener) onStatusChanged(_ context.Context, event eventbus.Event) error {
	e, ok := event.(events.OrderStatusChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	metrics.OrderStatusChangesTotal.WithLabelValues(entities.NormalizeStatusLabel(e.To), strconv.FormatBool(e.Legal)).Inc()

	fields := []zap.Field{
		zap.Uint64("order_id", e.OrderID),
		zap.String("from", e.From),
		zap.String("to", e.To),
		zap.String("actor", e.Actor),
	}
	if !e.Legal {
		l.logger.Warn("order moved outside the workflow", fields...)
		return nil
	}
	l.logger.Info("order status changed", fields...)
	return nil
}
