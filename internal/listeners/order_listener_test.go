package listeners

import (
	"context"
	"testing"

	"pvb-admin/internal/events"
	"pvb-admin/pkg/eventbus"
	"pvb-admin/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestOrderListenerCountsEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	bus := eventbus.New(logger)
	NewOrderListener(logger).Register(bus)

	submitted := metrics.OrdersSubmittedTotal.WithLabelValues("Austritt")
	illegal := metrics.OrderStatusChangesTotal.WithLabelValues("pending", "false")
	beforeSubmitted, beforeIllegal := testutil.ToFloat64(submitted), testutil.ToFloat64(illegal)

	ctx := context.Background()
	bus.Publish(ctx, events.OrderSubmittedEvent{OrderID: 7, TicketID: "JU-7", ChangeType: "Austritt"})
	bus.Publish(ctx, events.OrderStatusChangedEvent{OrderID: 7, From: "completed", To: "pending", Legal: false})
	bus.Wait()

	assert.Equal(t, beforeSubmitted+1, testutil.ToFloat64(submitted))
	assert.Equal(t, beforeIllegal+1, testutil.ToFloat64(illegal))
	assert.Equal(t, 1, logs.FilterMessage("order submitted").Len())
	assert.Equal(t, 1, logs.FilterMessage("order moved outside the workflow").Len())
}
