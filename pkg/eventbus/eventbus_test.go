package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type pinged struct{}

func (pinged) Name() string { return "pinged" }

func TestPublishReachesEverySubscriber(t *testing.T) {
	bus := New(zap.NewNop())
	var calls atomic.Int32

	bus.Subscribe("pinged", func(ctx context.Context, e Event) error {
		calls.Add(1)
		return nil
	})
	bus.Subscribe("pinged", func(ctx context.Context, e Event) error {
		calls.Add(1)
		return errors.New("listener failure is logged, not propagated")
	})
	bus.Subscribe("pinged", func(ctx context.Context, e Event) error {
		panic("recovered")
	})
	bus.Subscribe("other", func(ctx context.Context, e Event) error {
		calls.Add(100)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, pinged{})
	cancel()
	bus.Wait()

	assert.Equal(t, int32(2), calls.Load())
}
