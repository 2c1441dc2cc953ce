package eventbus

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const listenerTimeout = time.Minute

type Event interface {
	Name() string
}

type Listener func(ctx context.Context, event Event) error

// Bus fans events out to listeners, each on its own goroutine.
type Bus struct {
	listeners map[string][]Listener
	mu        sync.RWMutex
	inflight  sync.WaitGroup
	logger    *zap.Logger
}

func New(logger *zap.Logger) *Bus {
	return &Bus{
		listeners: make(map[string][]Listener),
		logger:    logger,
	}
}

func (b *Bus) Subscribe(eventName string, listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[eventName] = append(b.listeners[eventName], listener)
}

// Publish does not block. Listener contexts are detached from ctx, since the
// publishing request usually finishes first, but keep its values.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	listeners := b.listeners[event.Name()]
	b.mu.RUnlock()

	for _, listener := range listeners {
		b.inflight.Add(1)
		go func(l Listener) {
			defer b.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("event listener panicked", zap.String("event", event.Name()), zap.Any("panic", r))
				}
			}()

			listenerCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), listenerTimeout)
			defer cancel()

			if err := l(listenerCtx, event); err != nil {
				b.logger.Error("event listener failed",
					zap.String("event", event.Name()),
					zap.Error(err),
				)
			}
		}(listener)
	}
}

// Wait blocks until every listener started so far has returned.
func (b *Bus) Wait() {
	b.inflight.Wait()
}
