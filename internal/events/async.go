package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/prohmpiriya/sportify-web/pkg/logger"
)

const defaultPublishTimeout = 5 * time.Second

// AsyncPublisher publishes events in the background so activity events
// never fail a user action. Close waits for in-flight publishes before
// closing the underlying publisher.
type AsyncPublisher struct {
	publisher Publisher
	timeout   time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewAsyncPublisher wraps p
func NewAsyncPublisher(p Publisher) *AsyncPublisher {
	return &AsyncPublisher{publisher: p, timeout: defaultPublishTimeout}
}

// Go publishes e in the background and only logs a failure. Events sent
// after Close are dropped.
func (a *AsyncPublisher) Go(e *Event) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		logger.Warn("activity event dropped after shutdown",
			zap.String("event_type", string(e.Type)),
			zap.String("event_id", e.ID),
		)
		return
	}
	a.wg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.publisher.Publish(ctx, e); err != nil {
			logger.Warn("failed to publish activity event",
				zap.String("event_type", string(e.Type)),
				zap.String("event_id", e.ID),
				zap.Error(err),
			)
		}
	}()
}

// Close stops accepting events, drains in-flight publishes and closes the
// underlying publisher
func (a *AsyncPublisher) Close() error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	a.wg.Wait()
	return a.publisher.Close()
}
