package live

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/example/orbita/internal/ports/secondary"
)

// ErrSlowSubscriber is returned when a subscriber's buffer stays full for
// longer than its send timeout.
var ErrSlowSubscriber = errors.New("subscriber buffer full")

// ErrClosed is returned when delivering to a closed subscriber.
var ErrClosed = errors.New("subscriber closed")

// ChannelSubscriber buffers updates for a consumer goroutine such as an
// HTTP stream. Deliver never blocks longer than the send timeout.
type ChannelSubscriber struct {
	updates     chan secondary.LiveUpdate
	done        chan struct{}
	once        sync.Once
	sendTimeout time.Duration
}

// NewChannelSubscriber creates a subscriber with the given buffer size.
func NewChannelSubscriber(buffer int, sendTimeout time.Duration) *ChannelSubscriber {
	return &ChannelSubscriber{
		updates:     make(chan secondary.LiveUpdate, buffer),
		done:        make(chan struct{}),
		sendTimeout: sendTimeout,
	}
}

// Updates is the consumer side. It is never closed; watch Done instead.
func (c *ChannelSubscriber) Updates() <-chan secondary.LiveUpdate {
	return c.updates
}

// Done is closed by Close.
func (c *ChannelSubscriber) Done() <-chan struct{} {
	return c.done
}

// Close stops further deliveries. Safe to call more than once.
func (c *ChannelSubscriber) Close() {
	c.once.Do(func() { close(c.done) })
}

// Deliver enqueues update, dropping it if the buffer stays full.
func (c *ChannelSubscriber) Deliver(ctx context.Context, update secondary.LiveUpdate) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	timer := time.NewTimer(c.sendTimeout)
	defer timer.Stop()

	select {
	case c.updates <- update:
		return nil
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrSlowSubscriber
	}
}

var _ Subscriber = (*ChannelSubscriber)(nil)
