// Package notify fans annotation changes out to subscribers. The SSE
// endpoint subscribes here so map clients can refresh markers and the
// annotation list without polling.
package notify

import (
	"context"
	"sync"

	"github.com/tienyuan-huang/election/internal/adapters/repository"
)

// Default broadcaster configuration constants.
const defaultBufferSize = 16

// Broadcaster delivers repository changes to any number of subscribers.
// Delivery is best-effort: a subscriber that cannot keep up drops events
// rather than blocking the mutation path.
type Broadcaster struct {
	mu         sync.RWMutex
	subs       map[chan repository.Change]struct{}
	bufferSize int
	closed     bool
}

// New creates a Broadcaster with configuration options.
func New(opts ...Option) *Broadcaster {
	b := &Broadcaster{
		subs:       make(map[chan repository.Change]struct{}),
		bufferSize: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Notify implements repository.Notifier.
func (b *Broadcaster) Notify(ctx context.Context, c repository.Change) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for ch := range b.subs {
		select {
		case ch <- c:
		default:
			// Slow subscriber; drop rather than stall the writer.
		}
	}
}

// Subscribe registers a listener. The returned cancel func must be called
// to release the channel; the channel closes on cancel or Close.
func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan repository.Change, func()) {
	ch := make(chan repository.Change, b.bufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if _, ok := b.subs[ch]; ok {
				delete(b.subs, ch)
				close(ch)
			}
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

// SubscriberCount returns the number of active subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close shuts the broadcaster down and closes all subscriber channels.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	for ch := range b.subs {
		close(ch)
		delete(b.subs, ch)
	}
	b.closed = true
	return nil
}
