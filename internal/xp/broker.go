package xp

import (
	"sync"

	"go.uber.org/zap"

	"github.com/softswan/softswan/internal/progression"
	"github.com/softswan/softswan/internal/store"
)

// Change describes a user's XP total moving from Before to After.
type Change struct {
	User         string
	Before       int
	After        int
	Progress     progression.Progress
	Crossed      []progression.Tier
	Certificates []store.CertificateRecord
}

// Broker fans out Changes to in-process subscribers. Publish never blocks:
// a subscriber whose buffer is full misses the change.
type Broker struct {
	mu     sync.Mutex
	subs   map[int]chan Change
	nextID int
	closed bool
	logger *zap.Logger
}

// NewBroker creates a broker. A nil logger discards drop warnings.
func NewBroker(logger *zap.Logger) *Broker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broker{
		subs:   make(map[int]chan Change),
		logger: logger,
	}
}

// Subscribe registers a subscriber with the given buffer size. The returned
// cancel func unregisters it and closes the channel; it is safe to call more
// than once.
func (b *Broker) Subscribe(buffer int) (<-chan Change, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Change, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
}

// Publish delivers c to every subscriber with room in its buffer.
func (b *Broker) Publish(c Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for id, ch := range b.subs {
		select {
		case ch <- c:
		default:
			b.logger.Warn("dropping XP change for slow subscriber",
				zap.Int("subscriber", id),
				zap.String("user", c.User),
			)
		}
	}
}

// Close closes every subscriber channel. Later publishes are ignored.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
