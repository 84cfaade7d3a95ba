package eventbus

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"foodhub/internal/infrastructure/metrics"
)

// Listener receives every payload emitted while it is subscribed. It runs
// on the emitting goroutine, so it must not block and must not call Emit.
type Listener func(payload any) error

// Handle identifies one subscription.
type Handle uint64

type entry struct {
	handle   Handle
	listener Listener
}

// Bus is the process-wide publish/subscribe registry between the request
// handlers that produce events and the open operator streams. It keeps
// nothing: a payload emitted with no listeners is dropped.
type Bus struct {
	mu      sync.RWMutex
	next    Handle
	entries []entry // copy-on-write, never mutated in place
	active  map[Handle]struct{}

	// emitMu gives every listener the same total order of events even when
	// several requests emit at once.
	emitMu sync.Mutex

	logger  *zap.Logger
	metrics *metrics.Metrics
}

func New(logger *zap.Logger, m *metrics.Metrics) *Bus {
	return &Bus{
		active:  make(map[Handle]struct{}),
		logger:  logger,
		metrics: m,
	}
}

func (b *Bus) Subscribe(listener Listener) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	h := b.next

	entries := make([]entry, len(b.entries), len(b.entries)+1)
	copy(entries, b.entries)
	b.entries = append(entries, entry{handle: h, listener: listener})
	b.active[h] = struct{}{}

	b.metrics.Subscribers.Set(float64(len(b.entries)))
	return h
}

// Unsubscribe removes the listener behind h. Unknown or already removed
// handles are ignored, so callers may unsubscribe more than once.
func (b *Bus) Unsubscribe(h Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.active[h]; !ok {
		return
	}
	delete(b.active, h)

	entries := make([]entry, 0, len(b.entries)-1)
	for _, e := range b.entries {
		if e.handle != h {
			entries = append(entries, e)
		}
	}
	b.entries = entries

	b.metrics.Subscribers.Set(float64(len(b.entries)))
}

// Emit delivers payload to the listeners registered when it starts. A
// listener removed before its turn is skipped. One listener failing, by
// error or panic, does not keep the payload from the rest.
func (b *Bus) Emit(payload any) {
	b.emitMu.Lock()
	defer b.emitMu.Unlock()

	b.mu.RLock()
	snapshot := b.entries
	b.mu.RUnlock()

	b.metrics.EventsEmitted.Inc()
	if len(snapshot) == 0 {
		b.logger.Debug("event dropped, no listeners")
		return
	}

	for _, e := range snapshot {
		if !b.isActive(e.handle) {
			continue
		}
		if err := invoke(e.listener, payload); err != nil {
			b.metrics.ListenerFailures.Inc()
			b.logger.Error("event listener failed", zap.Uint64("handle", uint64(e.handle)), zap.Error(err))
		}
	}
}

func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

func (b *Bus) isActive(h Handle) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.active[h]
	return ok
}

func invoke(l Listener, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panic: %v", r)
		}
	}()
	return l(payload)
}
