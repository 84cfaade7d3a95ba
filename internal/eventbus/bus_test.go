package eventbus

import (
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"foodhub/internal/domain"
	"foodhub/internal/infrastructure/metrics"
)

func newTestBus() (*Bus, *metrics.Metrics) {
	m := metrics.NewNop()
	return New(zap.NewNop(), m), m
}

// recorder collects payloads delivered to one listener.
type recorder struct {
	mu       sync.Mutex
	payloads []any
}

func (r *recorder) listen(payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
	return nil
}

func (r *recorder) got() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.payloads...)
}

func TestEmit_DeliversInOrderWhileSubscribed(t *testing.T) {
	bus, _ := newTestBus()

	early := &recorder{}
	late := &recorder{}

	hEarly := bus.Subscribe(early.listen)
	bus.Emit(1)
	hLate := bus.Subscribe(late.listen)
	bus.Emit(2)
	bus.Emit(3)
	bus.Unsubscribe(hEarly)
	bus.Emit(4)
	bus.Unsubscribe(hLate)
	bus.Emit(5)

	assert.Equal(t, []any{1, 2, 3}, early.got())
	assert.Equal(t, []any{2, 3, 4}, late.got())
	assert.Equal(t, 0, bus.Len())
}

func TestEmit_NoListenersDropsPayload(t *testing.T) {
	bus, m := newTestBus()

	assert.NotPanics(t, func() { bus.Emit("nobody home") })
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsEmitted))
}

func TestEmit_FailingListenerDoesNotBlockOthers(t *testing.T) {
	bus, m := newTestBus()

	before := &recorder{}
	after := &recorder{}

	bus.Subscribe(before.listen)
	bus.Subscribe(func(payload any) error { return errors.New("write failed") })
	bus.Subscribe(func(payload any) error { panic("listener bug") })
	bus.Subscribe(after.listen)

	bus.Emit("new_order")

	assert.Equal(t, []any{"new_order"}, before.got())
	assert.Equal(t, []any{"new_order"}, after.got())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ListenerFailures))
}

func TestUnsubscribe_DuringEmitSkipsRemovedListener(t *testing.T) {
	bus, _ := newTestBus()

	second := &recorder{}
	var secondHandle Handle

	bus.Subscribe(func(payload any) error {
		bus.Unsubscribe(secondHandle)
		return nil
	})
	secondHandle = bus.Subscribe(second.listen)

	assert.NotPanics(t, func() { bus.Emit("first") })
	assert.Empty(t, second.got())
	assert.Equal(t, 1, bus.Len())
}

func TestUnsubscribe_SelfDuringEmit(t *testing.T) {
	bus, _ := newTestBus()

	calls := 0
	var h Handle
	h = bus.Subscribe(func(payload any) error {
		calls++
		bus.Unsubscribe(h)
		return nil
	})

	bus.Emit(1)
	bus.Emit(2)

	assert.Equal(t, 1, calls)
}

func TestUnsubscribe_IsIdempotent(t *testing.T) {
	bus, m := newTestBus()

	h := bus.Subscribe(func(any) error { return nil })
	bus.Subscribe(func(any) error { return nil })

	bus.Unsubscribe(h)
	bus.Unsubscribe(h)
	bus.Unsubscribe(Handle(999))

	assert.Equal(t, 1, bus.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Subscribers))
}

func TestEmit_TwoConnectionsScenario(t *testing.T) {
	bus, _ := newTestBus()

	a := &recorder{}
	b := &recorder{}
	hA := bus.Subscribe(a.listen)
	bus.Subscribe(b.listen)

	event := domain.NewOrderEvent(domain.Order{ID: 7})
	bus.Emit(event)

	require.Len(t, a.got(), 1)
	require.Len(t, b.got(), 1)
	assert.Equal(t, a.got()[0], b.got()[0])

	bus.Unsubscribe(hA)
	bus.Emit(event)

	assert.Len(t, a.got(), 1)
	assert.Len(t, b.got(), 2)
}

func TestBus_ConcurrentSubscribeUnsubscribeEmit(t *testing.T) {
	bus, _ := newTestBus()

	stable := &recorder{}
	bus.Subscribe(stable.listen)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				h := bus.Subscribe(func(any) error { return nil })
				bus.Unsubscribe(h)
			}
		}()
	}

	const emits = 500
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < emits; i++ {
			bus.Emit(i)
		}
	}()
	wg.Wait()

	got := stable.got()
	require.Len(t, got, emits)
	for i, p := range got {
		assert.Equal(t, i, p)
	}
	assert.Equal(t, 1, bus.Len())
}
