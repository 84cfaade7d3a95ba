package notification

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"foodhub/internal/auth"
	"foodhub/internal/domain"
	"foodhub/internal/eventbus"
	"foodhub/internal/infrastructure/metrics"
)

func withOperator(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := &auth.Claims{UserID: 1, Email: "ops@foodhub.local", Role: "ADMIN"}
		next(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}

func openStream(t *testing.T, ctx context.Context, url string) (*http.Response, *bufio.Reader) {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp, bufio.NewReader(resp.Body)
}

// readFrame returns the next non-empty line of the stream.
func readFrame(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if line = strings.TrimRight(line, "\n"); line != "" {
			return line
		}
	}
}

func TestStreamController_Unauthorized(t *testing.T) {
	bus := eventbus.New(zap.NewNop(), metrics.NewNop())
	controller := NewStreamController(bus, time.Hour, 8, zap.NewNop(), metrics.NewNop())

	rec := httptest.NewRecorder()
	controller.Stream(rec, httptest.NewRequest(http.MethodGet, "/api/admin/notifications/stream", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, bus.Len())
}

func TestStreamController_DeliversConnectedThenEvents(t *testing.T) {
	bus := eventbus.New(zap.NewNop(), metrics.NewNop())
	controller := NewStreamController(bus, time.Hour, 8, zap.NewNop(), metrics.NewNop())
	srv := httptest.NewServer(withOperator(controller.Stream))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	resp, reader := openStream(t, ctx, srv.URL)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Cache-Control"), "no-cache")
	assert.Equal(t, `data: {"type":"connected"}`, readFrame(t, reader))

	require.Eventually(t, func() bool { return bus.Len() == 1 }, time.Second, 5*time.Millisecond)

	name := "Ayşe"
	created := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	bus.Emit(domain.NewOrderEvent(domain.Order{ID: 42, Delivery: domain.Delivery{Name: &name}, CreatedAt: created}))

	frame := readFrame(t, reader)
	assert.True(t, strings.HasPrefix(frame, "data: "))
	assert.JSONEq(t,
		`{"type":"new_order","order":{"id":42,"total":0,"deliveryName":"Ayşe","createdAt":"2024-05-01T12:30:00Z"}}`,
		strings.TrimPrefix(frame, "data: "))
}

func TestStreamController_ClientDisconnectUnsubscribes(t *testing.T) {
	bus := eventbus.New(zap.NewNop(), metrics.NewNop())
	controller := NewStreamController(bus, time.Hour, 8, zap.NewNop(), metrics.NewNop())
	srv := httptest.NewServer(withOperator(controller.Stream))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	resp, reader := openStream(t, ctx, srv.URL)
	readFrame(t, reader)
	require.Eventually(t, func() bool { return bus.Len() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	resp.Body.Close()

	assert.Eventually(t, func() bool {
		return bus.Len() == 0 && controller.OpenConnections() == 0
	}, 2*time.Second, 10*time.Millisecond)

	// Emitting after the disconnect must not fail or block.
	bus.Emit(domain.NewOrderEvent(domain.Order{ID: 1}))
}

func TestStreamController_TwoOperatorsBothReceive(t *testing.T) {
	bus := eventbus.New(zap.NewNop(), metrics.NewNop())
	controller := NewStreamController(bus, time.Hour, 8, zap.NewNop(), metrics.NewNop())
	srv := httptest.NewServer(withOperator(controller.Stream))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	respA, readerA := openStream(t, ctx, srv.URL)
	defer respA.Body.Close()
	respB, readerB := openStream(t, ctx, srv.URL)
	defer respB.Body.Close()
	readFrame(t, readerA)
	readFrame(t, readerB)
	require.Eventually(t, func() bool { return bus.Len() == 2 }, time.Second, 5*time.Millisecond)

	bus.Emit(domain.NewOrderEvent(domain.Order{ID: 5}))

	assert.Contains(t, readFrame(t, readerA), `"id":5`)
	assert.Contains(t, readFrame(t, readerB), `"id":5`)
}

func TestStreamController_CloseEndsStreams(t *testing.T) {
	bus := eventbus.New(zap.NewNop(), metrics.NewNop())
	controller := NewStreamController(bus, time.Hour, 8, zap.NewNop(), metrics.NewNop())
	srv := httptest.NewServer(withOperator(controller.Stream))
	defer srv.Close()

	resp, reader := openStream(t, context.Background(), srv.URL)
	defer resp.Body.Close()
	readFrame(t, reader)
	require.Eventually(t, func() bool { return controller.OpenConnections() == 1 }, time.Second, 5*time.Millisecond)

	controller.Close()

	_, err := io.ReadAll(reader)
	assert.NoError(t, err)
	assert.Eventually(t, func() bool { return bus.Len() == 0 }, time.Second, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/notifications/stream", nil)
	withOperator(controller.Stream).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
