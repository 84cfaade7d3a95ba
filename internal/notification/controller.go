package notification

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"foodhub/internal/auth"
	"foodhub/internal/infrastructure/metrics"
)

// responseTransport adapts a ResponseWriter to Transport through
// http.ResponseController, which sees through middleware wrappers.
type responseTransport struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func (t responseTransport) Write(p []byte) (int, error) {
	return t.w.Write(p)
}

func (t responseTransport) Flush() error {
	return t.rc.Flush()
}

type StreamController struct {
	bus        Subscriber
	keepalive  time.Duration
	bufferSize int
	logger     *zap.Logger
	metrics    *metrics.Metrics

	mu    sync.Mutex
	conns map[*Connection]struct{}
}

func NewStreamController(bus Subscriber, keepalive time.Duration, bufferSize int, logger *zap.Logger, m *metrics.Metrics) *StreamController {
	return &StreamController{
		bus:        bus,
		keepalive:  keepalive,
		bufferSize: bufferSize,
		logger:     logger,
		metrics:    m,
		conns:      make(map[*Connection]struct{}),
	}
}

// Stream holds the request open and pushes dashboard events until the
// client goes away. Only operator sessions get a stream.
func (c *StreamController) Stream(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	connID := uuid.New().String()
	logger := c.logger.With(zap.Uint("operatorId", claims.UserID))

	rc := http.NewResponseController(w)
	// The server's WriteTimeout is meant for ordinary requests.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		logger.Debug("write deadline not adjustable", zap.Error(err))
	}

	conn := NewConnection(connID, responseTransport{w: w, rc: rc}, c.bus, c.keepalive, c.bufferSize, logger, c.metrics)
	if !c.track(conn) {
		http.Error(w, `{"error":"shutting down"}`, http.StatusServiceUnavailable)
		return
	}
	defer c.untrack(conn)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := conn.Start(); err != nil {
		logger.Warn("notification stream failed to start", zap.Error(err))
		conn.Stop(ReasonWriteError)
		return
	}

	conn.Run(r.Context())
}

// Close stops every open stream. Registered as a server shutdown hook,
// since held streams never go idle on their own.
func (c *StreamController) Close() {
	c.mu.Lock()
	conns := make([]*Connection, 0, len(c.conns))
	for conn := range c.conns {
		conns = append(conns, conn)
	}
	c.conns = nil
	c.mu.Unlock()

	for _, conn := range conns {
		conn.Stop(ReasonShutdown)
	}
}

func (c *StreamController) OpenConnections() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.conns)
}

func (c *StreamController) track(conn *Connection) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conns == nil {
		return false
	}
	c.conns[conn] = struct{}{}
	return true
}

func (c *StreamController) untrack(conn *Connection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conns != nil {
		delete(c.conns, conn)
	}
}
