package notification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"foodhub/internal/domain"
	"foodhub/internal/eventbus"
	"foodhub/internal/infrastructure/metrics"
)

var (
	errSlowConsumer = errors.New("outbound buffer full")
	errStopped      = errors.New("connection already stopped")
)

// Subscriber is the part of the event bus a connection needs.
type Subscriber interface {
	Subscribe(listener eventbus.Listener) eventbus.Handle
	Unsubscribe(h eventbus.Handle)
}

// Transport is the held response: bytes go out through Write and reach the
// client on Flush.
type Transport interface {
	io.Writer
	Flush() error
}

const (
	ReasonClientGone   = "client_gone"
	ReasonWriteError   = "write_error"
	ReasonSlowConsumer = "slow_consumer"
	ReasonShutdown     = "shutdown"
)

// Connection is one operator's open stream. The bus listener only queues
// frames; Run owns every write to the transport.
type Connection struct {
	id        string
	transport Transport
	bus       Subscriber
	keepalive time.Duration
	outbound  chan []byte
	done      chan struct{}

	stopOnce sync.Once
	mu       sync.Mutex
	handle   eventbus.Handle
	stopped  bool
	reason   string

	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewConnection(
	id string,
	transport Transport,
	bus Subscriber,
	keepalive time.Duration,
	bufferSize int,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Connection {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Connection{
		id:        id,
		transport: transport,
		bus:       bus,
		keepalive: keepalive,
		outbound:  make(chan []byte, bufferSize),
		done:      make(chan struct{}),
		logger:    logger.With(zap.String("connectionId", id)),
		metrics:   m,
	}
}

// Start greets the client and registers with the bus. Events emitted
// before Start returns are not seen by this connection.
func (c *Connection) Start() error {
	frame, err := EncodeFrame(domain.ConnectedEvent())
	if err != nil {
		return err
	}
	if err := c.write(frame); err != nil {
		return fmt.Errorf("sending connected frame: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return errStopped
	}
	c.handle = c.bus.Subscribe(c.enqueue)
	c.metrics.StreamConnections.Inc()
	c.logger.Info("notification stream opened")
	return nil
}

// Run pumps queued events and keepalives until ctx is cancelled, a write
// fails or Stop is called elsewhere. It always leaves the connection
// stopped.
func (c *Connection) Run(ctx context.Context) {
	ticker := time.NewTicker(c.keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.Stop(ReasonClientGone)
			return
		case <-c.done:
			return
		case frame := <-c.outbound:
			if err := c.write(frame); err != nil {
				c.logger.Warn("stream write failed", zap.Error(err))
				c.Stop(ReasonWriteError)
				return
			}
		case <-ticker.C:
			if err := c.write(keepaliveFrame); err != nil {
				c.logger.Warn("keepalive write failed", zap.Error(err))
				c.Stop(ReasonWriteError)
				return
			}
		}
	}
}

// Stop tears the connection down. Only the first call does anything; the
// reason it was given is kept.
func (c *Connection) Stop(reason string) {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.stopped = true
		handle := c.handle
		c.mu.Unlock()

		c.reason = reason
		close(c.done)
		if handle != 0 {
			c.bus.Unsubscribe(handle)
			c.metrics.StreamConnections.Dec()
		}
		c.metrics.StreamDropped.WithLabelValues(reason).Inc()
		c.logger.Info("notification stream closed", zap.String("reason", reason))
	})
}

func (c *Connection) Done() <-chan struct{} {
	return c.done
}

func (c *Connection) Reason() string {
	select {
	case <-c.done:
		return c.reason
	default:
		return ""
	}
}

func (c *Connection) enqueue(payload any) error {
	frame, err := EncodeFrame(payload)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return nil
	case c.outbound <- frame:
		return nil
	default:
		c.Stop(ReasonSlowConsumer)
		return fmt.Errorf("connection %s: %w", c.id, errSlowConsumer)
	}
}

func (c *Connection) write(frame []byte) error {
	if _, err := c.transport.Write(frame); err != nil {
		return err
	}
	return c.transport.Flush()
}
