package notifyclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"foodhub/internal/domain"
)

const streamPath = "/api/admin/notifications/stream"

var (
	errStreamClosed = errors.New("stream closed by server")
	errStreamIdle   = errors.New("stream silent past idle timeout")
)

// Effect is one reaction to a new order. Effects never see each other's
// results; a failing or panicking effect only affects itself.
type Effect interface {
	Name() string
	Apply(ctx context.Context, event domain.Event) error
}

type Client struct {
	cfg     Config
	http    *http.Client
	effects []Effect
	logger  *zap.Logger

	onState func(State)

	mu    sync.Mutex
	state State

	running sync.WaitGroup
}

type Option func(*Client)

// WithStateHook reports every state change. The hook runs on the
// connection goroutine and must not block.
func WithStateHook(f func(State)) Option {
	return func(c *Client) { c.onState = f }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func NewClient(cfg Config, effects []Effect, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		cfg:     cfg,
		effects: effects,
		logger:  logger,
		state:   StateDisconnected,
		http: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: 15 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Run keeps a stream open until ctx ends. Every lost or refused connection
// is retried after the same fixed delay, without limit. Effects still
// running when ctx ends are waited for.
func (c *Client) Run(ctx context.Context) error {
	defer c.running.Wait()

	for {
		err := c.connect(ctx)
		c.setState(StateDisconnected)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("notification stream lost",
			zap.Error(err),
			zap.Duration("retryIn", c.cfg.ReconnectDelay),
		)

		timer := time.NewTimer(c.cfg.ReconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) connect(ctx context.Context) error {
	c.setState(StateConnecting)

	// The server writes a keepalive comment well inside IdleTimeout, so a
	// silent stream is a dead connection that TCP has not noticed yet.
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var idle atomic.Bool
	watchdog := time.AfterFunc(c.idleTimeout(), func() {
		idle.Store(true)
		cancel()
	})
	defer watchdog.Stop()

	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, c.cfg.ServerURL+streamPath, nil)
	if err != nil {
		return fmt.Errorf("building stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("opening stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("stream refused with status %d", resp.StatusCode)
	}

	c.setState(StateConnected)

	frames := NewFrameReader(activityReader{r: resp.Body, onRead: func() { watchdog.Reset(c.idleTimeout()) }})
	for {
		data, err := frames.Next()
		if err != nil {
			if idle.Load() {
				return errStreamIdle
			}
			if errors.Is(err, io.EOF) {
				return errStreamClosed
			}
			return fmt.Errorf("reading stream: %w", err)
		}
		c.handleFrame(ctx, data)
	}
}

func (c *Client) handleFrame(ctx context.Context, data []byte) {
	var event domain.Event
	if err := json.Unmarshal(data, &event); err != nil {
		c.logger.Warn("undecodable frame", zap.Error(err), zap.ByteString("data", data))
		return
	}

	switch event.Type {
	case domain.EventConnected:
		c.logger.Info("notification stream ready")
	case domain.EventNewOrder:
		c.dispatch(ctx, event)
	default:
		c.logger.Debug("ignoring frame", zap.String("type", string(event.Type)))
	}
}

func (c *Client) dispatch(ctx context.Context, event domain.Event) {
	var orderID uint
	if event.Order != nil {
		orderID = event.Order.ID
	}

	for _, effect := range c.effects {
		c.running.Add(1)
		go func(effect Effect) {
			defer c.running.Done()
			logger := c.logger.With(zap.String("effect", effect.Name()), zap.Uint("orderId", orderID))

			effectCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.effectTimeout())
			defer cancel()

			if err := runEffect(effectCtx, effect, event); err != nil {
				logger.Error("new order effect failed", zap.Error(err))
				return
			}
			logger.Debug("new order effect done")
		}(effect)
	}
}

func (c *Client) idleTimeout() time.Duration {
	if c.cfg.IdleTimeout > 0 {
		return c.cfg.IdleTimeout
	}
	return 65 * time.Second
}

// activityReader calls onRead whenever bytes arrive, keepalives included.
type activityReader struct {
	r      io.Reader
	onRead func()
}

func (a activityReader) Read(p []byte) (int, error) {
	n, err := a.r.Read(p)
	if n > 0 {
		a.onRead()
	}
	return n, err
}

func (c *Client) effectTimeout() time.Duration {
	if c.cfg.EffectTimeout > 0 {
		return c.cfg.EffectTimeout
	}
	return 10 * time.Second
}

func runEffect(ctx context.Context, effect Effect, event domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return effect.Apply(ctx, event)
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	changed := c.state != s
	c.state = s
	c.mu.Unlock()

	if !changed {
		return
	}
	c.logger.Info("notification client state", zap.Stringer("state", s))
	if c.onState != nil {
		c.onState(s)
	}
}
