// Package gateway funnels every call to the generation backend through one
// bounded-concurrency FIFO queue with retries and a caller-side timeout.
package gateway

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"deepdive/interview/internal/llm"
)

// Error kinds surfaced to callers. Every caller has a fallback for each.
const (
	CodeUnavailable = "unavailable"
	CodeTimeout     = "timeout"
	CodeBackend     = "backend_error"
)

// Error is the outcome type for failed gateway calls.
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "gateway " + e.Code + ": " + e.Err.Error()
	}
	return "gateway " + e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// errCode extracts the gateway error code, or "" for non-gateway errors.
func errCode(err error) string {
	if gwErr, ok := err.(*Error); ok {
		return gwErr.Code
	}
	return ""
}

// IsUnavailable reports whether err is the fail-fast degraded-mode result.
func IsUnavailable(err error) bool { return errCode(err) == CodeUnavailable }

// IsTimeout reports whether the caller gave up waiting.
func IsTimeout(err error) bool { return errCode(err) == CodeTimeout }

// Config tunes the gateway. Zero values fall back to the defaults below.
type Config struct {
	MaxConcurrent  int
	RequestTimeout time.Duration
	MaxAttempts    int
	RetryDelay     time.Duration
	Enabled        bool
}

const (
	defaultMaxConcurrent  = 10
	defaultRequestTimeout = 30 * time.Second
	defaultMaxAttempts    = 3
	defaultRetryDelay     = time.Second
)

func (c Config) withDefaults() Config {
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = defaultMaxConcurrent
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
	return c
}

type result struct {
	text string
	err  error
}

type call struct {
	ctx  context.Context
	req  llm.Request
	done chan result
}

// Gateway owns the queue, the in-flight slot counter and the dispatcher
// goroutine. There is no other mutable state at package level.
type Gateway struct {
	provider llm.Provider
	config   Config
	logger   *zap.Logger

	mu    sync.Mutex
	queue []*call

	slots chan struct{}
	wake  chan struct{}
}

// New builds a gateway around the provider and starts its dispatcher. A nil
// provider forces degraded mode regardless of the enabled flag.
func New(provider llm.Provider, config Config, logger *zap.Logger) *Gateway {
	config = config.withDefaults()
	if provider == nil {
		config.Enabled = false
	}

	g := &Gateway{
		provider: provider,
		config:   config,
		logger:   logger,
		slots:    make(chan struct{}, config.MaxConcurrent),
		wake:     make(chan struct{}, 1),
	}
	go g.dispatch()
	return g
}

// Degraded reports whether every Submit will fail fast with Unavailable.
func (g *Gateway) Degraded() bool {
	return !g.config.Enabled || g.provider == nil
}

// Submit enqueues a request and waits for its result. The timeout covers
// queue wait plus all retry attempts; once it elapses the caller gets a
// Timeout error and stops waiting, but already-dispatched backend work is not
// aborted.
func (g *Gateway) Submit(ctx context.Context, req llm.Request) (string, error) {
	if g.Degraded() {
		return "", &Error{Code: CodeUnavailable}
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.RequestTimeout)
	defer cancel()

	c := &call{ctx: ctx, req: req, done: make(chan result, 1)}

	g.mu.Lock()
	g.queue = append(g.queue, c)
	depth := len(g.queue)
	g.mu.Unlock()
	g.signal()

	if depth > g.config.MaxConcurrent {
		g.logger.Debug("generation request queued", zap.Int("queue_depth", depth))
	}

	select {
	case r := <-c.done:
		return r.text, r.err
	case <-ctx.Done():
		return "", &Error{Code: CodeTimeout, Err: ctx.Err()}
	}
}

func (g *Gateway) signal() {
	select {
	case g.wake <- struct{}{}:
	default:
	}
}

// dispatch drains the queue in arrival order, holding one concurrency slot
// per in-flight request. Abandoned calls are dropped without reaching the
// provider.
func (g *Gateway) dispatch() {
	for range g.wake {
		for {
			g.mu.Lock()
			if len(g.queue) == 0 {
				g.mu.Unlock()
				break
			}
			g.mu.Unlock()

			g.slots <- struct{}{}

			g.mu.Lock()
			if len(g.queue) == 0 {
				g.mu.Unlock()
				<-g.slots
				break
			}
			c := g.queue[0]
			g.queue = g.queue[1:]
			g.mu.Unlock()

			if c.ctx.Err() != nil {
				// Caller gave up while queued.
				<-g.slots
				continue
			}

			go func(c *call) {
				defer func() {
					<-g.slots
					g.signal()
				}()
				g.run(c)
			}(c)
		}
	}
}

// run performs the attempt/retry loop for one dispatched call. Retries are
// transparent to the caller and do not reset its timeout.
func (g *Gateway) run(c *call) {
	var lastErr error
	for attempt := 1; attempt <= g.config.MaxAttempts; attempt++ {
		text, err := g.provider.Generate(c.ctx, c.req)
		if err == nil {
			c.done <- result{text: text}
			return
		}
		lastErr = err
		g.logger.Warn("generation attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", g.config.MaxAttempts),
			zap.Error(err))

		if attempt == g.config.MaxAttempts {
			break
		}
		select {
		case <-time.After(g.config.RetryDelay):
		case <-c.ctx.Done():
			// Caller is gone; no point in further attempts.
			c.done <- result{err: &Error{Code: CodeBackend, Err: lastErr}}
			return
		}
	}
	c.done <- result{err: &Error{Code: CodeBackend, Err: lastErr}}
}
