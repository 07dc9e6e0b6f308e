package graph

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/decisionlab/dagraph/internal/errors"
	"github.com/decisionlab/dagraph/internal/metrics"
)

// DefaultTraversalSource is the traversal source name bound on the server.
const DefaultTraversalSource = "g"

// DatabaseClient is the contract every graph backend implements.
// A client owns at most one live handle and is not safe for concurrent use;
// callers hold one client per request or session.
type DatabaseClient interface {
	// Connect opens the submission handle. Calling it twice is undefined.
	Connect(ctx context.Context) error
	// Close releases the handle. It is safe on a client that never connected.
	Close()
	// ExecuteQuery submits a traversal and returns the raw result rows.
	// Without a live handle it fails with a connectivity error.
	ExecuteQuery(ctx context.Context, query string, params map[string]any) ([]any, error)
	// IsConnected reports whether a live handle is held.
	IsConnected() bool
	Builder() Builder
	TraversalSource() string
}

// Submitter is the live handle a connected client submits traversals to.
type Submitter interface {
	Submit(ctx context.Context, query string, bindings map[string]any) ([]any, error)
	Close() error
}

// Dialer opens a Submitter.
type Dialer func(ctx context.Context) (Submitter, error)

// UnimplementedClient is the bare contract. Every operation fails with a
// not-implemented error; Close panics with one since it cannot return it.
type UnimplementedClient struct{}

func (UnimplementedClient) Connect(context.Context) error {
	return errors.NotImplementedError("Connect")
}

func (UnimplementedClient) Close() {
	panic(errors.NotImplementedError("Close"))
}

func (UnimplementedClient) ExecuteQuery(context.Context, string, map[string]any) ([]any, error) {
	return nil, errors.NotImplementedError("ExecuteQuery")
}

func (UnimplementedClient) IsConnected() bool { return false }

func (UnimplementedClient) Builder() Builder { return NewBuilder() }

func (UnimplementedClient) TraversalSource() string { return DefaultTraversalSource }

// WithClient connects c, runs fn and closes c on every exit path, including
// error returns and panics. fn is not run when Connect fails.
func WithClient(ctx context.Context, c DatabaseClient, fn func(DatabaseClient) error) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

// WithClientResult is WithClient for bodies that produce a value.
func WithClientResult[T any](ctx context.Context, c DatabaseClient, fn func(DatabaseClient) (T, error)) (T, error) {
	var out T
	err := WithClient(ctx, c, func(c DatabaseClient) error {
		var err error
		out, err = fn(c)
		return err
	})
	return out, err
}

// Option configures a concrete client.
type Option func(*baseClient)

// WithLogger sets the logger. Defaults to the logrus standard logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *baseClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTraversalSource overrides the traversal source name.
func WithTraversalSource(source string) Option {
	return func(c *baseClient) {
		if source != "" {
			c.source = source
		}
	}
}

// WithBuilder overrides the query/response builder pair.
func WithBuilder(b Builder) Option {
	return func(c *baseClient) {
		c.builder = b
	}
}

// WithDialer replaces the backend driver used to open the handle.
func WithDialer(d Dialer) Option {
	return func(c *baseClient) {
		c.dial = d
	}
}

// WithRateLimit paces submissions to at most perSecond traversals with the
// given burst. Waiting honours the caller's context; nothing is retried.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *baseClient) {
		if perSecond <= 0 {
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// baseClient holds the lifecycle shared by the concrete backends.
type baseClient struct {
	backend      string // metrics/log label
	notConnected string // verbatim connectivity error text
	source       string
	builder      Builder
	dial         Dialer
	handle       Submitter
	limiter      *rate.Limiter
	logger       *logrus.Logger
}

func newBaseClient(backend, notConnected string, opts []Option) *baseClient {
	c := &baseClient{
		backend:      backend,
		notConnected: notConnected,
		source:       DefaultTraversalSource,
		builder:      NewBuilder(),
		logger:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *baseClient) Connect(ctx context.Context) error {
	handle, err := c.dial(ctx)
	metrics.ObserveConnect(c.backend, err)
	if err != nil {
		return errors.ConnectivityErrorf(err, "failed to connect to %s backend", c.backend)
	}
	c.handle = handle
	c.logger.WithField("backend", c.backend).Debug("graph connection opened")
	return nil
}

func (c *baseClient) Close() {
	if c.handle == nil {
		return
	}
	if err := c.handle.Close(); err != nil {
		c.logger.WithError(err).WithField("backend", c.backend).Warn("closing graph connection failed")
	}
	c.handle = nil
	c.logger.WithField("backend", c.backend).Debug("graph connection closed")
}

func (c *baseClient) ExecuteQuery(ctx context.Context, query string, params map[string]any) ([]any, error) {
	if c.handle == nil {
		return nil, errors.ConnectivityError(c.notConnected)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.DatabaseErrorf(err, "%s request pacing interrupted", c.backend)
		}
	}

	start := time.Now()
	rows, err := c.handle.Submit(ctx, query, params)
	elapsed := time.Since(start)
	metrics.ObserveQuery(c.backend, elapsed, err)

	log := c.logger.WithFields(logrus.Fields{
		"backend":  c.backend,
		"query":    query,
		"duration": elapsed,
	})
	if err != nil {
		log.WithError(err).Debug("traversal failed")
		return nil, errors.DatabaseErrorf(err, "%s query failed", c.backend).WithContext("query", query)
	}
	log.WithField("rows", len(rows)).Debug("traversal executed")
	return rows, nil
}

func (c *baseClient) IsConnected() bool { return c.handle != nil }

func (c *baseClient) Builder() Builder { return c.builder }

func (c *baseClient) TraversalSource() string { return c.source }
