package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"

	"github.com/decisionlab/dagraph/internal/metrics"
)

// RowCache stores decoded result rows. Entries are namespaced by a
// generation number that every mutating traversal advances.
type RowCache interface {
	Get(ctx context.Context, key string, target any) (bool, error)
	SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error
	Generation(ctx context.Context) (int64, error)
	BumpGeneration(ctx context.Context) error
}

// mutatingSteps mark a traversal as a write.
var mutatingSteps = []string{"addV(", "addE(", "mergeV(", "mergeE(", ".property(", ".drop()"}

// IsReadOnly reports whether a traversal only reads the graph.
func IsReadOnly(query string) bool {
	if strings.Contains(query, ";") {
		return false
	}
	for _, step := range mutatingSteps {
		if strings.Contains(query, step) {
			return false
		}
	}
	return true
}

// CachingClient serves repeated read-only traversals from a RowCache.
// Any mutating traversal invalidates every cached entry. Cache failures
// fall through to the wrapped client.
type CachingClient struct {
	DatabaseClient
	cache  RowCache
	ttl    time.Duration
	logger *logrus.Logger
}

// NewCachingClient wraps inner.
func NewCachingClient(inner DatabaseClient, cache RowCache, ttl time.Duration, logger *logrus.Logger) *CachingClient {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CachingClient{
		DatabaseClient: inner,
		cache:          cache,
		ttl:            ttl,
		logger:         logger,
	}
}

func (c *CachingClient) ExecuteQuery(ctx context.Context, query string, params map[string]any) ([]any, error) {
	// A disconnected client must report its connectivity error, never a cached row.
	if !c.IsConnected() {
		return c.DatabaseClient.ExecuteQuery(ctx, query, params)
	}

	if !IsReadOnly(query) {
		rows, err := c.DatabaseClient.ExecuteQuery(ctx, query, params)
		if berr := c.cache.BumpGeneration(ctx); berr != nil {
			c.logger.WithError(berr).Warn("row cache invalidation failed")
		}
		return rows, err
	}

	key, err := c.key(ctx, query, params)
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		c.logger.WithError(err).Debug("row cache bypassed")
		return c.DatabaseClient.ExecuteQuery(ctx, query, params)
	}

	var cached []any
	hit, err := c.cache.Get(ctx, key, &cached)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		c.logger.WithError(err).Debug("row cache lookup failed")
	case hit:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return jsonRows(cached), nil
	default:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	rows, err := c.DatabaseClient.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, err
	}
	// Fresh rows take the same JSON round trip as cached ones.
	normalized, err := roundTrip(rows)
	if err != nil {
		c.logger.WithError(err).Debug("row cache store skipped")
		return rows, nil
	}
	if err := c.cache.SetWithTTL(ctx, key, normalized, c.ttl); err != nil {
		c.logger.WithError(err).Debug("row cache store failed")
	}
	return normalized, nil
}

func roundTrip(rows []any) ([]any, error) {
	data, err := json.Marshal(jsonRows(rows))
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out []any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return jsonRows(out), nil
}

func (c *CachingClient) key(ctx context.Context, query string, params map[string]any) (string, error) {
	gen, err := c.cache.Generation(ctx)
	if err != nil {
		return "", err
	}
	h := xxhash.New()
	_, _ = h.WriteString(query)
	if len(params) > 0 {
		encoded, err := json.Marshal(params)
		if err != nil {
			return "", err
		}
		_, _ = h.Write(encoded)
	}
	return fmt.Sprintf("rows:%d:%016x", gen, h.Sum64()), nil
}

// jsonRows converts driver maps keyed by interface{} into string-keyed
// maps and json.Number values into int64, or float64 when fractional.
func jsonRows(rows []any) []any {
	out := make([]any, len(rows))
	for i, row := range rows {
		out[i] = jsonValue(row)
	}
	return out
}

func jsonValue(v any) any {
	switch value := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(value))
		for k, item := range value {
			m[fmt.Sprint(k)] = jsonValue(item)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(value))
		for k, item := range value {
			m[k] = jsonValue(item)
		}
		return m
	case []any:
		list := make([]any, len(value))
		for i, item := range value {
			list[i] = jsonValue(item)
		}
		return list
	case json.Number:
		if n, err := value.Int64(); err == nil {
			return n
		}
		if f, err := value.Float64(); err == nil {
			return f
		}
		return value.String()
	default:
		return v
	}
}
