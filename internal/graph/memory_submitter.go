package graph

import (
	"context"
	"sync"
)

// MemorySubmitter is an in-memory Submitter used to exercise clients and
// repositories without a running graph server. It records every traversal
// and replays canned result rows in FIFO order.
type MemorySubmitter struct {
	mu       sync.Mutex
	calls    []ExecutedQuery
	results  [][]any
	err      error
	dialErr  error
	closeErr error
	dials    int
	closes   int
}

// ExecutedQuery captures a traversal and its bindings.
type ExecutedQuery struct {
	Query  string
	Params map[string]any
}

// NewMemorySubmitter instantiates an empty submitter.
func NewMemorySubmitter() *MemorySubmitter {
	return &MemorySubmitter{}
}

// WithError makes subsequent Submit calls fail with err.
func (m *MemorySubmitter) WithError(err error) *MemorySubmitter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithDialError makes the dialer fail with err.
func (m *MemorySubmitter) WithDialError(err error) *MemorySubmitter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dialErr = err
	return m
}

// WithCloseError makes Close return err.
func (m *MemorySubmitter) WithCloseError(err error) *MemorySubmitter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeErr = err
	return m
}

// PushResult appends rows returned by the next Submit call.
func (m *MemorySubmitter) PushResult(rows ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, rows)
}

// Dialer returns a Dialer handing out this submitter.
func (m *MemorySubmitter) Dialer() Dialer {
	return func(context.Context) (Submitter, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.dials++
		if m.dialErr != nil {
			return nil, m.dialErr
		}
		return m, nil
	}
}

func (m *MemorySubmitter) Submit(_ context.Context, query string, bindings map[string]any) ([]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, ExecutedQuery{Query: query, Params: cloneMap(bindings)})
	if m.err != nil {
		return nil, m.err
	}
	if len(m.results) == 0 {
		return nil, nil
	}
	rows := m.results[0]
	m.results = m.results[1:]
	return rows, nil
}

func (m *MemorySubmitter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	return m.closeErr
}

// Calls returns a snapshot of submitted traversals.
func (m *MemorySubmitter) Calls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.calls...)
}

// Queries returns the submitted traversal strings in order.
func (m *MemorySubmitter) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.calls))
	for _, c := range m.calls {
		out = append(out, c.Query)
	}
	return out
}

// Dials returns how many times the dialer was invoked.
func (m *MemorySubmitter) Dials() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dials
}

// Closes returns how many times Close was invoked.
func (m *MemorySubmitter) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
