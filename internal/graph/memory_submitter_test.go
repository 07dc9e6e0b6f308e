package graph

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySubmitter_ReplaysResultsInOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemorySubmitter()
	m.PushResult("a")
	m.PushResult("b", "c")

	first, err := m.Submit(ctx, "q1", nil)
	require.NoError(t, err)
	second, err := m.Submit(ctx, "q2", map[string]any{"k": 1})
	require.NoError(t, err)
	third, err := m.Submit(ctx, "q3", nil)
	require.NoError(t, err)

	assert.Equal(t, []any{"a"}, first)
	assert.Equal(t, []any{"b", "c"}, second)
	assert.Nil(t, third)
	assert.Equal(t, []string{"q1", "q2", "q3"}, m.Queries())
	assert.Equal(t, map[string]any{"k": 1}, m.Calls()[1].Params)
}

func TestMemorySubmitter_Failures(t *testing.T) {
	ctx := context.Background()
	dialErr := stderrors.New("dial")
	m := NewMemorySubmitter().WithDialError(dialErr)

	_, err := m.Dialer()(ctx)
	assert.ErrorIs(t, err, dialErr)
	assert.Equal(t, 1, m.Dials())

	m.WithDialError(nil).WithError(stderrors.New("submit")).WithCloseError(stderrors.New("close"))
	handle, err := m.Dialer()(ctx)
	require.NoError(t, err)
	_, err = handle.Submit(ctx, "g.V()", nil)
	assert.EqualError(t, err, "submit")
	assert.EqualError(t, handle.Close(), "close")
	assert.Equal(t, 1, m.Closes())
}
