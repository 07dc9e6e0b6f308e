package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decisionlab/dagraph/internal/errors"
)

func TestPropertyQuery(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		want  string
	}{
		{"nil value", "owner", nil, ".property('owner', '')"},
		{"nil id", "id", nil, ".property('id', '')"},
		{"id key", "id", "u1", ".property(id, 'u1')"},
		{"label key", "label", "node", ".property(label, 'node')"},
		{"free text", "description", "it's\nlong", ".property('description', '''it's\nlong''')"},
		{"comments", "comments", "a 'quoted' note", ".property('comments', '''a 'quoted' note''')"},
		{"list", "weights", []int{1, 2}, ".property('weights', '[1, 2]')"},
		{"map", "meta", map[string]any{"a": 1, "b": "x"}, `.property('meta', '{"a": 1, "b": "x"}')`},
		{"string", "name", "Expansion", ".property('name', 'Expansion')"},
		{"int", "rank", 7, ".property('rank', '7')"},
		{"bool", "active", true, ".property('active', 'true')"},
		{"float", "p", 0.25, ".property('p', '0.25')"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PropertyQuery(tt.key, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPropertyQuery_JSONKeepsSeparatorsInsideStrings(t *testing.T) {
	got, err := PropertyQuery("tags", []string{"a,b", "c:d", "<e>"})
	require.NoError(t, err)
	assert.Equal(t, `.property('tags', '["a,b", "c:d", "<e>"]')`, got)
}

func TestPropertyQuery_UnencodableValue(t *testing.T) {
	_, err := PropertyQuery("scores", []float64{math.Inf(1)})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, err.Error(), "scores")
}

func TestPropertyQuery_RejectsBareUnencodableKinds(t *testing.T) {
	for _, value := range []any{make(chan int), func() {}, complex(1, 2)} {
		got, err := PropertyQuery("m", value)
		require.Error(t, err, "%T", value)
		assert.True(t, errors.IsValidation(err), "%T", value)
		assert.Empty(t, got)
	}

	_, err := PropertyQuery("m", []any{make(chan int)})
	assert.True(t, errors.IsValidation(err))
}

func TestPropertyDictQuery(t *testing.T) {
	got, err := PropertyDictQuery(Properties{
		{Key: "name", Value: "N"},
		{Key: "owner", Value: nil},
		{Key: "description", Value: "D"},
	})
	require.NoError(t, err)
	assert.Equal(t, ".property('name', 'N').property('owner', '').property('description', '''D''')", got)

	empty, err := PropertyDictQuery(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFilterQuery(t *testing.T) {
	assert.Equal(t, "", FilterQuery(nil))
	assert.Equal(t, "", FilterQuery(Properties{}))
	assert.Equal(t, "", FilterQuery(Properties{{Key: "a", Value: nil}}))
	assert.Equal(t, ".has('a', '1').has('b', '2').has('d', '4')", FilterQuery(Properties{
		{Key: "a", Value: "1"},
		{Key: "b", Value: "2"},
		{Key: "c", Value: nil},
		{Key: "d", Value: "4"},
	}))
}

func TestFilterLabelQuery(t *testing.T) {
	assert.Equal(t, ".hasLabel('junk')", FilterLabelQuery("junk"))
}

func TestProperties(t *testing.T) {
	props := Properties{}.Set("b", 1).Set("a", 2).Set("b", 3)
	assert.Equal(t, Properties{{Key: "b", Value: 3}, {Key: "a", Value: 2}}, props)

	v, ok := props.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	_, ok = props.Get("z")
	assert.False(t, ok)

	assert.Equal(t, map[string]any{"a": 2, "b": 3}, props.Map())
	assert.Equal(t, Properties{{Key: "a", Value: 2}, {Key: "b", Value: 3}}, PropertiesFromMap(props.Map()))
}
