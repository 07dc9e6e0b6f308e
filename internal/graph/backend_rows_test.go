package graph

import (
	"encoding/json"
	"testing"

	gremlingo "github.com/apache/tinkerpop/gremlin-go/v3/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supplyon/gremcos/interfaces"
)

func TestGremlinRow_FlattensElements(t *testing.T) {
	edge := &gremlingo.Edge{
		Element: gremlingo.Element{Id: "e1", Label: "Influences"},
		OutV:    gremlingo.Vertex{Element: gremlingo.Element{Id: "a"}},
		InV:     gremlingo.Vertex{Element: gremlingo.Element{Id: "b"}},
	}

	row := gremlinRow(edge)
	e, err := ParseEdge(row)
	require.NoError(t, err)
	assert.Equal(t, Edge{ID: "e1", Label: "influences", OutV: "a", InV: "b", UUID: "e1", Version: APIVersion}, e)

	vertex := &gremlingo.Vertex{Element: gremlingo.Element{Id: "v1", Label: "node"}}
	assert.Equal(t, map[string]any{"id": "v1", "label": "node"}, gremlinRow(vertex))

	passthrough := map[any]any{"id": "v1"}
	assert.Equal(t, passthrough, gremlinRow(passthrough))
}

func TestDecodeCosmosResponses(t *testing.T) {
	responses := []interfaces.Response{
		{Result: interfaces.Result{Data: json.RawMessage(`[{"id":"A","label":"Node","uuid":["A"]}]`)}},
		{Result: interfaces.Result{Data: json.RawMessage(`"e[B][A-influences->C]"`)}},
		{Result: interfaces.Result{}},
	}

	rows, err := decodeCosmosResponses(responses)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	v, err := NewBuilder().Response.Vertex.BuildItem(rows[:1])
	require.NoError(t, err)
	assert.Equal(t, "node", v.Label)

	e, err := ParseEdge(rows[1])
	require.NoError(t, err)
	assert.Equal(t, "C", e.InV)
}

func TestDecodeCosmosResponses_Invalid(t *testing.T) {
	_, err := decodeCosmosResponses([]interfaces.Response{
		{Result: interfaces.Result{Data: json.RawMessage(`{not json`)}},
	})
	assert.Error(t, err)
}
