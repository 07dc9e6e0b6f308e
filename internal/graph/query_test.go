package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexQuery(t *testing.T) {
	q := NewBuilder().Query.Vertex

	create, err := q.Create("node", "U", Properties{{Key: "name", Value: "N"}, {Key: "rank", Value: nil}})
	require.NoError(t, err)
	assert.Equal(t, "g.addV('node').property(id, 'U').property('uuid', 'U').property('name', 'N').property('rank', '').valueMap(true)", create)

	assert.Equal(t, "g.V('U').valueMap(true)", q.Read("U"))
	assert.Equal(t, "g.V().hasLabel('junk').valueMap(true)", q.List("junk", nil))
	assert.Equal(t, "g.V().hasLabel('node').has('kind', 'chance').valueMap(true)",
		q.List("node", Properties{{Key: "kind", Value: "chance"}, {Key: "skip", Value: nil}}))

	assert.Equal(t, "g.V('U').out('E').valueMap(true)", q.ReadOut("U", "E", "", nil))
	assert.Equal(t, "g.V('U').out('E').hasLabel('L2').has('a', '1').valueMap(true)",
		q.ReadOut("U", "E", "L2", Properties{{Key: "a", Value: "1"}}))
	assert.Equal(t, "g.V('U').in('E').hasLabel('L2').valueMap(true)", q.ReadIn("U", "E", "L2", nil))

	update, err := q.Update("U", Properties{{Key: "name", Value: "M"}})
	require.NoError(t, err)
	assert.Equal(t, "g.V('U').property('name', 'M').valueMap(true)", update)

	assert.Equal(t, "g.V('U').drop()", q.Delete("U"))
}

func TestEdgeQuery(t *testing.T) {
	q := NewBuilder().Query.Edge

	create, err := q.Create("influences", "out", "in", "U", Properties{{Key: "weight", Value: 2}})
	require.NoError(t, err)
	assert.Equal(t, "g.V('out').addE('influences').to(__.V('in')).property(id, 'U').property('uuid', 'U').property('weight', '2')", create)

	assert.Equal(t, "g.E('U')", q.Read("U"))
	assert.Equal(t, "g.E().hasLabel('L').valueMap(true)", q.List("L", nil))
	assert.Equal(t, "g.E().hasLabel('L').has('a', 'b').valueMap(true)", q.List("L", Properties{{Key: "a", Value: "b"}}))
	assert.Equal(t, "g.V('U').outE().hasLabel('L')", q.ReadOut("U", "L"))
	assert.Equal(t, "g.V('U').inE().hasLabel('L')", q.ReadIn("U", "L"))
	assert.Equal(t, "g.E('U').drop()", q.Delete("U"))
	assert.Equal(t, "g.V('U').bothE().drop()", q.DeleteAllFromVertex("U"))
}

func TestEdgeQuery_Update(t *testing.T) {
	batch, err := NewBuilder().Query.Edge.Update("U", Properties{{Key: "k", Value: "v"}, {Key: "n", Value: 1}})
	require.NoError(t, err)
	assert.Equal(t, []string{"g.E('U').property('k', 'v').property('n', '1')"}, batch)
}

func TestEdgeQuery_ListByProject(t *testing.T) {
	q := NewBuilder().Query.Edge

	tests := []struct {
		relation string
		want     string
	}{
		{"contains", "g.V('uuid').outE('contains')"},
		{"merged_into", "g.V('uuid').outE('contains').inV().inE('merged_into')"},
		{"influences", "g.V('uuid').outE('contains').inV().outE('influences')"},
	}
	for _, tt := range tests {
		t.Run(tt.relation, func(t *testing.T) {
			assert.Equal(t, tt.want, q.ListByProject("uuid", tt.relation))
		})
	}
}

func TestQuery_UnencodablePropertiesFail(t *testing.T) {
	bad := Properties{{Key: "f", Value: []any{func() {}}}}
	b := NewBuilder()

	_, err := b.Query.Vertex.Create("node", "U", bad)
	assert.Error(t, err)
	_, err = b.Query.Vertex.Update("U", bad)
	assert.Error(t, err)
	_, err = b.Query.Edge.Create("l", "a", "b", "U", bad)
	assert.Error(t, err)
	_, err = b.Query.Edge.Update("U", bad)
	assert.Error(t, err)
}
