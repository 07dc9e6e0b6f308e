package graph

import (
	"fmt"
	"strings"
)

// Query groups the vertex and edge traversal builders. It carries no state
// of its own; swapping it swaps the query dialect of a client atomically.
type Query struct {
	Vertex VertexQuery
	Edge   EdgeQuery
}

// VertexQuery compiles vertex CRUD intents into Gremlin traversals.
type VertexQuery struct{}

// Create adds a vertex whose id and uuid property are both uuid.
func (VertexQuery) Create(label, uuid string, props Properties) (string, error) {
	body, err := PropertyDictQuery(props)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("g.addV('%s')%s%s.valueMap(true)", label, idProperties(uuid), body), nil
}

// Read fetches a single vertex.
func (VertexQuery) Read(uuid string) string {
	return fmt.Sprintf("g.V('%s').valueMap(true)", uuid)
}

// ReadOut follows outgoing edgeLabel edges from uuid. vertexLabel narrows
// the neighbours when non-empty; filter adds .has() steps.
func (q VertexQuery) ReadOut(uuid, edgeLabel, vertexLabel string, filter Properties) string {
	return q.traverse(uuid, "out", edgeLabel, vertexLabel, filter)
}

// ReadIn follows incoming edgeLabel edges into uuid.
func (q VertexQuery) ReadIn(uuid, edgeLabel, vertexLabel string, filter Properties) string {
	return q.traverse(uuid, "in", edgeLabel, vertexLabel, filter)
}

func (VertexQuery) traverse(uuid, direction, edgeLabel, vertexLabel string, filter Properties) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("g.V('%s').%s('%s')", uuid, direction, edgeLabel))
	if vertexLabel != "" {
		sb.WriteString(FilterLabelQuery(vertexLabel))
	}
	sb.WriteString(FilterQuery(filter))
	sb.WriteString(".valueMap(true)")
	return sb.String()
}

// List returns every vertex carrying label, optionally filtered.
func (VertexQuery) List(label string, filter Properties) string {
	return fmt.Sprintf("g.V()%s%s.valueMap(true)", FilterLabelQuery(label), FilterQuery(filter))
}

// Update sets props on an existing vertex.
func (VertexQuery) Update(uuid string, props Properties) (string, error) {
	body, err := PropertyDictQuery(props)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("g.V('%s')%s.valueMap(true)", uuid, body), nil
}

// Delete drops a vertex and, implicitly, its edges.
func (VertexQuery) Delete(uuid string) string {
	return fmt.Sprintf("g.V('%s').drop()", uuid)
}

// reverseRelations are project relations stored pointing into the
// contained vertex rather than out of it.
var reverseRelations = map[string]bool{
	"merged_into": true,
}

// containsRelation links a project vertex to everything it owns.
const containsRelation = "contains"

// EdgeQuery compiles edge CRUD intents into Gremlin traversals.
type EdgeQuery struct{}

// Create adds an edge from outID to inID with id and uuid set to uuid.
func (EdgeQuery) Create(label, outID, inID, uuid string, props Properties) (string, error) {
	body, err := PropertyDictQuery(props)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("g.V('%s').addE('%s').to(__.V('%s'))%s%s",
		outID, label, inID, idProperties(uuid), body), nil
}

// Read fetches a single edge.
func (EdgeQuery) Read(uuid string) string {
	return fmt.Sprintf("g.E('%s')", uuid)
}

// List returns every edge carrying label, optionally filtered.
func (EdgeQuery) List(label string, filter Properties) string {
	return fmt.Sprintf("g.E()%s%s.valueMap(true)", FilterLabelQuery(label), FilterQuery(filter))
}

// ListByProject returns the relation edges among the vertices a project
// contains. The contains relation itself stops at the project's own edges.
func (EdgeQuery) ListByProject(projectUUID, relation string) string {
	base := fmt.Sprintf("g.V('%s').outE('%s')", projectUUID, containsRelation)
	switch {
	case relation == containsRelation:
		return base
	case reverseRelations[relation]:
		return fmt.Sprintf("%s.inV().inE('%s')", base, relation)
	default:
		return fmt.Sprintf("%s.inV().outE('%s')", base, relation)
	}
}

// ReadOut lists the outgoing edges of a vertex with the given label.
func (EdgeQuery) ReadOut(uuid, label string) string {
	return fmt.Sprintf("g.V('%s').outE()%s", uuid, FilterLabelQuery(label))
}

// ReadIn lists the incoming edges of a vertex with the given label.
func (EdgeQuery) ReadIn(uuid, label string) string {
	return fmt.Sprintf("g.V('%s').inE()%s", uuid, FilterLabelQuery(label))
}

// Update sets props on an existing edge. The statement is returned as a
// one-element batch; edge updates are submitted as a statement batch while
// vertex updates are a single traversal.
func (EdgeQuery) Update(uuid string, props Properties) ([]string, error) {
	body, err := PropertyDictQuery(props)
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("g.E('%s')%s", uuid, body)}, nil
}

// Delete drops one edge.
func (EdgeQuery) Delete(uuid string) string {
	return fmt.Sprintf("g.E('%s').drop()", uuid)
}

// DeleteAllFromVertex drops every edge touching a vertex.
func (EdgeQuery) DeleteAllFromVertex(uuid string) string {
	return fmt.Sprintf("g.V('%s').bothE().drop()", uuid)
}

// idProperties mirrors uuid into the element id and the uuid property.
func idProperties(uuid string) string {
	id, _ := PropertyQuery("id", uuid)
	prop, _ := PropertyQuery("uuid", uuid)
	return id + prop
}
