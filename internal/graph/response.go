package graph

import (
	"fmt"
	"strings"

	"github.com/decisionlab/dagraph/internal/errors"
)

// APIVersion identifies the schema revision of the domain API that issues
// the traversals. It is stamped on every decoded record.
const APIVersion = "v1"

// Vertex is a decoded vertex row.
type Vertex struct {
	ID         string         `json:"id" yaml:"id"`
	Label      string         `json:"label" yaml:"label"`
	UUID       string         `json:"uuid" yaml:"uuid"`
	Properties map[string]any `json:"properties" yaml:"properties"`
	Version    string         `json:"version" yaml:"version"`
}

// Edge is a decoded edge row.
type Edge struct {
	ID         string         `json:"id" yaml:"id"`
	Label      string         `json:"label" yaml:"label"`
	OutV       string         `json:"outV" yaml:"outV"`
	InV        string         `json:"inV" yaml:"inV"`
	UUID       string         `json:"uuid" yaml:"uuid"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
	Version    string         `json:"version" yaml:"version"`
}

// Response groups the vertex and edge result decoders.
type Response struct {
	Vertex VertexResponse
	Edge   EdgeResponse
}

// VertexResponse decodes valueMap(true) rows into vertices.
type VertexResponse struct{}

// BuildItem decodes the first row. It returns nil when there are no rows.
func (r VertexResponse) BuildItem(rows []any) (*Vertex, error) {
	if len(rows) == 0 {
		return r.BuildNone(), nil
	}
	v, err := parseVertex(rows[0])
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// BuildList decodes every row, keeping order and duplicates.
func (VertexResponse) BuildList(rows []any) ([]Vertex, error) {
	out := make([]Vertex, 0, len(rows))
	for i, row := range rows {
		v, err := parseVertex(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// BuildNone is the explicit empty result of operations that return nothing.
func (VertexResponse) BuildNone() *Vertex {
	return nil
}

// EdgeResponse decodes edge rows, structured or compact.
type EdgeResponse struct{}

// BuildItem decodes the first row. It returns nil when there are no rows.
func (r EdgeResponse) BuildItem(rows []any) (*Edge, error) {
	if len(rows) == 0 {
		return r.BuildNone(), nil
	}
	e, err := ParseEdge(rows[0])
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// BuildList decodes every row, keeping order and duplicates.
func (EdgeResponse) BuildList(rows []any) ([]Edge, error) {
	out := make([]Edge, 0, len(rows))
	for i, row := range rows {
		e, err := ParseEdge(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// BuildNone is the explicit empty result of operations that return nothing.
func (EdgeResponse) BuildNone() *Edge {
	return nil
}

func parseVertex(raw any) (Vertex, error) {
	m, ok := stringMap(raw)
	if !ok {
		return Vertex{}, errors.DecodeErrorf("unexpected vertex row of type %T", raw)
	}

	v := Vertex{
		Properties: make(map[string]any, len(m)),
		Version:    APIVersion,
	}
	for key, value := range m {
		value = unwrap(value)
		switch key {
		case "id":
			v.ID = scalarString(value)
		case "label":
			v.Label = strings.ToLower(scalarString(value))
		default:
			v.Properties[key] = value
		}
	}

	if uuid, ok := v.Properties["uuid"]; ok && uuid != nil {
		v.UUID = scalarString(uuid)
	} else {
		v.UUID = v.ID
		v.Properties["uuid"] = v.ID
	}
	return v, nil
}

// ParseEdge decodes one edge row. Structured maps pass through; strings
// must use the compact form e[ID][OUT-LABEL->IN].
func ParseEdge(raw any) (Edge, error) {
	var (
		e   Edge
		err error
	)
	switch value := raw.(type) {
	case string:
		e, err = parseCompactEdge(value)
	default:
		m, ok := stringMap(raw)
		if !ok {
			return Edge{}, errors.DecodeErrorf("unexpected edge row of type %T", raw)
		}
		e, err = parseEdgeMap(m)
	}
	if err != nil {
		return Edge{}, err
	}

	e.Label = strings.ToLower(e.Label)
	e.Version = APIVersion
	return e, nil
}

func parseEdgeMap(m map[string]any) (Edge, error) {
	id, ok := m["id"]
	if !ok || id == nil {
		return Edge{}, errors.DecodeErrorf("edge row has no id")
	}

	var e Edge
	for key, value := range m {
		value = unwrap(value)
		switch key {
		case "id":
			e.ID = scalarString(value)
		case "label":
			e.Label = scalarString(value)
		case "outV":
			e.OutV = scalarString(value)
		case "inV":
			e.InV = scalarString(value)
		case "uuid":
			e.UUID = scalarString(value)
		case "properties":
			// GraphSON edges nest their property bag.
			if nested, ok := stringMap(value); ok {
				for k, v := range nested {
					if k == "uuid" {
						e.UUID = scalarString(unwrap(v))
						continue
					}
					e.setProperty(k, unwrap(v))
				}
			}
		case "type", "inVLabel", "outVLabel":
		default:
			e.setProperty(key, value)
		}
	}
	if e.UUID == "" {
		e.UUID = e.ID
	}
	return e, nil
}

func (e *Edge) setProperty(key string, value any) {
	if e.Properties == nil {
		e.Properties = make(map[string]any)
	}
	e.Properties[key] = value
}

// parseCompactEdge scans e[ID][OUT-LABEL->IN] by its fixed delimiters.
// Vertex ids may contain '-', so the label starts after the last '-'
// preceding "->".
func parseCompactEdge(s string) (Edge, error) {
	fail := func(reason string) (Edge, error) {
		return Edge{}, errors.DecodeErrorf("malformed edge %q: %s", s, reason)
	}

	if !strings.HasPrefix(s, "e[") {
		return fail("missing e[ prefix")
	}
	rest := s[2:]
	end := strings.IndexByte(rest, ']')
	if end <= 0 {
		return fail("missing edge id")
	}
	id := rest[:end]
	rest = rest[end+1:]

	if len(rest) < 2 || rest[0] != '[' || rest[len(rest)-1] != ']' {
		return fail("missing endpoint section")
	}
	body := rest[1 : len(rest)-1]

	arrow := strings.Index(body, "->")
	if arrow < 0 {
		return fail("missing ->")
	}
	head, in := body[:arrow], body[arrow+2:]
	dash := strings.LastIndexByte(head, '-')
	if dash <= 0 {
		return fail("missing out vertex")
	}
	out, label := head[:dash], head[dash+1:]
	if label == "" || in == "" {
		return fail("missing label or in vertex")
	}
	if strings.Contains(in, "->") {
		return fail("more than one ->")
	}

	return Edge{ID: id, Label: label, OutV: out, InV: in, UUID: id}, nil
}

// stringMap normalizes map rows. Drivers return map[interface{}]interface{}
// with token keys for id and label; JSON decoding returns map[string]any.
func stringMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, true
	default:
		return nil, false
	}
}

// unwrap returns the element of single-element lists, as valueMap wraps
// every property value in a list.
func unwrap(value any) any {
	if list, ok := value.([]any); ok && len(list) == 1 {
		return list[0]
	}
	return value
}

func scalarString(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
