package graph

// Builder pairs one query dialect with one response decoder. A client owns
// exactly one Builder and never mutates it.
type Builder struct {
	Query    Query
	Response Response
}

// NewBuilder returns the standard vertex/edge builder pair.
func NewBuilder() Builder {
	return Builder{
		Query:    Query{Vertex: VertexQuery{}, Edge: EdgeQuery{}},
		Response: Response{Vertex: VertexResponse{}, Edge: EdgeResponse{}},
	}
}
