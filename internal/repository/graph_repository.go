// Package repository persists domain items as graph vertices and edges.
// Each operation acquires its own client for the duration of the call.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/decisionlab/dagraph/internal/graph"
)

// ErrNotFound is returned by single-item reads that match nothing.
var ErrNotFound = errors.New("not found")

// ClientFactory constructs an unconnected client; adapter.Factory.Client
// satisfies it.
type ClientFactory func() (graph.DatabaseClient, error)

// GraphRepository handles vertex and edge operations. Client errors are
// returned unchanged so connectivity messages reach the caller verbatim.
type GraphRepository struct {
	newClient ClientFactory
	logger    *logrus.Logger
}

// NewGraphRepository creates a new graph repository
func NewGraphRepository(newClient ClientFactory, logger *logrus.Logger) *GraphRepository {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &GraphRepository{newClient: newClient, logger: logger}
}

// run opens a client scope around fn.
func run[T any](ctx context.Context, r *GraphRepository, fn func(graph.DatabaseClient) (T, error)) (T, error) {
	client, err := r.newClient()
	if err != nil {
		var zero T
		return zero, err
	}
	return graph.WithClientResult(ctx, client, fn)
}

// --- vertices ---

// CreateVertex adds a vertex. An empty id gets a fresh UUID.
func (r *GraphRepository) CreateVertex(ctx context.Context, label, id string, props graph.Properties) (*graph.Vertex, error) {
	if id == "" {
		id = uuid.NewString()
	}
	return run(ctx, r, func(c graph.DatabaseClient) (*graph.Vertex, error) {
		b := c.Builder()
		query, err := b.Query.Vertex.Create(label, id, props)
		if err != nil {
			return nil, err
		}
		rows, err := c.ExecuteQuery(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		v, err := b.Response.Vertex.BuildItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to decode created vertex %s: %w", id, err)
		}
		r.logger.WithFields(logrus.Fields{"label": label, "uuid": id}).Debug("vertex created")
		return v, nil
	})
}

// GetVertex reads one vertex, or ErrNotFound.
func (r *GraphRepository) GetVertex(ctx context.Context, id string) (*graph.Vertex, error) {
	return run(ctx, r, func(c graph.DatabaseClient) (*graph.Vertex, error) {
		b := c.Builder()
		rows, err := c.ExecuteQuery(ctx, b.Query.Vertex.Read(id), nil)
		if err != nil {
			return nil, err
		}
		v, err := b.Response.Vertex.BuildItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to decode vertex %s: %w", id, err)
		}
		if v == nil {
			return nil, fmt.Errorf("vertex %s: %w", id, ErrNotFound)
		}
		return v, nil
	})
}

// ListVertices lists vertices with label matching filter.
func (r *GraphRepository) ListVertices(ctx context.Context, label string, filter graph.Properties) ([]graph.Vertex, error) {
	return r.listVertices(ctx, func(q graph.VertexQuery) string {
		return q.List(label, filter)
	})
}

// ListOut lists the neighbours reached over outgoing edgeLabel edges.
// vertexLabel may be empty.
func (r *GraphRepository) ListOut(ctx context.Context, id, edgeLabel, vertexLabel string, filter graph.Properties) ([]graph.Vertex, error) {
	return r.listVertices(ctx, func(q graph.VertexQuery) string {
		return q.ReadOut(id, edgeLabel, vertexLabel, filter)
	})
}

// ListIn lists the neighbours reached over incoming edgeLabel edges.
func (r *GraphRepository) ListIn(ctx context.Context, id, edgeLabel, vertexLabel string, filter graph.Properties) ([]graph.Vertex, error) {
	return r.listVertices(ctx, func(q graph.VertexQuery) string {
		return q.ReadIn(id, edgeLabel, vertexLabel, filter)
	})
}

func (r *GraphRepository) listVertices(ctx context.Context, build func(graph.VertexQuery) string) ([]graph.Vertex, error) {
	return run(ctx, r, func(c graph.DatabaseClient) ([]graph.Vertex, error) {
		b := c.Builder()
		rows, err := c.ExecuteQuery(ctx, build(b.Query.Vertex), nil)
		if err != nil {
			return nil, err
		}
		vertices, err := b.Response.Vertex.BuildList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to decode vertices: %w", err)
		}
		return vertices, nil
	})
}

// UpdateVertex sets props on a vertex and returns it, or ErrNotFound.
func (r *GraphRepository) UpdateVertex(ctx context.Context, id string, props graph.Properties) (*graph.Vertex, error) {
	return run(ctx, r, func(c graph.DatabaseClient) (*graph.Vertex, error) {
		b := c.Builder()
		query, err := b.Query.Vertex.Update(id, props)
		if err != nil {
			return nil, err
		}
		rows, err := c.ExecuteQuery(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		v, err := b.Response.Vertex.BuildItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to decode vertex %s: %w", id, err)
		}
		if v == nil {
			return nil, fmt.Errorf("vertex %s: %w", id, ErrNotFound)
		}
		return v, nil
	})
}

// DeleteVertex drops a vertex and its edges.
func (r *GraphRepository) DeleteVertex(ctx context.Context, id string) error {
	return r.exec(ctx, func(b graph.Builder) string {
		return b.Query.Vertex.Delete(id)
	})
}

// --- edges ---

// CreateEdge links outID to inID. An empty id gets a fresh UUID.
func (r *GraphRepository) CreateEdge(ctx context.Context, label, outID, inID, id string, props graph.Properties) (*graph.Edge, error) {
	if id == "" {
		id = uuid.NewString()
	}
	return run(ctx, r, func(c graph.DatabaseClient) (*graph.Edge, error) {
		b := c.Builder()
		query, err := b.Query.Edge.Create(label, outID, inID, id, props)
		if err != nil {
			return nil, err
		}
		rows, err := c.ExecuteQuery(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		e, err := b.Response.Edge.BuildItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to decode created edge %s: %w", id, err)
		}
		r.logger.WithFields(logrus.Fields{"label": label, "uuid": id, "out": outID, "in": inID}).Debug("edge created")
		return e, nil
	})
}

// GetEdge reads one edge, or ErrNotFound.
func (r *GraphRepository) GetEdge(ctx context.Context, id string) (*graph.Edge, error) {
	return run(ctx, r, func(c graph.DatabaseClient) (*graph.Edge, error) {
		b := c.Builder()
		rows, err := c.ExecuteQuery(ctx, b.Query.Edge.Read(id), nil)
		if err != nil {
			return nil, err
		}
		e, err := b.Response.Edge.BuildItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to decode edge %s: %w", id, err)
		}
		if e == nil {
			return nil, fmt.Errorf("edge %s: %w", id, ErrNotFound)
		}
		return e, nil
	})
}

// ListEdges lists edges with label matching filter.
func (r *GraphRepository) ListEdges(ctx context.Context, label string, filter graph.Properties) ([]graph.Edge, error) {
	return r.listEdges(ctx, func(q graph.EdgeQuery) string {
		return q.List(label, filter)
	})
}

// ListProjectEdges lists the relation edges among a project's items.
func (r *GraphRepository) ListProjectEdges(ctx context.Context, projectID, relation string) ([]graph.Edge, error) {
	return r.listEdges(ctx, func(q graph.EdgeQuery) string {
		return q.ListByProject(projectID, relation)
	})
}

// ListOutEdges lists the outgoing label edges of a vertex.
func (r *GraphRepository) ListOutEdges(ctx context.Context, id, label string) ([]graph.Edge, error) {
	return r.listEdges(ctx, func(q graph.EdgeQuery) string {
		return q.ReadOut(id, label)
	})
}

// ListInEdges lists the incoming label edges of a vertex.
func (r *GraphRepository) ListInEdges(ctx context.Context, id, label string) ([]graph.Edge, error) {
	return r.listEdges(ctx, func(q graph.EdgeQuery) string {
		return q.ReadIn(id, label)
	})
}

func (r *GraphRepository) listEdges(ctx context.Context, build func(graph.EdgeQuery) string) ([]graph.Edge, error) {
	return run(ctx, r, func(c graph.DatabaseClient) ([]graph.Edge, error) {
		b := c.Builder()
		rows, err := c.ExecuteQuery(ctx, build(b.Query.Edge), nil)
		if err != nil {
			return nil, err
		}
		edges, err := b.Response.Edge.BuildList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to decode edges: %w", err)
		}
		return edges, nil
	})
}

// UpdateEdge submits the edge update batch in order within one client
// scope and decodes the result of the final statement.
func (r *GraphRepository) UpdateEdge(ctx context.Context, id string, props graph.Properties) (*graph.Edge, error) {
	return run(ctx, r, func(c graph.DatabaseClient) (*graph.Edge, error) {
		b := c.Builder()
		batch, err := b.Query.Edge.Update(id, props)
		if err != nil {
			return nil, err
		}

		var rows []any
		for i, statement := range batch {
			rows, err = c.ExecuteQuery(ctx, statement, nil)
			if err != nil {
				r.logger.WithError(err).WithFields(logrus.Fields{"uuid": id, "statement": i}).Debug("edge update batch aborted")
				return nil, err
			}
		}

		e, err := b.Response.Edge.BuildItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to decode edge %s: %w", id, err)
		}
		if e == nil {
			return nil, fmt.Errorf("edge %s: %w", id, ErrNotFound)
		}
		return e, nil
	})
}

// DeleteEdge drops one edge.
func (r *GraphRepository) DeleteEdge(ctx context.Context, id string) error {
	return r.exec(ctx, func(b graph.Builder) string {
		return b.Query.Edge.Delete(id)
	})
}

// DeleteVertexEdges drops every edge touching a vertex.
func (r *GraphRepository) DeleteVertexEdges(ctx context.Context, id string) error {
	return r.exec(ctx, func(b graph.Builder) string {
		return b.Query.Edge.DeleteAllFromVertex(id)
	})
}

// exec runs a traversal whose result is discarded.
func (r *GraphRepository) exec(ctx context.Context, build func(graph.Builder) string) error {
	client, err := r.newClient()
	if err != nil {
		return err
	}
	return graph.WithClient(ctx, client, func(c graph.DatabaseClient) error {
		_, err := c.ExecuteQuery(ctx, build(c.Builder()), nil)
		return err
	})
}
