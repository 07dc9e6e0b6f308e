package graph

import (
	"context"

	gremlingo "github.com/apache/tinkerpop/gremlin-go/v3/driver"
)

// GremlinNotConnected is returned verbatim when a GremlinClient has no handle.
const GremlinNotConnected = "Not connected to the Gremlin Server."

// GremlinClient talks to a self-hosted Gremlin Server over websocket.
type GremlinClient struct {
	*baseClient
	connectionString string
}

// NewGremlinClient builds a client for ws(s)://host:port/gremlin. No
// connection is opened until Connect.
func NewGremlinClient(connectionString string, opts ...Option) *GremlinClient {
	c := &GremlinClient{connectionString: connectionString}
	c.baseClient = newBaseClient("gremlin", GremlinNotConnected, opts)
	if c.dial == nil {
		c.dial = c.dialServer
	}
	return c
}

// ConnectionString returns the server endpoint.
func (c *GremlinClient) ConnectionString() string {
	return c.connectionString
}

func (c *GremlinClient) dialServer(context.Context) (Submitter, error) {
	client, err := gremlingo.NewClient(c.connectionString, func(settings *gremlingo.ClientSettings) {
		settings.TraversalSource = c.source
	})
	if err != nil {
		return nil, err
	}
	return &gremlinSubmitter{client: client}, nil
}

type gremlinSubmitter struct {
	client *gremlingo.Client
}

// Submit blocks until the full result set has arrived. The driver has no
// per-request cancellation, so ctx is not consulted here.
func (s *gremlinSubmitter) Submit(_ context.Context, query string, bindings map[string]any) ([]any, error) {
	var (
		rs  gremlingo.ResultSet
		err error
	)
	if len(bindings) > 0 {
		rs, err = s.client.Submit(query, bindings)
	} else {
		rs, err = s.client.Submit(query)
	}
	if err != nil {
		return nil, err
	}

	results, err := rs.All()
	if err != nil {
		return nil, err
	}
	rows := make([]any, 0, len(results))
	for _, r := range results {
		rows = append(rows, gremlinRow(r.GetInterface()))
	}
	return rows, nil
}

func (s *gremlinSubmitter) Close() error {
	s.client.Close()
	return nil
}

// gremlinRow flattens driver element structs into the map shape the
// response decoders accept.
func gremlinRow(value any) any {
	switch e := value.(type) {
	case *gremlingo.Edge:
		return map[string]any{
			"id":    e.Id,
			"label": e.Label,
			"outV":  e.OutV.Id,
			"inV":   e.InV.Id,
		}
	case *gremlingo.Vertex:
		return map[string]any{
			"id":    e.Id,
			"label": e.Label,
		}
	default:
		return value
	}
}
