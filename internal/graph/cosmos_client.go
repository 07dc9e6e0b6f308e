package graph

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/supplyon/gremcos"
	"github.com/supplyon/gremcos/interfaces"
)

const (
	// CosmosNotConnected is returned verbatim when an AzureCosmosClient has no handle.
	CosmosNotConnected = "Not connected to the Azure CosmosDB Server."

	// CosmosContainerName is the graph container holding every decision item.
	CosmosContainerName = "decisionItems"
)

// AzureCosmosClient talks to the Gremlin endpoint of an Azure Cosmos DB
// account. The credential is the account key; it is used at connect time.
type AzureCosmosClient struct {
	*baseClient
	connectionString string
	credential       string
	databaseName     string
}

// NewAzureCosmosClient builds a client for wss://<account>.gremlin.cosmos.azure.com:443/.
func NewAzureCosmosClient(connectionString, credential, databaseName string, opts ...Option) *AzureCosmosClient {
	c := &AzureCosmosClient{
		connectionString: connectionString,
		credential:       credential,
		databaseName:     databaseName,
	}
	c.baseClient = newBaseClient("cosmos", CosmosNotConnected, opts)
	if c.dial == nil {
		c.dial = c.dialCosmos
	}
	return c
}

// ConnectionString returns the Gremlin endpoint.
func (c *AzureCosmosClient) ConnectionString() string { return c.connectionString }

// DatabaseName returns the Cosmos database holding the container.
func (c *AzureCosmosClient) DatabaseName() string { return c.databaseName }

// ContainerName returns the fixed graph container.
func (c *AzureCosmosClient) ContainerName() string { return CosmosContainerName }

// Username is the resource path Cosmos expects as the Gremlin user name.
func (c *AzureCosmosClient) Username() string {
	return fmt.Sprintf("/dbs/%s/colls/%s", c.databaseName, CosmosContainerName)
}

func (c *AzureCosmosClient) dialCosmos(context.Context) (Submitter, error) {
	cosmos, err := gremcos.New(c.connectionString, gremcos.WithAuth(c.Username(), c.credential))
	if err != nil {
		return nil, err
	}
	return &cosmosSubmitter{cosmos: cosmos}, nil
}

type cosmosSubmitter struct {
	cosmos gremcos.Cosmos
}

func (s *cosmosSubmitter) Submit(_ context.Context, query string, bindings map[string]any) ([]any, error) {
	var (
		responses []interfaces.Response
		err       error
	)
	if len(bindings) > 0 {
		responses, err = s.cosmos.ExecuteWithBindings(query, bindings, nil)
	} else {
		responses, err = s.cosmos.Execute(query)
	}
	if err != nil {
		return nil, err
	}
	return decodeCosmosResponses(responses)
}

func (s *cosmosSubmitter) Close() error {
	return s.cosmos.Stop()
}

// decodeCosmosResponses concatenates the GraphSON result pages of one
// request into a flat row list.
func decodeCosmosResponses(responses []interfaces.Response) ([]any, error) {
	var rows []any
	for _, r := range responses {
		if len(r.Result.Data) == 0 {
			continue
		}
		var page []any
		if err := json.Unmarshal(r.Result.Data, &page); err != nil {
			var single any
			if err := json.Unmarshal(r.Result.Data, &single); err != nil {
				return nil, fmt.Errorf("decode cosmos result page: %w", err)
			}
			page = []any{single}
		}
		rows = append(rows, page...)
	}
	return rows, nil
}
