package adapter

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decisionlab/dagraph/internal/config"
	"github.com/decisionlab/dagraph/internal/errors"
	"github.com/decisionlab/dagraph/internal/graph"
)

func TestNew_SelectsBackend(t *testing.T) {
	settings := Settings{
		GremlinURL:     "ws://localhost:8182/gremlin",
		CosmosEndpoint: "wss://acct.gremlin.cosmos.azure.com:443/",
		CosmosKey:      "key",
		CosmosDatabase: "decisions",
	}

	tests := []struct {
		env    string
		cosmos bool
	}{
		{"", false},
		{"local", false},
		{"dev", true},
		{"test", true},
		{"staging", true},
		{"prod", true},
		{"production", true},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			client, err := New(tt.env, settings)
			require.NoError(t, err)

			if tt.cosmos {
				cosmos, ok := client.(*graph.AzureCosmosClient)
				require.True(t, ok, "got %T", client)
				assert.Equal(t, "/dbs/decisions/colls/decisionItems", cosmos.Username())
				assert.Equal(t, settings.CosmosEndpoint, cosmos.ConnectionString())
			} else {
				gremlin, ok := client.(*graph.GremlinClient)
				require.True(t, ok, "got %T", client)
				assert.Equal(t, settings.GremlinURL, gremlin.ConnectionString())
			}
			assert.Equal(t, "g", client.TraversalSource())
			assert.False(t, client.IsConnected())
		})
	}
}

func TestNew_UnknownEnvironment(t *testing.T) {
	_, err := New("qa", Settings{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeConfig, errors.GetType(err))
}

func TestNew_DisconnectedMessages(t *testing.T) {
	ctx := context.Background()

	local, err := New("local", Settings{})
	require.NoError(t, err)
	_, err = local.ExecuteQuery(ctx, "g.V()", nil)
	require.Error(t, err)
	assert.Equal(t, "Not connected to the Gremlin Server.", err.Error())

	cosmos, err := New("staging", Settings{})
	require.NoError(t, err)
	_, err = cosmos.ExecuteQuery(ctx, "g.V()", nil)
	require.Error(t, err)
	assert.Equal(t, "Not connected to the Azure CosmosDB Server.", err.Error())
}

func TestNew_ExtraOptionsApplied(t *testing.T) {
	sub := graph.NewMemorySubmitter()
	sub.PushResult(map[string]any{"id": []any{"u1"}, "label": "Project"})

	client, err := New("local", Settings{TraversalSource: "decisions"}, graph.WithDialer(sub.Dialer()))
	require.NoError(t, err)
	assert.Equal(t, "decisions", client.TraversalSource())

	rows, err := graph.WithClientResult(context.Background(), client, func(c graph.DatabaseClient) ([]any, error) {
		return c.ExecuteQuery(context.Background(), c.Builder().Query.Vertex.Read("u1"), nil)
	})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, []string{"g.V('u1').valueMap(true)"}, sub.Queries())
	assert.Equal(t, 1, sub.Closes())
}

func TestFromConfig_Local(t *testing.T) {
	cfg := config.Default()

	f, err := FromConfig(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "local", f.Environment())
	client, err := f.Client()
	require.NoError(t, err)
	assert.IsType(t, &graph.GremlinClient{}, client)
}

func TestFromConfig_CosmosKeyFromEnvironment(t *testing.T) {
	t.Setenv(config.CosmosKeyEnv, "env-key")

	cfg := config.Default()
	cfg.Environment = "production"
	cfg.Cosmos.Endpoint = "wss://acct.gremlin.cosmos.azure.com:443/"

	f, err := FromConfig(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "env-key", f.settings.CosmosKey)
	client, err := f.Client()
	require.NoError(t, err)
	assert.IsType(t, &graph.AzureCosmosClient{}, client)
}

func TestFromConfig_UnknownEnvironment(t *testing.T) {
	cfg := config.Default()
	cfg.Environment = "qa"

	_, err := FromConfig(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestFromConfig_WrapsWithCache(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Cache.Enabled = true
	cfg.Cache.RedisAddr = mr.Addr()

	f, err := FromConfig(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer f.Close()

	client, err := f.Client()
	require.NoError(t, err)
	caching, ok := client.(*graph.CachingClient)
	require.True(t, ok, "got %T", client)
	assert.IsType(t, &graph.GremlinClient{}, caching.DatabaseClient)
}
