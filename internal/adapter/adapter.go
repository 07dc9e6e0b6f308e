// Package adapter selects the graph backend for a deployment environment.
// It is the only place backend selection lives; everything else depends on
// graph.DatabaseClient.
package adapter

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/decisionlab/dagraph/internal/cache"
	"github.com/decisionlab/dagraph/internal/config"
	"github.com/decisionlab/dagraph/internal/graph"
)

// Settings carries the connection parameters of both backends.
type Settings struct {
	GremlinURL      string
	TraversalSource string

	CosmosEndpoint    string
	CosmosKey         string
	CosmosDatabase    string
	RequestsPerSecond float64
	Burst             int

	Logger *logrus.Logger
}

// New constructs exactly one client for env. "local" and "" select the
// Gremlin Server; dev, test, staging and production select Azure Cosmos DB.
// opts are applied after the options derived from settings.
func New(env string, s Settings, opts ...graph.Option) (graph.DatabaseClient, error) {
	parsed, err := config.ParseEnvironment(env)
	if err != nil {
		return nil, err
	}

	base := []graph.Option{
		graph.WithLogger(s.Logger),
		graph.WithTraversalSource(s.TraversalSource),
	}

	if !parsed.UsesCosmos() {
		return graph.NewGremlinClient(s.GremlinURL, append(base, opts...)...), nil
	}

	base = append(base, graph.WithRateLimit(s.RequestsPerSecond, s.Burst))
	return graph.NewAzureCosmosClient(s.CosmosEndpoint, s.CosmosKey, s.CosmosDatabase, append(base, opts...)...), nil
}

// SettingsFromConfig maps loaded configuration onto Settings.
func SettingsFromConfig(cfg *config.Config, logger *logrus.Logger) Settings {
	return Settings{
		GremlinURL:        cfg.Gremlin.URL,
		TraversalSource:   cfg.Gremlin.TraversalSource,
		CosmosEndpoint:    cfg.Cosmos.Endpoint,
		CosmosKey:         cfg.Cosmos.Key,
		CosmosDatabase:    cfg.Cosmos.Database,
		RequestsPerSecond: cfg.Cosmos.RequestsPerSecond,
		Burst:             cfg.Cosmos.Burst,
		Logger:            logger,
	}
}

// Factory hands out a fresh client per request or session. Clients share
// the resolved settings and, when enabled, one Redis row cache.
type Factory struct {
	env      string
	settings Settings
	opts     []graph.Option
	cache    *cache.Client
	cacheTTL time.Duration
	logger   *logrus.Logger
}

// FromConfig validates the environment, resolves the Cosmos key through the
// credential chain when it is not configured and connects the row cache when
// enabled. Close the factory to release the cache connection.
func FromConfig(ctx context.Context, cfg *config.Config, logger *logrus.Logger, opts ...graph.Option) (*Factory, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	env, err := config.ParseEnvironment(cfg.Environment)
	if err != nil {
		return nil, err
	}

	settings := SettingsFromConfig(cfg, logger)
	if env.UsesCosmos() && settings.CosmosKey == "" {
		key, err := config.NewCredentialManager().GetCosmosKey()
		if err != nil {
			return nil, err
		}
		settings.CosmosKey = key
	}

	f := &Factory{
		env:      env.String(),
		settings: settings,
		opts:     opts,
		cacheTTL: cfg.Cache.TTL,
		logger:   logger,
	}

	if cfg.Cache.Enabled {
		rc, err := cache.NewClient(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, logger)
		if err != nil {
			return nil, err
		}
		f.cache = rc
	}

	logger.WithFields(logrus.Fields{
		"environment": env.String(),
		"backend":     env.Description(),
		"cache":       f.cache != nil,
	}).Debug("graph adapter configured")
	return f, nil
}

// Client constructs a new, unconnected client.
func (f *Factory) Client() (graph.DatabaseClient, error) {
	client, err := New(f.env, f.settings, f.opts...)
	if err != nil {
		return nil, err
	}
	if f.cache != nil {
		return graph.NewCachingClient(client, f.cache, f.cacheTTL, f.logger), nil
	}
	return client, nil
}

// Environment returns the normalised discriminator.
func (f *Factory) Environment() string {
	return f.env
}

// Close releases the row cache connection, if any.
func (f *Factory) Close() error {
	if f.cache == nil {
		return nil
	}
	return f.cache.Close()
}
