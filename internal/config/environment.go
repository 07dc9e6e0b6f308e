package config

import (
	"os"
	"strings"

	"github.com/decisionlab/dagraph/internal/errors"
)

// Environment is the deployment discriminator that selects the graph backend.
type Environment string

const (
	// EnvLocal runs against a self-hosted Gremlin Server (docker compose)
	EnvLocal Environment = "local"
	// EnvDev, EnvTest, EnvStaging and EnvProduction run against Azure Cosmos DB
	EnvDev        Environment = "dev"
	EnvTest       Environment = "test"
	EnvStaging    Environment = "staging"
	EnvProduction Environment = "production"
)

// ParseEnvironment normalises a discriminator. Empty means local; unknown
// values are configuration errors.
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "local":
		return EnvLocal, nil
	case "dev", "development":
		return EnvDev, nil
	case "test":
		return EnvTest, nil
	case "staging", "stage":
		return EnvStaging, nil
	case "prod", "production":
		return EnvProduction, nil
	default:
		return "", errors.ConfigErrorf("unknown environment %q (expected local, dev, test, staging or production)", s)
	}
}

// String returns the string representation of the environment
func (e Environment) String() string {
	return string(e)
}

// UsesCosmos reports whether the environment is served by Azure Cosmos DB.
func (e Environment) UsesCosmos() bool {
	return e != EnvLocal
}

// Description returns a human-readable description of the environment
func (e Environment) Description() string {
	if e.UsesCosmos() {
		return "Azure Cosmos DB Gremlin endpoint (" + string(e) + ")"
	}
	return "Local Gremlin Server"
}

// isCI detects if running in a CI/CD environment
func isCI() bool {
	ciEnvVars := []string{
		"CI",                     // Generic CI indicator
		"CONTINUOUS_INTEGRATION", // Generic CI indicator
		"GITHUB_ACTIONS",         // GitHub Actions
		"GITLAB_CI",              // GitLab CI
		"JENKINS_URL",            // Jenkins
		"TF_BUILD",               // Azure Pipelines
	}

	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return true
		}
	}

	return false
}
