package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decisionlab/dagraph/internal/errors"
)

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		in   string
		want Environment
	}{
		{"", EnvLocal},
		{"local", EnvLocal},
		{"LOCAL", EnvLocal},
		{"dev", EnvDev},
		{"development", EnvDev},
		{"test", EnvTest},
		{"staging", EnvStaging},
		{"stage", EnvStaging},
		{" production ", EnvProduction},
		{"prod", EnvProduction},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEnvironment(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEnvironment_Unknown(t *testing.T) {
	_, err := ParseEnvironment("qa")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeConfig, errors.GetType(err))
	assert.Contains(t, err.Error(), `"qa"`)
}

func TestEnvironment_UsesCosmos(t *testing.T) {
	assert.False(t, EnvLocal.UsesCosmos())
	for _, env := range []Environment{EnvDev, EnvTest, EnvStaging, EnvProduction} {
		assert.True(t, env.UsesCosmos(), env)
	}
	assert.Equal(t, "Local Gremlin Server", EnvLocal.Description())
	assert.Contains(t, EnvStaging.Description(), "staging")
}
