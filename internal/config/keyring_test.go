package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyringManager_SetAndGetCosmosKey(t *testing.T) {
	keyring.MockInit()
	km := NewKeyringManager()
	require.True(t, km.IsAvailable())

	require.NoError(t, km.SetCosmosKey("cosmos-test-key-123456"))

	key, err := km.GetCosmosKey()
	require.NoError(t, err)
	assert.Equal(t, "cosmos-test-key-123456", key)
}

func TestKeyringManager_GetMissingKey(t *testing.T) {
	keyring.MockInit()
	km := NewKeyringManager()

	key, err := km.GetCosmosKey()
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestKeyringManager_DeleteCosmosKey(t *testing.T) {
	keyring.MockInit()
	km := NewKeyringManager()

	require.NoError(t, km.SetCosmosKey("cosmos-test-delete"))
	require.NoError(t, km.DeleteCosmosKey())

	key, err := km.GetCosmosKey()
	require.NoError(t, err)
	assert.Empty(t, key)

	// deleting twice is not an error
	assert.NoError(t, km.DeleteCosmosKey())
}

func TestKeyringManager_RejectsEmptyKey(t *testing.T) {
	keyring.MockInit()
	assert.Error(t, NewKeyringManager().SetCosmosKey(""))
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"empty", "", "(not set)"},
		{"short", "abc", "***"},
		{"long", "abcd1234567890wxyz", "abcd...wxyz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskKey(tt.key))
		})
	}
}
