package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/decisionlab/dagraph/internal/errors"
)

func TestGetCosmosKey_EnvironmentWins(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(KeyringService, KeyringCosmosKeyItem, "from-keychain"))
	t.Setenv(CosmosKeyEnv, "from-env")

	cm := NewCredentialManagerWithPath(filepath.Join(t.TempDir(), "credentials.yaml"))
	key, err := cm.GetCosmosKey()
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
}

func TestGetCosmosKey_KeychainBeforeFile(t *testing.T) {
	keyring.MockInit()
	t.Setenv(CosmosKeyEnv, "")
	require.NoError(t, keyring.Set(KeyringService, KeyringCosmosKeyItem, "from-keychain"))

	path := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cosmos_key: from-file\n"), 0600))

	key, err := NewCredentialManagerWithPath(path).GetCosmosKey()
	require.NoError(t, err)
	assert.Equal(t, "from-keychain", key)
}

func TestGetCosmosKey_FileFallback(t *testing.T) {
	keyring.MockInit()
	t.Setenv(CosmosKeyEnv, "")

	path := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cosmos_key: from-file\n"), 0600))

	key, err := NewCredentialManagerWithPath(path).GetCosmosKey()
	require.NoError(t, err)
	assert.Equal(t, "from-file", key)
}

func TestGetCosmosKey_NotFound(t *testing.T) {
	keyring.MockInit()
	t.Setenv(CosmosKeyEnv, "")

	_, err := NewCredentialManagerWithPath(filepath.Join(t.TempDir(), "missing.yaml")).GetCosmosKey()
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeConfig, errors.GetType(err))
	assert.Contains(t, err.Error(), CosmosKeyEnv)
}

func TestPromptForCosmosKey_ReadsPipedInput(t *testing.T) {
	keyring.MockInit()

	var out strings.Builder
	cm := NewCredentialManagerWithPath(filepath.Join(t.TempDir(), "credentials.yaml"))
	cm.in = strings.NewReader("  typed-key  \n")
	cm.out = &out

	key, err := cm.promptForCosmosKey()
	require.NoError(t, err)
	assert.Equal(t, "typed-key", key)
	assert.Contains(t, out.String(), "Cosmos DB account key")

	stored, err := NewKeyringManager().GetCosmosKey()
	require.NoError(t, err)
	assert.Equal(t, "typed-key", stored)
}

func TestPromptForCosmosKey_EmptyInput(t *testing.T) {
	keyring.MockInit()

	cm := NewCredentialManagerWithPath(filepath.Join(t.TempDir(), "credentials.yaml"))
	cm.in = strings.NewReader("\n")
	cm.out = &strings.Builder{}

	_, err := cm.promptForCosmosKey()
	assert.Error(t, err)
}

func TestSaveFile_UserOnlyPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.yaml")
	cm := NewCredentialManagerWithPath(path)

	require.NoError(t, cm.saveFile(Credentials{CosmosKey: "secret"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	creds, err := cm.loadFile()
	require.NoError(t, err)
	assert.Equal(t, "secret", creds.CosmosKey)
}
