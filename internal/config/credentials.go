package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/decisionlab/dagraph/internal/errors"
)

// CosmosKeyEnv is the environment variable holding the Cosmos DB account key.
const CosmosKeyEnv = "COSMOS_KEY"

// CredentialManager resolves the Cosmos DB key with a priority chain:
// environment variable, OS keychain, credentials file, interactive prompt.
type CredentialManager struct {
	keyring     *KeyringManager
	path        string
	interactive bool
	in          io.Reader
	out         io.Writer
}

// Credentials is the on-disk credentials file layout.
type Credentials struct {
	CosmosKey string `yaml:"cosmos_key"`
}

// NewCredentialManager uses ~/.config/dagraph/credentials.yaml and prompts
// only when stdin is a terminal outside CI.
func NewCredentialManager() *CredentialManager {
	homeDir, _ := os.UserHomeDir()
	return &CredentialManager{
		keyring:     NewKeyringManager(),
		path:        filepath.Join(homeDir, ".config", "dagraph", "credentials.yaml"),
		interactive: isInteractive() && !isCI(),
		in:          os.Stdin,
		out:         os.Stdout,
	}
}

// NewCredentialManagerWithPath is NewCredentialManager with an explicit
// credentials file and no prompting.
func NewCredentialManagerWithPath(path string) *CredentialManager {
	cm := NewCredentialManager()
	cm.path = path
	cm.interactive = false
	return cm
}

// GetCosmosKey retrieves the Cosmos DB account key using the priority chain
func (cm *CredentialManager) GetCosmosKey() (string, error) {
	if key := os.Getenv(CosmosKeyEnv); key != "" {
		return key, nil
	}

	if cm.keyring.IsAvailable() {
		if key, err := cm.keyring.GetCosmosKey(); err == nil && key != "" {
			return key, nil
		}
	}

	if creds, err := cm.loadFile(); err == nil && creds.CosmosKey != "" {
		return creds.CosmosKey, nil
	}

	if cm.interactive {
		return cm.promptForCosmosKey()
	}

	return "", errors.ConfigErrorf(
		"%s not found. Set it via:\n"+
			"  1. Environment variable: export %s=...\n"+
			"  2. Run: dagraph config set-key (to store it in the keychain)\n"+
			"  3. Credentials file: %s", CosmosKeyEnv, CosmosKeyEnv, cm.path)
}

// SaveCosmosKey stores the key in the keychain, falling back to the
// credentials file when no keychain is available.
func (cm *CredentialManager) SaveCosmosKey(key string) error {
	if cm.keyring.IsAvailable() {
		if err := cm.keyring.SetCosmosKey(key); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, errors.SeverityHigh,
				"failed to save Cosmos key to keychain")
		}
		return nil
	}
	return cm.saveFile(Credentials{CosmosKey: key})
}

// Path returns the credentials file location
func (cm *CredentialManager) Path() string {
	return cm.path
}

func (cm *CredentialManager) loadFile() (*Credentials, error) {
	data, err := os.ReadFile(cm.path)
	if err != nil {
		return nil, err
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (cm *CredentialManager) saveFile(creds Credentials) error {
	if err := os.MkdirAll(filepath.Dir(cm.path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(creds)
	if err != nil {
		return err
	}

	// user-only read/write
	return os.WriteFile(cm.path, data, 0600)
}

func (cm *CredentialManager) promptForCosmosKey() (string, error) {
	fmt.Fprint(cm.out, "Enter Azure Cosmos DB account key: ")
	key, err := cm.readSecurely()
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", errors.ConfigError("Cosmos DB account key is required")
	}

	if err := cm.SaveCosmosKey(key); err == nil {
		fmt.Fprintln(cm.out, "✓ Saved")
	}
	return key, nil
}

// readSecurely reads a secret without echo when stdin is a terminal.
func (cm *CredentialManager) readSecurely() (string, error) {
	if f, ok := cm.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytes, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cm.out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(bytes)), nil
	}

	line, err := bufio.NewReader(cm.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// isInteractive returns true if stdin is a terminal (not piped)
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
