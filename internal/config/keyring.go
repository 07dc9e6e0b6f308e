package config

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name in the OS keychain
	KeyringService = "dagraph"

	// KeyringCosmosKeyItem is the item holding the Cosmos DB account key
	KeyringCosmosKeyItem = "cosmos-account-key"
)

// KeyringManager handles secure credential storage in OS keychain
type KeyringManager struct {
	logger *logrus.Entry
}

// NewKeyringManager creates a new keyring manager
func NewKeyringManager() *KeyringManager {
	return &KeyringManager{
		logger: logrus.WithField("component", "keyring"),
	}
}

// SetCosmosKey stores the Cosmos DB account key in the OS keychain:
// macOS Keychain, Windows Credential Manager, or Secret Service on Linux.
func (km *KeyringManager) SetCosmosKey(key string) error {
	if key == "" {
		return fmt.Errorf("cosmos key cannot be empty")
	}

	if err := keyring.Set(KeyringService, KeyringCosmosKeyItem, key); err != nil {
		km.logger.WithError(err).Error("failed to save cosmos key to keychain")
		return fmt.Errorf("failed to save to OS keychain: %w", err)
	}

	km.logger.WithField("service", KeyringService).Info("cosmos key saved to keychain")
	return nil
}

// GetCosmosKey retrieves the Cosmos DB account key. A missing entry returns "".
func (km *KeyringManager) GetCosmosKey() (string, error) {
	key, err := keyring.Get(KeyringService, KeyringCosmosKeyItem)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		km.logger.WithError(err).Error("failed to get cosmos key from keychain")
		return "", fmt.Errorf("failed to read from OS keychain: %w", err)
	}

	km.logger.Debug("cosmos key retrieved from keychain")
	return key, nil
}

// DeleteCosmosKey removes the Cosmos DB account key
func (km *KeyringManager) DeleteCosmosKey() error {
	err := keyring.Delete(KeyringService, KeyringCosmosKeyItem)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	if err != nil {
		km.logger.WithError(err).Error("failed to delete cosmos key from keychain")
		return fmt.Errorf("failed to delete from OS keychain: %w", err)
	}

	km.logger.Info("cosmos key deleted from keychain")
	return nil
}

// IsAvailable checks if OS keychain is available.
// Returns false on headless systems (CI/CD) without a secret service.
func (km *KeyringManager) IsAvailable() bool {
	_, err := keyring.Get(KeyringService, "test-availability")
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return true
	}
	km.logger.WithError(err).Debug("keychain not available")
	return false
}

// MaskKey masks a secret for display: first 4 and last 4 characters.
func MaskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) < 12 {
		return "***"
	}
	return fmt.Sprintf("%s...%s", key[:4], key[len(key)-4:])
}
