package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/ksakurai/memoplan/internal/constants"
)

var (
	// ErrNotFound is returned when no API key is stored in the keyring
	ErrNotFound = errors.New("API key not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// GetAPIKey retrieves the enrichment service API key from the OS keyring.
// Returns ErrNotFound if no key is stored.
func GetAPIKey() (string, error) {
	key, err := keyring.Get(constants.AppName, constants.KeyringEnrichmentUser)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return key, nil
}

// SetAPIKey stores the enrichment service API key in the OS keyring.
func SetAPIKey(key string) error {
	if key == "" {
		return errors.New("API key cannot be empty")
	}
	if err := keyring.Set(constants.AppName, constants.KeyringEnrichmentUser, key); err != nil {
		return fmt.Errorf("failed to store API key in keyring: %w", err)
	}
	return nil
}

// DeleteAPIKey removes the enrichment service API key from the OS keyring.
func DeleteAPIKey() error {
	err := keyring.Delete(constants.AppName, constants.KeyringEnrichmentUser)
	if err != nil {
		if err == keyring.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete API key from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	// ErrNotFound means the keyring works but is empty.
	return err == nil || err == keyring.ErrNotFound
}
