//go:build !darwin || !cgo

package store

import (
	"errors"
	"runtime"

	"github.com/zalando/go-keyring"

	"github.com/systmms/keymaster/internal/store/contracts"
)

// keyringClient stores items in the OS keyring (Secret Service on Linux,
// Credential Manager on Windows, security(1) on macOS without cgo)
type keyringClient struct{}

// newPlatformClient creates the platform-specific keychain client
func newPlatformClient() contracts.KeychainClient {
	return &keyringClient{}
}

// Add refuses to overwrite. go-keyring's Set replaces silently, so an
// existing item is checked for first; the check and the write are not atomic.
func (c *keyringClient) Add(service, account string, data []byte) error {
	_, err := keyring.Get(service, account)
	switch {
	case err == nil:
		return contracts.ErrItemExists
	case !errors.Is(err, keyring.ErrNotFound):
		return err
	}
	return keyring.Set(service, account, string(data))
}

// Remove deletes the item matching service and account
func (c *keyringClient) Remove(service, account string) error {
	if err := keyring.Delete(service, account); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return contracts.ErrItemNotFound
		}
		return err
	}
	return nil
}

// Query returns the item data
func (c *keyringClient) Query(service, account string) ([]byte, error) {
	secret, err := keyring.Get(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, contracts.ErrItemNotFound
		}
		return nil, err
	}
	return []byte(secret), nil
}

// Backend names the keyring flavour for this OS
func (c *keyringClient) Backend() string {
	switch runtime.GOOS {
	case "linux":
		return "secret-service"
	case "windows":
		return "windows-credential-manager"
	case "darwin":
		return "macos-security-cli"
	default:
		return "keyring-" + runtime.GOOS
	}
}

var _ contracts.KeychainClient = (*keyringClient)(nil)
