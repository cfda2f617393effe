//go:build darwin && cgo

package store

import (
	"errors"
	"fmt"

	gokeychain "github.com/keybase/go-keychain"

	"github.com/systmms/keymaster/internal/store/contracts"
)

// darwinKeychainClient stores items in the macOS login Keychain
type darwinKeychainClient struct{}

// newPlatformClient creates the platform-specific keychain client
func newPlatformClient() contracts.KeychainClient {
	return &darwinKeychainClient{}
}

// Add creates a generic-password item; the Keychain refuses duplicates
func (c *darwinKeychainClient) Add(service, account string, data []byte) error {
	item := gokeychain.NewGenericPassword(
		service,
		account,
		fmt.Sprintf("keymaster: %s", service),
		data,
		"",
	)
	item.SetSynchronizable(gokeychain.SynchronizableNo)
	item.SetAccessible(gokeychain.AccessibleWhenUnlockedThisDeviceOnly)

	if err := gokeychain.AddItem(item); err != nil {
		if errors.Is(err, gokeychain.ErrorDuplicateItem) {
			return contracts.ErrItemExists
		}
		return fmt.Errorf("keychain add: %w", err)
	}
	return nil
}

// Remove deletes the item matching service and account
func (c *darwinKeychainClient) Remove(service, account string) error {
	err := gokeychain.DeleteGenericPasswordItem(service, account)
	if err != nil {
		if errors.Is(err, gokeychain.ErrorItemNotFound) {
			return contracts.ErrItemNotFound
		}
		return fmt.Errorf("keychain delete: %w", err)
	}
	return nil
}

// Query returns the item data
func (c *darwinKeychainClient) Query(service, account string) ([]byte, error) {
	data, err := gokeychain.GetGenericPassword(service, account, "", "")
	if err != nil {
		if errors.Is(err, gokeychain.ErrorItemNotFound) {
			return nil, contracts.ErrItemNotFound
		}
		return nil, fmt.Errorf("keychain query: %w", err)
	}
	// go-keychain reports a missing item as empty data with no error.
	if data == nil {
		return nil, contracts.ErrItemNotFound
	}
	return data, nil
}

// Backend names the macOS Keychain
func (c *darwinKeychainClient) Backend() string {
	return "macos-keychain"
}

var _ contracts.KeychainClient = (*darwinKeychainClient)(nil)
