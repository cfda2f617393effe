// Package contracts defines interfaces for platform client abstractions.
// These interfaces enable dependency injection for testing.
package contracts

import "errors"

// Platform client sentinel errors. Clients translate their native status
// codes into these so callers never depend on a platform library.
var (
	ErrItemNotFound = errors.New("keychain item not found")
	ErrItemExists   = errors.New("keychain item already exists")
)

// KeychainClient abstracts the platform secure store. Items are addressed by
// service and account, mirroring generic-password attributes.
type KeychainClient interface {
	// Add creates an item. It returns ErrItemExists rather than overwriting.
	Add(service, account string, data []byte) error

	// Remove deletes an item. It returns ErrItemNotFound when absent.
	Remove(service, account string) error

	// Query returns the item data or ErrItemNotFound.
	Query(service, account string) ([]byte, error)

	// Backend names the platform service, e.g. "macos-keychain".
	Backend() string
}
