// Package store persists named secrets in the platform secure store.
//
// On macOS secrets are generic-password items in the login Keychain, scoped
// WhenUnlockedThisDeviceOnly and never synchronised. Elsewhere the OS keyring
// is used (Secret Service on Linux, Credential Manager on Windows).
//
// The store has no authentication logic of its own. Callers that release
// secrets to a user go through internal/retrieve, which gates every batch of
// lookups behind a device-owner challenge.
package store

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/systmms/keymaster/internal/secure"
	"github.com/systmms/keymaster/internal/store/contracts"
)

// SecretStore is the contract between commands, the retrieval coordinator and
// the platform store. Implementations must not synchronise internally; they
// rely on the platform's own per-item guarantees.
type SecretStore interface {
	// Add inserts a secret. An existing entry is a WriteFailed error.
	Add(name string, value []byte) error

	// Delete removes a secret. An absent entry is a DeleteFailed error.
	Delete(name string) error

	// Lookup returns the sealed value, or false when absent, unreadable or
	// not valid UTF-8. It never fails.
	Lookup(name string) (*secure.Value, bool)
}

// Options configures a Keychain.
type Options struct {
	// ServicePrefix is joined to every secret name with a dot.
	ServicePrefix string
	// Account is the account attribute for every item. Empty means items
	// are addressed by service alone, which is how existing keymaster
	// entries were written.
	Account string
}

// Keychain implements SecretStore over a platform KeychainClient.
type Keychain struct {
	client        contracts.KeychainClient
	servicePrefix string
	account       string
}

// NewKeychain creates a store backed by the platform client for this OS.
func NewKeychain(opts Options) *Keychain {
	return NewKeychainWithClient(newPlatformClient(), opts)
}

// NewKeychainWithClient creates a store with a custom client.
// This is primarily for testing, allowing the platform to be faked.
func NewKeychainWithClient(client contracts.KeychainClient, opts Options) *Keychain {
	return &Keychain{
		client:        client,
		servicePrefix: strings.TrimSuffix(opts.ServicePrefix, "."),
		account:       opts.Account,
	}
}

// Backend names the platform service behind this store.
func (k *Keychain) Backend() string {
	return k.client.Backend()
}

// Add stores value under name. The value slice is not retained.
func (k *Keychain) Add(name string, value []byte) error {
	if name == "" {
		return &StoreError{Kind: WriteFailed, Name: name, Err: ErrEmptyName}
	}
	if len(value) == 0 {
		return &StoreError{Kind: WriteFailed, Name: name, Err: ErrEmptyValue}
	}
	if err := k.client.Add(k.service(name), k.account, value); err != nil {
		return &StoreError{Kind: WriteFailed, Name: name, Err: err}
	}
	return nil
}

// Replace deletes any existing entry and then adds value. A delete the
// platform refuses is a WriteFailed error; only an absent entry is ignored.
func (k *Keychain) Replace(name string, value []byte) error {
	if name != "" {
		err := k.client.Remove(k.service(name), k.account)
		if err != nil && !errors.Is(err, contracts.ErrItemNotFound) {
			return &StoreError{Kind: WriteFailed, Name: name, Err: err}
		}
	}
	return k.Add(name, value)
}

// Delete removes the named entry.
func (k *Keychain) Delete(name string) error {
	if name == "" {
		return &StoreError{Kind: DeleteFailed, Name: name}
	}
	if err := k.client.Remove(k.service(name), k.account); err != nil {
		return &StoreError{Kind: DeleteFailed, Name: name}
	}
	return nil
}

// Lookup reads the named entry and seals it. The raw bytes from the client
// are wiped whether or not they are returned.
func (k *Keychain) Lookup(name string) (*secure.Value, bool) {
	if name == "" {
		return nil, false
	}
	data, err := k.client.Query(k.service(name), k.account)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	if !utf8.Valid(data) {
		wipe(data)
		return nil, false
	}
	return secure.Seal(data), true
}

// service applies the configured prefix to a secret name
func (k *Keychain) service(name string) string {
	if k.servicePrefix == "" {
		return name
	}
	return k.servicePrefix + "." + name
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

var _ SecretStore = (*Keychain)(nil)
