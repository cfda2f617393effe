package fakes

import (
	"sort"
	"sync"

	"github.com/systmms/keymaster/internal/store/contracts"
)

// FakeKeychainClient is a test double for contracts.KeychainClient
type FakeKeychainClient struct {
	mu sync.Mutex

	// Secrets is a map of service -> account -> value
	Secrets map[string]map[string][]byte

	// AddErr, RemoveErr and QueryErr override normal behaviour when set
	AddErr    error
	RemoveErr error
	QueryErr  error

	// Call counters
	AddCalls    int
	RemoveCalls int
	QueryCalls  int
}

// NewFakeKeychainClient creates an empty fake keychain
func NewFakeKeychainClient() *FakeKeychainClient {
	return &FakeKeychainClient{
		Secrets: make(map[string]map[string][]byte),
	}
}

// SetSecret seeds an item directly, bypassing duplicate checks
func (f *FakeKeychainClient) SetSecret(service, account string, value []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.put(service, account, value)
}

// Has reports whether an item exists
func (f *FakeKeychainClient) Has(service, account string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.Secrets[service][account]
	return ok
}

// Add creates an item, refusing duplicates
func (f *FakeKeychainClient) Add(service, account string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AddCalls++

	if f.AddErr != nil {
		return f.AddErr
	}
	if _, ok := f.Secrets[service][account]; ok {
		return contracts.ErrItemExists
	}
	f.put(service, account, append([]byte(nil), data...))
	return nil
}

// Remove deletes an item
func (f *FakeKeychainClient) Remove(service, account string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RemoveCalls++

	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	match, ok := f.match(service, account)
	if !ok {
		return contracts.ErrItemNotFound
	}
	delete(f.Secrets[service], match)
	return nil
}

// Query returns a copy of the item data, since callers wipe what they get
func (f *FakeKeychainClient) Query(service, account string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.QueryCalls++

	if f.QueryErr != nil {
		return nil, f.QueryErr
	}
	match, ok := f.match(service, account)
	if !ok {
		return nil, contracts.ErrItemNotFound
	}
	return append([]byte(nil), f.Secrets[service][match]...), nil
}

// Backend names the fake
func (f *FakeKeychainClient) Backend() string {
	return "fake"
}

// match finds the account to act on. Like the macOS Keychain, an empty
// account matches any item for the service, preferring a service-only item.
func (f *FakeKeychainClient) match(service, account string) (string, bool) {
	items := f.Secrets[service]
	if _, ok := items[account]; ok {
		return account, true
	}
	if account != "" || len(items) == 0 {
		return "", false
	}
	accounts := make([]string, 0, len(items))
	for a := range items {
		accounts = append(accounts, a)
	}
	sort.Strings(accounts)
	return accounts[0], true
}

func (f *FakeKeychainClient) put(service, account string, value []byte) {
	if f.Secrets == nil {
		f.Secrets = make(map[string]map[string][]byte)
	}
	if f.Secrets[service] == nil {
		f.Secrets[service] = make(map[string][]byte)
	}
	f.Secrets[service][account] = value
}

// Ensure FakeKeychainClient implements contracts.KeychainClient
var _ contracts.KeychainClient = (*FakeKeychainClient)(nil)
