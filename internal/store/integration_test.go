//go:build integration

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests use the real platform store.
// Run with: go test -tags integration ./internal/store/
//
// Requires an unlocked login Keychain (macOS) or a running Secret Service
// (Linux); the first run may prompt for access approval.

func integrationStore(t *testing.T) *Keychain {
	t.Helper()
	return NewKeychain(Options{ServicePrefix: "com.keymaster.test"})
}

func TestPlatformRoundTrip(t *testing.T) {
	s := integrationStore(t)
	name := "integration-round-trip"
	t.Cleanup(func() { _ = s.Delete(name) })

	require.NoError(t, s.Add(name, []byte("hello-keychain")))

	v, ok := s.Lookup(name)
	require.True(t, ok)
	assert.Equal(t, "hello-keychain", v.String())
	v.Destroy()

	require.NoError(t, s.Delete(name))
	_, ok = s.Lookup(name)
	assert.False(t, ok)
}

func TestPlatformRejectsDuplicate(t *testing.T) {
	s := integrationStore(t)
	name := "integration-duplicate"
	t.Cleanup(func() { _ = s.Delete(name) })

	require.NoError(t, s.Add(name, []byte("first")))
	assert.ErrorIs(t, s.Add(name, []byte("second")), ErrWriteFailed)
}
