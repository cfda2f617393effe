package secure

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrDestroyed is returned by Reveal after Destroy has been called.
var ErrDestroyed = errors.New("secure value has been destroyed")

// Value is one secret sealed in a memguard enclave.
//
// The zero value is not usable; construct with Seal. A Value is safe for
// concurrent use.
type Value struct {
	mu      sync.RWMutex
	enclave *memguard.Enclave
	size    int
}

// Seal moves data into an encrypted enclave and wipes the source slice.
// Seal returns nil for empty input since memguard cannot seal zero bytes.
func Seal(data []byte) *Value {
	if len(data) == 0 {
		return nil
	}
	size := len(data)
	return &Value{
		enclave: memguard.NewEnclave(data),
		size:    size,
	}
}

// Len returns the plaintext length, or zero once destroyed.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.enclave == nil {
		return 0
	}
	return v.size
}

// Reveal decrypts the value into a locked buffer and passes the plaintext to
// fn. The buffer is destroyed when fn returns, so fn must not retain the slice.
func (v *Value) Reveal(fn func(plain []byte) error) error {
	if v == nil {
		return ErrDestroyed
	}
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.enclave == nil {
		return ErrDestroyed
	}

	locked, err := v.enclave.Open()
	if err != nil {
		return err
	}
	defer locked.Destroy()

	return fn(locked.Bytes())
}

// String returns a copy of the plaintext as a Go string. Strings cannot be
// wiped; prefer Reveal when the value is written straight to an io.Writer.
func (v *Value) String() string {
	var s string
	_ = v.Reveal(func(plain []byte) error {
		s = string(plain)
		return nil
	})
	return s
}

// Destroy drops the enclave. It is idempotent and nil-safe.
//
// The enclave ciphertext is left to the garbage collector; its key lives in
// memguard's global session and is wiped by memguard.Purge.
func (v *Value) Destroy() {
	if v == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enclave = nil
	v.size = 0
}
