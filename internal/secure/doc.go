// Package secure holds released secret values in protected memory.
//
// Values are sealed in a memguard enclave as soon as they leave the platform
// store: the plaintext is encrypted at rest in memory (XSalsa20Poly1305), the
// key material is mlocked, and the source slice is wiped. Plaintext only exists
// inside a locked buffer for the duration of a Reveal callback.
//
// # Usage
//
//	v := secure.Seal(data) // data is wiped
//	defer v.Destroy()
//
//	err := v.Reveal(func(plain []byte) error {
//	    _, err := fmt.Fprintf(w, "%s\n", plain)
//	    return err
//	})
//
// # Platform Behavior
//
// Memory locking needs RLIMIT_MEMLOCK headroom on Linux and works out of the
// box on macOS. When mlock fails memguard still encrypts the enclave, so the
// package degrades to encrypted-but-swappable memory rather than failing.
//
// Call memguard.Purge before the process exits to wipe every remaining
// buffer; cmd/keymaster does this on normal exit and on interrupt.
//
// It does NOT protect against an attacker with access to the running process
// or against Go strings the caller derives from the plaintext.
package secure
