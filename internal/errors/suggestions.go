package errors

import (
	"errors"

	"github.com/systmms/keymaster/internal/retrieve"
	"github.com/systmms/keymaster/internal/store"
	"github.com/systmms/keymaster/internal/store/contracts"
)

// KeychainSuggestion returns a hint for a store or retrieval failure, or ""
// when there is nothing useful to add.
func KeychainSuggestion(err error) string {
	var authErr *retrieve.AuthenticationFailedError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, store.ErrEmptyName), errors.Is(err, store.ErrEmptyValue):
		return "Provide a non-empty key and secret"
	case errors.Is(err, contracts.ErrItemExists):
		return "The key already exists; use --force to replace it"
	case errors.Is(err, store.ErrWriteFailed):
		return "Check that the keychain is unlocked and allows keymaster to modify the item"
	case errors.Is(err, store.ErrDeleteFailed):
		return "Check the key name; it may not exist in the keychain"
	case errors.As(err, &authErr):
		return "Run 'keymaster doctor' to check biometric support for this session"
	case errors.Is(err, retrieve.ErrNoNamesRequested):
		return "Name at least one key to retrieve"
	}
	return ""
}
