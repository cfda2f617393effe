//go:build !darwin || !cgo

package auth

import (
	"context"
	"errors"
)

// ErrNotAvailable is returned on platforms without a biometric service.
var ErrNotAvailable = errors.New("biometric authentication requires macOS with cgo enabled")

// unsupportedAuthenticator is a stub for platforms without LocalAuthentication
type unsupportedAuthenticator struct{}

// NewPlatformAuthenticator returns an authenticator that supports no policy.
func NewPlatformAuthenticator() Authenticator {
	return unsupportedAuthenticator{}
}

func (unsupportedAuthenticator) CanEvaluate(Policy) (bool, error) {
	return false, ErrNotAvailable
}

func (unsupportedAuthenticator) Evaluate(context.Context, Policy, string) (bool, error) {
	return false, ErrNotAvailable
}
