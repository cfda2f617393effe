package fakes

import (
	"context"
	"sync"

	"github.com/systmms/keymaster/internal/auth"
)

// FakeAuthenticator is a test double for auth.Authenticator
type FakeAuthenticator struct {
	mu sync.Mutex

	// Supported is returned by CanEvaluate
	Supported bool
	// CapabilityErr accompanies an unsupported capability check
	CapabilityErr error

	// Pass is the evaluation result
	Pass bool
	// EvaluateErr is returned by Evaluate when set
	EvaluateErr error
	// Block makes Evaluate wait for ctx to end, like an unanswered prompt
	Block bool

	// Recorded calls
	CanEvaluateCalls int
	EvaluateCalls    int
	LastPolicy       auth.Policy
	LastReason       string
}

// NewFakeAuthenticator creates a capable authenticator that passes or fails
func NewFakeAuthenticator(pass bool) *FakeAuthenticator {
	return &FakeAuthenticator{Supported: true, Pass: pass}
}

// NewUnsupportedAuthenticator creates an authenticator for a device
// without biometric hardware
func NewUnsupportedAuthenticator(err error) *FakeAuthenticator {
	return &FakeAuthenticator{Supported: false, CapabilityErr: err}
}

// CanEvaluate reports the configured capability
func (f *FakeAuthenticator) CanEvaluate(policy auth.Policy) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CanEvaluateCalls++
	f.LastPolicy = policy
	return f.Supported, f.CapabilityErr
}

// Evaluate records the prompt and returns the configured result
func (f *FakeAuthenticator) Evaluate(ctx context.Context, policy auth.Policy, reason string) (bool, error) {
	f.mu.Lock()
	f.EvaluateCalls++
	f.LastPolicy = policy
	f.LastReason = reason
	block := f.Block
	pass, err := f.Pass, f.EvaluateErr
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return false, ctx.Err()
	}
	return pass, err
}

// Prompts returns how many challenges were presented
func (f *FakeAuthenticator) Prompts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.EvaluateCalls
}

// Ensure FakeAuthenticator implements auth.Authenticator
var _ auth.Authenticator = (*FakeAuthenticator)(nil)
