// Package auth gates secret release behind a device-owner challenge.
//
// A Gate runs one challenge per call in two phases: a capability check for
// the configured Policy, then a single evaluation that waits for the user.
// The result is an Outcome, never a secret; callers perform lookups only
// after Outcome.Passed is true.
package auth

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/systmms/keymaster/internal/logging"
)

// Denial reasons produced by the gate itself rather than the platform.
const (
	ReasonUnsupported   = "device does not support biometric authentication"
	ReasonUnknown       = "Unknown error"
	ReasonInvalidPrompt = "prompt is not valid UTF-8"
)

// Policy selects the owner-presence proof the platform must obtain.
type Policy string

const (
	// PolicyBiometrics requires a biometric match with no passcode fallback.
	PolicyBiometrics Policy = "biometrics"
	// PolicyBiometricsOrWatch also accepts a paired Apple Watch.
	PolicyBiometricsOrWatch Policy = "biometrics-or-watch"
)

// DefaultPolicy is used when configuration names none.
const DefaultPolicy = PolicyBiometrics

// Policies lists every supported policy.
func Policies() []Policy {
	return []Policy{PolicyBiometrics, PolicyBiometricsOrWatch}
}

// ParsePolicy validates a configured policy name. Empty means DefaultPolicy.
func ParsePolicy(s string) (Policy, error) {
	if s == "" {
		return DefaultPolicy, nil
	}
	for _, p := range Policies() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown authentication policy %q", s)
}

// Authenticator is the platform authentication service.
type Authenticator interface {
	// CanEvaluate reports whether this device can satisfy policy. The error,
	// when present, explains why not.
	CanEvaluate(policy Policy) (bool, error)

	// Evaluate presents one challenge with reason as the prompt text and
	// blocks until the user responds. Any cached proof must be ignored.
	Evaluate(ctx context.Context, policy Policy, reason string) (bool, error)
}

// Outcome is the result of one challenge.
type Outcome struct {
	Passed bool
	Reason string
}

// Authenticated is the passing outcome.
var Authenticated = Outcome{Passed: true}

// Denied builds a failing outcome.
func Denied(reason string) Outcome {
	return Outcome{Reason: reason}
}

func (o Outcome) String() string {
	if o.Passed {
		return "authenticated"
	}
	return "denied: " + o.Reason
}

// Gate runs device-owner challenges under a fixed policy.
type Gate struct {
	policy        Policy
	authenticator Authenticator
	logger        *logging.Logger
}

// NewGate creates a gate for policy. A nil logger discards output.
func NewGate(policy Policy, authenticator Authenticator, logger *logging.Logger) *Gate {
	if policy == "" {
		policy = DefaultPolicy
	}
	return &Gate{
		policy:        policy,
		authenticator: authenticator,
		logger:        logger,
	}
}

// Policy returns the policy this gate enforces.
func (g *Gate) Policy() Policy {
	return g.policy
}

// Supported runs only the capability check.
func (g *Gate) Supported() (bool, error) {
	return g.authenticator.CanEvaluate(g.policy)
}

// Challenge runs one capability check and at most one evaluation. There are
// no retries; a denied outcome is final for this call.
func (g *Gate) Challenge(ctx context.Context, prompt string) Outcome {
	ok, err := g.authenticator.CanEvaluate(g.policy)
	if !ok {
		if err != nil {
			g.logger.Debug("capability check for %s failed: %v", g.policy, err)
		}
		return Denied(ReasonUnsupported)
	}

	// The platform cannot display a malformed prompt.
	if !utf8.ValidString(prompt) {
		return Denied(ReasonInvalidPrompt)
	}

	g.logger.Debug("presenting %s challenge", g.policy)
	passed, err := g.authenticator.Evaluate(ctx, g.policy, prompt)
	if passed && err == nil {
		return Authenticated
	}

	reason := ReasonUnknown
	if err != nil && err.Error() != "" {
		reason = err.Error()
	}
	return Denied(reason)
}
