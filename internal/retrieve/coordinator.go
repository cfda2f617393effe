// Package retrieve releases batches of secrets behind one authentication
// challenge.
//
// The ordering guarantee is the point of the package: no store lookup is
// made until the gate has returned a passing outcome for the batch.
package retrieve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/systmms/keymaster/internal/auth"
	"github.com/systmms/keymaster/internal/logging"
	"github.com/systmms/keymaster/internal/secure"
)

// DefaultPromptPrefix starts the text shown in the system prompt.
const DefaultPromptPrefix = "access passwords for"

// ErrNoNamesRequested is returned for an empty batch.
var ErrNoNamesRequested = errors.New("no secret names requested")

// AuthenticationFailedError is returned when the gate denies a batch.
type AuthenticationFailedError struct {
	Reason string
}

func (e *AuthenticationFailedError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

// Gate runs one challenge and reports the outcome.
type Gate interface {
	Challenge(ctx context.Context, prompt string) auth.Outcome
}

// Reader is the read side of the secret store.
type Reader interface {
	Lookup(name string) (*secure.Value, bool)
}

// Observer receives one event per completed retrieval.
type Observer interface {
	ObserveRetrieval(outcome string, requested, released int)
}

// Retrieval outcomes reported to an Observer.
const (
	OutcomeReleased = "released"
	OutcomeDenied   = "denied"
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPromptPrefix overrides DefaultPromptPrefix.
func WithPromptPrefix(prefix string) Option {
	return func(c *Coordinator) {
		if prefix != "" {
			c.promptPrefix = prefix
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithObserver attaches an Observer, typically a metrics recorder.
func WithObserver(o Observer) Option {
	return func(c *Coordinator) {
		c.observer = o
	}
}

// Coordinator drives the gate once per batch and then reads the store.
// It holds no per-request state and may be shared.
type Coordinator struct {
	gate         Gate
	store        Reader
	promptPrefix string
	logger       *logging.Logger
	observer     Observer
}

// New creates a Coordinator.
func New(gate Gate, store Reader, opts ...Option) *Coordinator {
	c := &Coordinator{
		gate:         gate,
		store:        store,
		promptPrefix: DefaultPromptPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Retrieve authenticates once for names and returns the secrets that exist.
// Missing names are omitted without error, so an empty result after a
// passing challenge is still success.
func (c *Coordinator) Retrieve(ctx context.Context, names []string) (*Secrets, error) {
	if len(names) == 0 {
		return nil, ErrNoNamesRequested
	}

	unique := dedupe(names)
	prompt := c.Prompt(unique)

	c.logger.Debug("requesting authentication for %d secret(s)", len(unique))
	outcome := c.gate.Challenge(ctx, prompt)
	if !outcome.Passed {
		c.observe(OutcomeDenied, len(unique), 0)
		return nil, &AuthenticationFailedError{Reason: outcome.Reason}
	}

	secrets := &Secrets{values: make(map[string]*secure.Value, len(unique))}
	for _, name := range unique {
		value, ok := c.store.Lookup(name)
		if !ok {
			c.logger.Debug("secret %q not found, skipping", name)
			continue
		}
		secrets.add(name, value)
	}

	c.observe(OutcomeReleased, len(unique), secrets.Len())
	return secrets, nil
}

// Prompt builds the challenge text for names in the given order.
func (c *Coordinator) Prompt(names []string) string {
	return fmt.Sprintf("%s: %s", c.promptPrefix, strings.Join(names, ", "))
}

func (c *Coordinator) observe(outcome string, requested, released int) {
	if c.observer != nil {
		c.observer.ObserveRetrieval(outcome, requested, released)
	}
}

// dedupe keeps the first occurrence of each name, preserving order.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
