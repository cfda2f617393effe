package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/keymaster/internal/auth"
	"github.com/systmms/keymaster/internal/fakes"
)

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    auth.Policy
		wantErr bool
	}{
		{input: "", want: auth.PolicyBiometrics},
		{input: "biometrics", want: auth.PolicyBiometrics},
		{input: "biometrics-or-watch", want: auth.PolicyBiometricsOrWatch},
		{input: "passcode", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := auth.ParsePolicy(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.input)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGateChallenge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		authn       *fakes.FakeAuthenticator
		want        auth.Outcome
		wantPrompts int
	}{
		{
			name:        "passes",
			authn:       fakes.NewFakeAuthenticator(true),
			want:        auth.Authenticated,
			wantPrompts: 1,
		},
		{
			name: "user_cancel_uses_platform_reason",
			authn: &fakes.FakeAuthenticator{
				Supported:   true,
				EvaluateErr: errors.New("Canceled by user."),
			},
			want:        auth.Denied("Canceled by user."),
			wantPrompts: 1,
		},
		{
			name:        "failure_without_reason",
			authn:       fakes.NewFakeAuthenticator(false),
			want:        auth.Denied(auth.ReasonUnknown),
			wantPrompts: 1,
		},
		{
			name: "success_flag_with_error_is_denied",
			authn: &fakes.FakeAuthenticator{
				Supported:   true,
				Pass:        true,
				EvaluateErr: errors.New("Biometry is locked out."),
			},
			want:        auth.Denied("Biometry is locked out."),
			wantPrompts: 1,
		},
		{
			name:        "unsupported_never_prompts",
			authn:       fakes.NewUnsupportedAuthenticator(errors.New("No identities are enrolled.")),
			want:        auth.Denied(auth.ReasonUnsupported),
			wantPrompts: 0,
		},
		{
			name:        "unsupported_without_error",
			authn:       fakes.NewUnsupportedAuthenticator(nil),
			want:        auth.Denied(auth.ReasonUnsupported),
			wantPrompts: 0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gate := auth.NewGate(auth.PolicyBiometrics, tt.authn, nil)
			got := gate.Challenge(context.Background(), "access passwords for: k")

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantPrompts, tt.authn.Prompts())
			assert.Equal(t, 1, tt.authn.CanEvaluateCalls)
		})
	}
}

func TestGatePassesPolicyAndPrompt(t *testing.T) {
	t.Parallel()

	authn := fakes.NewFakeAuthenticator(true)
	gate := auth.NewGate(auth.PolicyBiometricsOrWatch, authn, nil)

	gate.Challenge(context.Background(), "access passwords for: a, b")

	assert.Equal(t, auth.PolicyBiometricsOrWatch, authn.LastPolicy)
	assert.Equal(t, "access passwords for: a, b", authn.LastReason)
	assert.Equal(t, auth.PolicyBiometricsOrWatch, gate.Policy())
}

func TestGateDefaultsPolicy(t *testing.T) {
	t.Parallel()

	gate := auth.NewGate("", fakes.NewFakeAuthenticator(true), nil)
	assert.Equal(t, auth.DefaultPolicy, gate.Policy())
}

func TestGateEachChallengeIsFresh(t *testing.T) {
	t.Parallel()

	authn := fakes.NewFakeAuthenticator(true)
	gate := auth.NewGate(auth.PolicyBiometrics, authn, nil)

	gate.Challenge(context.Background(), "first")
	gate.Challenge(context.Background(), "second")

	assert.Equal(t, 2, authn.Prompts())
}

func TestGateCancellationIsDenial(t *testing.T) {
	t.Parallel()

	authn := fakes.NewFakeAuthenticator(true)
	authn.Block = true
	gate := auth.NewGate(auth.PolicyBiometrics, authn, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got := gate.Challenge(ctx, "prompt")

	assert.False(t, got.Passed)
	assert.Equal(t, context.DeadlineExceeded.Error(), got.Reason)
}

func TestGateInvalidPromptNeverPrompts(t *testing.T) {
	t.Parallel()

	authn := fakes.NewFakeAuthenticator(true)
	gate := auth.NewGate(auth.PolicyBiometrics, authn, nil)

	got := gate.Challenge(context.Background(), "access passwords for: db_\xffpassword")

	assert.Equal(t, auth.Denied(auth.ReasonInvalidPrompt), got)
	assert.Zero(t, authn.Prompts())
}

func TestGateSupported(t *testing.T) {
	t.Parallel()

	ok, err := auth.NewGate("", fakes.NewFakeAuthenticator(true), nil).Supported()
	assert.True(t, ok)
	assert.NoError(t, err)

	ok, err = auth.NewGate("", fakes.NewUnsupportedAuthenticator(errors.New("no sensor")), nil).Supported()
	assert.False(t, ok)
	assert.EqualError(t, err, "no sensor")
}

func TestOutcomeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "authenticated", auth.Authenticated.String())
	assert.Equal(t, "denied: Unknown error", auth.Denied(auth.ReasonUnknown).String())
}

func TestHeadless(t *testing.T) {
	t.Parallel()

	env := func(vars map[string]string) func(string) string {
		return func(k string) string { return vars[k] }
	}

	tests := []struct {
		name       string
		goos       string
		vars       map[string]string
		want       bool
		wantSignal string
	}{
		{name: "mac_desktop", goos: "darwin", vars: nil, want: false},
		{name: "ssh", goos: "darwin", vars: map[string]string{"SSH_TTY": "/dev/ttys001"}, want: true, wantSignal: "SSH session"},
		{name: "ci", goos: "darwin", vars: map[string]string{"CI": "true"}, want: true, wantSignal: "CI environment"},
		{name: "linux_no_display", goos: "linux", vars: nil, want: true, wantSignal: "no display"},
		{name: "linux_wayland", goos: "linux", vars: map[string]string{"WAYLAND_DISPLAY": "wayland-0"}, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, signal := auth.Headless(tt.goos, env(tt.vars))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantSignal, signal)
		})
	}
}

func TestPlatformAuthenticatorSatisfiesInterface(t *testing.T) {
	t.Parallel()

	var a auth.Authenticator = auth.NewPlatformAuthenticator()
	assert.NotNil(t, a)
}
