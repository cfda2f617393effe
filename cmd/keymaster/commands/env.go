package commands

import (
	"io"
	"os"
	"runtime"

	"github.com/systmms/keymaster/internal/auth"
	"github.com/systmms/keymaster/internal/config"
	"github.com/systmms/keymaster/internal/metrics"
	"github.com/systmms/keymaster/internal/retrieve"
	"github.com/systmms/keymaster/internal/store"
	"github.com/systmms/keymaster/internal/store/contracts"
)

// Env carries what every command needs. Client and Authenticator default to
// the platform implementations; tests replace them with fakes.
type Env struct {
	Config  *config.Config
	Metrics *metrics.Recorder

	Client        contracts.KeychainClient
	Authenticator auth.Authenticator

	Stdin  io.Reader
	Getenv func(string) string
	GOOS   string

	keychain *store.Keychain
}

// NewEnv returns an Env wired to the real process and platform.
func NewEnv(cfg *config.Config) *Env {
	return &Env{
		Config:  cfg,
		Metrics: metrics.NewRecorder(),
		Stdin:   os.Stdin,
		Getenv:  os.Getenv,
		GOOS:    runtime.GOOS,
	}
}

// load reads the configuration once.
func (e *Env) load() error {
	if e.Config.Definition != nil {
		return nil
	}
	return e.Config.Load()
}

// Store returns the secret store described by the configuration.
func (e *Env) Store() (*store.Keychain, error) {
	if e.keychain != nil {
		return e.keychain, nil
	}
	if err := e.load(); err != nil {
		return nil, err
	}
	opts := e.Config.Definition.StoreOptions()
	if e.Client != nil {
		e.keychain = store.NewKeychainWithClient(e.Client, opts)
	} else {
		e.keychain = store.NewKeychain(opts)
	}
	return e.keychain, nil
}

// Gate returns an authentication gate for the configured policy.
func (e *Env) Gate() (*auth.Gate, error) {
	if err := e.load(); err != nil {
		return nil, err
	}
	authenticator := e.Authenticator
	if authenticator == nil {
		authenticator = auth.NewPlatformAuthenticator()
	}
	return auth.NewGate(e.Config.Definition.Policy(), authenticator, e.Config.Logger), nil
}

// Coordinator wires the gate and store for a retrieval.
func (e *Env) Coordinator() (*retrieve.Coordinator, error) {
	gate, err := e.Gate()
	if err != nil {
		return nil, err
	}
	keychain, err := e.Store()
	if err != nil {
		return nil, err
	}
	return retrieve.New(gate, keychain,
		retrieve.WithPromptPrefix(e.Config.Definition.Auth.Prompt),
		retrieve.WithLogger(e.Config.Logger),
		retrieve.WithObserver(e.Metrics),
	), nil
}

// Headless reports whether this session can show a system prompt.
func (e *Env) Headless() (bool, string) {
	getenv := e.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	goos := e.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	return auth.Headless(goos, getenv)
}
