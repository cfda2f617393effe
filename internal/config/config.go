package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/systmms/keymaster/internal/auth"
	kmerrors "github.com/systmms/keymaster/internal/errors"
	"github.com/systmms/keymaster/internal/logging"
	"github.com/systmms/keymaster/internal/retrieve"
	"github.com/systmms/keymaster/internal/store"
)

// CurrentVersion is the only configuration version this build understands.
const CurrentVersion = 1

//go:embed schema.json
var schemaJSON string

// Config holds the runtime configuration
type Config struct {
	Path       string
	Logger     *logging.Logger
	Definition *Definition
}

// Definition represents the config.yaml structure
type Definition struct {
	Version int           `yaml:"version"`
	Store   StoreConfig   `yaml:"store"`
	Auth    AuthConfig    `yaml:"auth"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// StoreConfig controls how items are named in the platform store.
type StoreConfig struct {
	ServicePrefix string `yaml:"service_prefix"`
	Account       string `yaml:"account"`
}

// AuthConfig controls the authentication challenge.
type AuthConfig struct {
	Policy        string `yaml:"policy"`
	Prompt        string `yaml:"prompt"`
	AllowHeadless bool   `yaml:"allow_headless"`
}

// MetricsConfig controls the optional Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Defaults returns the definition used when no file exists.
func Defaults() *Definition {
	return &Definition{
		Version: CurrentVersion,
		Auth: AuthConfig{
			Policy: string(auth.DefaultPolicy),
			Prompt: retrieve.DefaultPromptPrefix,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/keymaster/config.yaml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath(getenv func(string) string) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	base := getenv("XDG_CONFIG_HOME")
	if base == "" {
		home := getenv("HOME")
		if home == "" {
			if h, err := os.UserHomeDir(); err == nil {
				home = h
			}
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "keymaster", "config.yaml")
}

// Load reads and validates the configuration file. A missing file is not an
// error; the defaults apply.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			c.Logger.Debug("No configuration at %s, using defaults", c.Path)
			c.Definition = Defaults()
			return nil
		}
		return kmerrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	def, err := Parse(data)
	if err != nil {
		return err
	}
	c.Logger.Debug("Loaded configuration from %s", c.Path)
	c.Definition = def
	return nil
}

// Parse validates raw YAML against the embedded schema and decodes it on
// top of the defaults.
func Parse(data []byte) (*Definition, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, kmerrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
			Err:        err,
		}
	}

	if raw != nil {
		if err := validate(raw); err != nil {
			return nil, err
		}
	}

	def := Defaults()
	if err := yaml.Unmarshal(data, def); err != nil {
		return nil, kmerrors.ConfigError{
			Message: "failed to decode configuration",
			Err:     err,
		}
	}

	if def.Version != CurrentVersion {
		return nil, kmerrors.ConfigError{
			Field:      "version",
			Value:      def.Version,
			Message:    "unsupported configuration version",
			Suggestion: fmt.Sprintf("Set 'version: %d' at the top of your config.yaml", CurrentVersion),
		}
	}
	if def.Auth.Prompt == "" {
		def.Auth.Prompt = retrieve.DefaultPromptPrefix
	}
	if _, err := auth.ParsePolicy(def.Auth.Policy); err != nil {
		return nil, kmerrors.ConfigError{
			Field:      "auth.policy",
			Value:      def.Auth.Policy,
			Message:    "unknown authentication policy",
			Suggestion: "Use one of: " + strings.Join(policyNames(), ", "),
			Err:        err,
		}
	}
	return def, nil
}

// Policy returns the parsed authentication policy.
func (d *Definition) Policy() auth.Policy {
	p, err := auth.ParsePolicy(d.Auth.Policy)
	if err != nil {
		return auth.DefaultPolicy
	}
	return p
}

// StoreOptions maps the store section onto store.Options.
func (d *Definition) StoreOptions() store.Options {
	return store.Options{
		ServicePrefix: d.Store.ServicePrefix,
		Account:       d.Store.Account,
	}
}

func validate(raw interface{}) error {
	doc, err := json.Marshal(raw)
	if err != nil {
		return kmerrors.ConfigError{
			Message: "configuration cannot be represented as JSON",
			Err:     err,
		}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var messages []string
	for _, desc := range result.Errors() {
		messages = append(messages, desc.String())
	}
	return kmerrors.ConfigError{
		Field:      result.Errors()[0].Field(),
		Message:    "schema validation failed:\n  - " + strings.Join(messages, "\n  - "),
		Suggestion: "Compare your config.yaml with the documented keys",
	}
}

func policyNames() []string {
	var names []string
	for _, p := range auth.Policies() {
		names = append(names, string(p))
	}
	return names
}
