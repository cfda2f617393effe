package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/systmms/keymaster/cmd/keymaster/commands"
	"github.com/systmms/keymaster/internal/config"
	kmerrors "github.com/systmms/keymaster/internal/errors"
	"github.com/systmms/keymaster/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	code := 0
	if err := run(); err != nil {
		report(os.Stderr, err)
		code = 1
	}
	// Wipes every locked buffer before exiting.
	memguard.SafeExit(code)
}

// report prints a failed invocation's error, replacing raw platform and
// file-system errors with a hint where one is known.
func report(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", kmerrors.SimplifyError(err))
}

func run() error {
	// Global flags
	var (
		configFile  string
		noColor     bool
		debug       bool
		metricsFile string
	)

	cfg := &config.Config{Logger: logging.New(false, false)}
	env := commands.NewEnv(cfg)

	rootCmd := &cobra.Command{
		Use:   "keymaster",
		Short: "Keychain secrets released by biometric authentication",
		Long: `keymaster stores secrets in the platform keychain and prints them only
after the device owner passes a biometric challenge.

  keymaster set <key> [secret]
  keymaster delete <key>
  keymaster get <key1> [key2 ...]`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceErrors: true,
		// A bare "keymaster" is a malformed invocation, not a help request.
		RunE: func(cmd *cobra.Command, args []string) error {
			return kmerrors.UsageError{Message: "a command is required"}
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg.Logger = logging.New(debug, noColor)
			cfg.Path = configFile
			if cfg.Path == "" {
				cfg.Path = config.DefaultPath(os.Getenv)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path (default $XDG_CONFIG_HOME/keymaster/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile on exit")

	rootCmd.AddCommand(
		commands.NewSetCommand(env),
		commands.NewDeleteCommand(env),
		commands.NewGetCommand(env),
		commands.NewDoctorCommand(env),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)

	if path := metricsPath(cfg, metricsFile); path != "" {
		if werr := env.Metrics.WriteTextfile(path); werr != nil {
			cfg.Logger.Warn("Failed to write metrics to %s: %v", path, werr)
		}
	}

	return err
}

// metricsPath prefers the flag over the configured textfile.
func metricsPath(cfg *config.Config, flag string) string {
	if flag != "" {
		return flag
	}
	if cfg.Definition != nil {
		return cfg.Definition.Metrics.Textfile
	}
	return ""
}
