package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	kmerrors "github.com/systmms/keymaster/internal/errors"
	"github.com/systmms/keymaster/internal/logging"
)

func NewSetCommand(env *Env) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "set <key> [secret]",
		Short: "Store a secret in the keychain",
		Long: `Store a secret under a key in the platform keychain.

An existing key is never overwritten unless --force is given. When the
secret is omitted it is read from the terminal without echo, or from
stdin when input is piped.

Examples:
  keymaster set db_password secr3t
  keymaster set --force db_password n3w-secr3t
  op read op://vault/db/password | keymaster set db_password`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			key := args[0]

			var value []byte
			if len(args) == 2 {
				value = []byte(args[1])
			} else {
				b, err := readSecret(cmd, env.Stdin)
				if err != nil {
					return kmerrors.UserError{
						Message: "Error reading secret",
						Details: err.Error(),
						Err:     err,
					}
				}
				value = b
			}
			defer wipe(value)

			keychain, err := env.Store()
			if err != nil {
				return err
			}

			op := "add"
			if force {
				op = "replace"
				err = keychain.Replace(key, value)
			} else {
				err = keychain.Add(key, value)
			}
			env.Metrics.ObserveStoreOperation(op, err)
			if err != nil {
				return kmerrors.UserError{
					Message:    "Error setting password",
					Details:    logging.Redact(err.Error(), []string{string(value)}),
					Suggestion: kmerrors.KeychainSuggestion(err),
					Err:        err,
				}
			}

			env.Config.Logger.Debug("stored %q in %s", key, keychain.Backend())
			fmt.Fprintf(cmd.OutOrStdout(), "Key %s has been successfully set in the keychain\n", key)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace an existing secret")

	return cmd
}

// readSecret prompts on a terminal, otherwise reads all of in with one
// trailing line ending removed.
func readSecret(cmd *cobra.Command, in io.Reader) ([]byte, error) {
	if in == nil {
		in = os.Stdin
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Enter secret: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return nil, fmt.Errorf("reading password: %w", err)
		}
		return b, nil
	}

	b, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	b = bytes.TrimSuffix(b, []byte("\n"))
	b = bytes.TrimSuffix(b, []byte("\r"))
	return b, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
