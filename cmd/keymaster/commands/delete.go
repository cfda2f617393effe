package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	kmerrors "github.com/systmms/keymaster/internal/errors"
)

func NewDeleteCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a secret from the keychain",
		Long: `Remove a secret from the platform keychain.

Deleting a key that does not exist fails the same way as a delete the
keychain refuses.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			key := args[0]

			keychain, err := env.Store()
			if err != nil {
				return err
			}

			err = keychain.Delete(key)
			env.Metrics.ObserveStoreOperation("delete", err)
			if err != nil {
				return kmerrors.UserError{
					Message:    "Error deleting password",
					Details:    err.Error(),
					Suggestion: kmerrors.KeychainSuggestion(err),
					Err:        err,
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Key %s has been successfully deleted from the keychain\n", key)
			return nil
		},
	}

	return cmd
}
