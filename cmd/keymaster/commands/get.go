package commands

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	kmerrors "github.com/systmms/keymaster/internal/errors"
	"github.com/systmms/keymaster/internal/retrieve"
)

func NewGetCommand(env *Env) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "get <key> [key...]",
		Short: "Retrieve secrets after biometric authentication",
		Long: `Retrieve one or more secrets from the keychain.

A single biometric prompt covers every key given. Keys that do not exist
are skipped, so the output may list fewer keys than were requested. By
default each resolved key is printed as key=value in the order requested;
--json prints one object whose keys are sorted.

Examples:
  keymaster get db_password
  eval "$(keymaster get db_password api_key | sed 's/^/export /')"
  keymaster get db_password api_key --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			logger := env.Config.Logger

			coordinator, err := env.Coordinator()
			if err != nil {
				return err
			}

			if headless, why := env.Headless(); headless && !env.Config.Definition.Auth.AllowHeadless {
				logger.Warn("Headless session detected (%s); the authentication prompt may never appear", why)
			}

			secrets, err := coordinator.Retrieve(cmd.Context(), args)
			if err != nil {
				var authErr *retrieve.AuthenticationFailedError
				if errors.As(err, &authErr) {
					return kmerrors.UserError{
						Message:    "Authentication failed",
						Details:    authErr.Reason,
						Suggestion: kmerrors.KeychainSuggestion(err),
						Err:        err,
					}
				}
				return err
			}
			defer secrets.Destroy()

			logger.Debug("resolved %d of %d requested secret(s)", secrets.Len(), len(args))

			out := cmd.OutOrStdout()
			if jsonOutput {
				output := make(map[string]string, secrets.Len())
				if err := secrets.Each(func(name string, plain []byte) error {
					output[name] = string(plain)
					return nil
				}); err != nil {
					return err
				}

				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(output); err != nil {
					return fmt.Errorf("failed to encode JSON: %w", err)
				}
				return nil
			}

			return secrets.Each(func(name string, plain []byte) error {
				_, err := fmt.Fprintf(out, "%s=%s\n", name, plain)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output resolved secrets as a JSON object with sorted keys")

	return cmd
}
