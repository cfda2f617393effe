package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	kmerrors "github.com/systmms/keymaster/internal/errors"
)

// Check statuses
const (
	statusOK    = "ok"
	statusWarn  = "warning"
	statusError = "error"
)

// CheckResult is one line of the doctor report
type CheckResult struct {
	Name        string
	Status      string
	Message     string
	Suggestions []string
}

func NewDoctorCommand(env *Env) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check keychain and biometric support for this session",
		Long: `Verify that secrets can be stored and released on this machine.

This command checks:
- Configuration file validity
- Which platform keychain backs the store
- Whether the configured biometric policy can be evaluated
- Whether the session can display an authentication prompt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			results := runChecks(env)

			out := cmd.OutOrStdout()
			displayCheckResults(out, results, verbose)

			failed := 0
			for _, r := range results {
				if r.Status == statusError {
					failed++
				}
			}
			_, _ = fmt.Fprintf(out, "\nSummary: %d/%d checks passed\n", len(results)-failed, len(results))
			if failed > 0 {
				return kmerrors.UserError{
					Message:    fmt.Sprintf("%d check(s) failed", failed),
					Suggestion: "Run 'keymaster doctor --verbose' for suggestions",
				}
			}

			env.Config.Logger.Info("Ready to release secrets")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show suggestions for failed checks")

	return cmd
}

func runChecks(env *Env) []CheckResult {
	if err := env.load(); err != nil {
		msg, _, _ := strings.Cut(err.Error(), "\n")
		return []CheckResult{{
			Name:        "configuration",
			Status:      statusError,
			Message:     msg,
			Suggestions: []string{"Fix or remove " + env.Config.Path},
		}}
	}
	def := env.Config.Definition

	results := []CheckResult{
		{Name: "configuration", Status: statusOK, Message: env.Config.Path},
		{Name: "platform", Status: statusOK, Message: env.GOOS},
	}

	keychain, err := env.Store()
	if err != nil {
		results = append(results, CheckResult{Name: "keychain", Status: statusError, Message: err.Error()})
	} else {
		results = append(results, CheckResult{Name: "keychain", Status: statusOK, Message: keychain.Backend()})
	}

	gate, err := env.Gate()
	if err != nil {
		results = append(results, CheckResult{Name: "biometrics", Status: statusError, Message: err.Error()})
	} else {
		check := CheckResult{Name: "biometrics", Status: statusOK, Message: string(gate.Policy()) + " available"}
		if ok, capErr := gate.Supported(); !ok {
			check.Status = statusError
			check.Message = "device does not support " + string(gate.Policy())
			if capErr != nil {
				check.Message = capErr.Error()
			}
			check.Suggestions = []string{
				"Enroll a fingerprint in System Settings > Touch ID & Password",
				"Biometric release is only available on macOS built with cgo",
			}
		}
		results = append(results, check)
	}

	session := CheckResult{Name: "session", Status: statusOK, Message: "interactive"}
	if headless, why := env.Headless(); headless {
		session.Message = "headless: " + why
		session.Status = statusError
		session.Suggestions = []string{
			"Run keymaster from a local desktop session",
			"Set auth.allow_headless: true if a prompt can still be answered",
		}
		if def.Auth.AllowHeadless {
			session.Status = statusWarn
		}
	}
	results = append(results, session)

	return results
}

// displayCheckResults shows check results in a formatted table
func displayCheckResults(out io.Writer, results []CheckResult, verbose bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "CHECK\tSTATUS\tDETAIL\n")
	_, _ = fmt.Fprintf(w, "-----\t------\t------\n")

	for _, r := range results {
		status := r.Status
		switch r.Status {
		case statusOK:
			status = "✓ " + status
		case statusWarn:
			status = "⚠ " + status
		case statusError:
			status = "✗ " + status
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, status, r.Message)
	}
	_ = w.Flush()

	if !verbose {
		return
	}
	for _, r := range results {
		if r.Status == statusOK || len(r.Suggestions) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(out, "\n%s suggestions:\n", r.Name)
		for _, s := range r.Suggestions {
			_, _ = fmt.Fprintf(out, "  • %s\n", s)
		}
	}
}
