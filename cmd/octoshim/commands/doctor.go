package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/octoshim/octoshim/internal/doctor"
	shimerrors "github.com/octoshim/octoshim/internal/errors"
	"github.com/octoshim/octoshim/internal/paths"
)

var (
	doctorJSON    bool
	doctorQuiet   bool
	doctorVerbose bool
	doctorFix     bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorQuiet, "quiet", false,
		"suppress output, exit code only")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "verbose", false,
		"show detailed check-by-check output")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"apply automatic fixes for fixable issues, then re-check")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the shim environment",
	Long: `Run diagnostic checks on the octoshim environment.

Validates shim and native CLI configuration files, file permissions,
the native CLI installation, and relevant environment variables.
Runs even when the configuration is broken; that is what it is for.

Output modes (mutually exclusive):
  (default)   Show errors and warnings
  --verbose   Show all checks including passed ones
  --quiet     No output, exit code only
  --json      Machine-readable JSON output

With --fix, fixable permission issues are corrected before the report
is produced.

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	PreRunE: validateDoctorFlags,
	RunE:    runDoctor,
}

// validateDoctorFlags ensures output flags are mutually exclusive.
func validateDoctorFlags(_ *cobra.Command, _ []string) error {
	count := 0
	if doctorJSON {
		count++
	}
	if doctorQuiet {
		count++
	}
	if doctorVerbose {
		count++
	}

	if count > 1 {
		return errors.New("flags --json, --quiet, and --verbose are mutually exclusive")
	}

	return nil
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	providerName := cfg.Provider
	if providerName == "" {
		providerName = paths.ProviderGitLab
	}

	permCheck := doctor.NewPathPermissionCheck(providerName)

	runner := doctor.NewRunner()
	runner.AddCheck(doctor.NewConfigLoadCheck(""))
	runner.AddCheck(doctor.NewConfigSyntaxCheck(providerName))
	runner.AddCheck(permCheck)
	runner.AddCheck(doctor.NewNativeCLICheck(providerName, cfg.CLITool))
	runner.AddCheck(doctor.NewEnvCheck())

	report := runner.Run()

	if doctorFix && permCheck.CanFix() {
		outputFixResults(cmd.OutOrStdout(), permCheck.Fix())
		// Report the post-fix state.
		report = runner.Run()
	}

	if err := outputDoctorReport(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	// The exit code mirrors the worst severity. The errors are silent:
	// the report itself is the message.
	if report.HasErrors() {
		return shimerrors.NewExitError(nil, 2)
	}
	if report.HasWarnings() {
		return shimerrors.NewExitError(nil, 1)
	}
	return nil
}

func outputFixResults(out io.Writer, results []doctor.FixResult) {
	if doctorQuiet || doctorJSON {
		return
	}
	for _, r := range results {
		if r.Fixed {
			fmt.Fprintf(out, "fixed %s (%s)\n", r.Path, r.Description)
		} else {
			fmt.Fprintf(out, "could not fix %s: %s\n", r.Path, r.Description)
		}
	}
}

func outputDoctorReport(out io.Writer, report *doctor.DoctorReport) error {
	if doctorQuiet {
		return nil
	}

	if doctorJSON {
		return outputDoctorJSON(out, report)
	}

	return outputDoctorText(out, report)
}

func outputDoctorJSON(out io.Writer, report *doctor.DoctorReport) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

func outputDoctorText(out io.Writer, report *doctor.DoctorReport) error {
	fmt.Fprintf(out, "octoshim %s (commit %s, built %s)\n",
		shimVersion, shimCommit, shimDate)

	// In normal mode, show only errors and warnings
	// In verbose mode, show all checks
	showAll := doctorVerbose

	hasOutput := false
	for _, result := range report.Results {
		if !showAll && result.Status != doctor.SeverityError && result.Status != doctor.SeverityWarning {
			continue
		}

		hasOutput = true
		icon := statusIcon(result.Status)
		fmt.Fprintf(out, "%s [%s] %s: %s\n", icon, result.Category, result.Name, result.Message)

		if result.FixHint != "" && (result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning) {
			fmt.Fprintf(out, "  hint: %s\n", result.FixHint)
		}
	}

	if hasOutput || showAll {
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)

	return nil
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return color.GreenString("✓")
	case doctor.SeverityInfo:
		return color.CyanString("ℹ")
	case doctor.SeverityWarning:
		return color.YellowString("⚠")
	case doctor.SeverityError:
		return color.RedString("✗")
	default:
		return "?"
	}
}
