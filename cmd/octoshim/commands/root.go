// Package commands implements the CLI commands for octoshim.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/octoshim/octoshim/cmd"
	"github.com/octoshim/octoshim/internal/config"
	"github.com/octoshim/octoshim/internal/dispatch"
	shimerrors "github.com/octoshim/octoshim/internal/errors"
	"github.com/octoshim/octoshim/internal/executor"
	"github.com/octoshim/octoshim/internal/logging"
	"github.com/octoshim/octoshim/internal/paths"
	"github.com/octoshim/octoshim/internal/provider"

	// Compiled-in forge backends. Each registers its factory from init.
	_ "github.com/octoshim/octoshim/internal/provider/github"
	_ "github.com/octoshim/octoshim/internal/provider/gitlab"
)

// Build metadata, set via ldflags on the cmd package.
var (
	shimVersion = cmd.Version
	shimCommit  = cmd.Commit
	shimDate    = cmd.Date
)

// cfg is the resolved configuration. Defaults stand in when loading
// fails so doctor can still run.
var cfg *config.Config

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

func init() {
	cobra.OnInitialize(initConfig)

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	// Capture load errors for later reporting. Translation refuses to run
	// on a broken config but doctor still needs to.
	cfg, configLoadErr = config.Load("")
	if cfg == nil {
		cfg = config.Default()
	}
}

var rootCmd = &cobra.Command{
	Use:   "octoshim <command> <subcommand> [flags]",
	Short: "Run GitHub CLI command lines against another forge",
	Long: `octoshim accepts GitHub CLI (gh) command lines and replays them
against a different forge's native CLI. Scripts and CI jobs written
for gh keep their argv and their output contracts: the shim rewrites
each invocation into the configured backend's vocabulary and maps
JSON responses back to the field names gh would have produced.

The backend, the native binary, and the target instance come from
config.yaml (or config.toml) in the octoshim config directory and
from OCTOSHIM_* environment variables. Commands with no registered
translation fail with exit code 4 unless passthrough is enabled.`,
	Example: `  # gh-shaped invocations work unchanged
  octoshim issue list --state open --json number,title

  # Pipe a token exactly as gh accepts it
  printf '%s' "$TOKEN" | octoshim auth login --with-token

  # Diagnose configuration and environment problems
  octoshim doctor`,
	Args: cobra.ArbitraryArgs,
	// The whole command line belongs to the translation engine. Cobra
	// routes a leading subcommand name (doctor) to its own command and
	// hands everything else to RunE untouched.
	DisableFlagParsing: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupLogging(cmd)
	},
	RunE: runShim,
}

// setupLogging configures the default logger from the environment. The
// root command parses no flags of its own, so verbosity comes from
// OCTOSHIM_DEBUG and file logging from OCTOSHIM_LOG_FILE.
func setupLogging(cmd *cobra.Command) error {
	v := 0
	if val, ok := os.LookupEnv("OCTOSHIM_DEBUG"); ok {
		switch val {
		case "1", "true":
			v = 2 // Debug
		case "2":
			v = 3 // Trace
		}
	}
	level := logging.LevelFromVerbosity(v)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handlers := []slog.Handler{logging.NewHandler(cmd.ErrOrStderr(), opts)}

	if logFile := os.Getenv("OCTOSHIM_LOG_FILE"); logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return shimerrors.NewUserError(err,
				"Check that OCTOSHIM_LOG_FILE points at a writable path")
		}
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// runShim is the translation entry point: it hands the untouched
// argument vector to the configured backend's registry and executes
// whatever native invocation comes back.
func runShim(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	switch args[0] {
	case "--help", "-h":
		return cmd.Help()
	}

	if configLoadErr != nil {
		return shimerrors.NewUserError(configLoadErr,
			"Run 'octoshim doctor' to diagnose the configuration")
	}

	name := cfg.Provider
	if name == "" {
		name = paths.ProviderGitLab
	}

	logger := logging.FromContext(cmd.Context())
	backend, err := provider.New(name, provider.Context{
		Instance:    cfg.Instance,
		CLITool:     cfg.CLITool,
		Passthrough: cfg.Passthrough,
		Version:     shimVersion,
		Logger:      logger,
		Stdin:       cmd.InOrStdin(),
		Stdout:      cmd.OutOrStdout(),
		Stderr:      cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	// An injected reader always carries data; the real stdin is probed.
	stdinAvailable := logging.StdinIsPiped()
	if cmd.InOrStdin() != io.Reader(os.Stdin) {
		stdinAvailable = true
	}

	inv := dispatch.ParseInvocation(args, stdinAvailable)
	handler, err := backend.Registry().Dispatch(inv)
	if err != nil {
		return err
	}

	native, err := handler.Translate(inv)
	if err != nil {
		return err
	}
	if native == nil {
		// Answered in-shim, nothing to execute.
		return nil
	}

	logger.Debug("translated invocation",
		"handler", handler.Name,
		"path", native.Path)

	exec := executor.NewWithStreams(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
	return exec.Run(cmd.Context(), native)
}

// Execute runs the root command. The returned error carries the process
// exit code; main maps it with the errors package.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	var exitErr *shimerrors.ExitError
	if errors.As(err, &exitErr) && exitErr.Silent() {
		// The native CLI already wrote its own stderr.
		return err
	}

	fmt.Fprintf(rootCmd.ErrOrStderr(), "octoshim: %v\n", err)
	if exitErr != nil && exitErr.Suggestion != "" {
		fmt.Fprintln(rootCmd.ErrOrStderr(), exitErr.Suggestion)
	}
	if errors.Is(err, shimerrors.ErrUnsupportedCommand) {
		fmt.Fprintln(rootCmd.ErrOrStderr(),
			"No translation is registered for this command. Set passthrough: true to forward it to the native CLI unchanged.")
	}
	return err
}
