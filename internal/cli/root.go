// Package cli implements the cobra-based command line for cargo-feature.
//
// The binary is normally run by cargo as `cargo feature <crate> [features...]`,
// in which case cargo passes "feature" as the first argument. This file
// defines the root command, the global flags, and the error/exit-code
// handling shared by the rest of the package.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/cargo-feature/internal/model"
)

// Global flag variables. These are bound to cobra persistent flags on the
// root command.
var (
	// outputFormat selects the format of the feature listing and of error
	// output: "text" (default), "json" or "yaml".
	outputFormat string

	// verbose enables detailed logging output for debugging.
	// When true, additional information about operations is printed to stderr.
	verbose bool
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// NewRootCommand creates and configures the root cobra command.
func NewRootCommand() *cobra.Command {
	opts := &featureOptions{}

	rootCmd := &cobra.Command{
		Use:   "cargo-feature <crate> [features...]",
		Short: "Add or remove features of a dependency in Cargo.toml",
		Long: `cargo-feature edits the feature list of one dependency in Cargo.toml while
keeping every comment, blank line and key order of the manifest intact.

Prefix a feature with '+' (or nothing) to add it and with '^' to remove it.
'default' / '+default' enables the crate's default features, '^default'
disables them. Without features, the crate's available features are listed.

Examples:
  cargo feature serde derive rc
  cargo feature serde ^rc
  cargo feature tokio ^default +rt
  cargo feature -t dev insta yaml
  cargo feature getrandom js --target 'cfg(target_arch = "wasm32")'
  cargo feature serde`,

		Args: func(cmd *cobra.Command, args []string) error {
			if len(TrimCargoSubcommand(args)) == 0 {
				return model.NewCLIError(model.ExitInvalidArgs, "missing crate name")
			}
			return nil
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeature(cmd, opts, TrimCargoSubcommand(args))
		},

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on --format).
		SilenceErrors: true,

		// Version is displayed when --version flag is used.
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", formatText, "Output format: text, json, yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	opts.bindFlags(rootCmd)

	return rootCmd
}

// TrimCargoSubcommand drops the "feature" argument cargo inserts when it
// runs the binary as `cargo feature ...`.
func TrimCargoSubcommand(args []string) []string {
	if len(args) > 0 && args[0] == "feature" {
		return args[1:]
	}
	return args
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// CLIError types carry their own exit codes; other errors default to exit
// code 1. An interrupt cancels the command's context, which stops a running
// `cargo metadata`.
func Execute(rootCmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		// Generic error, exit with code 1.
		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --format global flag.
func printError(message string, underlying error) {
	if outputFormat == formatJSON {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// Errors go to stderr even in JSON mode; stdout is reserved for
		// the listing and the previewed manifest.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}
