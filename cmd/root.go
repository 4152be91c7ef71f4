package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shrihari-lab/chipatlas/pkg/buildinfo"
	"github.com/shrihari-lab/chipatlas/pkg/exitcode"
	"github.com/shrihari-lab/chipatlas/pkg/logger"
)

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chipatlas",
		Short: "Retrieve and filter ChIP-Atlas metadata",
		Long: `Chipatlas downloads ChIP-Atlas metadata archives, caches them locally,
and filters them by gene or antigen keyword.

Examples:
   chipatlas fetch TP53                                  # Search the experiment list
   chipatlas fetch Oct4 --metadata-type celltype_list    # Search another metadata table
   chipatlas serve                                       # Expose the pipeline as a JSON tool API
   chipatlas version                                     # Show version information`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress informational output")

	// Wire Cobra's built-in --version to the binary version
	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("chipatlas {{.Version}}\n")

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
// This is called from init() for production and can be called explicitly in tests.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(newFetchCommand())
	cmd.AddCommand(newVersionCommand())
	cmd.AddCommand(newServeCommand())
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command execution failed", logger.Err(err))
		os.Exit(exitcode.GeneralError)
	}
}

func init() {
	registerSubcommands(rootCmd)
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	quiet, _ := cmd.Flags().GetBool("quiet")

	var logLevel logger.Level
	switch strings.ToLower(logLevelStr) {
	case "trace":
		logLevel = logger.TraceLevel
	case "debug":
		logLevel = logger.DebugLevel
	case "info":
		logLevel = logger.InfoLevel
	case "warn":
		logLevel = logger.WarnLevel
	case "error":
		logLevel = logger.ErrorLevel
	default:
		logLevel = logger.InfoLevel
	}

	config := logger.Config{
		Level:     logLevel,
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "chipatlas",
		Quiet:     quiet,
	}

	if err := logger.Initialize(config); err != nil {
		// Fallback to stderr
		if _, writeErr := os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n"); writeErr != nil {
			_ = writeErr
		}
		os.Exit(exitcode.ConfigError)
	}
}
