package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/vbind/internal/config"
	"github.com/vango-dev/vbind/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath  string
	logLevel    string
	errorFormat string
	noColor     bool
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		errors.Fprint(stderr, err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "vbind",
		Short: "Reactive DOM bindings for Go",
		Long: `vbind binds reactive values to DOM attributes, text and lists.

The CLI builds the bundled demo document and can:

  • render it as HTML
  • serve a live preview over WebSocket
  • store rendered snapshots on disk or in S3`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return flags.configureErrors()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to vbind.json (default: nearest vbind.json)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&flags.errorFormat, "error-format", "pretty", "Error output: pretty, compact or json")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored error output (also NO_COLOR)")

	rootCmd.AddCommand(
		renderCmd(flags),
		serveCmd(flags),
		snapshotCmd(flags),
		versionCmd(),
	)
	return rootCmd
}

// configureErrors applies --error-format and --no-color.
func (f *globalFlags) configureErrors() error {
	style, err := errors.ParseStyle(f.errorFormat)
	if err != nil {
		return err
	}
	_, noColorEnv := os.LookupEnv("NO_COLOR")
	errors.Configure(style, !f.noColor && !noColorEnv)
	return nil
}

// load reads and validates the configuration and builds the logger.
func (f *globalFlags) load() (*config.Config, *slog.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, nil, err
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
