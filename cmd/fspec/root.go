package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sengac/fspec/internal/config"
	"github.com/sengac/fspec/internal/log"
	"github.com/sengac/fspec/internal/output"
)

// Command group IDs for organizing help output
const (
	GroupWork    = "work"
	GroupHooks   = "hooks"
	GroupVirtual = "virtual"
	GroupConfig  = "config"
)

// newRootCmd builds the command tree. global is the user configuration
// loaded from ~/.config/fspec/config.toml.
func newRootCmd(global config.Config) *cobra.Command {
	var (
		verbose     bool
		quiet       bool
		projectRoot string
	)

	rootCmd := &cobra.Command{
		Use:   "fspec",
		Short: "Specification-driven workflow with lifecycle hooks",
		Long: `fspec drives work units through the ACDD lifecycle
(backlog → specifying → testing → implementing → validating → done).

Lifecycle-changing commands run the hooks configured for their pre- and
post-events. Blocking hook failures stop the command (pre) or fail it (post)
and are reported in a <system-reminder> block for AI agents.`,
		SilenceUsage:               true,
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 2, // Enable typo suggestions
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "help" {
				return nil
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			root := projectRoot
			if root == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get working directory: %w", err)
				}
				root = config.FindProjectRoot(wd)
			}

			local, err := config.LoadLocal(root)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
			}
			cfg := config.MergeLocal(global, local)
			if err := cfg.ApplyEnv(os.Getenv); err != nil {
				return err
			}

			logger := log.New(cmd.ErrOrStderr(), verbose || cfg.Log.Verbose, quiet)
			ctx = log.WithLogger(ctx, logger)
			ctx = output.WithPrinter(ctx, cmd.OutOrStdout())
			ctx = config.WithConfig(ctx, &cfg)
			ctx = config.WithProjectRoot(ctx, root)
			cmd.SetContext(ctx)

			logger.Debug("project", "root", root)
			return nil
		},
		// Run is not set - shows help when no subcommand provided
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug output and external commands")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().StringVar(&projectRoot, "project-root", "", "Project root (default: nearest directory containing spec/)")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupWork, Title: "Work Unit Commands:"},
		&cobra.Group{ID: GroupHooks, Title: "Hook Commands:"},
		&cobra.Group{ID: GroupVirtual, Title: "Virtual Hook Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	// Work unit commands
	rootCmd.AddCommand(newCreateWorkUnitCmd())
	rootCmd.AddCommand(newUpdateWorkUnitStatusCmd())
	rootCmd.AddCommand(newUpdateWorkUnitEstimateCmd())
	rootCmd.AddCommand(newShowWorkUnitCmd())
	rootCmd.AddCommand(newListWorkUnitsCmd())

	// Hook commands
	rootCmd.AddCommand(newListHooksCmd())
	rootCmd.AddCommand(newValidateHooksCmd())
	rootCmd.AddCommand(newAddHookCmd())
	rootCmd.AddCommand(newRemoveHookCmd())
	rootCmd.AddCommand(newRunHookCmd())

	// Virtual hook commands
	rootCmd.AddCommand(newAddVirtualHookCmd())
	rootCmd.AddCommand(newRemoveVirtualHookCmd())
	rootCmd.AddCommand(newListVirtualHooksCmd())
	rootCmd.AddCommand(newClearVirtualHooksCmd())

	// Config commands
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute builds the root command and runs it.
func Execute() {
	global := config.Default()
	if path, err := config.DefaultPath(); err == nil {
		loaded, err := config.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		global = loaded
	}

	// Create context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCmd(global)
	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			cancel()
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Run 'fspec -h' for help")
		cancel()
		os.Exit(1)
	}
}
