package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sengac/fspec/internal/config"
	"github.com/sengac/fspec/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage fspec configuration.

Global config: ~/.config/fspec/config.toml
Local config:  .fspec.toml (in the project root)`,
		Example: `  fspec config init          # Create default global config
  fspec config init --local  # Create project config
  fspec config show          # Show effective config`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force  bool
		stdout bool
		local  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		Example: `  fspec config init           # Create global config
  fspec config init --local   # Create .fspec.toml in the project root
  fspec config init -f        # Overwrite existing config
  fspec config init -s        # Print config to stdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			content := config.DefaultConfig()
			if local {
				content = config.DefaultLocalConfig()
			}
			if stdout {
				out.Printf("%s", content)
				return nil
			}

			var path string
			if local {
				path = filepath.Join(projectRoot(ctx), config.LocalConfigFileName)
			} else {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("config file already exists: %s (use -f to overwrite)", path)
				}
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return err
			}

			out.Printf("Created config file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")
	cmd.Flags().BoolVarP(&stdout, "stdout", "s", false, "Print config to stdout")
	cmd.Flags().BoolVar(&local, "local", false, "Create .fspec.toml in the project root instead of the global config")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			cfg := config.FromContext(ctx)
			root := projectRoot(ctx)
			hooksPath, exists := cfg.HooksFilePath(root)

			if jsonOutput {
				return out.JSON(map[string]any{
					"projectRoot":    root,
					"hooksFile":      hooksPath,
					"hooksFileFound": exists,
					"envFile":        cfg.EnvFilePath(root),
					"defaultTimeout": cfg.Hooks.DefaultTimeout,
					"verbose":        cfg.Log.Verbose,
				})
			}

			found := "not found"
			if exists {
				found = "found"
			}
			out.Printf("Project root:    %s\n", root)
			out.Printf("Hook config:     %s (%s)\n", hooksPath, found)
			out.Printf("Hook env file:   %s\n", cfg.EnvFilePath(root))
			out.Printf("Default timeout: %s\n", cfg.HookTimeout())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
