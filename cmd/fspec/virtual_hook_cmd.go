package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/sengac/fspec/internal/hooks"
	"github.com/sengac/fspec/internal/log"
	"github.com/sengac/fspec/internal/output"
	"github.com/sengac/fspec/internal/script"
	"github.com/sengac/fspec/internal/ui/static"
	"github.com/sengac/fspec/internal/workunit"
)

func newAddVirtualHookCmd() *cobra.Command {
	var (
		name       string
		blocking   bool
		timeout    int
		gitContext bool
	)

	cmd := &cobra.Command{
		Use:               "add-virtual-hook <id> <event> <command|->",
		Short:             "Attach a hook to a single work unit",
		GroupID:           GroupVirtual,
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: completeWorkUnitID,
		Long: `Attach a hook to a single work unit.

Virtual hooks run before global hooks for the same event and are never
filtered by conditions. Pass "-" as the command to read it from stdin.

With --git-context, fspec writes an executable script to
spec/hooks/.virtual/<id>-<name> that receives the staged and unstaged files
as arguments, and skips the command when there are none.`,
		Example: `  fspec add-virtual-hook AUTH-001 post-implementing "npx eslint" --git-context --blocking
  fspec add-virtual-hook AUTH-001 pre-validating "npm test" --name tests
  echo 'make check' | fspec add-virtual-hook AUTH-001 post-testing -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			root := projectRoot(ctx)
			id, event := args[0], args[1]

			command, err := readCommandArg(cmd, args[2])
			if err != nil {
				return err
			}
			if _, err := timeoutFlagValue(timeout); err != nil {
				return err
			}
			if name == "" {
				name = hookNameFromCommand(command)
			}

			store, err := loadStore(ctx)
			if err != nil {
				return err
			}
			wu, err := store.Find(id)
			if err != nil {
				return err
			}

			vh := hooks.VirtualHook{
				Definition: hooks.Definition{Name: name, Command: command, Blocking: blocking, Timeout: timeout},
				Event:      event,
				GitContext: gitContext,
			}
			if err := wu.AddVirtualHook(vh, now()); err != nil {
				return err
			}

			if gitContext {
				path, err := script.Generate(root, id, name, command, true)
				if err != nil {
					return err
				}
				log.FromContext(ctx).Debug("generated virtual hook script", "path", path)
			} else if err := hooks.ResolveCommand(command, root).Validate(); err != nil {
				return err
			}

			if err := store.Save(); err != nil {
				if gitContext {
					_ = script.Cleanup(root, id, name)
				}
				return err
			}
			out.Printf("✓ Added virtual hook %s to %s (%s)\n", name, id, event)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Hook name (default: derived from the command)")
	cmd.Flags().BoolVarP(&blocking, "blocking", "b", false, "Failure blocks the command (pre) or fails it (post)")
	cmd.Flags().IntVar(&timeout, "timeout", 0, "Timeout in seconds (default from config)")
	cmd.Flags().BoolVarP(&gitContext, "git-context", "g", false, "Pass changed files to the command")

	return cmd
}

func newRemoveVirtualHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "remove-virtual-hook <id> <name>",
		Short:             "Detach a hook from a work unit",
		GroupID:           GroupVirtual,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeWorkUnitID,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			id, name := args[0], args[1]

			store, err := loadStore(ctx)
			if err != nil {
				return err
			}
			wu, err := store.Find(id)
			if err != nil {
				return err
			}
			if _, err := wu.RemoveVirtualHook(name, now()); err != nil {
				return err
			}
			if err := store.Save(); err != nil {
				return err
			}
			if err := script.Cleanup(projectRoot(ctx), id, name); err != nil {
				log.FromContext(ctx).Warnf("%v", err)
			}
			out.Printf("✓ Removed virtual hook %s from %s\n", name, id)
			return nil
		},
	}

	return cmd
}

func newListVirtualHooksCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:               "list-virtual-hooks <id>",
		Short:             "List the hooks of a work unit",
		GroupID:           GroupVirtual,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeWorkUnitID,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			store, err := loadStore(ctx)
			if err != nil {
				return err
			}
			wu, err := store.Find(args[0])
			if err != nil {
				return err
			}

			if jsonOutput {
				vhs := wu.VirtualHooks
				if vhs == nil {
					vhs = []hooks.VirtualHook{}
				}
				return out.JSON(vhs)
			}
			if len(wu.VirtualHooks) == 0 {
				out.Printf("No virtual hooks on %s\n", wu.ID)
				return nil
			}
			out.Printf("%s", static.RenderTable(static.VirtualHookHeaders, virtualHookRows(wu)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newClearVirtualHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "clear-virtual-hooks <id>",
		Short:             "Detach every hook from a work unit",
		GroupID:           GroupVirtual,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeWorkUnitID,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			id := args[0]

			store, err := loadStore(ctx)
			if err != nil {
				return err
			}
			wu, err := store.Find(id)
			if err != nil {
				return err
			}

			removed := wu.ClearVirtualHooks(now())
			if len(removed) == 0 {
				out.Printf("No virtual hooks on %s\n", id)
				return nil
			}
			if err := store.Save(); err != nil {
				return err
			}

			names := make([]string, len(removed))
			for i, vh := range removed {
				names[i] = vh.Name
			}
			if err := script.CleanupAll(projectRoot(ctx), id, names); err != nil {
				log.FromContext(ctx).Warnf("%v", err)
			}
			out.Printf("✓ Removed %d virtual hook(s) from %s: %s\n", len(removed), id, strings.Join(names, ", "))
			return nil
		},
	}

	return cmd
}

func virtualHookRows(wu *workunit.WorkUnit) [][]string {
	rows := make([][]string, 0, len(wu.VirtualHooks))
	for _, vh := range wu.VirtualHooks {
		rows = append(rows, static.VirtualHookTableRow(vh))
	}
	return rows
}
