package main

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/sengac/fspec/internal/config"
	"github.com/sengac/fspec/internal/hooks"
	"github.com/sengac/fspec/internal/log"
	"github.com/sengac/fspec/internal/output"
	"github.com/sengac/fspec/internal/ui/static"
)

func newListHooksCmd() *cobra.Command {
	var (
		event      string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "list-hooks",
		Short:   "List configured global hooks",
		GroupID: GroupHooks,
		Args:    cobra.NoArgs,
		Example: `  fspec list-hooks
  fspec list-hooks --event 'post-*'
  fspec list-hooks --event '{pre,post}-implementing' --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			if event != "" && !doublestar.ValidatePattern(event) {
				return fmt.Errorf("invalid --event pattern %q", event)
			}

			cfg, _, err := loadHooks(ctx)
			if err != nil {
				return err
			}

			selected := map[string][]hooks.Definition{}
			var rows [][]string
			for _, ev := range cfg.Events() {
				if event != "" {
					if ok, _ := doublestar.Match(event, ev); !ok {
						continue
					}
				}
				for _, h := range cfg.Hooks[ev] {
					selected[ev] = append(selected[ev], h)
					rows = append(rows, static.HookTableRow(ev, h))
				}
			}

			if jsonOutput {
				return out.JSON(hooks.Config{Hooks: selected})
			}
			if len(rows) == 0 {
				out.Println("No hooks configured")
				return nil
			}
			out.Printf("%s", static.RenderTable(static.HookHeaders, rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&event, "event", "e", "", "Only show events matching this glob")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newValidateHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "validate-hooks",
		Short:   "Check the hook configuration",
		GroupID: GroupHooks,
		Args:    cobra.NoArgs,
		Long: `Check the hook configuration.

Reports hooks without a name or command, negative timeouts, and script
commands whose file does not exist. Exits 1 when any problem is found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			l := log.FromContext(ctx)

			cfg, path, err := loadHooks(ctx)
			if err != nil {
				return err
			}

			for _, ev := range cfg.Events() {
				if !strings.HasPrefix(ev, "pre-") && !strings.HasPrefix(ev, "post-") {
					l.Warnf("event %q does not start with pre- or post- and will never run automatically", ev)
				}
			}

			if err := cfg.Validate(); err != nil {
				out.Printf("✗ %s has problems:\n", path)
				for _, line := range strings.Split(err.Error(), "\n") {
					out.Printf("  - %s\n", line)
				}
				return &exitError{code: 1}
			}

			count := 0
			for _, defs := range cfg.Hooks {
				count += len(defs)
			}
			out.Printf("✓ %d hook(s) valid\n", count)
			return nil
		},
	}

	return cmd
}

func newAddHookCmd() *cobra.Command {
	var (
		command     string
		blocking    bool
		timeout     int
		force       bool
		tags        []string
		prefixes    []string
		epic        string
		estimateMin float64
		estimateMax float64
	)

	cmd := &cobra.Command{
		Use:     "add-hook <event> <name>",
		Short:   "Add a global hook",
		GroupID: GroupHooks,
		Args:    cobra.ExactArgs(2),
		Long: `Add a global hook to the project hook configuration.

Commands starting with ./, / or spec/hooks/, or naming an existing file, run
as scripts and must exist. Anything else runs through sh -c.
Use --command - to read the command from stdin.

Conditions restrict the hook to matching work units; all given conditions
must hold.`,
		Example: `  fspec add-hook post-implementing lint --command "npm run lint" --blocking
  fspec add-hook pre-testing check --command spec/hooks/check.sh --timeout 120
  fspec add-hook post-implementing audit --command "make audit" --tag security --prefix AUTH-`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			event, name := args[0], args[1]

			command, err := readCommandArg(cmd, command)
			if err != nil {
				return err
			}
			if strings.TrimSpace(command) == "" {
				return fmt.Errorf("--command is required")
			}
			if _, err := timeoutFlagValue(timeout); err != nil {
				return err
			}

			cfg, path, err := loadHooks(ctx)
			if err != nil {
				return err
			}
			if _, exists := cfg.Find(event, name); exists && !force {
				return fmt.Errorf("hook %q already exists for %s (use --force to replace)", name, event)
			}

			def := hooks.Definition{Name: name, Command: command, Blocking: blocking, Timeout: timeout}
			cond := &hooks.Condition{Tags: normalizeTagFlags(tags), Prefix: prefixes, Epic: epic}
			if cmd.Flags().Changed("estimate-min") {
				cond.EstimateMin = &estimateMin
			}
			if cmd.Flags().Changed("estimate-max") {
				cond.EstimateMax = &estimateMax
			}
			if len(cond.Tags) > 0 || len(cond.Prefix) > 0 || cond.Epic != "" || cond.EstimateMin != nil || cond.EstimateMax != nil {
				def.Condition = cond
			}

			def.Run = hooks.ResolveCommand(command, projectRoot(ctx))
			if err := def.Run.Validate(); err != nil {
				return err
			}

			cfg.Add(event, def)
			if err := config.SaveHooks(path, cfg); err != nil {
				return err
			}
			out.Printf("✓ Added hook %s to %s (%s)\n", name, event, def.Run.Kind)
			return nil
		},
	}

	cmd.Flags().StringVarP(&command, "command", "c", "", "Command to run (- reads stdin)")
	cmd.Flags().BoolVarP(&blocking, "blocking", "b", false, "Failure blocks the command (pre) or fails it (post)")
	cmd.Flags().IntVar(&timeout, "timeout", 0, "Timeout in seconds (default from config)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace an existing hook with the same name")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Only for work units with any of these tags")
	cmd.Flags().StringSliceVar(&prefixes, "prefix", nil, "Only for work-unit IDs with any of these prefixes")
	cmd.Flags().StringVar(&epic, "epic", "", "Only for work units in this epic")
	cmd.Flags().Float64Var(&estimateMin, "estimate-min", 0, "Only for work units estimated at least this")
	cmd.Flags().Float64Var(&estimateMax, "estimate-max", 0, "Only for work units estimated at most this")
	cmd.MarkFlagRequired("command")

	return cmd
}

func normalizeTagFlags(tags []string) []string {
	var out []string
	for _, t := range tags {
		if t = strings.TrimSpace(t); t == "" {
			continue
		}
		if !strings.HasPrefix(t, "@") {
			t = "@" + t
		}
		out = append(out, t)
	}
	return out
}

func newRemoveHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove-hook <event> <name>",
		Short:   "Remove a global hook",
		GroupID: GroupHooks,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			event, name := args[0], args[1]

			cfg, path, err := loadHooks(ctx)
			if err != nil {
				return err
			}
			if !cfg.Remove(event, name) {
				return hookNotFoundError(cfg, event, name)
			}
			if err := config.SaveHooks(path, cfg); err != nil {
				return err
			}
			out.Printf("✓ Removed hook %s from %s\n", name, event)
			return nil
		},
	}

	return cmd
}

// hookNotFoundError reports a missing hook, suggesting close names.
func hookNotFoundError(cfg *hooks.Config, event, name string) error {
	var candidates []string
	for _, h := range cfg.Hooks[event] {
		candidates = append(candidates, h.Name)
	}
	if len(candidates) == 0 {
		candidates = append(candidates, cfg.Events()...)
		if matches := fuzzy.Find(event, candidates); len(matches) > 0 {
			return fmt.Errorf("no hooks for event %q (did you mean %s?)", event, matches[0].Str)
		}
		return fmt.Errorf("no hooks for event %q", event)
	}
	if matches := fuzzy.Find(name, candidates); len(matches) > 0 {
		return fmt.Errorf("hook %q not found for %s (did you mean %s?)", name, event, matches[0].Str)
	}
	return fmt.Errorf("hook %q not found for %s", name, event)
}

func newRunHookCmd() *cobra.Command {
	var workUnitID string

	cmd := &cobra.Command{
		Use:     "run-hook <event>",
		Short:   "Run the hooks of an event",
		GroupID: GroupHooks,
		Args:    cobra.ExactArgs(1),
		Long: `Run the hooks registered for an event without running any command.

With --work-unit, the work unit's virtual hooks run first and conditional
global hooks are matched against it. Exits 1 when a blocking hook fails.`,
		Example: `  fspec run-hook post-implementing
  fspec run-hook pre-validating --work-unit AUTH-001`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			l := log.FromContext(ctx)

			if workUnitID != "" {
				store, err := loadStore(ctx)
				if err != nil {
					return err
				}
				if _, err := store.Find(workUnitID); err != nil {
					return err
				}
			}

			phase := newOrchestrator(ctx).RunEvent(ctx, args[0], hooks.Context{WorkUnitID: workUnitID})
			if len(phase.Results) == 0 {
				l.Printf("No hooks for %s\n", args[0])
				return nil
			}
			out.Block(phase.Output)
			if phase.Blocked {
				return &exitError{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&workUnitID, "work-unit", "w", "", "Work unit the hooks run for")
	cmd.RegisterFlagCompletionFunc("work-unit", completeWorkUnitFlag)

	return cmd
}
