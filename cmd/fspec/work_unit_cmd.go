package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sengac/fspec/internal/output"
	"github.com/sengac/fspec/internal/ui/static"
	"github.com/sengac/fspec/internal/ui/styles"
	"github.com/sengac/fspec/internal/workunit"
)

func newCreateWorkUnitCmd() *cobra.Command {
	var (
		tags     []string
		epic     string
		estimate float64
	)

	cmd := &cobra.Command{
		Use:     "create-work-unit <id> <title>",
		Short:   "Create a work unit in the backlog",
		GroupID: GroupWork,
		Args:    cobra.ExactArgs(2),
		Long: `Create a work unit in the backlog.

Runs the pre-create-work-unit and post-create-work-unit hooks.`,
		Example: `  fspec create-work-unit AUTH-001 "User login"
  fspec create-work-unit AUTH-002 "Password reset" --tag security --epic auth --estimate 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			wu := workunit.WorkUnit{ID: args[0], Title: args[1], Tags: tags, Epic: epic}
			if cmd.Flags().Changed("estimate") {
				wu.Estimate = &estimate
			}
			if err := workunit.ValidateID(wu.ID); err != nil {
				return err
			}

			return runGuarded(ctx, "create-work-unit", wu.ID, func(ctx context.Context) (string, error) {
				store, err := loadStore(ctx)
				if err != nil {
					return "", err
				}
				created, err := store.Create(wu, now())
				if err != nil {
					return "", err
				}
				if err := store.Save(); err != nil {
					return "", err
				}
				return fmt.Sprintf("✓ Created work unit %s", created.ID), nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Tag (repeatable, @ prefix optional)")
	cmd.Flags().StringVar(&epic, "epic", "", "Epic the work unit belongs to")
	cmd.Flags().Float64Var(&estimate, "estimate", 0, "Estimate in story points")

	return cmd
}

func newUpdateWorkUnitStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "update-work-unit-status <id> <status>",
		Short:             "Move a work unit to another lifecycle state",
		GroupID:           GroupWork,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeWorkUnitStatusArgs,
		Long: `Move a work unit to another lifecycle state.

The target status names the lifecycle command, so moving to "implementing"
runs the pre-implementing hooks, then the update, then the post-implementing
hooks. A failing blocking pre-hook leaves the status unchanged.

States: backlog, specifying, testing, implementing, validating, done, blocked.
Forward moves go one state at a time.`,
		Example: `  fspec update-work-unit-status AUTH-001 specifying
  fspec update-work-unit-status AUTH-001 blocked`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			status, err := workunit.ParseStatus(args[1])
			if err != nil {
				return err
			}

			store, err := loadStore(ctx)
			if err != nil {
				return err
			}
			wu, err := store.Find(id)
			if err != nil {
				return err
			}
			if err := workunit.CheckTransition(wu.Status, status); err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}

			return runGuarded(ctx, string(status), id, func(ctx context.Context) (string, error) {
				store, err := loadStore(ctx)
				if err != nil {
					return "", err
				}
				wu, err := store.Find(id)
				if err != nil {
					return "", err
				}
				from := wu.Status
				if err := wu.SetStatus(status, now()); err != nil {
					return "", err
				}
				if err := store.Save(); err != nil {
					return "", err
				}
				return fmt.Sprintf("✓ %s: %s → %s", id, from, status), nil
			})
		},
	}

	return cmd
}

func completeWorkUnitStatusArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 1 {
		return completeStatus(cmd, args, toComplete)
	}
	return completeWorkUnitID(cmd, args, toComplete)
}

func newUpdateWorkUnitEstimateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "update-work-unit-estimate <id> <points>",
		Short:             "Set the estimate of a work unit",
		GroupID:           GroupWork,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeWorkUnitID,
		Example:           `  fspec update-work-unit-estimate AUTH-001 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			points, err := strconv.ParseFloat(args[1], 64)
			if err != nil || points < 0 {
				return fmt.Errorf("invalid estimate %q: must be a non-negative number", args[1])
			}

			store, err := loadStore(ctx)
			if err != nil {
				return err
			}
			if _, err := store.Find(id); err != nil {
				return err
			}

			return runGuarded(ctx, "update-work-unit-estimate", id, func(ctx context.Context) (string, error) {
				store, err := loadStore(ctx)
				if err != nil {
					return "", err
				}
				wu, err := store.Find(id)
				if err != nil {
					return "", err
				}
				if err := wu.SetEstimate(points, now()); err != nil {
					return "", err
				}
				if err := store.Save(); err != nil {
					return "", err
				}
				return fmt.Sprintf("✓ %s estimate set to %s", id, args[1]), nil
			})
		},
	}

	return cmd
}

func newShowWorkUnitCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:               "show-work-unit <id>",
		Short:             "Show a work unit",
		GroupID:           GroupWork,
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
				return out.JSON(wu)
			}

			out.Printf("%s %s\n", styles.Bold.Render(wu.ID), wu.Title)
			out.Printf("Status:   %s\n", styles.Status(string(wu.Status)))
			if wu.Epic != "" {
				out.Printf("Epic:     %s\n", wu.Epic)
			}
			if len(wu.Tags) > 0 {
				out.Printf("Tags:     %s\n", strings.Join(wu.Tags, " "))
			}
			if wu.Estimate != nil {
				out.Printf("Estimate: %g\n", *wu.Estimate)
			}
			out.Printf("Updated:  %s\n", wu.UpdatedAt.Format("2006-01-02 15:04"))

			if len(wu.VirtualHooks) > 0 {
				out.Println()
				out.Println("Virtual hooks:")
				out.Printf("%s", static.RenderTable(static.VirtualHookHeaders, virtualHookRows(wu)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newListWorkUnitsCmd() *cobra.Command {
	var (
		status     string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "list-work-units",
		Short:   "List work units",
		GroupID: GroupWork,
		Args:    cobra.NoArgs,
		Example: `  fspec list-work-units
  fspec list-work-units --status implementing`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			var filter workunit.Status
			if status != "" {
				s, err := workunit.ParseStatus(status)
				if err != nil {
					return err
				}
				filter = s
			}

			store, err := loadStore(ctx)
			if err != nil {
				return err
			}
			units := store.List(filter)

			if jsonOutput {
				if units == nil {
					units = []*workunit.WorkUnit{}
				}
				return out.JSON(units)
			}
			if len(units) == 0 {
				out.Println("No work units found")
				return nil
			}

			rows := make([][]string, 0, len(units))
			for _, wu := range units {
				rows = append(rows, static.WorkUnitTableRow(wu))
			}
			out.Printf("%s", static.RenderTable(static.WorkUnitHeaders, rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Only show work units in this status")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.RegisterFlagCompletionFunc("status", completeStatus)

	return cmd
}
