package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sengac/fspec/internal/config"
	"github.com/sengac/fspec/internal/workunit"
)

// completionRoot resolves the project root without the root command's
// pre-run, which cobra skips for completion requests.
func completionRoot(cmd *cobra.Command) string {
	if root, _ := cmd.Flags().GetString("project-root"); root != "" {
		return root
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return config.FindProjectRoot(wd)
}

// completeWorkUnitID completes the first positional argument with work-unit IDs.
func completeWorkUnitID(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	store, err := workunit.Load(completionRoot(cmd))
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var matches []string
	for _, id := range store.IDs() {
		if strings.HasPrefix(strings.ToLower(id), strings.ToLower(toComplete)) {
			matches = append(matches, id)
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}

// completeWorkUnitFlag completes a --work-unit flag value.
func completeWorkUnitFlag(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeWorkUnitID(cmd, nil, toComplete)
}

// completeStatus completes lifecycle statuses.
func completeStatus(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, s := range workunit.Statuses() {
		if strings.HasPrefix(string(s), toComplete) {
			out = append(out, string(s))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
