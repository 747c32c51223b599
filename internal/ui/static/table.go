// Package static provides non-interactive terminal output components.
package static

import (
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/sengac/fspec/internal/hooks"
	"github.com/sengac/fspec/internal/ui/styles"
	"github.com/sengac/fspec/internal/workunit"
)

// RenderTable creates a formatted table with proper column alignment.
// Headers and rows are rendered using lipgloss/table which automatically
// calculates column widths based on content. No borders are rendered.
func RenderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	var output strings.Builder

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	output.WriteString(t.String())
	output.WriteString("\n")

	return output.String()
}

// WorkUnitHeaders are the columns of WorkUnitTableRow.
var WorkUnitHeaders = []string{"ID", "STATUS", "ESTIMATE", "EPIC", "TAGS", "TITLE"}

// WorkUnitTableRow renders one work unit for "list-work-units".
func WorkUnitTableRow(wu *workunit.WorkUnit) []string {
	return []string{
		wu.ID,
		styles.Status(string(wu.Status)),
		formatEstimate(wu.Estimate),
		dash(wu.Epic),
		dash(strings.Join(wu.Tags, " ")),
		truncate(wu.Title, 50),
	}
}

// HookHeaders are the columns of HookTableRow.
var HookHeaders = []string{"EVENT", "NAME", "BLOCKING", "TIMEOUT", "CONDITION", "COMMAND"}

// HookTableRow renders one global hook for "list-hooks".
func HookTableRow(event string, h hooks.Definition) []string {
	return []string{
		event,
		h.Name,
		styles.Blocking(h.Blocking),
		formatTimeout(h.Timeout),
		dash(FormatCondition(h.Condition)),
		truncate(h.Command, 60),
	}
}

// VirtualHookHeaders are the columns of VirtualHookTableRow.
var VirtualHookHeaders = []string{"EVENT", "NAME", "BLOCKING", "GIT", "COMMAND"}

// VirtualHookTableRow renders one virtual hook for "list-virtual-hooks".
func VirtualHookTableRow(vh hooks.VirtualHook) []string {
	git := "-"
	if vh.GitContext {
		git = "yes"
	}
	return []string{
		vh.Event,
		vh.Name,
		styles.Blocking(vh.Blocking),
		git,
		truncate(vh.Command, 60),
	}
}

// FormatCondition summarizes a hook condition, e.g. "tags=@a,@b prefix=AUTH- estimate=1..5".
func FormatCondition(c *hooks.Condition) string {
	if c == nil {
		return ""
	}
	var parts []string
	if len(c.Tags) > 0 {
		parts = append(parts, "tags="+strings.Join(c.Tags, ","))
	}
	if len(c.Prefix) > 0 {
		parts = append(parts, "prefix="+strings.Join(c.Prefix, ","))
	}
	if c.Epic != "" {
		parts = append(parts, "epic="+c.Epic)
	}
	if c.EstimateMin != nil || c.EstimateMax != nil {
		lo, hi := "", ""
		if c.EstimateMin != nil {
			lo = strconv.FormatFloat(*c.EstimateMin, 'g', -1, 64)
		}
		if c.EstimateMax != nil {
			hi = strconv.FormatFloat(*c.EstimateMax, 'g', -1, 64)
		}
		parts = append(parts, "estimate="+lo+".."+hi)
	}
	return strings.Join(parts, " ")
}

func formatEstimate(e *float64) string {
	if e == nil {
		return "-"
	}
	return strconv.FormatFloat(*e, 'g', -1, 64)
}

func formatTimeout(seconds int) string {
	if seconds <= 0 {
		return "default"
	}
	return strconv.Itoa(seconds) + "s"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
