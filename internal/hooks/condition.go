package hooks

import (
	"slices"
	"strings"
)

// Applies reports whether hook should run for the given context and work unit.
//
// Hooks without a condition always apply. Conditions are work-unit scoped:
// a conditional hook never applies when the context has no work unit ID or
// the work unit could not be loaded.
func Applies(hook Definition, hc Context, wu *WorkUnit) bool {
	cond := hook.Condition
	if cond == nil || cond.empty() {
		return true
	}
	if hc.WorkUnitID == "" || wu == nil {
		return false
	}

	if len(cond.Tags) > 0 && !slices.ContainsFunc(cond.Tags, func(tag string) bool {
		return slices.Contains(wu.Tags, tag)
	}) {
		return false
	}

	if len(cond.Prefix) > 0 && !slices.ContainsFunc(cond.Prefix, func(p string) bool {
		return strings.HasPrefix(wu.ID, p)
	}) {
		return false
	}

	if cond.Epic != "" && wu.Epic != cond.Epic {
		return false
	}

	if cond.EstimateMin != nil || cond.EstimateMax != nil {
		if wu.Estimate == nil {
			return false
		}
		if cond.EstimateMin != nil && *wu.Estimate < *cond.EstimateMin {
			return false
		}
		if cond.EstimateMax != nil && *wu.Estimate > *cond.EstimateMax {
			return false
		}
	}

	return true
}

func (c *Condition) empty() bool {
	return len(c.Tags) == 0 && len(c.Prefix) == 0 && c.Epic == "" &&
		c.EstimateMin == nil && c.EstimateMax == nil
}
