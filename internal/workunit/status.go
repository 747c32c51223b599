package workunit

import (
	"fmt"
	"slices"
	"strings"
)

// Status is a lifecycle state.
type Status string

const (
	StatusBacklog      Status = "backlog"
	StatusSpecifying   Status = "specifying"
	StatusTesting      Status = "testing"
	StatusImplementing Status = "implementing"
	StatusValidating   Status = "validating"
	StatusDone         Status = "done"
	StatusBlocked      Status = "blocked"
)

// lifecycle is the forward order of non-blocked states.
var lifecycle = []Status{
	StatusBacklog,
	StatusSpecifying,
	StatusTesting,
	StatusImplementing,
	StatusValidating,
	StatusDone,
}

// Statuses returns every valid status in lifecycle order, blocked last.
func Statuses() []Status {
	return append(slices.Clone(lifecycle), StatusBlocked)
}

// ParseStatus validates s as a status name.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Statuses(), st) {
		return st, nil
	}
	names := make([]string, 0, len(lifecycle)+1)
	for _, v := range Statuses() {
		names = append(names, string(v))
	}
	return "", fmt.Errorf("invalid status %q (valid: %s)", s, strings.Join(names, ", "))
}

// CheckTransition reports whether a work unit may move from one status to another.
//
// Forward moves go one step at a time. Moving back to any earlier state is
// allowed. Any state except done may become blocked, and a blocked unit may
// resume at any state except done.
func CheckTransition(from, to Status) error {
	if from == to {
		return fmt.Errorf("work unit is already %s", to)
	}
	switch {
	case to == StatusBlocked:
		if from == StatusDone {
			return fmt.Errorf("cannot block a work unit that is done")
		}
		return nil
	case from == StatusBlocked:
		if to == StatusDone {
			return fmt.Errorf("cannot move from blocked to done; resume an earlier state first")
		}
		return nil
	}

	fi, ti := slices.Index(lifecycle, from), slices.Index(lifecycle, to)
	if fi < 0 || ti < 0 {
		return fmt.Errorf("invalid transition %s -> %s", from, to)
	}
	if ti > fi+1 {
		return fmt.Errorf("cannot skip from %s to %s; next state is %s", from, to, lifecycle[fi+1])
	}
	return nil
}
