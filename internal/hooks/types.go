package hooks

import (
	"encoding/json"
	"time"
)

// DefaultTimeout applies to hooks that do not declare a timeout.
const DefaultTimeout = 60 * time.Second

// Definition is a hook bound to an event. Identity is Name within its event bucket.
type Definition struct {
	Name      string     `json:"name" toml:"name" yaml:"name"`
	Command   string     `json:"command" toml:"command" yaml:"command"`
	Blocking  bool       `json:"blocking,omitempty" toml:"blocking,omitempty" yaml:"blocking,omitempty"`
	Timeout   int        `json:"timeout,omitempty" toml:"timeout,omitempty" yaml:"timeout,omitempty"` // seconds
	Condition *Condition `json:"condition,omitempty" toml:"condition,omitempty" yaml:"condition,omitempty"`

	// Run is Command resolved against the project root. Loaders fill it in;
	// it is never serialized.
	Run Command `json:"-" toml:"-" yaml:"-"`
}

// Condition restricts a hook to matching work units. Present fields are AND-combined.
type Condition struct {
	Tags        []string `json:"tags,omitempty" toml:"tags,omitempty" yaml:"tags,omitempty"`
	Prefix      []string `json:"prefix,omitempty" toml:"prefix,omitempty" yaml:"prefix,omitempty"`
	Epic        string   `json:"epic,omitempty" toml:"epic,omitempty" yaml:"epic,omitempty"`
	EstimateMin *float64 `json:"estimateMin,omitempty" toml:"estimateMin,omitempty" yaml:"estimateMin,omitempty"`
	EstimateMax *float64 `json:"estimateMax,omitempty" toml:"estimateMax,omitempty" yaml:"estimateMax,omitempty"`
}

// VirtualHook is a hook stored on a single work unit.
type VirtualHook struct {
	Definition
	Event      string `json:"event"`
	GitContext bool   `json:"gitContext,omitempty"`
}

// Config is the hook configuration document: event name -> hooks in declaration order.
type Config struct {
	Hooks map[string][]Definition `json:"hooks" toml:"hooks" yaml:"hooks"`
}

// WorkUnit is the read-only view of a work unit that hook selection needs.
type WorkUnit struct {
	ID           string
	Tags         []string
	Epic         string
	Estimate     *float64
	VirtualHooks []VirtualHook
}

// Context is sent to every hook process on stdin.
type Context struct {
	WorkUnitID    string    `json:"workUnitId,omitempty"`
	Event         string    `json:"event"`
	Timestamp     time.Time `json:"timestamp"`
	StagedFiles   []string  `json:"stagedFiles,omitempty"`
	UnstagedFiles []string  `json:"unstagedFiles,omitempty"`
}

// Result describes one hook execution.
// ExitCode is nil exactly when TimedOut is set.
type Result struct {
	HookName string
	Success  bool
	ExitCode *int
	Stdout   string
	Stderr   string
	TimedOut bool
	Duration time.Duration
}

// MarshalJSON reports Duration in milliseconds.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		HookName string `json:"hookName"`
		Success  bool   `json:"success"`
		ExitCode *int   `json:"exitCode"`
		Stdout   string `json:"stdout"`
		Stderr   string `json:"stderr"`
		TimedOut bool   `json:"timedOut"`
		Duration int64  `json:"duration"`
	}{r.HookName, r.Success, r.ExitCode, r.Stdout, r.Stderr, r.TimedOut, r.Duration.Milliseconds()})
}

// TimeoutDuration returns the hook's timeout, or fallback when none is declared.
func (d Definition) TimeoutDuration(fallback time.Duration) time.Duration {
	if d.Timeout > 0 {
		return time.Duration(d.Timeout) * time.Second
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultTimeout
}
