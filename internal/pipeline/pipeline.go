package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/sengac/fspec/internal/hooks"
	"github.com/sengac/fspec/internal/log"
	"github.com/sengac/fspec/internal/script"
)

// CommandFunc is the guarded operation. Its return value is passed through
// in Result.CommandValue.
type CommandFunc func(ctx context.Context, hc hooks.Context) (any, error)

// Orchestrator wires hook discovery, selection and execution around commands.
type Orchestrator struct {
	ProjectRoot string
	Config      ConfigProvider
	WorkUnits   WorkUnitProvider
	Git         GitContextProvider
	Executor    *hooks.Executor

	// Now stamps hook contexts; defaults to time.Now.
	Now func() time.Time
}

// Result is the outcome of one guarded command.
type Result struct {
	PreResults      []hooks.Result
	PostResults     []hooks.Result
	CommandExecuted bool
	ExitCode        int    // 1 when a blocking hook failed, else 0
	Output          string // formatted hook output, one piece per line group
	CommandValue    any
}

// PhaseResult is the outcome of running the hooks of a single event.
type PhaseResult struct {
	Event   string
	Results []hooks.Result
	Output  string
	Blocked bool // a blocking hook failed
}

// selection is a hook chosen for a phase.
type selection struct {
	hook       hooks.Definition
	gitContext bool
}

// Run executes command between its pre- and post-hooks.
//
// hc carries the work-unit ID; its Event and Timestamp are filled in here.
// Hook failures never produce an error: they are reported in the Result.
// An error is returned only when fn fails, in which case post-hooks are
// skipped and the returned Result holds the pre-hook outcome.
func (o *Orchestrator) Run(ctx context.Context, command string, hc hooks.Context, fn CommandFunc) (*Result, error) {
	l := log.FromContext(ctx)
	events := hooks.GenerateEventNames(command)
	cfg, wu := o.load(ctx, hc.WorkUnitID)

	if hc.Timestamp.IsZero() {
		hc.Timestamp = o.now()
	}
	hc.Event = events.Pre

	res := &Result{}
	var output []string

	pre := o.runPhase(ctx, cfg, wu, &hc)
	res.PreResults = pre.results
	if pre.blocked() {
		l.Debug("command blocked by pre-hook", "command", command, "event", events.Pre)
		res.ExitCode = 1
		res.Output = joinOutput(pre.format(true))
		return res, nil
	}
	output = append(output, pre.format(false)...)

	value, err := fn(ctx, hc)
	res.CommandExecuted = true
	if err != nil {
		res.Output = joinOutput(output)
		return res, err
	}
	res.CommandValue = value

	post := hc
	post.Event = events.Post
	postPhase := o.runPhase(ctx, cfg, wu, &post)
	res.PostResults = postPhase.results
	output = append(output, postPhase.format(false)...)

	if postPhase.blocked() {
		res.ExitCode = 1
	}
	res.Output = joinOutput(output)
	return res, nil
}

// RunEvent runs the hooks registered for a single event outside any command.
func (o *Orchestrator) RunEvent(ctx context.Context, event string, hc hooks.Context) PhaseResult {
	cfg, wu := o.load(ctx, hc.WorkUnitID)
	if hc.Timestamp.IsZero() {
		hc.Timestamp = o.now()
	}
	hc.Event = event

	phase := o.runPhase(ctx, cfg, wu, &hc)
	return PhaseResult{
		Event:   event,
		Results: phase.results,
		Output:  joinOutput(phase.format(false)),
		Blocked: phase.blocked(),
	}
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// load fetches the hook configuration and work unit. Failures degrade to no
// global hooks and no work unit.
func (o *Orchestrator) load(ctx context.Context, workUnitID string) (*hooks.Config, *hooks.WorkUnit) {
	l := log.FromContext(ctx)

	var cfg *hooks.Config
	if o.Config != nil {
		c, err := o.Config.LoadHooks(ctx)
		if err != nil {
			l.Warnf("ignoring hook configuration: %v", err)
		} else {
			cfg = c
		}
	}

	var wu *hooks.WorkUnit
	if workUnitID != "" && o.WorkUnits != nil {
		w, err := o.WorkUnits.WorkUnit(ctx, workUnitID)
		if err != nil {
			l.Debug("work unit unavailable", "id", workUnitID, "error", err)
		} else {
			wu = w
		}
	}
	return cfg, wu
}

// phase holds the selected hooks of one event and their results.
type phase struct {
	selected []selection
	results  []hooks.Result
}

// runPhase selects and executes the hooks for hc.Event. Git context is
// queried once, and only when a selected hook asks for it.
func (o *Orchestrator) runPhase(ctx context.Context, cfg *hooks.Config, wu *hooks.WorkUnit, hc *hooks.Context) phase {
	l := log.FromContext(ctx)
	selected := o.selectHooks(cfg, wu, *hc)
	if len(selected) == 0 {
		return phase{}
	}

	for _, s := range selected {
		if s.gitContext && o.Git != nil {
			changes := o.Git.Changes(ctx, o.ProjectRoot)
			if changes.Empty() {
				l.Debug("no changed files", "root", o.ProjectRoot)
			}
			hc.StagedFiles = changes.Staged
			hc.UnstagedFiles = changes.Unstaged
			break
		}
	}

	defs := make([]hooks.Definition, len(selected))
	for i, s := range selected {
		defs[i] = s.hook
	}
	l.Debug("running hooks", "event", hc.Event, "count", len(defs))

	return phase{selected: selected, results: o.executor().ExecuteHooks(ctx, defs, *hc)}
}

// selectHooks returns the work unit's virtual hooks followed by the global
// hooks whose conditions match.
func (o *Orchestrator) selectHooks(cfg *hooks.Config, wu *hooks.WorkUnit, hc hooks.Context) []selection {
	var selected []selection

	for _, vh := range hooks.DiscoverVirtualHooks(wu, hc.Event) {
		def := vh.Definition
		if vh.GitContext {
			def.Run = hooks.ScriptPath(script.Path(o.ProjectRoot, wu.ID, vh.Name))
		} else {
			def.Run = hooks.ResolveCommand(vh.Command, o.ProjectRoot)
		}
		selected = append(selected, selection{hook: def, gitContext: vh.GitContext})
	}

	for _, def := range hooks.DiscoverHooks(cfg, hc.Event) {
		if hooks.Applies(def, hc, wu) {
			selected = append(selected, selection{hook: def})
		}
	}
	return selected
}

func (o *Orchestrator) executor() *hooks.Executor {
	if o.Executor != nil {
		return o.Executor
	}
	return &hooks.Executor{ProjectRoot: o.ProjectRoot}
}

func (p phase) blocked() bool {
	for i, r := range p.results {
		if !r.Success && p.selected[i].hook.Blocking {
			return true
		}
	}
	return false
}

// format renders each result. With onlyBlocking, only blocking failures
// are rendered.
func (p phase) format(onlyBlocking bool) []string {
	var out []string
	for i, r := range p.results {
		blocking := p.selected[i].hook.Blocking
		if onlyBlocking && (r.Success || !blocking) {
			continue
		}
		out = append(out, hooks.Format(r, blocking))
	}
	return out
}

// joinOutput joins the non-empty pieces with newlines.
func joinOutput(pieces []string) string {
	var kept []string
	for _, p := range pieces {
		p = strings.TrimRight(p, "\n")
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}
