package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sengac/fspec/internal/git"
	"github.com/sengac/fspec/internal/hooks"
	"github.com/sengac/fspec/internal/script"
)

type fakeConfig struct {
	cfg *hooks.Config
	err error
}

func (f fakeConfig) LoadHooks(context.Context) (*hooks.Config, error) {
	return f.cfg, f.err
}

type fakeWorkUnits map[string]*hooks.WorkUnit

func (f fakeWorkUnits) WorkUnit(_ context.Context, id string) (*hooks.WorkUnit, error) {
	return f[id], nil
}

type fakeGit struct {
	changes git.Changes
	calls   int
}

func (f *fakeGit) Changes(context.Context, string) git.Changes {
	f.calls++
	return f.changes
}

func hook(name, command string, blocking bool) hooks.Definition {
	return hooks.Definition{Name: name, Command: command, Blocking: blocking, Run: hooks.ShellLiteral(command)}
}

func configWith(event string, defs ...hooks.Definition) *hooks.Config {
	return &hooks.Config{Hooks: map[string][]hooks.Definition{event: defs}}
}

func newOrchestrator(t *testing.T, cfg *hooks.Config, units fakeWorkUnits) (*Orchestrator, *fakeGit) {
	t.Helper()
	root := t.TempDir()
	g := &fakeGit{}
	return &Orchestrator{
		ProjectRoot: root,
		Config:      fakeConfig{cfg: cfg},
		WorkUnits:   units,
		Git:         g,
		Executor:    &hooks.Executor{ProjectRoot: root, DefaultTimeout: 10 * time.Second},
		Now:         func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}, g
}

func okCommand(calls *int) CommandFunc {
	return func(context.Context, hooks.Context) (any, error) {
		*calls++
		return "done", nil
	}
}

func TestRun_NoHooks(t *testing.T) {
	t.Parallel()

	o, g := newOrchestrator(t, nil, nil)
	var calls int
	res, err := o.Run(context.Background(), "implementing", hooks.Context{}, okCommand(&calls))
	require.NoError(t, err)

	assert.True(t, res.CommandExecuted)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "done", res.CommandValue)
	assert.Empty(t, res.Output)
	assert.Empty(t, res.PreResults)
	assert.Empty(t, res.PostResults)
	assert.Equal(t, 1, calls)
	assert.Zero(t, g.calls)
}

func TestRun_BlockingPostHookFailure(t *testing.T) {
	t.Parallel()

	cfg := configWith("post-implementing", hook("lint", "echo 'lint failed' >&2; exit 1", true))
	o, _ := newOrchestrator(t, cfg, nil)

	var calls int
	res, err := o.Run(context.Background(), "implementing", hooks.Context{}, okCommand(&calls))
	require.NoError(t, err)

	assert.True(t, res.CommandExecuted)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, res.Output, "<system-reminder>")
	assert.Contains(t, res.Output, "Hook: lint")
	assert.Contains(t, res.Output, "Exit code: 1")
	assert.Contains(t, res.Output, "lint failed")
	require.Len(t, res.PostResults, 1)
	assert.False(t, res.PostResults[0].Success)
}

func TestRun_BlockingPostHookFailureRunsRemainingPostHooks(t *testing.T) {
	t.Parallel()

	cfg := configWith("post-implementing",
		hook("lint", "exit 1", true),
		hook("notify", "echo notified", false),
	)
	o, _ := newOrchestrator(t, cfg, nil)

	var calls int
	res, err := o.Run(context.Background(), "implementing", hooks.Context{}, okCommand(&calls))
	require.NoError(t, err)

	assert.True(t, res.CommandExecuted)
	assert.Equal(t, 1, res.ExitCode)
	require.Len(t, res.PostResults, 2)
	assert.Equal(t, "lint", res.PostResults[0].HookName)
	assert.False(t, res.PostResults[0].Success)
	assert.Equal(t, "notify", res.PostResults[1].HookName)
	assert.True(t, res.PostResults[1].Success)
	assert.Contains(t, res.Output, "Hook: lint")
	assert.Contains(t, res.Output, "notified")
}

func TestRun_GitContextSpecialCharacters(t *testing.T) {
	t.Parallel()

	units := fakeWorkUnits{"AUTH-001": {
		ID: "AUTH-001",
		VirtualHooks: []hooks.VirtualHook{
			{Definition: hooks.Definition{Name: "files", Command: "printf '[%s]\\n'"}, Event: "post-implementing", GitContext: true},
		},
	}}
	o, g := newOrchestrator(t, nil, units)
	g.changes = git.Changes{Staged: []string{"docs/R&D.md"}, Unstaged: []string{"a<b>.txt"}}

	vh := units["AUTH-001"].VirtualHooks[0]
	_, err := script.Generate(o.ProjectRoot, "AUTH-001", vh.Name, vh.Command, true)
	require.NoError(t, err)

	var calls int
	res, err := o.Run(context.Background(), "implementing", hooks.Context{WorkUnitID: "AUTH-001"}, okCommand(&calls))
	require.NoError(t, err)

	require.Len(t, res.PostResults, 1)
	assert.Equal(t, "[docs/R&D.md]\n[a<b>.txt]\n", res.PostResults[0].Stdout)
}

func TestRun_BlockingPreHookSkipsCommand(t *testing.T) {
	t.Parallel()

	cfg := &hooks.Config{Hooks: map[string][]hooks.Definition{
		"pre-testing": {
			hook("info", "echo informational", false),
			hook("gate", "echo 'not ready' >&2; exit 1", true),
			hook("after", "echo still runs", false),
		},
		"post-testing": {hook("never", "echo post", false)},
	}}
	o, _ := newOrchestrator(t, cfg, nil)

	var calls int
	res, err := o.Run(context.Background(), "testing", hooks.Context{}, okCommand(&calls))
	require.NoError(t, err)

	assert.False(t, res.CommandExecuted)
	assert.Zero(t, calls)
	assert.Equal(t, 1, res.ExitCode)
	assert.Nil(t, res.CommandValue)
	assert.Empty(t, res.PostResults)

	require.Len(t, res.PreResults, 3, "every selected hook produces a result")
	assert.True(t, res.PreResults[2].Success)

	assert.Contains(t, res.Output, "Hook: gate")
	assert.NotContains(t, res.Output, "informational", "only blocking failures are shown when blocked")
	assert.NotContains(t, res.Output, "still runs")
}

func TestRun_NonBlockingFailuresDoNotAffectExitCode(t *testing.T) {
	t.Parallel()

	cfg := &hooks.Config{Hooks: map[string][]hooks.Definition{
		"pre-implementing":  {hook("warn", "echo 'heads up' >&2; exit 2", false)},
		"post-implementing": {hook("report", "echo coverage 80%", false)},
	}}
	o, _ := newOrchestrator(t, cfg, nil)

	var calls int
	res, err := o.Run(context.Background(), "implementing", hooks.Context{}, okCommand(&calls))
	require.NoError(t, err)

	assert.Equal(t, 0, res.ExitCode)
	assert.True(t, res.CommandExecuted)
	assert.Equal(t, "heads up\ncoverage 80%", res.Output)
	assert.NotContains(t, res.Output, "<system-reminder>")
}

func TestRun_VirtualHooksBeforeGlobal(t *testing.T) {
	t.Parallel()

	cfg := configWith("post-implementing",
		hook("global-a", "echo global-a", false),
		hook("global-b", "echo global-b", false),
	)
	units := fakeWorkUnits{"AUTH-001": {
		ID: "AUTH-001",
		VirtualHooks: []hooks.VirtualHook{
			{Definition: hooks.Definition{Name: "virtual", Command: "echo virtual"}, Event: "post-implementing"},
			{Definition: hooks.Definition{Name: "other-event", Command: "echo nope"}, Event: "pre-implementing"},
		},
	}}
	o, _ := newOrchestrator(t, cfg, units)

	var calls int
	res, err := o.Run(context.Background(), "implementing", hooks.Context{WorkUnitID: "AUTH-001"}, okCommand(&calls))
	require.NoError(t, err)

	require.Len(t, res.PreResults, 1)
	assert.Equal(t, "other-event", res.PreResults[0].HookName)

	var names []string
	for _, r := range res.PostResults {
		names = append(names, r.HookName)
	}
	assert.Equal(t, []string{"virtual", "global-a", "global-b"}, names)
	assert.Equal(t, "nope\nvirtual\nglobal-a\nglobal-b", res.Output)
}

func TestRun_ConditionsFilterGlobalHooks(t *testing.T) {
	t.Parallel()

	cfg := configWith("post-implementing",
		hook("always", "echo always", false),
		hooks.Definition{
			Name: "security", Command: "echo security", Run: hooks.ShellLiteral("echo security"),
			Condition: &hooks.Condition{Tags: []string{"@security"}},
		},
		hooks.Definition{
			Name: "ui", Command: "echo ui", Run: hooks.ShellLiteral("echo ui"),
			Condition: &hooks.Condition{Prefix: []string{"UI-"}},
		},
	)
	units := fakeWorkUnits{"AUTH-001": {ID: "AUTH-001", Tags: []string{"@security"}}}
	o, _ := newOrchestrator(t, cfg, units)

	var calls int
	res, err := o.Run(context.Background(), "implementing", hooks.Context{WorkUnitID: "AUTH-001"}, okCommand(&calls))
	require.NoError(t, err)
	assert.Equal(t, "always\nsecurity", res.Output)

	res, err = o.Run(context.Background(), "implementing", hooks.Context{}, okCommand(&calls))
	require.NoError(t, err)
	assert.Equal(t, "always", res.Output, "conditional hooks never match without a work unit")

	res, err = o.Run(context.Background(), "implementing", hooks.Context{WorkUnitID: "GONE-1"}, okCommand(&calls))
	require.NoError(t, err)
	assert.Equal(t, "always", res.Output, "unknown work unit matches only unconditional hooks")
}

func TestRun_GitContextQueriedOncePerPhase(t *testing.T) {
	t.Parallel()

	units := fakeWorkUnits{"AUTH-001": {
		ID: "AUTH-001",
		VirtualHooks: []hooks.VirtualHook{
			{Definition: hooks.Definition{Name: "files", Command: "printf '%s\\n'"}, Event: "pre-implementing", GitContext: true},
			{Definition: hooks.Definition{Name: "files2", Command: "printf '%s\\n'"}, Event: "pre-implementing", GitContext: true},
			{Definition: hooks.Definition{Name: "post-files", Command: "printf '%s\\n'"}, Event: "post-implementing", GitContext: true},
		},
	}}
	o, g := newOrchestrator(t, nil, units)
	g.changes = git.Changes{Staged: []string{"a.go"}, Unstaged: []string{"b.go"}}

	for _, vh := range units["AUTH-001"].VirtualHooks {
		_, err := script.Generate(o.ProjectRoot, "AUTH-001", vh.Name, vh.Command, true)
		require.NoError(t, err)
	}

	var seen hooks.Context
	res, err := o.Run(context.Background(), "implementing", hooks.Context{WorkUnitID: "AUTH-001"},
		func(_ context.Context, hc hooks.Context) (any, error) {
			seen = hc
			g.changes = git.Changes{Staged: []string{"c.go"}, Unstaged: []string{}}
			return nil, nil
		})
	require.NoError(t, err)

	assert.Equal(t, 2, g.calls, "one query for the pre phase, one for the post phase")
	assert.Equal(t, []string{"a.go"}, seen.StagedFiles)
	assert.Equal(t, []string{"b.go"}, seen.UnstagedFiles)
	assert.Equal(t, "pre-implementing", seen.Event)

	require.Len(t, res.PreResults, 2)
	assert.Equal(t, "a.go\nb.go\n", res.PreResults[0].Stdout)
	require.Len(t, res.PostResults, 1)
	assert.Equal(t, "c.go\n", res.PostResults[0].Stdout, "post phase sees re-queried changes")
}

func TestRun_GitContextNotQueriedWhenUnneeded(t *testing.T) {
	t.Parallel()

	cfg := configWith("pre-implementing", hook("plain", "true", false))
	o, g := newOrchestrator(t, cfg, nil)

	var calls int
	_, err := o.Run(context.Background(), "implementing", hooks.Context{}, okCommand(&calls))
	require.NoError(t, err)
	assert.Zero(t, g.calls)
}

func TestRun_HookContextOnStdin(t *testing.T) {
	t.Parallel()

	cfg := &hooks.Config{Hooks: map[string][]hooks.Definition{
		"pre-validating":  {hook("ctx", "cat", false)},
		"post-validating": {hook("ctx", "cat", false)},
	}}
	o, _ := newOrchestrator(t, cfg, fakeWorkUnits{"W-1": {ID: "W-1"}})

	var calls int
	res, err := o.Run(context.Background(), "validating", hooks.Context{WorkUnitID: "W-1"}, okCommand(&calls))
	require.NoError(t, err)

	require.Len(t, res.PreResults, 1)
	require.Len(t, res.PostResults, 1)
	assert.JSONEq(t, `{"workUnitId":"W-1","event":"pre-validating","timestamp":"2026-01-02T03:04:05Z"}`, res.PreResults[0].Stdout)
	assert.JSONEq(t, `{"workUnitId":"W-1","event":"post-validating","timestamp":"2026-01-02T03:04:05Z"}`, res.PostResults[0].Stdout)
}

func TestRun_CommandErrorSkipsPostHooks(t *testing.T) {
	t.Parallel()

	cfg := &hooks.Config{Hooks: map[string][]hooks.Definition{
		"pre-implementing":  {hook("pre", "echo pre", false)},
		"post-implementing": {hook("post", "echo post", true)},
	}}
	o, _ := newOrchestrator(t, cfg, nil)

	boom := errors.New("boom")
	res, err := o.Run(context.Background(), "implementing", hooks.Context{},
		func(context.Context, hooks.Context) (any, error) { return nil, boom })

	require.ErrorIs(t, err, boom)
	require.NotNil(t, res)
	assert.True(t, res.CommandExecuted)
	assert.Len(t, res.PreResults, 1)
	assert.Empty(t, res.PostResults)
	assert.Equal(t, "pre", res.Output)
}

func TestRun_ConfigErrorMeansNoGlobalHooks(t *testing.T) {
	t.Parallel()

	o, _ := newOrchestrator(t, nil, nil)
	o.Config = fakeConfig{err: errors.New("parse fspec-hooks.json: unexpected EOF")}

	var calls int
	res, err := o.Run(context.Background(), "implementing", hooks.Context{}, okCommand(&calls))
	require.NoError(t, err)
	assert.True(t, res.CommandExecuted)
	assert.Equal(t, 0, res.ExitCode)
}

func TestRun_TimedOutBlockingPreHook(t *testing.T) {
	t.Parallel()

	slow := hook("slow", "sleep 5", true)
	slow.Timeout = 1
	o, _ := newOrchestrator(t, configWith("pre-implementing", slow), nil)

	var calls int
	start := time.Now()
	res, err := o.Run(context.Background(), "implementing", hooks.Context{}, okCommand(&calls))
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 4*time.Second)
	assert.False(t, res.CommandExecuted)
	require.Len(t, res.PreResults, 1)
	assert.True(t, res.PreResults[0].TimedOut)
	assert.Nil(t, res.PreResults[0].ExitCode)
	assert.Contains(t, res.Output, "Exit code: timeout")
}

func TestRunEvent(t *testing.T) {
	t.Parallel()

	cfg := configWith("pre-commit",
		hook("fmt", "echo formatted", false),
		hook("vet", "echo 'vet: issues' >&2; exit 3", true),
	)
	o, _ := newOrchestrator(t, cfg, nil)

	phase := o.RunEvent(context.Background(), "pre-commit", hooks.Context{})
	assert.Equal(t, "pre-commit", phase.Event)
	assert.True(t, phase.Blocked)
	require.Len(t, phase.Results, 2)
	assert.True(t, strings.HasPrefix(phase.Output, "formatted\n<system-reminder>"))

	empty := o.RunEvent(context.Background(), "unknown", hooks.Context{})
	assert.False(t, empty.Blocked)
	assert.Empty(t, empty.Results)
	assert.Empty(t, empty.Output)
}

func TestProviders_FileBacked(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	specDir := filepath.Join(root, "spec")
	require.NoError(t, os.MkdirAll(specDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(specDir, "fspec-hooks.json"),
		[]byte(`{"hooks":{"post-implementing":[{"name":"lint","command":"echo lint"}]}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(specDir, "work-units.json"),
		[]byte(`{"workUnits":{"AUTH-001":{"id":"AUTH-001","title":"Login","status":"implementing","tags":["@security"]}}}`), 0o644))

	cfg, err := HookFile{Path: filepath.Join(specDir, "fspec-hooks.json"), ProjectRoot: root}.LoadHooks(context.Background())
	require.NoError(t, err)
	assert.Len(t, cfg.Hooks["post-implementing"], 1)

	store := WorkUnitStore{ProjectRoot: root}
	wu, err := store.WorkUnit(context.Background(), "AUTH-001")
	require.NoError(t, err)
	require.NotNil(t, wu)
	assert.Equal(t, []string{"@security"}, wu.Tags)

	missing, err := store.WorkUnit(context.Background(), "NOPE-1")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
