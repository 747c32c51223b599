package pipeline

import (
	"context"
	"errors"

	"github.com/sengac/fspec/internal/config"
	"github.com/sengac/fspec/internal/git"
	"github.com/sengac/fspec/internal/hooks"
	"github.com/sengac/fspec/internal/workunit"
)

// ConfigProvider loads the global hook configuration.
type ConfigProvider interface {
	LoadHooks(ctx context.Context) (*hooks.Config, error)
}

// WorkUnitProvider looks up work units. A missing work unit is (nil, nil).
type WorkUnitProvider interface {
	WorkUnit(ctx context.Context, id string) (*hooks.WorkUnit, error)
}

// GitContextProvider reports changed files. It must not fail.
type GitContextProvider interface {
	Changes(ctx context.Context, root string) git.Changes
}

// HookFile loads hooks from a project hook document.
type HookFile struct {
	Path        string
	ProjectRoot string
}

// LoadHooks implements ConfigProvider.
func (f HookFile) LoadHooks(context.Context) (*hooks.Config, error) {
	return config.LoadHooks(f.Path, f.ProjectRoot)
}

// WorkUnitStore reads work units from spec/work-units.json on each lookup.
type WorkUnitStore struct {
	ProjectRoot string
}

// WorkUnit implements WorkUnitProvider.
func (s WorkUnitStore) WorkUnit(_ context.Context, id string) (*hooks.WorkUnit, error) {
	store, err := workunit.Load(s.ProjectRoot)
	if err != nil {
		return nil, err
	}
	wu, err := store.Find(id)
	if errors.Is(err, workunit.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return wu.View(), nil
}
