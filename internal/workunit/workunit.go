package workunit

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/sengac/fspec/internal/hooks"
	"github.com/sengac/fspec/internal/storage"
)

// FileName is the project-relative path of the work-unit store.
const FileName = "spec/work-units.json"

// ErrNotFound is returned when a work unit does not exist.
var ErrNotFound = errors.New("work unit not found")

// Transition records a status change.
type Transition struct {
	Status    Status    `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

// WorkUnit is a tracked piece of work.
type WorkUnit struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Status       Status              `json:"status"`
	Tags         []string            `json:"tags,omitempty"`
	Epic         string              `json:"epic,omitempty"`
	Estimate     *float64            `json:"estimate,omitempty"`
	VirtualHooks []hooks.VirtualHook `json:"virtualHooks,omitempty"`
	StateHistory []Transition        `json:"stateHistory,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// Store holds all work units of a project.
type Store struct {
	WorkUnits map[string]*WorkUnit `json:"workUnits"`

	path string
}

// Path returns the store location under projectRoot.
func Path(projectRoot string) string {
	return filepath.Join(projectRoot, FileName)
}

// Load reads the store from projectRoot.
// Returns an empty store if the file doesn't exist.
func Load(projectRoot string) (*Store, error) {
	s := &Store{WorkUnits: map[string]*WorkUnit{}, path: Path(projectRoot)}
	if err := storage.LoadJSON(s.path, s); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("load work units: %w", err)
	}
	if s.WorkUnits == nil {
		s.WorkUnits = map[string]*WorkUnit{}
	}
	for id, wu := range s.WorkUnits {
		if wu.ID == "" {
			wu.ID = id
		}
	}
	return s, nil
}

// Save writes the store back to disk atomically.
func (s *Store) Save() error {
	if err := storage.SaveJSON(s.path, s); err != nil {
		return fmt.Errorf("save work units: %w", err)
	}
	return nil
}

// IDs returns all work-unit IDs, sorted.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.WorkUnits))
	for id := range s.WorkUnits {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// List returns work units sorted by ID, optionally filtered by status.
func (s *Store) List(status Status) []*WorkUnit {
	var out []*WorkUnit
	for _, id := range s.IDs() {
		wu := s.WorkUnits[id]
		if status != "" && wu.Status != status {
			continue
		}
		out = append(out, wu)
	}
	return out
}

// Find looks up a work unit by ID. The error wraps ErrNotFound and suggests
// close matches.
func (s *Store) Find(id string) (*WorkUnit, error) {
	if wu, ok := s.WorkUnits[id]; ok {
		return wu, nil
	}
	if suggestions := s.Suggest(id); len(suggestions) > 0 {
		return nil, fmt.Errorf("%w: %s (did you mean: %s?)", ErrNotFound, id, strings.Join(suggestions, ", "))
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Suggest returns up to three IDs that fuzzy-match id, best first.
func (s *Store) Suggest(id string) []string {
	return suggest(id, s.IDs())
}

func suggest(pattern string, candidates []string) []string {
	if pattern == "" {
		return nil
	}
	matches := fuzzy.Find(strings.ToUpper(pattern), upper(candidates))
	var out []string
	for _, m := range matches {
		out = append(out, candidates[m.Index])
		if len(out) == 3 {
			break
		}
	}
	return out
}

func upper(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToUpper(s)
	}
	return out
}

// Create adds a new work unit in the backlog.
func (s *Store) Create(wu WorkUnit, now time.Time) (*WorkUnit, error) {
	if err := ValidateID(wu.ID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(wu.Title) == "" {
		return nil, fmt.Errorf("work unit title is required")
	}
	if _, exists := s.WorkUnits[wu.ID]; exists {
		return nil, fmt.Errorf("work unit already exists: %s", wu.ID)
	}
	if wu.Estimate != nil && *wu.Estimate < 0 {
		return nil, fmt.Errorf("estimate must not be negative")
	}

	created := wu
	created.Status = StatusBacklog
	created.Tags = normalizeTags(wu.Tags)
	created.VirtualHooks = nil
	created.StateHistory = []Transition{{Status: StatusBacklog, Timestamp: now}}
	created.CreatedAt = now
	created.UpdatedAt = now

	s.WorkUnits[created.ID] = &created
	return &created, nil
}

// ValidateID checks that id is usable as a work-unit ID and a script file name.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("work unit ID is required")
	}
	if strings.ContainsAny(id, " \t\n/\\") {
		return fmt.Errorf("invalid work unit ID %q: must not contain whitespace or path separators", id)
	}
	return nil
}

func normalizeTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, "@") {
			t = "@" + t
		}
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

// SetStatus moves the work unit to status, recording the transition.
func (wu *WorkUnit) SetStatus(status Status, now time.Time) error {
	if err := CheckTransition(wu.Status, status); err != nil {
		return fmt.Errorf("%s: %w", wu.ID, err)
	}
	wu.Status = status
	wu.StateHistory = append(wu.StateHistory, Transition{Status: status, Timestamp: now})
	wu.UpdatedAt = now
	return nil
}

// SetEstimate sets the estimate in story points.
func (wu *WorkUnit) SetEstimate(points float64, now time.Time) error {
	if points < 0 {
		return fmt.Errorf("estimate must not be negative, got %g", points)
	}
	wu.Estimate = &points
	wu.UpdatedAt = now
	return nil
}

// FindVirtualHook returns the virtual hook named name.
func (wu *WorkUnit) FindVirtualHook(name string) (hooks.VirtualHook, bool) {
	for _, vh := range wu.VirtualHooks {
		if vh.Name == name {
			return vh, true
		}
	}
	return hooks.VirtualHook{}, false
}

// AddVirtualHook attaches vh. Names are unique per work unit because they
// key the materialized script.
func (wu *WorkUnit) AddVirtualHook(vh hooks.VirtualHook, now time.Time) error {
	if vh.Name == "" {
		return fmt.Errorf("virtual hook name is required")
	}
	if vh.Event == "" {
		return fmt.Errorf("virtual hook event is required")
	}
	if strings.TrimSpace(vh.Command) == "" {
		return fmt.Errorf("virtual hook command is required")
	}
	if existing, ok := wu.FindVirtualHook(vh.Name); ok {
		return fmt.Errorf("virtual hook %q already exists on %s (event %s)", vh.Name, wu.ID, existing.Event)
	}
	wu.VirtualHooks = append(wu.VirtualHooks, vh)
	wu.UpdatedAt = now
	return nil
}

// RemoveVirtualHook detaches the virtual hook named name.
func (wu *WorkUnit) RemoveVirtualHook(name string, now time.Time) (hooks.VirtualHook, error) {
	for i, vh := range wu.VirtualHooks {
		if vh.Name == name {
			wu.VirtualHooks = slices.Delete(wu.VirtualHooks, i, i+1)
			wu.UpdatedAt = now
			return vh, nil
		}
	}
	names := make([]string, len(wu.VirtualHooks))
	for i, vh := range wu.VirtualHooks {
		names[i] = vh.Name
	}
	if s := suggest(name, names); len(s) > 0 {
		return hooks.VirtualHook{}, fmt.Errorf("virtual hook %q not found on %s (did you mean: %s?)", name, wu.ID, strings.Join(s, ", "))
	}
	return hooks.VirtualHook{}, fmt.Errorf("virtual hook %q not found on %s", name, wu.ID)
}

// ClearVirtualHooks detaches every virtual hook and returns them.
func (wu *WorkUnit) ClearVirtualHooks(now time.Time) []hooks.VirtualHook {
	removed := wu.VirtualHooks
	if len(removed) > 0 {
		wu.VirtualHooks = nil
		wu.UpdatedAt = now
	}
	return removed
}

// View returns the read-only subset used for hook selection.
func (wu *WorkUnit) View() *hooks.WorkUnit {
	if wu == nil {
		return nil
	}
	return &hooks.WorkUnit{
		ID:           wu.ID,
		Tags:         slices.Clone(wu.Tags),
		Epic:         wu.Epic,
		Estimate:     wu.Estimate,
		VirtualHooks: slices.Clone(wu.VirtualHooks),
	}
}
