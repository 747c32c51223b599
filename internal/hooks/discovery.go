package hooks

import "slices"

// EventNames holds the events fired around a command.
type EventNames struct {
	Pre  string
	Post string
}

// GenerateEventNames returns the pre- and post- event names for a command.
func GenerateEventNames(command string) EventNames {
	return EventNames{Pre: "pre-" + command, Post: "post-" + command}
}

// DiscoverHooks returns the hooks registered for event, in declaration order.
// Matching is exact and case-sensitive. Unknown events yield an empty slice.
func DiscoverHooks(cfg *Config, event string) []Definition {
	if cfg == nil {
		return []Definition{}
	}
	return append([]Definition{}, cfg.Hooks[event]...)
}

// DiscoverVirtualHooks returns the work unit's virtual hooks for event,
// in the order they were added. A nil work unit yields an empty slice.
func DiscoverVirtualHooks(wu *WorkUnit, event string) []VirtualHook {
	matches := []VirtualHook{}
	if wu == nil {
		return matches
	}
	for _, vh := range wu.VirtualHooks {
		if vh.Event == event {
			matches = append(matches, vh)
		}
	}
	return matches
}

// Events returns the configured event names, sorted.
func (c *Config) Events() []string {
	if c == nil {
		return nil
	}
	events := make([]string, 0, len(c.Hooks))
	for event := range c.Hooks {
		events = append(events, event)
	}
	slices.Sort(events)
	return events
}

// Find returns the hook named name under event.
func (c *Config) Find(event, name string) (Definition, bool) {
	if c == nil {
		return Definition{}, false
	}
	for _, h := range c.Hooks[event] {
		if h.Name == name {
			return h, true
		}
	}
	return Definition{}, false
}

// Add appends hook to event. A hook with the same name under the same event
// is replaced in place, keeping its position.
func (c *Config) Add(event string, hook Definition) {
	if c.Hooks == nil {
		c.Hooks = make(map[string][]Definition)
	}
	for i, h := range c.Hooks[event] {
		if h.Name == hook.Name {
			c.Hooks[event][i] = hook
			return
		}
	}
	c.Hooks[event] = append(c.Hooks[event], hook)
}

// Remove deletes the hook named name from event and reports whether it existed.
// Events left without hooks are dropped.
func (c *Config) Remove(event, name string) bool {
	if c == nil {
		return false
	}
	defs := c.Hooks[event]
	idx := slices.IndexFunc(defs, func(h Definition) bool { return h.Name == name })
	if idx == -1 {
		return false
	}
	defs = slices.Delete(defs, idx, idx+1)
	if len(defs) == 0 {
		delete(c.Hooks, event)
	} else {
		c.Hooks[event] = defs
	}
	return true
}
