// Package hooks discovers, filters, executes and formats lifecycle hooks.
//
// Hooks are commands bound to lifecycle events. Every guarded fspec command
// has two events derived from its name: "pre-<command>" and "post-<command>"
// (see [GenerateEventNames]). Hooks come from two places:
//
//   - Global hooks: the project hook configuration, keyed by event name
//   - Virtual hooks: stored on a single work unit, scoped to that unit
//
// Example configuration (spec/fspec-hooks.json):
//
//	{
//	  "hooks": {
//	    "post-implementing": [
//	      {"name": "lint", "command": "npm run lint", "blocking": true, "timeout": 120},
//	      {"name": "notify", "command": "./spec/hooks/notify.sh",
//	       "condition": {"tags": ["@security"], "prefix": ["AUTH-"]}}
//	    ]
//	  }
//	}
//
// # Conditions
//
// A hook without a condition always applies. A hook with a condition only
// applies to a known work unit, and all present condition fields must hold
// (see [Applies]).
//
// # Execution
//
// Each hook is one child process. The hook [Context] is written to its stdin
// as a single JSON document. Output is captured, the per-hook timeout kills
// the whole process group, and a [Result] is always produced. Hooks run
// strictly one after another ([Executor.ExecuteHooks]).
//
// # Output
//
// [Format] renders results. Blocking failures are wrapped in a
// <system-reminder> block addressed to AI agents; everything else passes
// through unchanged.
package hooks
