// Package pipeline runs guarded commands between their lifecycle hooks.
//
// [Orchestrator.Run] drives one command through
//
//	pre-hooks → command → post-hooks
//
// A failed blocking pre-hook stops the command from running. A failed
// blocking post-hook only flips the exit code to 1. Non-blocking failures
// are reported but never change the outcome.
//
// Hook configuration, work units and git state come from provider
// interfaces so tests can substitute in-memory fakes.
package pipeline
