// Package workunit manages the work-unit store at spec/work-units.json.
//
// A work unit moves through the ACDD lifecycle:
//
//	backlog → specifying → testing → implementing → validating → done
//
// with "blocked" reachable from any active state. Each work unit also owns
// its virtual hooks. [WorkUnit.View] exposes the read-only subset that hook
// selection consumes.
package workunit
