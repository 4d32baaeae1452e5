// Package orchestrator wires contracts, editing sessions, persistence and
// renderers behind a single entry point. It loads contract documents through
// the catalog, applies presentation overlays, opens sessions for stored
// sections (falling back to a read-only dump for unknown types), dispatches
// structural edits and renders forms with the configured theme.
package orchestrator
