// Package diagnostics carries the structured, non-fatal events produced while
// compiling schemas, classifying fields and normalising documents. Results are
// returned alongside values so callers and tests can assert on them; a Sink
// can forward them to a logger.
package diagnostics
