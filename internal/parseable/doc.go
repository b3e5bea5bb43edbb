// Package parseable emits structured, machine-readable build progress:
// began/finished/signalled/skipped events as JSON lines, for tools that
// drive the builder programmatically.
package parseable
