// Package builder is the planning phase: it turns a loaded manifest model
// into the immutable task graph the scheduler walks.
package builder
