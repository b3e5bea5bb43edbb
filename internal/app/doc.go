// Package app wires the driver together: logger, manifest loader, planner
// and scheduler. It owns application lifecycle but no scheduling logic.
package app
