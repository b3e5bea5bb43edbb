// Package task defines the immutable build-step data model: nodes, their
// dependency edges, output maps and run conditions. The scheduler observes
// nodes by reference and never copies or mutates them.
package task
