package task

import (
	"strings"
)

// Condition tells the scheduler whether a task must always run, or whether
// running it depends on what the incremental dependency analysis discovers.
type Condition int

const (
	// Always means the task runs whenever it is reachable and unblocked.
	Always Condition = iota
	// CheckDependencies means the task is deferred until dependency
	// propagation proves it necessary. If nothing proves it necessary by
	// the end of the run, it is skipped.
	CheckDependencies
)

// OutputKind tags one entry of a task's output map.
type OutputKind string

const (
	// KindObject is the task's primary build product.
	KindObject OutputKind = "object"
	// KindExecutable is a linked executable product.
	KindExecutable OutputKind = "executable"
	// KindDeps is the per-task dependency record consumed by the
	// incremental tracker. Optional; tasks without one are always rebuilt.
	KindDeps OutputKind = "deps"
)

// Outputs maps output kinds to file paths.
type Outputs map[OutputKind]string

// Path returns the path registered for the given kind, or "" if absent.
func (o Outputs) Path(kind OutputKind) string {
	return o[kind]
}

// Tool describes the program that created a task, for diagnostic purposes
// only. RichDiagnostics reports whether the tool emits its own error output
// for ordinary failures, in which case the scheduler suppresses its generic
// "command failed" notice for exit code 1.
type Tool struct {
	Name            string
	RichDiagnostics bool
}

// Node is one build step. Nodes are created by the planner and never
// mutated afterwards; the scheduler compares them by pointer identity.
type Node struct {
	// Deps are the tasks that must finish before this one may start,
	// in manifest order.
	Deps []*Node

	Executable string
	Args       []string

	Outputs   Outputs
	Condition Condition
	Tool      Tool
}

// DepsRecordPath returns the path of the node's dependency record, or ""
// if the node has none.
func (n *Node) DepsRecordPath() string {
	return n.Outputs.Path(KindDeps)
}

// Name returns a human-readable identifier for the node, preferring its
// primary output path.
func (n *Node) Name() string {
	for _, kind := range []OutputKind{KindExecutable, KindObject} {
		if p := n.Outputs.Path(kind); p != "" {
			return p
		}
	}
	return n.Executable
}

// CommandLine renders the node's invocation for verbose output.
func (n *Node) CommandLine() string {
	parts := append([]string{n.Executable}, n.Args...)
	return strings.Join(parts, " ")
}

// Graph is an ordered collection of task nodes. Order is the deterministic
// visitation order when no dependency edge forces otherwise.
type Graph struct {
	Nodes []*Node
}

// Add appends a node to the graph.
func (g *Graph) Add(n *Node) {
	g.Nodes = append(g.Nodes, n)
}

// OnlyStandaloneNode returns the graph's single node if the graph contains
// exactly one node with no dependencies, else nil.
func (g *Graph) OnlyStandaloneNode() *Node {
	if len(g.Nodes) != 1 {
		return nil
	}
	n := g.Nodes[0]
	if len(n.Deps) != 0 {
		return nil
	}
	return n
}
