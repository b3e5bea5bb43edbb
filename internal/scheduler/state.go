package scheduler

import (
	"github.com/vk/buildq/internal/task"
)

// runMode is the global rebuild posture of one scheduling run.
type runMode int

const (
	// modeNormal trusts per-task dependency records.
	modeNormal runMode = iota
	// modeRebuildAll is the fallback after a dependency-tracking failure:
	// every task runs, conditions are ignored.
	modeRebuildAll
)

// state is the scheduler's working memory for one run.
//
// Invariants: finished is a subset of scheduled; a node sits in some
// blocking list only while its blocker is unfinished; no node is handed to
// the queue twice.
type state struct {
	// scheduled holds nodes handed to the queue, plus nodes resolved as
	// not needing execution.
	scheduled map[*task.Node]struct{}

	// finished holds nodes that completed successfully or were determined
	// unnecessary.
	finished map[*task.Node]struct{}

	// blocking maps an unfinished node to the nodes waiting on it. The
	// waiters are re-evaluated, not merely released, when the blocker
	// finishes.
	blocking map[*task.Node][]*task.Node
}

func newState() *state {
	return &state{
		scheduled: make(map[*task.Node]struct{}),
		finished:  make(map[*task.Node]struct{}),
		blocking:  make(map[*task.Node][]*task.Node),
	}
}

// firstUnfinished returns the first dependency not yet finished, or nil.
// Registering a blocked node against just this one dependency is enough:
// readiness is re-evaluated from scratch every time a blocker finishes, so
// any further unfinished dependency is found on the next pass.
func (st *state) firstUnfinished(deps []*task.Node) *task.Node {
	for _, d := range deps {
		if _, ok := st.finished[d]; !ok {
			return d
		}
	}
	return nil
}
