package scheduler

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/buildq/internal/depgraph"
	"github.com/vk/buildq/internal/diag"
	"github.com/vk/buildq/internal/parseable"
	"github.com/vk/buildq/internal/task"
	"github.com/vk/buildq/internal/taskqueue"
)

// SignalledExitCode is the run result when any task dies to a signal. It is
// distinct from every process exit code and outranks plain non-zero exits.
const SignalledExitCode = -2

// OutputLevel selects how task lifecycle events reach the user.
type OutputLevel int

const (
	// LevelNormal relays each task's buffered output verbatim.
	LevelNormal OutputLevel = iota
	// LevelVerbose additionally prints each command line as it starts.
	LevelVerbose
	// LevelParseable emits structured events instead of raw output.
	LevelParseable
)

// Tracker is the incremental dependency knowledge consulted by the
// scheduler. depgraph.Graph is the production implementation.
type Tracker interface {
	Load(n *task.Node, path string) depgraph.LoadResult
	MarkIntransitive(n *task.Node)
	MarkTransitive(n *task.Node) []*task.Node
	IsMarked(n *task.Node) bool
}

// Config assembles a Scheduler. Zero-value fields get production defaults.
type Config struct {
	Queue   taskqueue.Queue
	Tracker Tracker
	Diags   *diag.Engine
	Emitter *parseable.Emitter
	Logger  *slog.Logger

	Level OutputLevel
	Jobs  int

	// ErrW receives relayed task output and verbose command lines.
	ErrW io.Writer

	// TempFiles are removed when the run ends, success or not. Individual
	// removal failures are ignored.
	TempFiles []string

	// ExecInPlace is the process-replacement primitive for the single-task
	// fast path. Overridable for tests.
	ExecInPlace func(executable string, argv []string) error
}

// Scheduler decides which tasks of a graph must run, runs them under
// bounded concurrency, and folds their outcomes into one exit status.
// A Scheduler performs one run and is not reusable.
type Scheduler struct {
	cfg Config
}

// New returns a scheduler for one run.
func New(cfg Config) *Scheduler {
	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}
	if cfg.Queue == nil {
		cfg.Queue = taskqueue.NewLocal(cfg.Jobs)
	}
	if cfg.Tracker == nil {
		cfg.Tracker = depgraph.New()
	}
	if cfg.ErrW == nil {
		cfg.ErrW = os.Stderr
	}
	if cfg.Diags == nil {
		cfg.Diags = diag.NewEngine(cfg.ErrW)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Level == LevelParseable && cfg.Emitter == nil {
		cfg.Emitter = parseable.NewEmitter(cfg.ErrW)
	}
	if cfg.ExecInPlace == nil {
		cfg.ExecInPlace = taskqueue.ExecInPlace
	}
	return &Scheduler{cfg: cfg}
}

// Run walks the graph, drains the queue and returns the run's exit status:
// 0 on success, the first non-zero task exit code on failure, or
// SignalledExitCode if any task died abnormally.
func (s *Scheduler) Run(graph *task.Graph) int {
	logger := s.cfg.Logger

	// Structured output needs the queue's buffering; a lone task without it
	// can replace the process outright.
	if s.cfg.Level != LevelParseable {
		if only := graph.OnlyStandaloneNode(); only != nil {
			logger.Debug("Single standalone task, bypassing the queue.", "task", only.Name())
			return s.runSingle(only)
		}
	}

	if s.cfg.Jobs > 1 && !s.cfg.Queue.SupportsParallelExecution() {
		s.cfg.Diags.ParallelExecutionUnsupported()
	}

	r := &run{
		cfg:      &s.cfg,
		logger:   logger,
		st:       newState(),
		deferred: make(map[*task.Node]struct{}),
		visited:  make(map[*task.Node]struct{}),
	}

	logger.Debug("Scheduling task graph.", "tasks", len(graph.Nodes))
	if res := r.scheduleList(graph.Nodes); res != 0 {
		return res
	}
	if r.mode == modeRebuildAll {
		r.flushDeferred()
	}

	s.cfg.Queue.Execute(r.taskBegan, r.taskFinished, r.taskSignalled)
	logger.Debug("Queue drained.", "result", r.result)

	// A skipped task still counts as finished for its dependents, which
	// may themselves have to run; drain again until nothing new is queued.
	for r.resolveDeferred() {
		s.cfg.Queue.Execute(r.taskBegan, r.taskFinished, r.taskSignalled)
	}

	r.finalize()

	for _, path := range s.cfg.TempFiles {
		_ = os.Remove(path)
	}

	return r.result
}

// runSingle is the fast path for a run that reduces to one task with no
// dependencies: replace this process with the task's invocation. On success
// it never returns.
func (s *Scheduler) runSingle(n *task.Node) int {
	if n.Condition == task.CheckDependencies {
		return 0
	}

	if s.cfg.Level == LevelVerbose {
		fmt.Fprintln(s.cfg.ErrW, n.CommandLine())
	}

	argv := append([]string{n.Executable}, n.Args...)
	if err := s.cfg.ExecInPlace(n.Executable, argv); err != nil {
		s.cfg.Diags.UnableToExecute(err.Error())
		return 1
	}
	return 0
}

// run is the working state of one Scheduler.Run invocation. All of its
// mutation happens on the initial walk or inside the queue's sequential
// callback stream, never concurrently.
type run struct {
	cfg    *Config
	logger *slog.Logger
	st     *state

	mode runMode

	// deferred holds CheckDependencies tasks not yet proven necessary.
	deferred map[*task.Node]struct{}

	// visited guards the once-per-node condition evaluation; a node can be
	// reached both as a graph entry and as another node's dependency.
	visited map[*task.Node]struct{}

	// walkOrder remembers visitation order so finalization is
	// deterministic.
	walkOrder []*task.Node

	result int
}

// scheduleList recursively schedules each node's dependencies, then decides
// the node itself: submit, defer, or block. A non-zero return propagates a
// synchronously-reported prerequisite failure.
func (r *run) scheduleList(nodes []*task.Node) int {
	for _, n := range nodes {
		if res := r.scheduleList(n.Deps); res != 0 {
			return res
		}

		if _, seen := r.visited[n]; seen {
			continue
		}
		r.visited[n] = struct{}{}
		r.walkOrder = append(r.walkOrder, n)

		if r.mode == modeRebuildAll {
			r.scheduleIfReady(n)
			continue
		}

		// Without a dependency record the task always runs, but it cannot
		// dirty anything else. A record that fails to load poisons the
		// whole run instead.
		condition := task.Always
		recordPath := n.DepsRecordPath()
		if recordPath != "" {
			switch r.cfg.Tracker.Load(n, recordPath) {
			case depgraph.HadError:
				r.logger.Debug("Dependency record unreadable, rebuilding everything.", "task", n.Name(), "record", recordPath)
				r.mode = modeRebuildAll
			case depgraph.Valid:
				condition = n.Condition
			case depgraph.NeedsRebuilding:
				panic(fmt.Sprintf("dependency record for %s reported NeedsRebuilding before any marking", n.Name()))
			}
		}

		switch condition {
		case task.Always:
			r.scheduleIfReady(n)
			// Known up front to run, so a later transitive mark must not
			// report it as newly dirtied.
			if r.mode != modeRebuildAll && recordPath != "" {
				r.cfg.Tracker.MarkIntransitive(n)
			}
		case task.CheckDependencies:
			r.deferred[n] = struct{}{}
		}
	}
	return 0
}

// scheduleIfReady submits n unless it is already scheduled or some
// dependency has not finished, in which case n is parked on the first
// unfinished dependency found. It reports whether n was handed to the
// queue.
func (r *run) scheduleIfReady(n *task.Node) bool {
	if _, ok := r.st.scheduled[n]; ok {
		return false
	}

	if blocker := r.st.firstUnfinished(n.Deps); blocker != nil {
		r.st.blocking[blocker] = append(r.st.blocking[blocker], n)
		return false
	}

	r.st.scheduled[n] = struct{}{}
	r.cfg.Queue.Add(n.Executable, n.Args, n)
	return true
}

// flushDeferred submits every deferred task unconditionally. Called when
// the rebuild-everything fallback activates.
func (r *run) flushDeferred() {
	for _, n := range r.walkOrder {
		if _, ok := r.deferred[n]; ok {
			r.scheduleIfReady(n)
		}
	}
	clear(r.deferred)
}

func (r *run) taskBegan(pid int, context any) {
	n := context.(*task.Node)
	switch r.cfg.Level {
	case LevelVerbose:
		fmt.Fprintln(r.cfg.ErrW, n.CommandLine())
	case LevelParseable:
		r.cfg.Emitter.Began(n, pid)
	}
}

// relayOutput forwards a task's buffered output to the error stream. A
// no-op for queues that stream instead of buffer.
func (r *run) relayOutput(output string) {
	if r.cfg.Queue.SupportsBufferedOutput() {
		fmt.Fprint(r.cfg.ErrW, output)
	}
}

func (r *run) taskFinished(pid int, exitCode int, output string, context any) taskqueue.Response {
	n := context.(*task.Node)

	if r.cfg.Level == LevelParseable {
		r.cfg.Emitter.Finished(n, pid, exitCode, output)
	} else {
		r.relayOutput(output)
	}

	if exitCode != 0 {
		// Keep the first failure as the run's result; later failures still
		// diagnose but do not overwrite it.
		if r.result == 0 {
			r.result = exitCode
		}
		// Tools with rich diagnostics have already said enough for an
		// ordinary failure.
		if !n.Tool.RichDiagnostics || exitCode != 1 {
			r.cfg.Diags.CommandFailed(n.Tool.Name, exitCode)
		}
		return taskqueue.Stop
	}

	r.st.finished[n] = struct{}{}

	if waiting, ok := r.st.blocking[n]; ok {
		delete(r.st.blocking, n)
		for _, blocked := range waiting {
			r.scheduleIfReady(blocked)
		}
	}

	// Reload the record to pick up dependencies that appeared or vanished
	// during this very run.
	if r.mode != modeRebuildAll {
		if recordPath := n.DepsRecordPath(); recordPath != "" {
			var dependents []*task.Node
			// Captured before the reload on purpose: the reloaded record
			// must not influence whether this task cascades.
			wasMarked := r.cfg.Tracker.IsMarked(n)

			switch r.cfg.Tracker.Load(n, recordPath) {
			case depgraph.HadError:
				r.logger.Debug("Dependency record reload failed, rebuilding everything.", "task", n.Name())
				r.mode = modeRebuildAll
				r.flushDeferred()
			case depgraph.Valid:
				if wasMarked {
					dependents = r.cfg.Tracker.MarkTransitive(n)
				}
			case depgraph.NeedsRebuilding:
				panic(fmt.Sprintf("dependency record for %s reported NeedsRebuilding on reload", n.Name()))
			}

			for _, d := range dependents {
				delete(r.deferred, d)
				r.scheduleIfReady(d)
			}
		}
	}

	return taskqueue.Continue
}

func (r *run) taskSignalled(pid int, errorMsg string, output string, context any) taskqueue.Response {
	n := context.(*task.Node)

	if r.cfg.Level == LevelParseable {
		r.cfg.Emitter.Signalled(n, pid, errorMsg, output)
	} else {
		r.relayOutput(output)
	}

	if errorMsg != "" {
		r.cfg.Diags.UnableToExecute(errorMsg)
	}
	r.cfg.Diags.CommandSignalled(n.Tool.Name)

	// A signal always wins over any plain exit code.
	r.result = SignalledExitCode

	return taskqueue.Stop
}

// resolveDeferred resolves every still-deferred task as finished without
// running and re-evaluates the tasks that were blocked on one. It reports
// whether any waiter was handed to the queue, in which case the queue must
// be drained again.
func (r *run) resolveDeferred() bool {
	submitted := false
	for _, n := range r.walkOrder {
		if _, ok := r.deferred[n]; !ok {
			continue
		}
		delete(r.deferred, n)
		if r.cfg.Level == LevelParseable {
			r.cfg.Emitter.Skipped(n)
		}
		r.logger.Debug("Task skipped, dependencies unchanged.", "task", n.Name())
		r.st.scheduled[n] = struct{}{}
		r.st.finished[n] = struct{}{}

		// Once the run has failed, no new work; the skipped bookkeeping
		// above still happens so the accounting stays complete.
		if r.result != 0 {
			continue
		}
		if waiting, ok := r.st.blocking[n]; ok {
			delete(r.st.blocking, n)
			for _, blocked := range waiting {
				if r.scheduleIfReady(blocked) {
					submitted = true
				}
			}
		}
	}
	return submitted
}

// finalize checks the run's internal consistency.
func (r *run) finalize() {
	if r.result == 0 && len(r.st.blocking) != 0 {
		panic("scheduler: blocked tasks never finished on a successful run")
	}
}
