package taskqueue

// DummyOutcome scripts the result of one task in a DummyQueue.
type DummyOutcome struct {
	ExitCode  int
	Output    string
	Signalled bool
	ErrorMsg  string
}

// DummyQueue is a Queue that launches nothing. Each task "runs"
// instantaneously in submission order, with an outcome chosen by the
// Outcome hook. It exists for scheduler tests.
type DummyQueue struct {
	// Outcome decides how the task with the given context terminates.
	// A nil hook means every task exits 0.
	Outcome func(context any) DummyOutcome

	// Parallel is returned by SupportsParallelExecution.
	Parallel bool

	// Launched records the contexts of all tasks that ran, in order.
	Launched []any

	pending []pendingTask
	nextPID int
}

// NewDummy returns an empty dummy queue reporting parallel support.
func NewDummy() *DummyQueue {
	return &DummyQueue{Parallel: true}
}

// Add enqueues a scripted task.
func (q *DummyQueue) Add(executable string, args []string, context any) {
	q.pending = append(q.pending, pendingTask{executable, args, context})
}

// SupportsBufferedOutput reports true; scripted outcomes carry output.
func (q *DummyQueue) SupportsBufferedOutput() bool { return true }

// SupportsParallelExecution reports the configured Parallel flag.
func (q *DummyQueue) SupportsParallelExecution() bool { return q.Parallel }

// Execute runs scripted tasks one at a time until the pending list is empty
// or a callback returns Stop. Work added from inside a callback is served
// in the same drain.
func (q *DummyQueue) Execute(began BeganFunc, finished FinishedFunc, signalled SignalledFunc) {
	for len(q.pending) > 0 {
		next := q.pending[0]
		q.pending = q.pending[1:]

		q.nextPID++
		pid := q.nextPID
		q.Launched = append(q.Launched, next.context)
		began(pid, next.context)

		var outcome DummyOutcome
		if q.Outcome != nil {
			outcome = q.Outcome(next.context)
		}

		var resp Response
		if outcome.Signalled {
			resp = signalled(pid, outcome.ErrorMsg, outcome.Output, next.context)
		} else {
			resp = finished(pid, outcome.ExitCode, outcome.Output, next.context)
		}
		if resp == Stop {
			return
		}
	}
}
