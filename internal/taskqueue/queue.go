package taskqueue

// Response is a callback's verdict on whether the queue should keep
// launching work.
type Response int

const (
	// Continue lets the queue keep launching pending tasks.
	Continue Response = iota
	// Stop halts new launches. Tasks already running are still drained and
	// their events delivered.
	Stop
)

// BeganFunc is invoked immediately after a task process starts.
type BeganFunc func(pid int, context any)

// FinishedFunc is invoked when a task process exits normally. output is the
// task's buffered combined stdout and stderr, empty if the queue does not
// buffer output.
type FinishedFunc func(pid int, exitCode int, output string, context any) Response

// SignalledFunc is invoked when a task process dies abnormally (killed by a
// signal, or failed to launch at all). errorMsg describes the abnormality
// when known.
type SignalledFunc func(pid int, errorMsg string, output string, context any) Response

// Queue runs external processes with bounded parallelism. Callbacks are
// always invoked sequentially from a single consumer loop inside Execute;
// they never run concurrently with each other or with the caller's code
// outside Execute. Add may be called from inside a callback; such work is
// picked up in the same drain.
type Queue interface {
	Add(executable string, args []string, context any)
	Execute(began BeganFunc, finished FinishedFunc, signalled SignalledFunc)
	SupportsBufferedOutput() bool
	SupportsParallelExecution() bool
}

// pendingTask is one enqueued, not-yet-launched invocation.
type pendingTask struct {
	executable string
	args       []string
	context    any
}

// event is a completion notification from a worker to the consumer loop.
type event struct {
	pid       int
	context   any
	exitCode  int
	output    string
	signalled bool
	errorMsg  string
}
