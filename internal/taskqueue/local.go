package taskqueue

import (
	"bytes"
	"os/exec"
)

// Local runs tasks as real child processes, up to a configured number at a
// time, buffering each task's combined stdout and stderr.
//
// Execute owns the only goroutine that touches queue state or invokes
// callbacks; worker goroutines do nothing but wait on their process and
// send one completion event.
type Local struct {
	slots   int
	pending []pendingTask
}

// NewLocal returns a queue that runs at most parallelism tasks at once.
// A parallelism below 1 is treated as 1.
func NewLocal(parallelism int) *Local {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Local{slots: parallelism}
}

// Add enqueues an invocation. Safe to call before Execute or from inside a
// callback, never from another goroutine.
func (q *Local) Add(executable string, args []string, context any) {
	q.pending = append(q.pending, pendingTask{executable, args, context})
}

// SupportsBufferedOutput reports that task output is captured per task.
func (q *Local) SupportsBufferedOutput() bool { return true }

// SupportsParallelExecution reports that tasks may run simultaneously.
func (q *Local) SupportsParallelExecution() bool { return true }

// Execute drains the queue: it launches pending tasks while slots are free,
// then blocks for completion events and feeds them to the callbacks one at
// a time. It returns when all launched work has been observed and either
// the pending list is empty or a callback returned Stop.
func (q *Local) Execute(began BeganFunc, finished FinishedFunc, signalled SignalledFunc) {
	events := make(chan event)
	inFlight := 0
	stopped := false

	for {
		for !stopped && inFlight < q.slots && len(q.pending) > 0 {
			next := q.pending[0]
			q.pending = q.pending[1:]
			inFlight++
			q.launch(next, events, began)
		}

		if inFlight == 0 {
			break
		}

		ev := <-events
		inFlight--

		var resp Response
		if ev.signalled {
			resp = signalled(ev.pid, ev.errorMsg, ev.output, ev.context)
		} else {
			resp = finished(ev.pid, ev.exitCode, ev.output, ev.context)
		}
		if resp == Stop {
			stopped = true
		}
	}
}

// launch starts one task process and spawns a worker that reports its
// completion. A launch failure is reported through the signalled path.
func (q *Local) launch(t pendingTask, events chan<- event, began BeganFunc) {
	cmd := exec.Command(t.executable, t.args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	if err := cmd.Start(); err != nil {
		errMsg := err.Error()
		go func() {
			events <- event{context: t.context, signalled: true, errorMsg: errMsg}
		}()
		return
	}

	pid := cmd.Process.Pid
	began(pid, t.context)

	go func() {
		waitErr := cmd.Wait()
		ev := event{pid: pid, context: t.context, output: buf.String()}
		// ExitCode is -1 when the process died to a signal.
		if code := cmd.ProcessState.ExitCode(); code >= 0 {
			ev.exitCode = code
		} else {
			ev.signalled = true
			if waitErr != nil {
				ev.errorMsg = waitErr.Error()
			}
		}
		events <- ev
	}()
}
