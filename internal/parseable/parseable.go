package parseable

import (
	"encoding/json"
	"io"

	"github.com/vk/buildq/internal/task"
)

// message is one line of the machine-readable progress stream.
type message struct {
	Kind         string `json:"kind"`
	Name         string `json:"name"`
	Command      string `json:"command,omitempty"`
	Pid          int    `json:"pid,omitempty"`
	ExitStatus   *int   `json:"exit-status,omitempty"`
	ErrorMessage string `json:"error-message,omitempty"`
	Output       string `json:"output,omitempty"`
}

// Emitter writes one JSON object per line for each task lifecycle event.
// When an emitter is active the scheduler emits events instead of relaying
// raw task output, never both.
type Emitter struct {
	enc *json.Encoder
}

// NewEmitter returns an emitter writing to w, normally os.Stderr.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{enc: json.NewEncoder(w)}
}

func (e *Emitter) emit(m message) {
	// Encoding a flat struct of strings and ints cannot fail.
	_ = e.enc.Encode(m)
}

// Began reports that a task's process started.
func (e *Emitter) Began(n *task.Node, pid int) {
	e.emit(message{Kind: "began", Name: n.Name(), Command: n.CommandLine(), Pid: pid})
}

// Finished reports a normal process exit.
func (e *Emitter) Finished(n *task.Node, pid int, exitStatus int, output string) {
	e.emit(message{Kind: "finished", Name: n.Name(), Pid: pid, ExitStatus: &exitStatus, Output: output})
}

// Signalled reports an abnormal process death.
func (e *Emitter) Signalled(n *task.Node, pid int, errorMsg string, output string) {
	e.emit(message{Kind: "signalled", Name: n.Name(), Pid: pid, ErrorMessage: errorMsg, Output: output})
}

// Skipped reports a task that the run proved unnecessary.
func (e *Emitter) Skipped(n *task.Node) {
	e.emit(message{Kind: "skipped", Name: n.Name(), Command: n.CommandLine()})
}
