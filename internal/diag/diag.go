package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Severity classifies a diagnostic.
type Severity int

const (
	Note Severity = iota
	Warning
	Error
)

var severityLabels = map[Severity]*color.Color{
	Note:    color.New(color.Bold),
	Warning: color.New(color.FgMagenta, color.Bold),
	Error:   color.New(color.FgRed, color.Bold),
}

func (s Severity) label() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "note"
}

// Engine emits severity-tagged diagnostics to a stream as they occur.
// It is not safe for concurrent use; the scheduler only reports from its
// sequential callback stream.
type Engine struct {
	w io.Writer
}

// NewEngine returns an engine writing to w, normally os.Stderr.
func NewEngine(w io.Writer) *Engine {
	return &Engine{w: w}
}

// Report emits one diagnostic.
func (e *Engine) Report(sev Severity, format string, args ...any) {
	tag := severityLabels[sev].Sprintf("%s:", sev.label())
	fmt.Fprintf(e.w, "buildq: %s %s\n", tag, fmt.Sprintf(format, args...))
}

// CommandFailed reports a task process that exited with a non-zero code.
func (e *Engine) CommandFailed(tool string, code int) {
	e.Report(Error, "%s command failed with exit code %d (use -v to see invocation)", tool, code)
}

// CommandSignalled reports a task process that died to a signal.
func (e *Engine) CommandSignalled(tool string) {
	e.Report(Error, "%s command failed due to signal (use -v to see invocation)", tool)
}

// UnableToExecute reports a process that could not be run at all.
func (e *Engine) UnableToExecute(msg string) {
	e.Report(Error, "unable to execute command: %s", msg)
}

// ParallelExecutionUnsupported warns that -jobs exceeds what the executor
// can honor.
func (e *Engine) ParallelExecutionUnsupported() {
	e.Report(Warning, "parallel execution not supported; falling back to serial execution")
}
