package diag

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestEngineMessages(t *testing.T) {
	// Deterministic output regardless of terminal detection.
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	cases := []struct {
		name string
		emit func(e *Engine)
		want string
	}{
		{
			name: "command failed",
			emit: func(e *Engine) { e.CommandFailed("compiler", 2) },
			want: "buildq: error: compiler command failed with exit code 2 (use -v to see invocation)\n",
		},
		{
			name: "command signalled",
			emit: func(e *Engine) { e.CommandSignalled("linker") },
			want: "buildq: error: linker command failed due to signal (use -v to see invocation)\n",
		},
		{
			name: "unable to execute",
			emit: func(e *Engine) { e.UnableToExecute("no such file") },
			want: "buildq: error: unable to execute command: no such file\n",
		},
		{
			name: "parallelism unsupported",
			emit: func(e *Engine) { e.ParallelExecutionUnsupported() },
			want: "buildq: warning: parallel execution not supported; falling back to serial execution\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			tc.emit(NewEngine(&buf))
			assert.Equal(t, tc.want, buf.String())
		})
	}
}
