package parseable

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/buildq/internal/task"
)

func compileNode() *task.Node {
	return &task.Node{
		Executable: "/usr/bin/cc",
		Args:       []string{"-c", "main.c"},
		Outputs:    task.Outputs{task.KindObject: "main.o"},
		Tool:       task.Tool{Name: "compiler"},
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestEmitterLifecycle(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf)
	n := compileNode()

	e.Began(n, 42)
	e.Finished(n, 42, 0, "compiled\n")
	e.Signalled(n, 42, "segmentation fault", "")
	e.Skipped(n)

	msgs := decodeLines(t, &buf)
	require.Len(t, msgs, 4)

	began := msgs[0]
	assert.Equal(t, "began", began["kind"])
	assert.Equal(t, "main.o", began["name"])
	assert.Equal(t, "/usr/bin/cc -c main.c", began["command"])
	assert.Equal(t, float64(42), began["pid"])

	finished := msgs[1]
	assert.Equal(t, "finished", finished["kind"])
	assert.Equal(t, float64(0), finished["exit-status"])
	assert.Equal(t, "compiled\n", finished["output"])

	signalled := msgs[2]
	assert.Equal(t, "signalled", signalled["kind"])
	assert.Equal(t, "segmentation fault", signalled["error-message"])

	skipped := msgs[3]
	assert.Equal(t, "skipped", skipped["kind"])
	assert.NotContains(t, skipped, "pid")
}

func TestFinishedAlwaysCarriesExitStatus(t *testing.T) {
	var buf bytes.Buffer
	NewEmitter(&buf).Finished(compileNode(), 7, 0, "")

	msgs := decodeLines(t, &buf)
	require.Len(t, msgs, 1)
	// Exit status zero must not be omitted; consumers distinguish
	// "succeeded" from "unknown".
	assert.Contains(t, msgs[0], "exit-status")
}
