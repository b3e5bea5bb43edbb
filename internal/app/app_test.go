//go:build unix

package app

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/buildq/internal/hcl"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "build.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestApp(t *testing.T, manifest string) (*App, *Config) {
	t.Helper()
	cfg, err := NewConfig(Config{ManifestPath: manifest, LogLevel: "error"})
	require.NoError(t, err)

	a, err := NewApp(io.Discard, io.Discard, cfg, hcl.NewLoader())
	require.NoError(t, err)
	return a, cfg
}

func TestRunExecutesTasksInOrder(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first")
	second := filepath.Join(dir, "second")

	// Two tasks so the run takes the queue path, not process replacement.
	manifest := writeManifest(t, `
task "touch" "first" {
  exe  = "sh"
  args = ["-c", "touch `+first+`"]
}

task "touch" "second" {
  exe        = "sh"
  args       = ["-c", "test -e `+first+` && touch `+second+`"]
  depends_on = ["first"]
}
`)

	a, cfg := newTestApp(t, manifest)
	code, err := a.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	assert.FileExists(t, first)
	assert.FileExists(t, second, "dependent task must observe its dependency's output")
}

func TestRunPropagatesTaskFailure(t *testing.T) {
	manifest := writeManifest(t, `
task "sh" "fails" {
  exe  = "sh"
  args = ["-c", "exit 3"]
}

task "sh" "other" {
  exe  = "sh"
  args = ["-c", "true"]
  depends_on = ["fails"]
}
`)

	a, cfg := newTestApp(t, manifest)
	code, err := a.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestRunRejectsBrokenGraph(t *testing.T) {
	manifest := writeManifest(t, `
task "sh" "a" {
  exe        = "sh"
  depends_on = ["ghost"]
}
`)

	a, cfg := newTestApp(t, manifest)
	_, err := a.Run(context.Background(), cfg)
	assert.ErrorContains(t, err, "failed to build task graph")
}

func TestNewAppLoadsModel(t *testing.T) {
	manifest := writeManifest(t, `
task "sh" "a" {
  exe = "sh"
}
`)

	a, _ := newTestApp(t, manifest)
	require.Len(t, a.Model().Tasks, 1)
	assert.Equal(t, "a", a.Model().Tasks[0].Name)
}

func TestNewLogger(t *testing.T) {
	t.Run("json handler", func(t *testing.T) {
		var buf bytes.Buffer
		newLogger("debug", "json", &buf).Debug("hello")
		assert.Contains(t, buf.String(), `"msg":"hello"`)
	})

	t.Run("text handler filters below the level", func(t *testing.T) {
		var buf bytes.Buffer
		l := newLogger("error", "text", &buf)
		l.Warn("dropped")
		l.Error("kept")
		assert.NotContains(t, buf.String(), "dropped")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("unknown level defaults to info", func(t *testing.T) {
		var buf bytes.Buffer
		l := newLogger("", "text", &buf)
		l.Debug("dropped")
		l.Info("kept")
		assert.NotContains(t, buf.String(), "dropped")
		assert.Contains(t, buf.String(), "kept")
	})
}

func TestNewAppRejectsMissingManifest(t *testing.T) {
	cfg, err := NewConfig(Config{ManifestPath: filepath.Join(t.TempDir(), "gone.hcl"), LogLevel: "error"})
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = NewApp(&out, io.Discard, cfg, hcl.NewLoader())
	assert.ErrorContains(t, err, "failed to load manifest")
}
