package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "build.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeManifest(t, `
vars {
  cc = "/usr/bin/cc"
}

tool "compiler" {
  diagnostics = "rich"
}

task "compiler" "main.o" {
  exe       = var.cc
  args      = ["-c", "main.c", "-o", "main.o"]
  condition = "check-deps"
  outputs {
    object = "main.o"
    deps   = "main.o.yaml"
  }
  temporary = ["main.o.tmp"]
}

task "linker" "app" {
  exe        = "/usr/bin/ld"
  args       = ["-o", "app", "main.o"]
  depends_on = ["main.o"]
}
`)

	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	require.Contains(t, model.Tools, "compiler")
	assert.True(t, model.Tools["compiler"].RichDiagnostics)

	require.Len(t, model.Tasks, 2)
	compile := model.Tasks[0]
	assert.Equal(t, "compiler", compile.Tool)
	assert.Equal(t, "main.o", compile.Name)
	assert.Equal(t, "/usr/bin/cc", compile.Exe, "vars must be resolvable from task expressions")
	assert.Equal(t, []string{"-c", "main.c", "-o", "main.o"}, compile.Args)
	assert.Equal(t, "check-deps", compile.Condition)
	assert.Equal(t, map[string]string{"object": "main.o", "deps": "main.o.yaml"}, compile.Outputs)
	assert.Equal(t, []string{"main.o.tmp"}, compile.Temporary)

	link := model.Tasks[1]
	assert.Equal(t, []string{"main.o"}, link.DependsOn)
	assert.Empty(t, link.Condition)
	assert.Empty(t, link.Outputs)
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tools.hcl"), []byte(`
vars {
  cc = "cc"
}
tool "compiler" {}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks.hcl"), []byte(`
task "compiler" "a.o" {
  exe = var.cc
}
`), 0o644))

	model, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, model.Tasks, 1)
	assert.Equal(t, "cc", model.Tasks[0].Exe, "vars are shared across files")
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("no manifest files", func(t *testing.T) {
		_, err := NewLoader().Load(ctx, t.TempDir())
		assert.ErrorContains(t, err, "no manifest files found")
	})

	t.Run("syntax error", func(t *testing.T) {
		path := writeManifest(t, `task "compiler" "a" {`)
		_, err := NewLoader().Load(ctx, path)
		assert.ErrorContains(t, err, "failed to parse manifest")
	})

	t.Run("missing exe attribute", func(t *testing.T) {
		path := writeManifest(t, `task "compiler" "a" {}`)
		_, err := NewLoader().Load(ctx, path)
		assert.ErrorContains(t, err, "failed to decode manifest")
	})

	t.Run("undefined var reference", func(t *testing.T) {
		path := writeManifest(t, `
task "compiler" "a" {
  exe = var.nope
}
`)
		_, err := NewLoader().Load(ctx, path)
		require.Error(t, err)
	})

	t.Run("unknown diagnostics mode", func(t *testing.T) {
		path := writeManifest(t, `
tool "compiler" {
  diagnostics = "chatty"
}
`)
		_, err := NewLoader().Load(ctx, path)
		assert.ErrorContains(t, err, "unknown diagnostics mode")
	})
}
