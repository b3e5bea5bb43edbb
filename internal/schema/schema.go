// Package schema holds the HCL-tagged structs that mirror the manifest
// syntax. They are decode targets only; the loader translates them into
// the format-agnostic config model.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// VarsBlock carries the raw attributes of a `vars` block. They are
// evaluated into the expression scope available to task attributes.
type VarsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// OutputsBlock carries the raw kind = path attributes of an `outputs`
// block.
type OutputsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Tool represents a `tool` block: diagnostic metadata for a task-producing
// program.
type Tool struct {
	Name        string `hcl:"name,label"`
	Diagnostics string `hcl:"diagnostics,optional"`
}

// Task represents a `task` block from a manifest file.
type Task struct {
	Tool      string         `hcl:"tool,label"`
	Name      string         `hcl:"name,label"`
	Exe       hcl.Expression `hcl:"exe"`
	Args      hcl.Expression `hcl:"args,optional"`
	DependsOn []string       `hcl:"depends_on,optional"`
	Condition string         `hcl:"condition,optional"`
	Outputs   *OutputsBlock  `hcl:"outputs,block"`
	Temporary []string       `hcl:"temporary,optional"`
}

// FileRoot decodes all recognized top-level blocks of one manifest file.
type FileRoot struct {
	Vars   []*VarsBlock `hcl:"vars,block"`
	Tools  []*Tool      `hcl:"tool,block"`
	Tasks  []*Task      `hcl:"task,block"`
	Remain hcl.Body     `hcl:",remain"`
}
