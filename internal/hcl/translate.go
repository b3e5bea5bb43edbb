package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/buildq/internal/config"
	"github.com/vk/buildq/internal/schema"
)

// buildEvalContext evaluates every `vars` block into the `var.*` scope
// available to task attribute expressions. Later definitions shadow
// earlier ones.
func (l *Loader) buildEvalContext(roots []*schema.FileRoot) (*hcl.EvalContext, error) {
	vars := make(map[string]cty.Value)
	for _, root := range roots {
		for _, block := range root.Vars {
			attrs, diags := block.Body.JustAttributes()
			if diags.HasErrors() {
				return nil, fmt.Errorf("invalid vars block: %w", diags)
			}
			for name, attr := range attrs {
				val, diags := attr.Expr.Value(nil)
				if diags.HasErrors() {
					return nil, fmt.Errorf("failed to evaluate var %q: %w", name, diags)
				}
				vars[name] = val
			}
		}
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"var": cty.ObjectVal(vars)},
	}, nil
}

// translateTool converts a tool block into the agnostic model.
func (l *Loader) translateTool(t *schema.Tool) (*config.Tool, error) {
	rich := false
	switch t.Diagnostics {
	case "", "generic":
	case "rich":
		rich = true
	default:
		return nil, fmt.Errorf("tool %q: unknown diagnostics mode %q (want \"generic\" or \"rich\")", t.Name, t.Diagnostics)
	}
	return &config.Tool{Name: t.Name, RichDiagnostics: rich}, nil
}

// translateTask evaluates a task block's expressions and converts it into
// the agnostic model.
func (l *Loader) translateTask(t *schema.Task, evalCtx *hcl.EvalContext) (*config.Task, error) {
	exe, err := stringValue(t.Exe, evalCtx)
	if err != nil {
		return nil, fmt.Errorf("task %q: exe: %w", t.Name, err)
	}

	args, err := stringListValue(t.Args, evalCtx)
	if err != nil {
		return nil, fmt.Errorf("task %q: args: %w", t.Name, err)
	}

	outputs := make(map[string]string)
	if t.Outputs != nil {
		attrs, diags := t.Outputs.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("task %q: invalid outputs block: %w", t.Name, diags)
		}
		for kind, attr := range attrs {
			path, err := stringValue(attr.Expr, evalCtx)
			if err != nil {
				return nil, fmt.Errorf("task %q: output %q: %w", t.Name, kind, err)
			}
			outputs[kind] = path
		}
	}

	return &config.Task{
		Tool:      t.Tool,
		Name:      t.Name,
		Exe:       exe,
		Args:      args,
		DependsOn: t.DependsOn,
		Condition: t.Condition,
		Outputs:   outputs,
		Temporary: t.Temporary,
	}, nil
}

// stringValue evaluates an expression and converts the result to a string.
func stringValue(expr hcl.Expression, evalCtx *hcl.EvalContext) (string, error) {
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", fmt.Errorf("evaluation failed: %w", diags)
	}
	conv, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", err
	}
	if conv.IsNull() {
		return "", fmt.Errorf("value must not be null")
	}
	return conv.AsString(), nil
}

// stringListValue evaluates an optional expression into a string slice.
func stringListValue(expr hcl.Expression, evalCtx *hcl.EvalContext) ([]string, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("evaluation failed: %w", diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	conv, err := convert.Convert(val, cty.List(cty.String))
	if err != nil {
		return nil, err
	}

	var out []string
	for _, elem := range conv.AsValueSlice() {
		if elem.IsNull() {
			return nil, fmt.Errorf("list elements must not be null")
		}
		out = append(out, elem.AsString())
	}
	return out, nil
}
