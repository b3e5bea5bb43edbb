package builder

import (
	"context"
	"fmt"

	"github.com/vk/buildq/internal/config"
	"github.com/vk/buildq/internal/ctxlog"
	"github.com/vk/buildq/internal/task"
)

// Result is the planner's output: the task graph in manifest order plus
// the temporary paths the run must clean up.
type Result struct {
	Graph     *task.Graph
	TempFiles []string
}

// Build translates the manifest model into an executable task graph. It
// resolves tool and depends_on references, rejects duplicate task names,
// unknown references and dependency cycles, and preserves manifest order.
func Build(ctx context.Context, model *config.Model) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	byName := make(map[string]*task.Node, len(model.Tasks))
	nodes := make([]*task.Node, 0, len(model.Tasks))
	var tempFiles []string

	for _, t := range model.Tasks {
		if _, dup := byName[t.Name]; dup {
			return nil, fmt.Errorf("duplicate task name %q", t.Name)
		}

		condition, err := parseCondition(t)
		if err != nil {
			return nil, err
		}

		outputs := make(task.Outputs, len(t.Outputs))
		for kind, path := range t.Outputs {
			outputs[task.OutputKind(kind)] = path
		}

		n := &task.Node{
			Executable: t.Exe,
			Args:       t.Args,
			Outputs:    outputs,
			Condition:  condition,
			Tool:       resolveTool(model, t.Tool),
		}
		byName[t.Name] = n
		nodes = append(nodes, n)
		tempFiles = append(tempFiles, t.Temporary...)
	}

	// Second pass: edges, now that every node exists.
	for i, t := range model.Tasks {
		for _, depName := range t.DependsOn {
			dep, ok := byName[depName]
			if !ok {
				return nil, fmt.Errorf("task %q depends on unknown task %q", t.Name, depName)
			}
			if dep == nodes[i] {
				return nil, fmt.Errorf("task %q depends on itself", t.Name)
			}
			nodes[i].Deps = append(nodes[i].Deps, dep)
		}
	}

	if cycle := findCycle(nodes, model); cycle != "" {
		return nil, fmt.Errorf("dependency cycle through task %q", cycle)
	}

	graph := &task.Graph{Nodes: nodes}
	logger.Debug("Task graph built.", "tasks", len(nodes), "temp_files", len(tempFiles))
	return &Result{Graph: graph, TempFiles: tempFiles}, nil
}

func parseCondition(t *config.Task) (task.Condition, error) {
	switch t.Condition {
	case "", "always":
		return task.Always, nil
	case "check-deps":
		return task.CheckDependencies, nil
	}
	return 0, fmt.Errorf("task %q: unknown condition %q (want \"always\" or \"check-deps\")", t.Name, t.Condition)
}

// resolveTool returns the declared tool descriptor, or a generic one for
// tool labels without a matching tool block.
func resolveTool(model *config.Model, name string) task.Tool {
	if t, ok := model.Tools[name]; ok {
		return task.Tool{Name: t.Name, RichDiagnostics: t.RichDiagnostics}
	}
	return task.Tool{Name: name}
}

// findCycle reports the name of some task on a dependency cycle, or "".
func findCycle(nodes []*task.Node, model *config.Model) string {
	const (
		unvisited = iota
		visiting
		done
	)
	marks := make(map[*task.Node]int, len(nodes))

	var visit func(n *task.Node) bool
	visit = func(n *task.Node) bool {
		switch marks[n] {
		case visiting:
			return true
		case done:
			return false
		}
		marks[n] = visiting
		for _, dep := range n.Deps {
			if visit(dep) {
				return true
			}
		}
		marks[n] = done
		return false
	}

	for i, n := range nodes {
		if visit(n) {
			return model.Tasks[i].Name
		}
	}
	return ""
}
