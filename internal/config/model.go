package config

// Model is the unified, format-agnostic representation of a build
// manifest: the tools it mentions and the tasks it declares, in
// declaration order.
type Model struct {
	Tools map[string]*Tool
	Tasks []*Task
}

// Tool describes a task-producing program for diagnostic purposes.
type Tool struct {
	Name string
	// RichDiagnostics means the tool reports its own errors well enough
	// that the driver's generic failure notice is redundant for ordinary
	// failures.
	RichDiagnostics bool
}

// Task is the format-agnostic representation of a `task` block.
type Task struct {
	Tool      string
	Name      string
	Exe       string
	Args      []string
	DependsOn []string
	// Condition is "always" (or empty) or "check-deps".
	Condition string
	// Outputs maps output-kind tags to file paths.
	Outputs map[string]string
	// Temporary lists paths to delete when the run ends.
	Temporary []string
}
