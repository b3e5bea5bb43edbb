package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/buildq/internal/config"
	"github.com/vk/buildq/internal/ctxlog"
	"github.com/vk/buildq/internal/fsutil"
	"github.com/vk/buildq/internal/schema"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load orchestrates the entire manifest loading process: file discovery,
// parsing, vars evaluation, and translation into the agnostic model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFilesByExtension(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no manifest files found under %v", paths)
	}
	logger.Debug("Discovered manifest files.", "count", len(files))

	parser := hclparse.NewParser()
	var roots []*schema.FileRoot
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse manifest %s: %w", file, diags)
		}

		var root schema.FileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode manifest %s: %w", file, diags)
		}
		roots = append(roots, &root)
	}

	evalCtx, err := l.buildEvalContext(roots)
	if err != nil {
		return nil, err
	}

	model := &config.Model{Tools: make(map[string]*config.Tool)}
	for _, root := range roots {
		for _, tool := range root.Tools {
			translated, err := l.translateTool(tool)
			if err != nil {
				return nil, err
			}
			model.Tools[translated.Name] = translated
		}
		for _, t := range root.Tasks {
			translated, err := l.translateTask(t, evalCtx)
			if err != nil {
				return nil, err
			}
			model.Tasks = append(model.Tasks, translated)
		}
	}

	logger.Debug("HCL loading complete.", "tools", len(model.Tools), "tasks", len(model.Tasks))
	return model, nil
}
