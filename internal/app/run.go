package app

import (
	"context"
	"fmt"

	"github.com/vk/buildq/internal/builder"
	"github.com/vk/buildq/internal/ctxlog"
	"github.com/vk/buildq/internal/diag"
	"github.com/vk/buildq/internal/scheduler"
	"github.com/vk/buildq/internal/taskqueue"
)

// Run executes the build described by the loaded manifest and returns the
// run's exit status.
func (a *App) Run(ctx context.Context, appConfig *Config) (int, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	plan, err := builder.Build(ctx, a.model)
	if err != nil {
		return 0, fmt.Errorf("failed to build task graph: %w", err)
	}
	a.logger.Debug("Task graph built.", "task_count", len(plan.Graph.Nodes))

	if len(plan.Graph.Nodes) == 0 {
		a.logger.Warn("No tasks found in manifest, nothing to run.")
		return 0, nil
	}

	level := scheduler.LevelNormal
	switch {
	case appConfig.Parseable:
		level = scheduler.LevelParseable
	case appConfig.Verbose:
		level = scheduler.LevelVerbose
	}

	sched := scheduler.New(scheduler.Config{
		Queue:     taskqueue.NewLocal(appConfig.Jobs),
		Diags:     diag.NewEngine(a.errW),
		Logger:    a.logger,
		Level:     level,
		Jobs:      appConfig.Jobs,
		ErrW:      a.errW,
		TempFiles: plan.TempFiles,
	})

	a.logger.Debug("Scheduler starting run.")
	code := sched.Run(plan.Graph)
	a.logger.Debug("Scheduler finished.", "result", code)

	return code, nil
}
