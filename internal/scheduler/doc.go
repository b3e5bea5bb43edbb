// Package scheduler is the driver's execution core. It walks a task graph,
// decides per task whether it must run at all, runs the necessary subset
// under bounded concurrency, and revises those decisions as each task's
// dependency record becomes available. A dependency-tracking failure
// degrades to rebuilding everything rather than silently skipping work.
//
// All scheduler state is owned by a single run and mutated only from the
// queue's sequential callback stream, so the package needs no locks.
package scheduler
