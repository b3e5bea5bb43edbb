// Package depgraph maintains the cross-task dependency knowledge that
// drives incremental rebuilds. Each task may emit a dependency record (a
// small YAML file listing the names it provides and the names it depends
// on); the graph integrates those records and answers "which tasks are now
// dirty" queries for the scheduler.
package depgraph
