package depgraph

import (
	"os"

	"gopkg.in/yaml.v2"

	"github.com/vk/buildq/internal/task"
)

// LoadResult is the outcome of integrating one task's dependency record.
type LoadResult int

const (
	// Valid means the record was read and integrated.
	Valid LoadResult = iota
	// HadError means the record was missing, unreadable or malformed. The
	// caller must fall back to rebuilding everything.
	HadError
	// NeedsRebuilding is reserved for trackers that detect staleness at
	// load time. The file-based tracker never returns it; the scheduler
	// treats it as a fatal internal-consistency violation.
	NeedsRebuilding
)

// record is the parsed form of one on-disk dependency record.
type record struct {
	// Provides lists the names this task's output defines.
	Provides []string `yaml:"provides"`
	// Depends lists the names this task's inputs reference.
	Depends []string `yaml:"depends"`
}

// Graph tracks cross-task dependency knowledge for a single scheduling run.
// It is not safe for concurrent use; the scheduler only touches it from its
// single-threaded callback sequence.
type Graph struct {
	records   map[*task.Node]*record
	providers map[string][]*task.Node
	consumers map[string][]*task.Node
	marked    map[*task.Node]struct{}
}

// New returns an empty dependency graph.
func New() *Graph {
	return &Graph{
		records:   make(map[*task.Node]*record),
		providers: make(map[string][]*task.Node),
		consumers: make(map[string][]*task.Node),
		marked:    make(map[*task.Node]struct{}),
	}
}

// Load reads the dependency record at path and integrates it for n,
// replacing any record previously loaded for n.
func (g *Graph) Load(n *task.Node, path string) LoadResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return HadError
	}

	var rec record
	if err := yaml.UnmarshalStrict(data, &rec); err != nil {
		return HadError
	}

	if old := g.records[n]; old != nil {
		g.detach(n, old)
	}
	g.records[n] = &rec
	for _, name := range rec.Provides {
		g.providers[name] = append(g.providers[name], n)
	}
	for _, name := range rec.Depends {
		g.consumers[name] = append(g.consumers[name], n)
	}

	return Valid
}

// detach removes n from the name indexes built from an earlier record.
func (g *Graph) detach(n *task.Node, old *record) {
	for _, name := range old.Provides {
		g.providers[name] = removeNode(g.providers[name], n)
	}
	for _, name := range old.Depends {
		g.consumers[name] = removeNode(g.consumers[name], n)
	}
}

func removeNode(nodes []*task.Node, n *task.Node) []*task.Node {
	out := nodes[:0]
	for _, cand := range nodes {
		if cand != n {
			out = append(out, cand)
		}
	}
	return out
}

// MarkIntransitive marks n dirty without propagating to its dependents.
// Used for tasks known up front to run, so a later transitive mark cannot
// report them as newly dirtied.
func (g *Graph) MarkIntransitive(n *task.Node) {
	g.marked[n] = struct{}{}
}

// IsMarked reports whether n has been marked dirty.
func (g *Graph) IsMarked(n *task.Node) bool {
	_, ok := g.marked[n]
	return ok
}

// MarkTransitive propagates dirtiness from n: every unmarked task whose
// record depends on a name provided by n (or, transitively, by any newly
// marked task) becomes marked. The newly marked tasks are returned in
// discovery order; n itself is assumed to be marked already and is not
// included.
func (g *Graph) MarkTransitive(n *task.Node) []*task.Node {
	var newlyMarked []*task.Node

	visited := map[*task.Node]struct{}{n: {}}
	frontier := []*task.Node{n}
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]

		rec := g.records[cur]
		if rec == nil {
			continue
		}
		for _, name := range rec.Provides {
			for _, dependent := range g.consumers[name] {
				if _, seen := visited[dependent]; seen {
					continue
				}
				visited[dependent] = struct{}{}
				// The cascade flows through already-marked nodes but only
				// newly marked ones are reported.
				if !g.IsMarked(dependent) {
					g.marked[dependent] = struct{}{}
					newlyMarked = append(newlyMarked, dependent)
				}
				frontier = append(frontier, dependent)
			}
		}
	}

	return newlyMarked
}
