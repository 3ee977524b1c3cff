// Package schedule holds the plan's task graph and everything derived from it:
// the acyclic dependency invariant, completion with cascading revert,
// forward time propagation, and delay classification.
package schedule

import (
	"github.com/todopath/todopath/internal/domain"
)

// Graph is an ordered set of tasks linked by dependency edges.
// It is not safe for concurrent use.
type Graph struct {
	tasks []*domain.Task
	index map[string]*domain.Task
}

// NewGraph builds a graph over tasks in the given order.
// Tasks with a duplicate id after the first are ignored.
func NewGraph(tasks []*domain.Task) *Graph {
	g := &Graph{
		tasks: make([]*domain.Task, 0, len(tasks)),
		index: make(map[string]*domain.Task, len(tasks)),
	}
	for _, t := range tasks {
		if _, dup := g.index[t.ID]; dup {
			continue
		}
		g.tasks = append(g.tasks, t)
		g.index[t.ID] = t
	}
	return g
}

// Task returns the task with the given id.
func (g *Graph) Task(id string) (*domain.Task, bool) {
	t, ok := g.index[id]
	return t, ok
}

// Has reports whether id names a task in the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Tasks returns the tasks in list order. The slice is shared.
func (g *Graph) Tasks() []*domain.Task {
	return g.tasks
}

// Len returns the number of tasks.
func (g *Graph) Len() int {
	return len(g.tasks)
}

func (g *Graph) prepend(t *domain.Task) {
	g.tasks = append([]*domain.Task{t}, g.tasks...)
	g.index[t.ID] = t
}

// remove drops the task from the graph. References to it held by other
// tasks are left in place.
func (g *Graph) remove(id string) bool {
	if _, ok := g.index[id]; !ok {
		return false
	}
	delete(g.index, id)
	for i, t := range g.tasks {
		if t.ID == id {
			g.tasks = append(g.tasks[:i], g.tasks[i+1:]...)
			break
		}
	}
	return true
}

// Dependents returns, in list order, every task whose dependency set
// contains id.
func (g *Graph) Dependents(id string) []*domain.Task {
	var out []*domain.Task
	for _, t := range g.tasks {
		if t.HasDependency(id) {
			out = append(out, t)
		}
	}
	return out
}

// IsDependedOn reports whether any task lists id as a dependency.
func (g *Graph) IsDependedOn(id string) bool {
	for _, t := range g.tasks {
		if t.HasDependency(id) {
			return true
		}
	}
	return false
}

// WouldCreateCycle reports whether making sourceID depend on candidateID
// would close a cycle, that is whether sourceID is already reachable from
// candidateID along dependency edges.
func (g *Graph) WouldCreateCycle(candidateID, sourceID string) bool {
	return g.CyclePath(candidateID, sourceID) != nil
}

// CyclePath returns the cycle that the edge sourceID -> candidateID would
// close, as source, candidate, ..., source. It returns nil when the edge is
// safe. The walk is depth first over an explicit stack and visits each task
// at most once.
func (g *Graph) CyclePath(candidateID, sourceID string) []string {
	visited := map[string]bool{candidateID: true}
	cameFrom := make(map[string]string)

	var stack []string
	push := func(from *domain.Task) {
		for i := len(from.Dependencies) - 1; i >= 0; i-- {
			dep := from.Dependencies[i]
			if visited[dep] {
				continue
			}
			if _, seen := cameFrom[dep]; !seen {
				cameFrom[dep] = from.ID
			}
			stack = append(stack, dep)
		}
	}

	candidate, ok := g.index[candidateID]
	if !ok {
		return nil
	}
	push(candidate)

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			continue
		}
		visited[current] = true

		if current == sourceID {
			return buildCyclePath(cameFrom, candidateID, sourceID)
		}

		if t, ok := g.index[current]; ok {
			push(t)
		}
	}
	return nil
}

func buildCyclePath(cameFrom map[string]string, candidateID, sourceID string) []string {
	reversed := []string{sourceID}
	for node := sourceID; node != candidateID; {
		node = cameFrom[node]
		reversed = append(reversed, node)
	}
	path := make([]string, 0, len(reversed)+1)
	path = append(path, sourceID)
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, reversed[i])
	}
	return path
}

// AddDependency makes sourceID depend on candidateID. It returns false and
// changes nothing when the source is unknown, the edge is a self-loop, the
// edge already exists, or the edge would close a cycle.
func (g *Graph) AddDependency(sourceID, candidateID string) bool {
	source, ok := g.index[sourceID]
	if !ok {
		return false
	}
	if candidateID == sourceID || source.HasDependency(candidateID) {
		return false
	}
	if g.WouldCreateCycle(candidateID, sourceID) {
		return false
	}
	source.Dependencies = append(source.Dependencies, candidateID)
	return true
}

// RemoveDependency drops the edge sourceID -> depID if present.
func (g *Graph) RemoveDependency(sourceID, depID string) {
	source, ok := g.index[sourceID]
	if !ok {
		return
	}
	for i, dep := range source.Dependencies {
		if dep == depID {
			source.Dependencies = append(source.Dependencies[:i], source.Dependencies[i+1:]...)
			return
		}
	}
}

// DanglingDependencies returns the edges whose dependency names no task in
// the graph, in list order.
func (g *Graph) DanglingDependencies() []domain.Dependency {
	var out []domain.Dependency
	for _, t := range g.tasks {
		for _, dep := range t.Dependencies {
			if !g.Has(dep) {
				out = append(out, domain.Dependency{TaskID: t.ID, DependencyID: dep, Dangling: true})
			}
		}
	}
	return out
}

const (
	white = iota
	gray
	black
)

// DetectCycle checks the whole graph and returns one cycle as a closed path
// (first and last ids equal), or nil when the graph is acyclic.
func (g *Graph) DetectCycle() []string {
	color := make(map[string]int, len(g.tasks))

	type frame struct {
		task *domain.Task
		next int
	}

	for _, root := range g.tasks {
		if color[root.ID] != white {
			continue
		}
		color[root.ID] = gray
		path := []*frame{{task: root}}

		for len(path) > 0 {
			f := path[len(path)-1]
			if f.next == len(f.task.Dependencies) {
				color[f.task.ID] = black
				path = path[:len(path)-1]
				continue
			}
			depID := f.task.Dependencies[f.next]
			f.next++

			dep, ok := g.index[depID]
			if !ok {
				continue
			}
			switch color[depID] {
			case gray:
				var cycle []string
				for i := len(path) - 1; i >= 0; i-- {
					cycle = append([]string{path[i].task.ID}, cycle...)
					if path[i].task.ID == depID {
						break
					}
				}
				return append(cycle, depID)
			case white:
				color[depID] = gray
				path = append(path, &frame{task: dep})
			}
		}
	}
	return nil
}
