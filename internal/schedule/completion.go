package schedule

import (
	"github.com/todopath/todopath/internal/domain"
)

// CompletionResult describes the outcome of a completion toggle.
type CompletionResult struct {
	TaskID    string
	Completed bool
	// Reverted lists dependents un-completed by the cascade, in visit order.
	Reverted []string
}

// UnmetDependencies returns the dependency ids of id that name an incomplete
// task. Ids naming no task count as satisfied.
func (g *Graph) UnmetDependencies(id string) []string {
	t, ok := g.index[id]
	if !ok {
		return nil
	}
	var unmet []string
	for _, depID := range t.Dependencies {
		if dep, ok := g.index[depID]; ok && !dep.Completed {
			unmet = append(unmet, depID)
		}
	}
	return unmet
}

// CanComplete reports whether every existing dependency of id is completed.
func (g *Graph) CanComplete(id string) bool {
	return len(g.UnmetDependencies(id)) == 0
}

// ToggleCompletion flips the completed flag of id.
//
// Completing requires every existing dependency to be completed; otherwise a
// precedence violation is returned and nothing changes. Un-completing reverts
// every completed task that transitively depends on id.
func (g *Graph) ToggleCompletion(id string) (CompletionResult, error) {
	t, ok := g.index[id]
	if !ok {
		return CompletionResult{}, domain.NewTaskNotFoundError(id)
	}

	if !t.Completed {
		if unmet := g.UnmetDependencies(id); len(unmet) > 0 {
			return CompletionResult{}, domain.NewPrecedenceViolationError(id, unmet)
		}
		t.Completed = true
		return CompletionResult{TaskID: id, Completed: true}, nil
	}

	t.Completed = false
	return CompletionResult{TaskID: id, Reverted: g.cascadeUncomplete(id)}, nil
}

// cascadeUncomplete walks dependents depth first and un-completes each
// completed one. The visited set bounds the walk on corrupted cyclic input.
func (g *Graph) cascadeUncomplete(id string) []string {
	visited := map[string]bool{id: true}
	var reverted []string

	stack := g.completedDependents(id, visited)
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[t.ID] || !t.Completed {
			continue
		}
		visited[t.ID] = true
		t.Completed = false
		reverted = append(reverted, t.ID)
		stack = append(stack, g.completedDependents(t.ID, visited)...)
	}
	return reverted
}

// completedDependents returns completed, unvisited dependents of id in
// reverse list order so that popping them visits list order.
func (g *Graph) completedDependents(id string, visited map[string]bool) []*domain.Task {
	var out []*domain.Task
	for i := len(g.tasks) - 1; i >= 0; i-- {
		t := g.tasks[i]
		if t.Completed && !visited[t.ID] && t.HasDependency(id) {
			out = append(out, t)
		}
	}
	return out
}
