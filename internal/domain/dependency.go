package domain

// Dependency is one edge of the plan: TaskID cannot complete until
// DependencyID is completed. Dangling is set when DependencyID no longer
// names a task in the plan; such an edge is treated as satisfied.
type Dependency struct {
	TaskID       string `json:"task_id"`
	DependencyID string `json:"dependency_id"`
	Dangling     bool   `json:"dangling,omitempty"`
}

// NewDependency creates a dependency edge.
func NewDependency(taskID, dependencyID string) Dependency {
	return Dependency{
		TaskID:       taskID,
		DependencyID: dependencyID,
	}
}

// DependenciesOf lists the task's edges in insertion order, marking those
// whose target is not known to exist.
func DependenciesOf(t *Task, exists func(id string) bool) []Dependency {
	deps := make([]Dependency, 0, len(t.Dependencies))
	for _, id := range t.Dependencies {
		d := NewDependency(t.ID, id)
		d.Dangling = !exists(id)
		deps = append(deps, d)
	}
	return deps
}
