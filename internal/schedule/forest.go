package schedule

import (
	"fmt"
	"time"

	"github.com/todopath/todopath/internal/domain"
)

// NodeState is the readiness of a task on the path to completion.
type NodeState string

const (
	StateDone    NodeState = "done"
	StateBlocked NodeState = "blocked"
	StateReady   NodeState = "ready"
)

// PathNode is one task in the dependency forest. Children are the task's
// dependencies, so leaves are where work can start.
type PathNode struct {
	ID                string             `json:"id"`
	Content           string             `json:"content"`
	State             NodeState          `json:"state"`
	EstimatedHours    float64            `json:"estimated_hours,omitempty"`
	Deadline          *time.Time         `json:"deadline,omitempty"`
	TimeLeft          string             `json:"time_left,omitempty"`
	CalculatedEndTime *time.Time         `json:"calculated_end_time,omitempty"`
	DelayStatus       domain.DelayStatus `json:"delay_status"`
	// Repeated marks a task whose dependencies are already shown earlier in
	// the same tree. Its children are omitted.
	Repeated bool        `json:"repeated,omitempty"`
	Children []*PathNode `json:"children,omitempty"`
}

// DependencyForest returns one tree per end task: an incomplete task that no
// task depends on. Trees list children in dependency order. A task never
// appears twice on one root-to-leaf path, and within a tree its dependencies
// are expanded only at its first appearance; later appearances are marked
// Repeated. Each tree therefore has at most one node per edge plus the root.
func (e *Engine) DependencyForest() []*PathNode {
	now := e.now()

	var roots []*PathNode
	for _, t := range e.graph.Tasks() {
		if t.Completed || e.graph.IsDependedOn(t.ID) {
			continue
		}
		roots = append(roots, e.pathTree(t, now))
	}
	return roots
}

// pathTree expands root depth-first in pre-order, so the first appearance
// of a task is the one drawn first.
func (e *Engine) pathTree(root *domain.Task, now time.Time) *PathNode {
	type pending struct {
		node    *PathNode
		task    *domain.Task
		visited map[string]bool
	}

	top := e.pathNode(root, now)
	expanded := make(map[string]bool)
	stack := []pending{{node: top, task: root, visited: map[string]bool{root.ID: true}}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var deps []*domain.Task
		for _, depID := range p.task.Dependencies {
			if dep, ok := e.graph.Task(depID); ok && !p.visited[depID] {
				deps = append(deps, dep)
			}
		}
		if len(deps) == 0 {
			continue
		}
		if expanded[p.task.ID] {
			p.node.Repeated = true
			continue
		}
		expanded[p.task.ID] = true

		children := make([]pending, len(deps))
		for i, dep := range deps {
			child := e.pathNode(dep, now)
			p.node.Children = append(p.node.Children, child)

			visited := make(map[string]bool, len(p.visited)+1)
			for id := range p.visited {
				visited[id] = true
			}
			visited[dep.ID] = true
			children[i] = pending{node: child, task: dep, visited: visited}
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return top
}

func (e *Engine) pathNode(t *domain.Task, now time.Time) *PathNode {
	c := t.Clone()
	n := &PathNode{
		ID:             c.ID,
		Content:        c.Content,
		EstimatedHours: c.EstimatedHours,
		Deadline:       c.Deadline,
		DelayStatus:    c.DelayStatus,
	}
	switch {
	case c.Completed:
		n.State = StateDone
	case !e.graph.CanComplete(c.ID):
		n.State = StateBlocked
	default:
		n.State = StateReady
	}
	if !c.Completed {
		n.CalculatedEndTime = c.CalculatedEndTime
	}
	if c.Deadline != nil {
		n.TimeLeft = FormatTimeLeft(c.Deadline.Sub(now))
	}
	return n
}

// FormatTimeLeft renders the time until a deadline: whole days once at
// least a day remains, otherwise hours rounded up. Past deadlines are
// prefixed with "overdue".
func FormatTimeLeft(d time.Duration) string {
	if d == 0 {
		return "due now"
	}
	abs := d
	if abs < 0 {
		abs = -abs
	}
	var s string
	if abs >= 24*time.Hour {
		s = fmt.Sprintf("%dd", int64(abs/(24*time.Hour)))
	} else {
		hours := int64(abs / time.Hour)
		if abs%time.Hour != 0 {
			hours++
		}
		s = fmt.Sprintf("%dh", hours)
	}
	if d < 0 {
		return "overdue " + s
	}
	return s + " left"
}
