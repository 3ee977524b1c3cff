package schedule

import (
	"time"

	"github.com/todopath/todopath/internal/domain"
)

// Recompute rewrites the calculated start and end times of every task.
//
// Every derived region is reset first. Then, for each root in list order,
// times are propagated forward. A root is an incomplete task none of whose
// dependencies names an incomplete task, so completed and missing
// dependencies count as absent.
//
// A task starts at the later of now and the latest end among its incomplete
// dependencies (computing a dependency first if it has no end yet), finishes
// Duration() later, and then every incomplete dependent is recomputed from
// it. A task reachable along several paths is recomputed on each of them and
// keeps the value written last. A rewrite that leaves a task's times as they
// were does not go on to its dependents, which keeps stacked diamonds from
// multiplying the work.
func (g *Graph) Recompute(now time.Time) {
	for _, t := range g.tasks {
		t.ClearSchedule()
	}
	for _, t := range g.tasks {
		if t.Completed || !g.CanComplete(t.ID) {
			continue
		}
		g.propagate(t, now)
	}
}

// frame is one pending visit of the propagation walk. visited holds the ids
// on the path that led here, this task included.
type frame struct {
	task    *domain.Task
	visited map[string]bool

	pushing bool
	next    int
	// pulled is set while the dependency at next is being computed.
	pulled     bool
	latest     time.Time
	dependents []*domain.Task
}

// newFrame returns nil when the task is already on the path or is completed.
func newFrame(t *domain.Task, path map[string]bool) *frame {
	if path[t.ID] {
		return nil
	}
	if t.Completed {
		return nil
	}
	visited := make(map[string]bool, len(path)+1)
	for id := range path {
		visited[id] = true
	}
	visited[t.ID] = true
	return &frame{task: t, visited: visited}
}

func (g *Graph) propagate(root *domain.Task, now time.Time) {
	first := newFrame(root, nil)
	if first == nil {
		return
	}
	stack := []*frame{first}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		var child *frame
		if f.pushing {
			child = g.pushStep(f)
		} else {
			child = g.pullStep(f, now)
		}
		if child != nil {
			stack = append(stack, child)
			continue
		}
		if f.pushing && f.next >= len(f.dependents) {
			stack = stack[:len(stack)-1]
		}
	}
}

// pullStep gathers dependency end times and schedules the frame's task. It
// returns a child frame when a dependency must be computed first.
func (g *Graph) pullStep(f *frame, now time.Time) *frame {
	for f.next < len(f.task.Dependencies) {
		dep, ok := g.index[f.task.Dependencies[f.next]]
		if !ok || dep.Completed {
			f.next++
			continue
		}
		if dep.CalculatedEndTime == nil && !f.pulled {
			f.pulled = true
			if child := newFrame(dep, f.visited); child != nil {
				return child
			}
		}
		if end := dep.CalculatedEndTime; end != nil && end.After(f.latest) {
			f.latest = *end
		}
		f.pulled = false
		f.next++
	}

	start := now
	if f.latest.After(start) {
		start = f.latest
	}
	end := start.Add(f.task.Duration())
	unchanged := scheduledAt(f.task, start, end)
	f.task.SetSchedule(start, end)

	f.pushing = true
	f.next = 0
	if !unchanged {
		f.dependents = g.incompleteDependents(f.task.ID)
	}
	return nil
}

// scheduledAt reports whether t already holds exactly start and end.
func scheduledAt(t *domain.Task, start, end time.Time) bool {
	return t.CalculatedStartTime != nil && t.CalculatedEndTime != nil &&
		t.CalculatedStartTime.Equal(start) && t.CalculatedEndTime.Equal(end)
}

// pushStep returns the next dependent to recompute, or nil when done.
func (g *Graph) pushStep(f *frame) *frame {
	for f.next < len(f.dependents) {
		d := f.dependents[f.next]
		f.next++
		if child := newFrame(d, f.visited); child != nil {
			return child
		}
	}
	return nil
}

func (g *Graph) incompleteDependents(id string) []*domain.Task {
	var out []*domain.Task
	for _, t := range g.tasks {
		if !t.Completed && t.HasDependency(id) {
			out = append(out, t)
		}
	}
	return out
}
