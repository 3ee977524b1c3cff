package schedule

import (
	"fmt"
	"time"

	"github.com/todopath/todopath/internal/domain"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type taskSpec struct {
	id        string
	deps      []string
	hours     float64
	completed bool
}

func task(id string, deps ...string) taskSpec {
	return taskSpec{id: id, deps: deps}
}

func (s taskSpec) h(hours float64) taskSpec {
	s.hours = hours
	return s
}

func (s taskSpec) done() taskSpec {
	s.completed = true
	return s
}

// graphOf builds a graph in the given list order without validation, so
// tests can construct corrupted input.
func graphOf(specs ...taskSpec) *Graph {
	tasks := make([]*domain.Task, 0, len(specs))
	for _, s := range specs {
		t := domain.NewTask(s.id, "task "+s.id, t0)
		t.Dependencies = append(t.Dependencies, s.deps...)
		t.EstimatedHours = s.hours
		t.Completed = s.completed
		tasks = append(tasks, t)
	}
	return NewGraph(tasks)
}

func mustTask(g *Graph, id string) *domain.Task {
	t, ok := g.Task(id)
	if !ok {
		panic(fmt.Sprintf("task %s not in graph", id))
	}
	return t
}

func at(d time.Duration) time.Time {
	return t0.Add(d)
}

// sequentialIDs returns an id generator yielding t1, t2, ...
func sequentialIDs() func() (string, error) {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("t%d", n), nil
	}
}

func fixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

func newTestEngine() *Engine {
	return New(WithClock(fixedClock(t0)), WithIDGenerator(sequentialIDs()))
}

// diamondLadder chains n diamonds: j0 <- (l0, r0) <- j1 <- ... <- jn, where
// each l and r depends on the j before it and each j on the l and r before
// it. Tasks are listed from j0 up.
func diamondLadder(n int) []domain.TaskSnapshot {
	snaps := []domain.TaskSnapshot{{ID: "j0", Content: "j0", Dependencies: []string{}}}
	for i := 0; i < n; i++ {
		j := fmt.Sprintf("j%d", i)
		l, r := fmt.Sprintf("l%d", i), fmt.Sprintf("r%d", i)
		next := fmt.Sprintf("j%d", i+1)
		snaps = append(snaps,
			domain.TaskSnapshot{ID: l, Content: l, Dependencies: []string{j}},
			domain.TaskSnapshot{ID: r, Content: r, Dependencies: []string{j}},
			domain.TaskSnapshot{ID: next, Content: next, Dependencies: []string{l, r}},
		)
	}
	return snaps
}

func graphFromSnapshots(snaps []domain.TaskSnapshot) *Graph {
	tasks := make([]*domain.Task, 0, len(snaps))
	for _, s := range snaps {
		tasks = append(tasks, s.Task())
	}
	return NewGraph(tasks)
}
