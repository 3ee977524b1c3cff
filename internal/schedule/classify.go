package schedule

import (
	"time"

	"github.com/todopath/todopath/internal/domain"
)

// WarningWindow is how close to the deadline a projected finish may land
// before the task is flagged as a warning.
const WarningWindow = time.Hour

// Classify returns the delay status of a task from its calculated end and
// deadline.
func Classify(t *domain.Task) domain.DelayStatus {
	if t.Completed || t.CalculatedEndTime == nil || t.Deadline == nil {
		return domain.DelayNormal
	}
	slack := t.Deadline.Sub(*t.CalculatedEndTime)
	switch {
	case slack < 0:
		return domain.DelayDelayed
	case slack <= WarningWindow:
		return domain.DelayWarning
	default:
		return domain.DelayNormal
	}
}

// ClassifyAll sets the delay status of every task.
func (g *Graph) ClassifyAll() {
	for _, t := range g.tasks {
		t.DelayStatus = Classify(t)
	}
}
