package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/todopath/todopath/internal/client"
	"github.com/todopath/todopath/internal/domain"
	"github.com/todopath/todopath/internal/schedule"
)

const timeLayout = "2006-01-02 15:04"

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v interface{}) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// printTask prints a single task to the writer
func printTask(w io.Writer, task *domain.Task, jsonOutput bool) {
	if jsonOutput {
		writeJSON(w, task)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", task.ID)
	fmt.Fprintf(tw, "Content:\t%s\n", task.Content)
	fmt.Fprintf(tw, "Completed:\t%t\n", task.Completed)
	fmt.Fprintf(tw, "Estimate:\t%s\n", formatHours(task.EstimatedHours))
	if task.Deadline != nil {
		fmt.Fprintf(tw, "Deadline:\t%s\n", task.Deadline.Local().Format(timeLayout))
	}
	if len(task.Dependencies) > 0 {
		fmt.Fprintf(tw, "Depends On:\t%s\n", strings.Join(task.Dependencies, ", "))
	}
	if task.CalculatedStartTime != nil {
		fmt.Fprintf(tw, "Start:\t%s\n", task.CalculatedStartTime.Local().Format(timeLayout))
	}
	if task.CalculatedEndTime != nil {
		fmt.Fprintf(tw, "End:\t%s\n", task.CalculatedEndTime.Local().Format(timeLayout))
	}
	if !task.Completed {
		fmt.Fprintf(tw, "Status:\t%s\n", delayLabel(task.DelayStatus))
	}
	fmt.Fprintf(tw, "Created:\t%s\n", task.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	tw.Flush()
}

// printTaskList prints tasks in list order
func printTaskList(w io.Writer, tasks []domain.Task, jsonOutput bool) {
	if jsonOutput {
		if tasks == nil {
			tasks = []domain.Task{}
		}
		writeJSON(w, tasks)
		return
	}

	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "DONE\tID\tCONTENT\tHOURS\tDEADLINE\tSTATUS\n")
	fmt.Fprintf(tw, "----\t--\t-------\t-----\t--------\t------\n")
	for _, task := range tasks {
		status := ""
		if !task.Completed {
			status = delayLabel(task.DelayStatus)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			checkbox(task.Completed), task.ID, truncate(task.Content, 40),
			formatHours(task.EstimatedHours), formatDeadline(task.Deadline), status)
	}
	tw.Flush()
}

// printResult reports an accepted mutation: the message plus any cascade
// reverts and pruned edges.
func printResult(w io.Writer, res *schedule.Result, message string, jsonOutput bool) {
	if jsonOutput {
		writeJSON(w, res)
		return
	}

	fmt.Fprintln(w, message)
	if len(res.Reverted) > 0 {
		fmt.Fprintf(w, "%s %s\n", yellow("Reverted:"), strings.Join(res.Reverted, ", "))
	}
	for _, dep := range res.Pruned {
		fmt.Fprintf(w, "%s %s no longer depends on %s\n", dim("Pruned:"), dep.TaskID, dep.DependencyID)
	}
}

// printDependencies prints task dependencies
func printDependencies(w io.Writer, taskID string, deps []domain.Dependency, jsonOutput bool) {
	if jsonOutput {
		if deps == nil {
			deps = []domain.Dependency{}
		}
		writeJSON(w, deps)
		return
	}

	if len(deps) == 0 {
		fmt.Fprintf(w, "Task %s has no dependencies\n", taskID)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "DEPENDS ON\tSTATE\n")
	fmt.Fprintf(tw, "----------\t-----\n")
	for _, dep := range deps {
		state := "live"
		if dep.Dangling {
			state = dim("dangling")
		}
		fmt.Fprintf(tw, "%s\t%s\n", dep.DependencyID, state)
	}
	tw.Flush()
}

// printSchedule prints scheduled tasks ordered by start time. Tasks without
// a schedule are omitted.
func printSchedule(w io.Writer, sched map[string]domain.ScheduleEntry, jsonOutput bool) {
	if jsonOutput {
		writeJSON(w, sched)
		return
	}

	ids := make([]string, 0, len(sched))
	for id, e := range sched {
		if e.Start != nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "Nothing scheduled")
		return
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := sched[ids[i]].Start, sched[ids[j]].Start
		if !a.Equal(*b) {
			return a.Before(*b)
		}
		return ids[i] < ids[j]
	})

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tSTART\tEND\tSTATUS\n")
	fmt.Fprintf(tw, "--\t-----\t---\t------\n")
	for _, id := range ids {
		e := sched[id]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", id,
			e.Start.Local().Format(timeLayout), e.End.Local().Format(timeLayout), delayLabel(e.DelayStatus))
	}
	tw.Flush()
}

// printForest draws the path to completion, one tree per end task.
func printForest(w io.Writer, forest []*schedule.PathNode, jsonOutput bool) {
	if jsonOutput {
		if forest == nil {
			forest = []*schedule.PathNode{}
		}
		writeJSON(w, forest)
		return
	}

	if len(forest) == 0 {
		fmt.Fprintln(w, "Nothing left to do")
		return
	}

	for i, root := range forest {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, nodeLine(root))
		printChildren(w, root.Children, "")
	}
}

func printChildren(w io.Writer, children []*schedule.PathNode, prefix string) {
	for i, child := range children {
		branch, next := "├── ", "│   "
		if i == len(children)-1 {
			branch, next = "└── ", "    "
		}
		fmt.Fprintf(w, "%s%s%s\n", prefix, branch, nodeLine(child))
		printChildren(w, child.Children, prefix+next)
	}
}

func nodeLine(n *schedule.PathNode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", stateIcon(n.State), bold(n.Content), dim("("+n.ID+")"))
	if n.State != schedule.StateDone {
		fmt.Fprintf(&b, " %s", formatHours(n.EstimatedHours))
		if n.TimeLeft != "" {
			fmt.Fprintf(&b, ", %s", n.TimeLeft)
		}
		if n.DelayStatus != domain.DelayNormal {
			fmt.Fprintf(&b, " [%s]", delayLabel(n.DelayStatus))
		}
	}
	if n.Repeated {
		b.WriteString(dim(" (see above)"))
	}
	return b.String()
}

// printHistory prints task history/audit entries
func printHistory(w io.Writer, entries []domain.AuditEntry, jsonOutput bool) {
	if jsonOutput {
		if entries == nil {
			entries = []domain.AuditEntry{}
		}
		writeJSON(w, entries)
		return
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No history found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "TIME\tTASK\tACTION\tFIELD\tOLD\tNEW\tBY\n")
	fmt.Fprintf(tw, "----\t----\t------\t-----\t---\t---\t--\n")
	for _, entry := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			entry.ChangedAt.Local().Format("2006-01-02 15:04:05"),
			entry.TaskID,
			entry.Action,
			deref(entry.Field, 20),
			deref(entry.OldValue, 20),
			deref(entry.NewValue, 20),
			truncate(entry.ChangedBy, 30))
	}
	tw.Flush()
}

// printAuditPage prints one page of the audit log with pagination info
func printAuditPage(w io.Writer, page *client.AuditPage, jsonOutput bool) {
	if jsonOutput {
		writeJSON(w, page)
		return
	}

	printHistory(w, page.Data, false)
	if page.Pagination.TotalPages > 1 {
		fmt.Fprintf(w, "\nPage %d of %d (%d total entries)\n",
			page.Pagination.Page, page.Pagination.TotalPages, page.Pagination.Total)
	}
}

// printError prints an error message
func printError(w io.Writer, err error, jsonOutput bool) {
	if jsonOutput {
		writeJSON(w, map[string]interface{}{
			"error": map[string]interface{}{
				"message": err.Error(),
			},
		})
		return
	}

	fmt.Fprintf(w, "%s %s\n", red("Error:"), err.Error())
}

// printSuccess prints a success message
func printSuccess(w io.Writer, message string, jsonOutput bool) {
	if jsonOutput {
		writeJSON(w, map[string]interface{}{
			"message": message,
		})
		return
	}

	fmt.Fprintln(w, message)
}

func formatHours(h float64) string {
	if h == 0 {
		return "-"
	}
	return fmt.Sprintf("%gh", h)
}

func formatDeadline(d *time.Time) string {
	if d == nil {
		return "-"
	}
	return d.Local().Format(timeLayout)
}

func deref(s *string, maxLen int) string {
	if s == nil {
		return ""
	}
	return truncate(*s, maxLen)
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
