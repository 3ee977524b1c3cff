package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/todopath/todopath/internal/client"
)

var addCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Add a task",
	Long:  `Add a task to the front of the plan. All arguments are joined into the task content.`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := getClient()
		if err != nil {
			handleError(err)
		}
		handleError(runAdd(cmd.Context(), c, os.Stdout, strings.Join(args, " ")))
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a task",
	Long: `Delete a task. Tasks that depended on it keep the reference as a
dangling dependency until 'tp dep prune' removes it.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := getClient()
		if err != nil {
			handleError(err)
		}
		handleError(runRemove(cmd.Context(), c, os.Stdout, args[0]))
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long:  `List tasks in plan order, newest first.`,
	Run: func(cmd *cobra.Command, args []string) {
		filter, _ := cmd.Flags().GetString("filter")
		search, _ := cmd.Flags().GetString("search")

		c, err := getClient()
		if err != nil {
			handleError(err)
		}
		handleError(runList(cmd.Context(), c, os.Stdout, filter, search))
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := getClient()
		if err != nil {
			handleError(err)
		}
		handleError(runShow(cmd.Context(), c, os.Stdout, args[0]))
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Toggle task completion",
	Long: `Complete a task whose dependencies are all completed, or reopen a
completed task. Reopening also reopens every completed task that depends on it.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := getClient()
		if err != nil {
			handleError(err)
		}
		handleError(runToggle(cmd.Context(), c, os.Stdout, args[0]))
	},
}

var deadlineCmd = &cobra.Command{
	Use:   "deadline",
	Short: "Set or clear task deadlines",
}

var deadlineSetCmd = &cobra.Command{
	Use:   "set <id> <when>",
	Short: "Set a task deadline",
	Long: `Set a task deadline. <when> may be RFC 3339, "YYYY-MM-DD HH:MM",
"YYYY-MM-DD" (23:59 that day) or an offset such as +36h or +3d.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := getClient()
		if err != nil {
			handleError(err)
		}
		handleError(runDeadlineSet(cmd.Context(), c, os.Stdout, args[0], args[1], time.Now()))
	},
}

var deadlineClearCmd = &cobra.Command{
	Use:   "clear <id>",
	Short: "Remove a task deadline",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := getClient()
		if err != nil {
			handleError(err)
		}
		handleError(runDeadlineClear(cmd.Context(), c, os.Stdout, args[0]))
	},
}

var hoursCmd = &cobra.Command{
	Use:   "hours <id> <hours>",
	Short: "Set a task estimate",
	Long:  `Set the estimated hours for a task. Fractions are allowed; 0 means unset (scheduled as one hour).`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := getClient()
		if err != nil {
			handleError(err)
		}
		handleError(runHours(cmd.Context(), c, os.Stdout, args[0], args[1]))
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(deadlineCmd)
	rootCmd.AddCommand(hoursCmd)

	deadlineCmd.AddCommand(deadlineSetCmd)
	deadlineCmd.AddCommand(deadlineClearCmd)

	listCmd.Flags().String("filter", "all", "Filter: all, active or completed")
	listCmd.Flags().String("search", "", "Only tasks whose content contains this text")
}

func runAdd(ctx context.Context, c *client.Client, w io.Writer, content string) error {
	res, err := c.CreateTask(ctx, content)
	if err != nil {
		return err
	}
	printResult(w, res, fmt.Sprintf("Added task %s", res.TaskID), jsonOutput)
	return nil
}

func runRemove(ctx context.Context, c *client.Client, w io.Writer, id string) error {
	res, err := c.DeleteTask(ctx, id)
	if err != nil {
		return err
	}
	printResult(w, res, fmt.Sprintf("Deleted task %s", id), jsonOutput)
	return nil
}

func runList(ctx context.Context, c *client.Client, w io.Writer, filter, search string) error {
	tasks, err := c.ListTasks(ctx, filter, search)
	if err != nil {
		return err
	}
	printTaskList(w, tasks, jsonOutput)
	return nil
}

func runShow(ctx context.Context, c *client.Client, w io.Writer, id string) error {
	task, err := c.GetTask(ctx, id)
	if err != nil {
		return err
	}
	printTask(w, task, jsonOutput)
	return nil
}

func runToggle(ctx context.Context, c *client.Client, w io.Writer, id string) error {
	res, err := c.ToggleCompletion(ctx, id)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Reopened task %s", id)
	if res.Completed {
		msg = fmt.Sprintf("Completed task %s", id)
	}
	printResult(w, res, msg, jsonOutput)
	return nil
}

func runDeadlineSet(ctx context.Context, c *client.Client, w io.Writer, id, when string, now time.Time) error {
	deadline, err := parseDeadline(when, now)
	if err != nil {
		return err
	}
	res, err := c.SetDeadline(ctx, id, &deadline)
	if err != nil {
		return err
	}
	printResult(w, res, fmt.Sprintf("Deadline of %s set to %s", id, deadline.Local().Format(timeLayout)), jsonOutput)
	return nil
}

func runDeadlineClear(ctx context.Context, c *client.Client, w io.Writer, id string) error {
	res, err := c.SetDeadline(ctx, id, nil)
	if err != nil {
		return err
	}
	printResult(w, res, fmt.Sprintf("Cleared deadline of %s", id), jsonOutput)
	return nil
}

func runHours(ctx context.Context, c *client.Client, w io.Writer, id, hours string) error {
	h, err := parseHours(hours)
	if err != nil {
		return err
	}
	res, err := c.SetHours(ctx, id, h)
	if err != nil {
		return err
	}
	printResult(w, res, fmt.Sprintf("Estimate of %s set to %s", id, formatHours(h)), jsonOutput)
	return nil
}
