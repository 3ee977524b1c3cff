package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/todopath/todopath/internal/client"
)

var historyCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show task history",
	Long:  `Show every recorded change to a task, newest first.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := getClient()
		if err != nil {
			handleError(err)
		}
		handleError(runHistory(cmd.Context(), c, os.Stdout, args[0]))
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Query the project audit log",
	Long: `Query the audit log of the project. --since and --until accept
RFC 3339 timestamps or YYYY-MM-DD dates (midnight local time).`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		q, err := auditQueryFromFlags(cmd)
		if err != nil {
			handleError(err)
		}

		c, err := getClient()
		if err != nil {
			handleError(err)
		}
		handleError(runLog(cmd.Context(), c, os.Stdout, q))
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(logCmd)

	logCmd.Flags().String("task", "", "Only entries for this task")
	logCmd.Flags().String("action", "", "Only entries with this action (e.g. complete, cascade)")
	logCmd.Flags().String("by", "", "Only entries made by this agent")
	logCmd.Flags().String("since", "", "Only entries at or after this time")
	logCmd.Flags().String("until", "", "Only entries at or before this time")
	logCmd.Flags().Int("page", 1, "Page number")
	logCmd.Flags().Int("per-page", 50, "Entries per page (max 100)")
}

func auditQueryFromFlags(cmd *cobra.Command) (client.AuditQuery, error) {
	var q client.AuditQuery
	q.TaskID, _ = cmd.Flags().GetString("task")
	q.Action, _ = cmd.Flags().GetString("action")
	q.AgentID, _ = cmd.Flags().GetString("by")
	q.Page, _ = cmd.Flags().GetInt("page")
	q.PerPage, _ = cmd.Flags().GetInt("per-page")

	since, _ := cmd.Flags().GetString("since")
	until, _ := cmd.Flags().GetString("until")

	var err error
	if q.Since, err = parseTimeFlag("since", since); err != nil {
		return q, err
	}
	if q.Until, err = parseTimeFlag("until", until); err != nil {
		return q, err
	}
	return q, nil
}

func parseTimeFlag(name, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("invalid --%s %q (use RFC 3339 or YYYY-MM-DD)", name, s)
}

func runHistory(ctx context.Context, c *client.Client, w io.Writer, taskID string) error {
	entries, err := c.GetTaskHistory(ctx, taskID)
	if err != nil {
		return err
	}
	printHistory(w, entries, jsonOutput)
	return nil
}

func runLog(ctx context.Context, c *client.Client, w io.Writer, q client.AuditQuery) error {
	page, err := c.QueryAudit(ctx, q)
	if err != nil {
		return err
	}
	printAuditPage(w, page, jsonOutput)
	return nil
}
