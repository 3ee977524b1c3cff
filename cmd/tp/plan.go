package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/todopath/todopath/internal/client"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Show the computed schedule",
	Long:  `Show when each incomplete task is scheduled to start and end, in start order.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		c, err := getClient()
		if err != nil {
			handleError(err)
		}
		handleError(runSchedule(cmd.Context(), c, os.Stdout))
	},
}

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the path to completion",
	Long: `Draw one tree per end task (an incomplete task nothing depends on) with
its dependencies beneath it. Leaves marked ready can be started now.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		c, err := getClient()
		if err != nil {
			handleError(err)
		}
		handleError(runPath(cmd.Context(), c, os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(pathCmd)
}

func runSchedule(ctx context.Context, c *client.Client, w io.Writer) error {
	sched, err := c.Schedule(ctx)
	if err != nil {
		return err
	}
	printSchedule(w, sched, jsonOutput)
	return nil
}

func runPath(ctx context.Context, c *client.Client, w io.Writer) error {
	forest, err := c.Forest(ctx)
	if err != nil {
		return err
	}
	printForest(w, forest, jsonOutput)
	return nil
}
