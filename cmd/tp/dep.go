package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/todopath/todopath/internal/client"
)

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage task dependencies",
	Long:  `Commands for managing dependencies between tasks.`,
}

var depAddCmd = &cobra.Command{
	Use:   "add <task> <dependency>",
	Short: "Add a dependency",
	Long: `Make <task> depend on <dependency>. The task cannot be completed until
the dependency is, and is scheduled to start after it ends. Edges that would
close a cycle are rejected.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := getClient()
		if err != nil {
			handleError(err)
		}
		handleError(runDepAdd(cmd.Context(), c, os.Stdout, args[0], args[1]))
	},
}

var depRmCmd = &cobra.Command{
	Use:   "rm <task> <dependency>",
	Short: "Remove a dependency",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := getClient()
		if err != nil {
			handleError(err)
		}
		handleError(runDepRemove(cmd.Context(), c, os.Stdout, args[0], args[1]))
	},
}

var depListCmd = &cobra.Command{
	Use:   "list <id>",
	Short: "List dependencies",
	Long:  `List a task's dependencies, marking those whose task was deleted.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := getClient()
		if err != nil {
			handleError(err)
		}
		handleError(runDepList(cmd.Context(), c, os.Stdout, args[0]))
	},
}

var depPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove dangling dependencies",
	Long:  `Remove every dependency that points at a deleted task.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		c, err := getClient()
		if err != nil {
			handleError(err)
		}
		handleError(runDepPrune(cmd.Context(), c, os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(depCmd)

	depCmd.AddCommand(depAddCmd)
	depCmd.AddCommand(depRmCmd)
	depCmd.AddCommand(depListCmd)
	depCmd.AddCommand(depPruneCmd)
}

func runDepAdd(ctx context.Context, c *client.Client, w io.Writer, taskID, depID string) error {
	res, err := c.AddDependency(ctx, taskID, depID)
	if err != nil {
		return err
	}
	printResult(w, res, fmt.Sprintf("Added dependency: %s depends on %s", taskID, depID), jsonOutput)
	return nil
}

func runDepRemove(ctx context.Context, c *client.Client, w io.Writer, taskID, depID string) error {
	res, err := c.RemoveDependency(ctx, taskID, depID)
	if err != nil {
		return err
	}
	printResult(w, res, fmt.Sprintf("Removed dependency: %s no longer depends on %s", taskID, depID), jsonOutput)
	return nil
}

func runDepList(ctx context.Context, c *client.Client, w io.Writer, taskID string) error {
	deps, err := c.ListDependencies(ctx, taskID)
	if err != nil {
		return err
	}
	printDependencies(w, taskID, deps, jsonOutput)
	return nil
}

func runDepPrune(ctx context.Context, c *client.Client, w io.Writer) error {
	res, err := c.PruneDanglingDependencies(ctx)
	if err != nil {
		return err
	}
	printResult(w, res, fmt.Sprintf("Pruned %d dangling dependencies", len(res.Pruned)), jsonOutput)
	return nil
}
