package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/todopath/todopath/internal/client"
	"github.com/todopath/todopath/internal/snapshot"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the project's tasks",
	Long:  `Write the project's tasks as a YAML or JSON snapshot to stdout or a file.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		formatFlag, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		c, err := getClient()
		if err != nil {
			handleError(err)
		}
		handleError(runExport(cmd.Context(), c, os.Stdout, formatFlag, output))
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the project's tasks with a snapshot",
	Long: `Replace every task in the project with the tasks in a snapshot file.
The format is taken from --format or the file extension. Snapshots that
contain a dependency cycle are rejected.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		formatFlag, _ := cmd.Flags().GetString("format")

		c, err := getClient()
		if err != nil {
			handleError(err)
		}
		handleError(runImport(cmd.Context(), c, os.Stdout, args[0], formatFlag))
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)

	exportCmd.Flags().String("format", "yaml", "Snapshot format: yaml or json")
	exportCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")

	importCmd.Flags().String("format", "", "Snapshot format: yaml or json (default from file extension)")
}

func runExport(ctx context.Context, c *client.Client, w io.Writer, formatFlag, output string) error {
	format, err := snapshot.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	data, err := c.Export(ctx, format)
	if err != nil {
		return err
	}

	if output == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	printSuccess(w, fmt.Sprintf("Exported snapshot to %s", output), jsonOutput)
	return nil
}

func runImport(ctx context.Context, c *client.Client, w io.Writer, path, formatFlag string) error {
	format := snapshot.FormatForPath(path)
	if formatFlag != "" {
		f, err := snapshot.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		format = f
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	res, err := c.Import(ctx, data, format)
	if err != nil {
		return err
	}
	printResult(w, res, fmt.Sprintf("Imported %d tasks from %s", len(res.Tasks), path), jsonOutput)
	return nil
}
