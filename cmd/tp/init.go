package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/todopath/todopath/internal/api/middleware"
	"github.com/todopath/todopath/internal/config"
	"github.com/todopath/todopath/internal/domain"
)

var initCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Initialize a new todopath project",
	Long: `Create a todopath.toml configuration file in the current directory.

The project name selects the plan this directory works with on the
todopath server.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetInt("port")

		cwd, err := os.Getwd()
		if err != nil {
			handleError(err)
		}
		handleError(runInit(os.Stdout, cwd, args[0], host, port))
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("host", "", "Server host")
	initCmd.Flags().Int("port", 0, "Server port")
}

// runInit creates todopath.toml in dir
func runInit(w io.Writer, dir, name, host string, port int) error {
	if !middleware.ValidProjectName(name) {
		return domain.NewValidationError([]string{
			"project name must be 1-64 letters, digits, '-' or '_'",
		})
	}

	if _, err := config.WriteProjectConfig(dir, name, host, port); err != nil {
		return err
	}

	printSuccess(w, fmt.Sprintf("Created %s for project '%s'", config.ConfigFileName, name), jsonOutput)
	return nil
}
