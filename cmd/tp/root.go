package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	jsonOutput bool
	agentFlag  string
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "tp",
	Short: "todopath task planner CLI",
	Long: `tp talks to a running todopathd. It schedules dependent tasks
back to back and flags the ones that will miss their deadlines.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || jsonOutput {
			color.NoColor = true
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&jsonOutput, "json", false, "Output as JSON")
	flags.StringVar(&agentFlag, "agent", "", "Agent identity recorded in the audit log")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitGeneralError)
	}
}
