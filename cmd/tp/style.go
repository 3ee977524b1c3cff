package main

import (
	"github.com/fatih/color"

	"github.com/todopath/todopath/internal/domain"
	"github.com/todopath/todopath/internal/schedule"
)

// Sprint color functions for building styled strings.
var (
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

// delayLabel colors a delay status: delayed red, warning yellow, normal green.
func delayLabel(s domain.DelayStatus) string {
	switch s {
	case domain.DelayDelayed:
		return red(string(s))
	case domain.DelayWarning:
		return yellow(string(s))
	default:
		return green(string(s))
	}
}

// stateIcon returns the marker drawn before a node of the path forest.
func stateIcon(s schedule.NodeState) string {
	switch s {
	case schedule.StateDone:
		return green("✓")
	case schedule.StateBlocked:
		return red("●")
	default:
		return cyan("○")
	}
}

// checkbox renders completion the way the list view shows it.
func checkbox(done bool) string {
	if done {
		return green("[x]")
	}
	return "[ ]"
}
