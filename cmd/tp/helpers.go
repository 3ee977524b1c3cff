package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/todopath/todopath/internal/client"
	"github.com/todopath/todopath/internal/config"
	"github.com/todopath/todopath/internal/domain"
	"github.com/todopath/todopath/internal/identity"
)

// getClient creates a client from the resolved config and identity
func getClient() (*client.Client, error) {
	cfg, err := config.ResolveConfig()
	if err != nil {
		return nil, err
	}

	agentID := identity.Resolve(agentFlag)
	return client.NewClient(cfg.ServerHost, cfg.ServerPort, cfg.Project, agentID), nil
}

// handleError handles an error by printing it and exiting with the appropriate code
func handleError(err error) {
	if err == nil {
		return
	}

	printError(os.Stderr, err, jsonOutput)
	os.Exit(exitCodeFor(err))
}

// parseDeadline reads a deadline relative to now. Accepted forms are RFC 3339,
// "YYYY-MM-DD HH:MM" and "YYYY-MM-DD" in now's location (the latter meaning
// 23:59 that day), and offsets such as "+36h", "+90m" or "+3d".
func parseDeadline(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("deadline is required")
	}

	if strings.HasPrefix(s, "+") {
		d, err := parseOffset(s[1:])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid deadline offset %q: %w", s, err)
		}
		return now.Add(d), nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, now.Location()); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return t.Add(23*time.Hour + 59*time.Minute), nil
	}

	return time.Time{}, fmt.Errorf("invalid deadline %q (use RFC 3339, YYYY-MM-DD [HH:MM] or +<duration>)", s)
}

func parseOffset(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// parseHours parses an estimate in hours. Zero means unset.
func parseHours(s string) (float64, error) {
	h, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(h) || math.IsInf(h, 0) {
		return 0, fmt.Errorf("invalid hours: %s", s)
	}
	if !domain.ValidEstimate(h) {
		return 0, fmt.Errorf("%s, got %s", domain.EstimateRangeMessage, s)
	}
	return h, nil
}

// pidFilePath returns the path to the PID file
func pidFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(config.GlobalDir(homeDir), "todopathd.pid"), nil
}
