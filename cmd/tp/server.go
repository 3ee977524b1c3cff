package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/todopath/todopath/internal/client"
	"github.com/todopath/todopath/internal/config"
	"github.com/todopath/todopath/internal/server"
)

const (
	daemonBinary = "todopathd"
	startTimeout = 5 * time.Second
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage the todopath server",
	Long:  `Start, stop and inspect the todopathd daemon that hosts every project's plan.`,
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the todopath server in the background",
	Run: func(cmd *cobra.Command, args []string) {
		bind, _ := cmd.Flags().GetString("bind")
		dataDir, _ := cmd.Flags().GetString("data-dir")

		handleError(runServerStart(cmd.Context(), os.Stdout, bind, dataDir))
	},
}

var serverStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the todopath server",
	Run: func(cmd *cobra.Command, args []string) {
		handleError(runServerStop(os.Stdout))
	},
}

var serverStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the todopath server is running",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.ResolveServerConfig()
		if err != nil {
			handleError(err)
		}
		running, err := runServerStatus(cmd.Context(), os.Stdout, cfg.Addr)
		if err != nil {
			handleError(err)
		}
		if !running {
			os.Exit(ExitServerNotRunning)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverStopCmd)
	serverCmd.AddCommand(serverStatusCmd)

	serverStartCmd.Flags().String("bind", "", "Address to bind the server to (default "+server.DefaultAddress+")")
	serverStartCmd.Flags().String("data-dir", "", "Directory holding project databases")
}

// pidFile records the daemon's process id under the global config dir.
type pidFile string

func defaultPIDFile() (pidFile, error) {
	path, err := pidFilePath()
	return pidFile(path), err
}

func (p pidFile) write(pid int) error {
	if err := os.MkdirAll(filepath.Dir(string(p)), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(string(p), []byte(strconv.Itoa(pid)), 0644)
}

func (p pidFile) read() (int, error) {
	content, err := os.ReadFile(string(p))
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file content: %w", err)
	}
	return pid, nil
}

func (p pidFile) remove() error {
	if err := os.Remove(string(p)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// live returns the recorded pid if that process is still running. A stale
// file is removed.
func (p pidFile) live() (int, bool) {
	pid, err := p.read()
	if err != nil {
		return 0, false
	}
	if !isProcessRunning(pid) {
		p.remove()
		return 0, false
	}
	return pid, true
}

// isProcessRunning checks pid with signal 0.
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// clientFor builds a project-less client for the server at addr.
func clientFor(addr string) (*client.Client, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid server address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid server port %q: %w", portStr, err)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = config.DefaultServerHost
	}
	return client.NewClient(host, port, "", agentFlag), nil
}

// waitHealthy polls the health endpoint until it answers or timeout passes.
func waitHealthy(ctx context.Context, c *client.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		err := c.Health(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("server did not become healthy: %w", err)
		case <-ticker.C:
		}
	}
}

// runServerStart launches todopathd detached from the terminal and waits
// for it to answer health checks.
func runServerStart(ctx context.Context, w io.Writer, bind, dataDir string) error {
	pids, err := defaultPIDFile()
	if err != nil {
		return err
	}
	if pid, ok := pids.live(); ok {
		return fmt.Errorf("server is already running (PID: %d)", pid)
	}

	addr := bind
	if addr == "" {
		cfg, err := config.ResolveServerConfig()
		if err != nil {
			return err
		}
		addr = cfg.Addr
	}
	c, err := clientFor(addr)
	if err != nil {
		return err
	}

	daemonPath, err := findDaemon()
	if err != nil {
		return err
	}

	cmd := exec.Command(daemonPath)
	cmd.Env = append(os.Environ(), config.EnvBind+"="+addr)
	if dataDir != "" {
		cmd.Env = append(cmd.Env, config.EnvDataDir+"="+dataDir)
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	pid := cmd.Process.Pid
	cmd.Process.Release()

	if err := pids.write(pid); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	if err := waitHealthy(ctx, c, startTimeout); err != nil {
		if p, ferr := os.FindProcess(pid); ferr == nil {
			p.Signal(syscall.SIGTERM)
		}
		pids.remove()
		return err
	}

	printSuccess(w, fmt.Sprintf("Server started on %s (PID: %d)", addr, pid), jsonOutput)
	return nil
}

// findDaemon looks for todopathd on PATH, then next to the tp binary.
func findDaemon() (string, error) {
	if path, err := exec.LookPath(daemonBinary); err == nil {
		return path, nil
	}

	self, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to find %s binary: %w", daemonBinary, err)
	}
	path := filepath.Join(filepath.Dir(self), daemonBinary)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%s binary not found, install it first", daemonBinary)
	}
	return path, nil
}

// runServerStop sends SIGTERM to the recorded daemon.
func runServerStop(w io.Writer) error {
	pids, err := defaultPIDFile()
	if err != nil {
		return err
	}

	pid, ok := pids.live()
	if !ok {
		return client.ErrServerNotRunning
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	pids.remove()

	printSuccess(w, fmt.Sprintf("Server stopped (PID: %d)", pid), jsonOutput)
	return nil
}

// runServerStatus reports whether a server answers at addr, naming the
// recorded daemon pid when there is one.
func runServerStatus(ctx context.Context, w io.Writer, addr string) (bool, error) {
	c, err := clientFor(addr)
	if err != nil {
		return false, err
	}

	pids, err := defaultPIDFile()
	if err != nil {
		return false, err
	}
	pid, hasPID := pids.live()

	if err := c.Health(ctx); err != nil {
		msg := fmt.Sprintf("Server is not running at %s", addr)
		if hasPID {
			msg = fmt.Sprintf("Server process %d is not answering at %s", pid, addr)
		}
		printSuccess(w, msg, jsonOutput)
		return false, nil
	}

	msg := fmt.Sprintf("Server is running at %s", addr)
	if hasPID {
		msg += fmt.Sprintf(" (PID: %d)", pid)
	}
	printSuccess(w, msg, jsonOutput)
	return true, nil
}
