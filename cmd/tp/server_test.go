package main

import (
	"bytes"
	"context"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestServerCmd_Subcommands(t *testing.T) {
	want := map[string]bool{"start": false, "stop": false, "status": false}
	for _, sub := range serverCmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("server subcommand %q not registered", name)
		}
	}
}

func TestServerStartCmd_Flags(t *testing.T) {
	for _, name := range []string{"bind", "data-dir"} {
		if serverStartCmd.Flags().Lookup(name) == nil {
			t.Errorf("server start should have --%s", name)
		}
	}
}

func TestPIDFile_WriteReadRemove(t *testing.T) {
	p := pidFile(filepath.Join(t.TempDir(), "nested", "test.pid"))

	if err := p.write(12345); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	content, err := os.ReadFile(string(p))
	if err != nil {
		t.Fatalf("Failed to read PID file: %v", err)
	}
	if strings.TrimSpace(string(content)) != "12345" {
		t.Errorf("PID file content = %s, expected 12345", content)
	}

	pid, err := p.read()
	if err != nil || pid != 12345 {
		t.Errorf("read() = %d, %v; want 12345", pid, err)
	}

	if err := p.remove(); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := os.Stat(string(p)); !os.IsNotExist(err) {
		t.Error("PID file should be removed")
	}
	if err := p.remove(); err != nil {
		t.Errorf("removing a missing PID file should succeed, got %v", err)
	}
}

func TestPIDFile_ReadInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := pidFile(filepath.Join(dir, "bad.pid"))
	os.WriteFile(string(bad), []byte("not-a-pid"), 0644)
	if _, err := bad.read(); err == nil {
		t.Error("read() should fail on invalid content")
	}
	if _, err := pidFile(filepath.Join(dir, "missing.pid")).read(); err == nil {
		t.Error("read() should fail on a missing file")
	}
}

func TestPIDFile_LiveRemovesStale(t *testing.T) {
	p := pidFile(filepath.Join(t.TempDir(), "stale.pid"))
	if err := p.write(99999999); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, ok := p.live(); ok {
		t.Error("stale pid should not be live")
	}
	if _, err := os.Stat(string(p)); !os.IsNotExist(err) {
		t.Error("stale PID file should be removed")
	}

	if err := p.write(os.Getpid()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if pid, ok := p.live(); !ok || pid != os.Getpid() {
		t.Errorf("live() = %d, %v; want current pid", pid, ok)
	}
}

func TestClientFor(t *testing.T) {
	if _, err := clientFor("no-port"); err == nil {
		t.Error("clientFor should reject an address without a port")
	}
	if _, err := clientFor("localhost:http"); err == nil {
		t.Error("clientFor should reject a non-numeric port")
	}
	if _, err := clientFor("0.0.0.0:7532"); err != nil {
		t.Errorf("clientFor: %v", err)
	}
}

func TestIsProcessRunning(t *testing.T) {
	if !isProcessRunning(os.Getpid()) {
		t.Error("current process should be running")
	}
	if isProcessRunning(99999999) {
		t.Error("nonexistent PID should not be running")
	}
}

func closedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

func TestRunServerStatus_NotRunning(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	var buf bytes.Buffer
	running, err := runServerStatus(context.Background(), &buf, closedAddr(t))
	if err != nil {
		t.Fatalf("runServerStatus: %v", err)
	}
	if running {
		t.Error("server should not be reported as running")
	}
	if !strings.Contains(buf.String(), "Server is not running") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRunServerStatus_StalePIDNotAnswering(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p, err := defaultPIDFile()
	if err != nil {
		t.Fatalf("defaultPIDFile: %v", err)
	}
	if err := p.write(os.Getpid()); err != nil {
		t.Fatalf("write: %v", err)
	}

	var buf bytes.Buffer
	running, err := runServerStatus(context.Background(), &buf, closedAddr(t))
	if err != nil {
		t.Fatalf("runServerStatus: %v", err)
	}
	if running || !strings.Contains(buf.String(), "is not answering") {
		t.Errorf("running = %v, output = %q", running, buf.String())
	}
}

func TestRunServerStatus_Running(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p, err := defaultPIDFile()
	if err != nil {
		t.Fatalf("defaultPIDFile: %v", err)
	}
	if err := p.write(os.Getpid()); err != nil {
		t.Fatalf("write: %v", err)
	}

	srv := newCLITestServer(t)
	u, _ := url.Parse(srv.URL)

	var buf bytes.Buffer
	running, err := runServerStatus(context.Background(), &buf, u.Host)
	if err != nil {
		t.Fatalf("runServerStatus: %v", err)
	}
	if !running || !strings.Contains(buf.String(), "PID: "+strconv.Itoa(os.Getpid())) {
		t.Errorf("running = %v, output = %q", running, buf.String())
	}
}

func TestWaitHealthy_TimesOut(t *testing.T) {
	c, err := clientFor(closedAddr(t))
	if err != nil {
		t.Fatalf("clientFor: %v", err)
	}
	if err := waitHealthy(context.Background(), c, 250*time.Millisecond); err == nil {
		t.Error("waitHealthy should fail when nothing is listening")
	}
}

func TestRunServerStop_NoPIDFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := runServerStop(&bytes.Buffer{}); err == nil || !strings.Contains(err.Error(), "not running") {
		t.Errorf("expected not running error, got %v", err)
	}
}

func TestPidFilePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := pidFilePath()
	if err != nil {
		t.Fatalf("pidFilePath: %v", err)
	}
	if want := filepath.Join(home, ".todopath", "todopathd.pid"); got != want {
		t.Errorf("pidFilePath() = %s, want %s", got, want)
	}
}
