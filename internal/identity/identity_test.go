package identity

import (
	"os"
	"strings"
	"testing"
)

func TestGenerateWithOverrides(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		hostname string
		want     string
	}{
		{"both set", "alice", "macbook", "alice@macbook"},
		{"fallback user", "", "server", "unknown@server"},
		{"fallback hostname", "dev", "", "dev@localhost"},
		{"all fallbacks", "", "", "unknown@localhost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateWithOverrides(tt.user, tt.hostname); got != tt.want {
				t.Errorf("GenerateWithOverrides() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerate_UsesUserEnv(t *testing.T) {
	t.Setenv("USER", "testenvuser")

	got := Generate()

	if !strings.HasPrefix(got, "testenvuser@") {
		t.Errorf("expected identity to start with 'testenvuser@', got %q", got)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	if a, b := Generate(), Generate(); a != b {
		t.Errorf("expected stable identity, got %q and %q", a, b)
	}
}

func TestResolve(t *testing.T) {
	t.Setenv("USER", "envuser")

	t.Setenv(EnvAgent, "")
	os.Unsetenv(EnvAgent)
	if got := Resolve(""); !strings.HasPrefix(got, "envuser@") {
		t.Errorf("expected generated identity, got %q", got)
	}

	t.Setenv(EnvAgent, " ci-bot ")
	if got := Resolve(""); got != "ci-bot" {
		t.Errorf("expected env identity 'ci-bot', got %q", got)
	}

	if got := Resolve("carol"); got != "carol" {
		t.Errorf("expected explicit identity to win, got %q", got)
	}
}
