// Package identity names the agent behind CLI requests. The name is sent in
// the X-Todopath-Agent header and recorded in the audit log.
package identity

import (
	"fmt"
	"os"
	"os/user"
	"strings"
)

const (
	// EnvAgent overrides the generated identity.
	EnvAgent = "TODOPATH_AGENT"

	// FallbackUser is used when the user cannot be determined
	FallbackUser = "unknown"
	// FallbackHostname is used when the hostname cannot be determined
	FallbackHostname = "localhost"
)

// Resolve returns the agent identity for a CLI invocation: the explicit name
// if given, then $TODOPATH_AGENT, then the generated user@hostname.
func Resolve(explicit string) string {
	if name := strings.TrimSpace(explicit); name != "" {
		return name
	}
	if name := strings.TrimSpace(os.Getenv(EnvAgent)); name != "" {
		return name
	}
	return Generate()
}

// Generate returns the identity of the current user as user@hostname.
//
// Examples:
//   - alice@macbook
//   - dev@build-01
func Generate() string {
	return GenerateWithOverrides(getUser(), getHostname())
}

// GenerateWithOverrides formats an identity from the given values, applying
// fallbacks for empty ones.
func GenerateWithOverrides(usr, hostname string) string {
	if usr == "" {
		usr = FallbackUser
	}
	if hostname == "" {
		hostname = FallbackHostname
	}

	return fmt.Sprintf("%s@%s", usr, hostname)
}

// getUser returns the current user's username.
// It first checks the USER environment variable, then falls back to user.Current().
func getUser() string {
	if usr := os.Getenv("USER"); usr != "" {
		return usr
	}

	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}

	return ""
}

// getHostname returns the system hostname.
func getHostname() string {
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		return hostname
	}
	return ""
}
