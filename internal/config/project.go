package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// ConfigFileName is the name of the project configuration file
	ConfigFileName = "todopath.toml"

	// DefaultServerHost is the default server host
	DefaultServerHost = "localhost"

	// DefaultServerPort is the default server port
	DefaultServerPort = 7532
)

// ErrNoProjectConfig is returned when no todopath.toml is found between the
// working directory and the filesystem root.
var ErrNoProjectConfig = errors.New("no todopath.toml found. Run 'tp init <name>' to create one")

// ProjectConfig represents the project-level configuration from todopath.toml
type ProjectConfig struct {
	Project    string
	ServerHost string
	ServerPort int
	// Dir is the directory holding the config file.
	Dir string

	hostExplicitlySet bool
	portExplicitlySet bool
}

// projectConfigFile represents the raw TOML structure
type projectConfigFile struct {
	Project string       `toml:"project"`
	Server  serverConfig `toml:"server,omitempty"`
}

// serverConfig represents the [server] section in TOML
type serverConfig struct {
	Host string `toml:"host,omitempty"`
	Port *int   `toml:"port,omitempty"`
}

// DiscoverProjectConfig finds and parses todopath.toml by walking up from the
// current working directory.
func DiscoverProjectConfig() (*ProjectConfig, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	return DiscoverProjectConfigFrom(cwd)
}

// DiscoverProjectConfigFrom searches for todopath.toml starting at startDir.
func DiscoverProjectConfigFrom(startDir string) (*ProjectConfig, error) {
	dir := startDir

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return ParseProjectConfig(configPath)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, ErrNoProjectConfig
		}
		dir = parent
	}
}

// ParseProjectConfig parses the todopath.toml file at the given path
func ParseProjectConfig(path string) (*ProjectConfig, error) {
	var raw projectConfigFile
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if raw.Project == "" {
		return nil, errors.New("project name cannot be empty")
	}
	if raw.Server.Port != nil {
		if err := validatePort(*raw.Server.Port); err != nil {
			return nil, err
		}
	}

	cfg := &ProjectConfig{
		Project:    raw.Project,
		ServerHost: DefaultServerHost,
		ServerPort: DefaultServerPort,
		Dir:        filepath.Dir(path),
	}
	if raw.Server.Host != "" {
		cfg.ServerHost = raw.Server.Host
		cfg.hostExplicitlySet = true
	}
	if raw.Server.Port != nil {
		cfg.ServerPort = *raw.Server.Port
		cfg.portExplicitlySet = true
	}

	return cfg, nil
}

// WriteProjectConfig creates todopath.toml in dir. Host and port are written
// only when set. An existing file is never overwritten.
func WriteProjectConfig(dir, project, host string, port int) (string, error) {
	if project == "" {
		return "", errors.New("project name is required")
	}
	if port != 0 {
		if err := validatePort(port); err != nil {
			return "", err
		}
	}

	path := filepath.Join(dir, ConfigFileName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%s already exists in %s", ConfigFileName, dir)
		}
		return "", fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	raw := projectConfigFile{Project: project, Server: serverConfig{Host: host}}
	if port != 0 {
		raw.Server.Port = &port
	}
	if err := toml.NewEncoder(f).Encode(raw); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}

// HostExplicitlySet returns true if the host was explicitly set in the config file
func (c *ProjectConfig) HostExplicitlySet() bool {
	return c.hostExplicitlySet
}

// PortExplicitlySet returns true if the port was explicitly set in the config file
func (c *ProjectConfig) PortExplicitlySet() bool {
	return c.portExplicitlySet
}

// validatePort checks if the port is in the valid range (1-65535)
func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}
	return nil
}
