package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// GlobalConfigDir is the name of the global config directory in home
	GlobalConfigDir = ".todopath"

	// GlobalConfigFileName is the name of the global config file
	GlobalConfigFileName = "config.toml"

	// DefaultDataDir is where project databases live, relative to the
	// global config directory.
	DefaultDataDir = "projects"
)

// GlobalConfig represents the user-level configuration from ~/.todopath/config.toml
type GlobalConfig struct {
	ServerHost string
	ServerPort int
	// DataDir is the configured database directory, or empty.
	DataDir string
}

// globalConfigFile represents the raw TOML structure for global config
type globalConfigFile struct {
	Server  serverConfig  `toml:"server"`
	Storage storageConfig `toml:"storage"`
}

// storageConfig represents the [storage] section in TOML
type storageConfig struct {
	DataDir string `toml:"data_dir"`
}

// LoadGlobalConfig loads the global configuration from ~/.todopath/config.toml.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return LoadGlobalConfigFromDir(homeDir)
}

// LoadGlobalConfigFromDir loads global config using homeDir as the home directory.
func LoadGlobalConfigFromDir(homeDir string) (*GlobalConfig, error) {
	configPath := filepath.Join(homeDir, GlobalConfigDir, GlobalConfigFileName)

	var raw globalConfigFile
	if _, err := toml.DecodeFile(configPath, &raw); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("failed to parse global config %s: %w", configPath, err)
	}

	cfg := &GlobalConfig{
		ServerHost: raw.Server.Host,
		DataDir:    expandHome(raw.Storage.DataDir, homeDir),
	}
	if raw.Server.Port != nil {
		if err := validatePort(*raw.Server.Port); err != nil {
			return nil, err
		}
		cfg.ServerPort = *raw.Server.Port
	}

	return cfg, nil
}

// GlobalDir returns the global config directory under homeDir.
func GlobalDir(homeDir string) string {
	return filepath.Join(homeDir, GlobalConfigDir)
}

func expandHome(path, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
