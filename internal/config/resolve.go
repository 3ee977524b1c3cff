package config

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
)

// Environment variables read by the server daemon.
const (
	EnvBind    = "TODOPATH_BIND"
	EnvDataDir = "TODOPATH_DATA_DIR"
)

// ResolvedConfig represents the final merged configuration with all
// precedence rules applied. Precedence order (highest to lowest):
// 1. Project config (todopath.toml)
// 2. Global config (~/.todopath/config.toml)
// 3. Built-in defaults (localhost:7532)
type ResolvedConfig struct {
	Project    string
	ServerHost string
	ServerPort int
}

// ResolveConfig discovers the project config, loads the global config,
// and merges them according to precedence rules.
func ResolveConfig() (*ResolvedConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return ResolveConfigFrom(cwd, homeDir)
}

// ResolveConfigFrom resolves config for the project containing dir, with
// homeDir as the home directory.
func ResolveConfigFrom(dir, homeDir string) (*ResolvedConfig, error) {
	projectCfg, err := DiscoverProjectConfigFrom(dir)
	if err != nil {
		return nil, err
	}

	globalCfg, err := LoadGlobalConfigFromDir(homeDir)
	if err != nil {
		return nil, err
	}

	resolved := &ResolvedConfig{
		Project:    projectCfg.Project,
		ServerHost: DefaultServerHost,
		ServerPort: DefaultServerPort,
	}

	if globalCfg.ServerHost != "" {
		resolved.ServerHost = globalCfg.ServerHost
	}
	if globalCfg.ServerPort != 0 {
		resolved.ServerPort = globalCfg.ServerPort
	}

	if projectCfg.HostExplicitlySet() {
		resolved.ServerHost = projectCfg.ServerHost
	}
	if projectCfg.PortExplicitlySet() {
		resolved.ServerPort = projectCfg.ServerPort
	}

	return resolved, nil
}

// ServerConfig is the daemon's listen address and database directory.
type ServerConfig struct {
	Addr    string
	DataDir string
}

// ResolveServerConfig resolves the daemon configuration from the process
// environment and the user's global config.
func ResolveServerConfig() (*ServerConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return ResolveServerConfigWith(homeDir, os.Getenv)
}

// ResolveServerConfigWith resolves the daemon configuration. Environment
// variables override the global config, which overrides the defaults.
func ResolveServerConfigWith(homeDir string, getenv func(string) string) (*ServerConfig, error) {
	globalCfg, err := LoadGlobalConfigFromDir(homeDir)
	if err != nil {
		return nil, err
	}

	host, port := DefaultServerHost, DefaultServerPort
	if globalCfg.ServerHost != "" {
		host = globalCfg.ServerHost
	}
	if globalCfg.ServerPort != 0 {
		port = globalCfg.ServerPort
	}

	cfg := &ServerConfig{
		Addr:    net.JoinHostPort(host, strconv.Itoa(port)),
		DataDir: filepath.Join(GlobalDir(homeDir), DefaultDataDir),
	}
	if globalCfg.DataDir != "" {
		cfg.DataDir = globalCfg.DataDir
	}

	if bind := getenv(EnvBind); bind != "" {
		cfg.Addr = bind
	}
	if dir := getenv(EnvDataDir); dir != "" {
		cfg.DataDir = dir
	}

	return cfg, nil
}
