// Package config loads the calculator server's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sunfmin/mcp-go-calculator/pkg/logger"
)

// EnvConfigFile names an explicit configuration file.
const EnvConfigFile = "MCP_CALC_CONFIG"

const fileName = "mcp-go-calculator.yaml"

// Config represents the YAML configuration structure
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `yaml:"-"`
}

// ServerConfig holds MCP server settings
type ServerConfig struct {
	Name string `yaml:"name"` // name reported to MCP clients
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // log file path (empty = stderr)
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "Go Calculator MCP",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// searchPaths lists configuration files in priority order.
func searchPaths(explicit string) []string {
	if explicit != "" {
		return []string{explicit}
	}

	var paths []string
	if env := os.Getenv(EnvConfigFile); env != "" {
		paths = append(paths, env)
	}
	paths = append(paths, filepath.Join(".", fileName))
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+fileName))
	}
	return paths
}

// Load reads the first configuration file found, starting from explicit when
// it is set. Defaults are returned when no file exists, except that a missing
// explicit file is an error.
func Load(explicit string) (*Config, error) {
	cfg := Default()

	for _, path := range searchPaths(explicit) {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && explicit == "" {
				continue
			}
			return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %s: %w", path, err)
		}
		cfg.Path = path
		break
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return errors.New("server.name must not be empty")
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// OpenLogOutput returns the writer for log output and a close function. With no
// log file configured it returns a nil writer so the logger keeps stderr.
func (c *Config) OpenLogOutput() (io.Writer, func() error, error) {
	if c.Log.File == "" {
		return nil, func() error { return nil }, nil
	}
	f, err := os.OpenFile(c.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", c.Log.File, err)
	}
	return f, f.Close, nil
}
