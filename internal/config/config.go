// Package config resolves forge settings from built-in defaults, an
// optional YAML file under the forge home, FORGE_* keys from a .env file in
// the working directory and FORGE_* environment variables, in that order.
// The .env file is read, never exported: a generated project's own .env
// does not leak into child processes.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alucardeht/forge/internal/logger"
	"github.com/alucardeht/forge/internal/watcher"
)

const (
	FileName   = "config.yaml"
	defaultDir = ".forge"
)

type InstallConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Skip    bool     `yaml:"skip"`
	// Env is added to the installer's environment, e.g.
	// npm_config_loglevel: error
	Env map[string]string `yaml:"env"`
}

type BacklogConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

type Config struct {
	Home      string                `yaml:"-"`
	LogLevel  string                `yaml:"log_level"`
	LogFormat string                `yaml:"log_format"`
	Install   InstallConfig         `yaml:"install"`
	Backlog   BacklogConfig         `yaml:"backlog"`
	Watcher   watcher.WatcherConfig `yaml:"watcher"`
}

// Home is $FORGE_HOME, or ~/.forge.
func Home() string {
	if h := strings.TrimSpace(os.Getenv("FORGE_HOME")); h != "" {
		return h
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return defaultDir
	}
	return filepath.Join(homeDir, defaultDir)
}

func Default(home string) *Config {
	return &Config{
		Home:      home,
		LogLevel:  "info",
		LogFormat: "text",
		Install: InstallConfig{
			Command: "npm",
			Args:    []string{"install"},
		},
		Backlog: BacklogConfig{
			Enabled: true,
			DBPath:  filepath.Join(home, "backlog.db"),
		},
		Watcher: watcher.DefaultWatcherConfig(),
	}
}

// Load reads the full configuration chain. A missing YAML file or .env is
// not an error; a malformed one is.
func Load() (*Config, error) {
	dotenv, err := godotenv.Read()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: read .env: %w", err)
		}
		dotenv = nil
	}

	home := Home()
	cfg, err := LoadFile(filepath.Join(home, FileName), home)
	if err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(lookup(dotenv)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto the defaults for home.
func LoadFile(path, home string) (*Config, error) {
	cfg := Default(home)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Home = home

	return cfg, nil
}

const envPrefix = "FORGE_"

// lookup resolves a FORGE_* key from the process environment, falling back
// to dotenv. Keys without the prefix are never consulted.
func lookup(dotenv map[string]string) func(string) string {
	return func(key string) string {
		if !strings.HasPrefix(key, envPrefix) {
			return ""
		}
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv("FORGE_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(getenv("FORGE_LOG_FORMAT")); v != "" {
		c.LogFormat = v
	}
	if v := strings.Fields(getenv("FORGE_INSTALL_COMMAND")); len(v) > 0 {
		c.Install.Command = v[0]
		c.Install.Args = v[1:]
	}
	if v := strings.TrimSpace(getenv("FORGE_SKIP_INSTALL")); v != "" {
		skip, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: FORGE_SKIP_INSTALL: %w", err)
		}
		c.Install.Skip = skip
	}
	if v := strings.TrimSpace(getenv("FORGE_BACKLOG_DB")); v != "" {
		c.Backlog.DBPath = v
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("config: log_format must be text or json, got %q", c.LogFormat)
	}
	if !c.Install.Skip && strings.TrimSpace(c.Install.Command) == "" {
		return errors.New("config: install.command is empty")
	}
	return nil
}

// Logger converts the logging fields; call Validate first.
func (c *Config) Logger() logger.Config {
	lc := logger.DefaultConfig()
	if lvl, err := logger.ParseLevel(c.LogLevel); err == nil {
		lc.Level = lvl
	}
	lc.Format = c.LogFormat
	return lc
}

func (c *Config) EnsureDirectories() error {
	if c.Backlog.Enabled {
		if err := os.MkdirAll(filepath.Dir(c.Backlog.DBPath), 0o700); err != nil {
			return err
		}
	}
	return os.MkdirAll(c.Home, 0o700)
}
