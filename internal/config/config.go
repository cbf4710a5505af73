// Package config provides configuration management for Accord.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is Accord's top-level configuration.
type Config struct {
	Runtime RuntimeConfig `toml:"runtime"`
	Monitor MonitorConfig `toml:"monitor"`
	TLC     TLCConfig     `toml:"tlc"`
	Explain ExplainConfig `toml:"explain"`
	MCP     MCPConfig     `toml:"mcp"`
	Logging LoggingConfig `toml:"logging"`
}

// RuntimeConfig contains process-lifecycle settings shared by any
// long-lived Accord invocation (a `check --watch` loop, or a monitor
// session with its observability endpoint enabled).
type RuntimeConfig struct {
	DataDir         string `toml:"data_dir"`
	PIDFile         string `toml:"pid_file"`
	ShutdownTimeout int    `toml:"shutdown_timeout_seconds"`
}

// MonitorConfig controls the runtime monitor's optional HTTP observability
// surface (pkg/monitor/observe.go): call/cast/violation/commit events over
// SSE for a long-lived session.
type MonitorConfig struct {
	ObserveEnabled bool `toml:"observe_enabled"`
	ObservePort    int  `toml:"observe_port"`
	CORSEnabled    bool `toml:"cors_enabled"`
}

// TLCConfig controls `check`'s model-checker backend.
type TLCConfig struct {
	// JarPath overrides the TLA2TOOLS_JAR / ~/.tla/tla2tools.jar / ./tla2tools.jar
	// lookup order when set.
	JarPath        string `toml:"jar_path"`
	Workers        int    `toml:"workers"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Containerized  bool   `toml:"containerized"`
	ContainerImage string `toml:"container_image"`
}

// ExplainConfig describes the optional genai-backed counterexample
// narrator. Only Validate reads it: `check --explain` takes its API key
// from GOOGLE_GEMINI_API_KEY and uses the narrator's default model and
// timeout, not these fields.
type ExplainConfig struct {
	Enabled        bool   `toml:"enabled"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// MCPConfig controls the `accord mcp` server exposing validate/print_tla/
// check as MCP tools.
type MCPConfig struct {
	Enabled bool `toml:"enabled"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string      `toml:"level"`
	Format     string      `toml:"format"`
	Output     StringSlice `toml:"output"`
	TimeFormat string      `toml:"time_format"`
	MaxSizeMB  int         `toml:"max_size_mb"`
	MaxBackups int         `toml:"max_backups"`
	MaxAgeDays int         `toml:"max_age_days"`
	Compress   bool        `toml:"compress"`
}

// StringSlice is a custom type that can unmarshal from either a string or []string.
type StringSlice []string

// UnmarshalTOML implements toml.Unmarshaler for flexible config parsing.
func (s *StringSlice) UnmarshalTOML(data interface{}) error {
	switch v := data.(type) {
	case string:
		*s = []string{v}
	case []interface{}:
		result := make([]string, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return fmt.Errorf("expected string in array, got %T", item)
			}
			result[i] = str
		}
		*s = result
	default:
		return fmt.Errorf("expected string or array, got %T", data)
	}
	return nil
}

// DefaultConfig returns the default configuration with all values set.
// ACCORD_DATA_DIR overrides the default data directory.
func DefaultConfig() *Config {
	dataDir := DefaultDataDir()

	return &Config{
		Runtime: RuntimeConfig{
			DataDir:         dataDir,
			PIDFile:         filepath.Join(dataDir, "accord.pid"),
			ShutdownTimeout: 30,
		},
		Monitor: MonitorConfig{
			ObserveEnabled: false,
			ObservePort:    8421,
			CORSEnabled:    true,
		},
		TLC: TLCConfig{
			Workers:        0, // 0 = let TLC pick
			TimeoutSeconds: 300,
			Containerized:  false,
			ContainerImage: "eclipse-temurin:21-jre",
		},
		Explain: ExplainConfig{
			Enabled:        false,
			APIKey:         os.Getenv("GOOGLE_GEMINI_API_KEY"),
			Model:          "gemini-3-flash-preview",
			TimeoutSeconds: 30,
		},
		MCP: MCPConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     StringSlice{"stdout"},
			TimeFormat: "15:04:05.000",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}
}

// DefaultDataDir returns the default data directory based on OS, honoring
// ACCORD_DATA_DIR when set.
func DefaultDataDir() string {
	if envDir := os.Getenv("ACCORD_DATA_DIR"); envDir != "" {
		return envDir
	}
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "accord")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "AppData", "Roaming", "accord")
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "accord")
	default: // linux and others
		if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
			return filepath.Join(xdgData, "accord")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".accord")
	}
}

// DefaultConfigPath returns the default config file path, honoring
// ACCORD_CONFIG when set.
func DefaultConfigPath() string {
	if envPath := os.Getenv("ACCORD_CONFIG"); envPath != "" {
		return envPath
	}
	return filepath.Join(DefaultDataDir(), "config.toml")
}

// Load loads configuration from a file, merging with defaults. A missing
// file is not an error: it yields plain defaults, so a fresh `accord`
// install works without `init-config`.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if _, err := toml.Decode(expanded, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.expandPaths()
	return cfg, nil
}

// LoadFromString loads configuration from a TOML string, merging with defaults.
func LoadFromString(tomlStr string) (*Config, error) {
	cfg := DefaultConfig()

	expanded := os.ExpandEnv(tomlStr)
	if _, err := toml.Decode(expanded, cfg); err != nil {
		return nil, fmt.Errorf("parse config string: %w", err)
	}

	cfg.expandPaths()
	return cfg, nil
}

// expandPaths expands tilde in path fields.
func (c *Config) expandPaths() {
	home, _ := os.UserHomeDir()

	expandTilde := func(path string) string {
		if strings.HasPrefix(path, "~/") {
			return filepath.Join(home, path[2:])
		}
		return path
	}

	c.Runtime.DataDir = expandTilde(c.Runtime.DataDir)
	c.Runtime.PIDFile = expandTilde(c.Runtime.PIDFile)
	c.TLC.JarPath = expandTilde(c.TLC.JarPath)
}

// Save saves the configuration to a file in TOML format.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	return nil
}

// WriteExampleConfig writes an example config file with comments, for the
// `init-config` CLI command.
func WriteExampleConfig(path string) error {
	example := `# accord configuration file
# All values shown are defaults - uncomment and modify as needed

[runtime]
# Directory for Accord's own data (PID file, logs)
# data_dir = "~/.accord"
# PID file location, for a long-lived monitor/watch process
# pid_file = "~/.accord/accord.pid"
# Graceful shutdown timeout in seconds
shutdown_timeout_seconds = 30

[monitor]
# Expose a live SSE observability endpoint for a monitor session
observe_enabled = false
observe_port = 8421
cors_enabled = true

[tlc]
# Path to tla2tools.jar; if unset, Accord looks for TLA2TOOLS_JAR, then
# ~/.tla/tla2tools.jar, then ./tla2tools.jar
# jar_path = "~/.tla/tla2tools.jar"
# Worker count passed to TLC's -workers flag (0 = let TLC pick)
workers = 0
timeout_seconds = 300
# Run TLC inside a container instead of a local jar
containerized = false
container_image = "eclipse-temurin:21-jre"

[explain]
# Narrate counterexamples in plain English via the Gemini API
enabled = false
# API key (can use environment variable: ${GOOGLE_GEMINI_API_KEY})
api_key = "${GOOGLE_GEMINI_API_KEY}"
model = "gemini-3-flash-preview"
timeout_seconds = 30

[mcp]
# Enable the MCP server (validate/print_tla/check tools)
enabled = true

[logging]
# Log level: debug, info, warn, error
level = "info"
# Log format: json, text
format = "text"
# Output destinations: "stdout", "file", or both
output = ["stdout"]
# Time format for log timestamps (Go time format)
time_format = "15:04:05.000"
# Maximum log file size in MB before rotation
max_size_mb = 100
# Number of backup log files to keep
max_backups = 5
# Maximum age of log files in days
max_age_days = 30
# Compress rotated log files
compress = true
`

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	return os.WriteFile(path, []byte(example), 0644)
}

// LogPath returns the path to Accord's own log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Runtime.DataDir, "logs", "accord.log")
}

// EnsureDirectories creates all necessary directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Runtime.DataDir,
		filepath.Dir(c.LogPath()),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	if c.Monitor.ObserveEnabled && (c.Monitor.ObservePort < 1 || c.Monitor.ObservePort > 65535) {
		return fmt.Errorf("invalid monitor.observe_port: %d (must be 1-65535)", c.Monitor.ObservePort)
	}
	if c.Runtime.ShutdownTimeout < 1 {
		return fmt.Errorf("shutdown_timeout_seconds must be at least 1")
	}
	if c.TLC.Workers < 0 {
		return fmt.Errorf("tlc.workers cannot be negative")
	}
	if c.TLC.TimeoutSeconds < 1 {
		return fmt.Errorf("tlc.timeout_seconds must be at least 1")
	}
	if c.Explain.Enabled && c.Explain.APIKey == "" {
		return fmt.Errorf("explain.enabled is true but no api_key is configured")
	}
	return nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Logging.Output = make(StringSlice, len(c.Logging.Output))
	copy(clone.Logging.Output, c.Logging.Output)
	return &clone
}
