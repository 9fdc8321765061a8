package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the SkillSync service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Relay   RelayConfig   `yaml:"relay"`
	Editor  EditorConfig  `yaml:"editor"`
	IDs     IDConfig      `yaml:"ids"`
	Log     LogConfig     `yaml:"log"`
	Copilot CopilotConfig `yaml:"copilot"`
}

// ServerConfig holds network listener settings.
type ServerConfig struct {
	HTTPPort      int           `yaml:"http_port"`
	RelayPort     int           `yaml:"relay_port"`
	WriteRate     float64       `yaml:"write_rate"`  // writes per second per client
	WriteBurst    int           `yaml:"write_burst"` // burst size for writes
	TrustProxy    bool          `yaml:"trust_proxy"` // honour X-Forwarded-For from a fronting proxy
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
}

// StorageConfig selects and configures the key-value area backing the
// discussion store.
type StorageConfig struct {
	Backend     string `yaml:"backend"` // memory, sqlite or redis
	Path        string `yaml:"path"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisDB     int    `yaml:"redis_db"`
	RedisPrefix string `yaml:"redis_prefix"`
}

// RelayConfig holds collaboration relay limits.
type RelayConfig struct {
	MaxPeers   int    `yaml:"max_peers"`
	OutboxSize int    `yaml:"outbox_size"`
	Addr       string `yaml:"addr"` // address clients dial
}

// EditorConfig holds settings for the debounced collaborative editors.
type EditorConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// IDConfig selects the record identifier strategy.
type IDConfig struct {
	Strategy string `yaml:"strategy"` // uuid or snowflake
	Node     int64  `yaml:"node"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// CopilotConfig points at an optional Lua script for the copilot stub.
type CopilotConfig struct {
	Script string `yaml:"script"`
}

// Default returns the configuration used when no file overrides a value.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:      8080,
			RelayPort:     1234,
			WriteRate:     2,
			WriteBurst:    5,
			ShutdownGrace: 5 * time.Second,
		},
		Storage: StorageConfig{
			Backend:     "sqlite",
			Path:        "./data/skillsync.db",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "skillsync:",
		},
		Relay: RelayConfig{
			MaxPeers:   64,
			OutboxSize: 32,
			Addr:       "localhost:1234",
		},
		Editor: EditorConfig{
			Debounce: 500 * time.Millisecond,
		},
		IDs: IDConfig{
			Strategy: "uuid",
			Node:     1,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads and parses a YAML config file, then applies SKILLSYNC_*
// environment overrides. A missing file is not an error: defaults and the
// environment are used instead.
func Load(path string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SKILLSYNC_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("SKILLSYNC_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("SKILLSYNC_REDIS_ADDR"); v != "" {
		c.Storage.RedisAddr = v
	}
	if v := os.Getenv("SKILLSYNC_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("SKILLSYNC_RELAY_ADDR"); v != "" {
		c.Relay.Addr = v
	}
	if v := os.Getenv("SKILLSYNC_HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse SKILLSYNC_HTTP_PORT %q: %w", v, err)
		}
		c.Server.HTTPPort = port
	}
	if v := os.Getenv("SKILLSYNC_RELAY_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse SKILLSYNC_RELAY_PORT %q: %w", v, err)
		}
		c.Server.RelayPort = port
	}
	return nil
}

// Validate reports settings that cannot be started with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.IDs.Strategy {
	case "uuid", "snowflake":
	default:
		return fmt.Errorf("unknown id strategy %q", c.IDs.Strategy)
	}
	if c.Relay.MaxPeers <= 0 {
		return fmt.Errorf("relay max_peers must be > 0")
	}
	if c.Editor.Debounce <= 0 {
		return fmt.Errorf("editor debounce must be > 0")
	}
	return nil
}
