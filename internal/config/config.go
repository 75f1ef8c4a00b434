// Package config loads the flowedit configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/flowedit"
	"gopkg.in/yaml.v3"
)

// DefaultPath is looked up in the working directory when --config is not given.
const DefaultPath = "flowedit.yaml"

// Storage backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// Config is the file-level configuration. Flags override it.
type Config struct {
	Log     LogConfig     `yaml:"log" json:"log" toml:"log"`
	Server  ServerConfig  `yaml:"server" json:"server" toml:"server"`
	Storage StorageConfig `yaml:"storage" json:"storage" toml:"storage"`
	Export  ExportConfig  `yaml:"export" json:"export" toml:"export"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level" toml:"level"`
	Format string `yaml:"format" json:"format" toml:"format"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr" toml:"addr"`
	// WriteRate is the sustained number of write requests per second. Zero disables limiting.
	WriteRate  float64 `yaml:"write_rate" json:"write_rate" toml:"write_rate"`
	WriteBurst int     `yaml:"write_burst" json:"write_burst" toml:"write_burst"`
	// MaxBranches caps how many tree branches one tree, analysis or graph
	// request may expand. Zero disables the cap.
	MaxBranches int `yaml:"max_branches" json:"max_branches" toml:"max_branches"`
}

type StorageConfig struct {
	Backend string `yaml:"backend" json:"backend" toml:"backend"`
	// Dir is the directory of the file and badger backends.
	Dir         string `yaml:"dir" json:"dir" toml:"dir"`
	RedisAddr   string `yaml:"redis_addr" json:"redis_addr" toml:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix" json:"redis_prefix" toml:"redis_prefix"`
	// TTL is a Go duration string; empty means documents never expire.
	TTL string `yaml:"ttl" json:"ttl" toml:"ttl"`
	// EncryptionKey is a base64 AES-256 key. When set, environment tables are
	// sealed before they reach the backend.
	EncryptionKey string   `yaml:"encryption_key" json:"encryption_key" toml:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys" json:"fallback_keys" toml:"fallback_keys"`
}

type ExportConfig struct {
	Filename string `yaml:"filename" json:"filename" toml:"filename"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:    LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{Addr: ":8080", WriteRate: 20, WriteBurst: 40, MaxBranches: flowedit.DefaultExpansionLimit},
		Storage: StorageConfig{
			Backend:     BackendMemory,
			Dir:         filepath.Join(".flowedit", "documents"),
			RedisAddr:   "localhost:6379",
			RedisPrefix: "flowedit",
		},
		Export: ExportConfig{Filename: "flow.json"},
	}
}

// Load reads path over the defaults. The syntax follows the extension: .json,
// .toml, anything else is YAML. A missing file is not an error when optional is set.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendBadger, BackendRedis:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if _, err := c.Storage.Expiry(); err != nil {
		return err
	}
	if c.Server.WriteRate < 0 {
		return fmt.Errorf("server.write_rate must not be negative")
	}
	if c.Server.MaxBranches < 0 {
		return fmt.Errorf("server.max_branches must not be negative")
	}
	return nil
}

// Expiry parses TTL.
func (s StorageConfig) Expiry() (time.Duration, error) {
	if s.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid storage.ttl %q: %w", s.TTL, err)
	}
	return d, nil
}
