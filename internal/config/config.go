// Package config loads service settings from a YAML file, a .env file and
// MAGNETRADE_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "MAGNETRADE_"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Config is the complete service configuration.
type Config struct {
	LogLevel    string       `mapstructure:"log_level" yaml:"log_level"`
	Catalog     string       `mapstructure:"catalog" yaml:"catalog"`
	CyclePolicy string       `mapstructure:"cycle_policy" yaml:"cycle_policy"`
	Server      ServerConfig `mapstructure:"server" yaml:"server"`
	Store       StoreConfig  `mapstructure:"store" yaml:"store"`
	Exec        ExecConfig   `mapstructure:"exec" yaml:"exec"`
	MCP         MCPConfig    `mapstructure:"mcp" yaml:"mcp"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	Metrics         bool          `mapstructure:"metrics" yaml:"metrics"`
}

// StoreConfig selects and configures the strategy store.
type StoreConfig struct {
	Driver string      `mapstructure:"driver" yaml:"driver"`
	Path   string      `mapstructure:"path" yaml:"path"`
	Redis  RedisConfig `mapstructure:"redis" yaml:"redis"`
}

// RedisConfig configures the Redis store and the distributed locker.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Lock     bool          `mapstructure:"lock" yaml:"lock"`
}

// ExecConfig points at the execution service.
type ExecConfig struct {
	URL     string        `mapstructure:"url" yaml:"url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// MCPConfig configures the MCP transport.
type MCPConfig struct {
	Transport string `mapstructure:"transport" yaml:"transport"`
	Port      int    `mapstructure:"port" yaml:"port"`
}

// keys lists every setting that can come from the environment.
var keys = []string{
	"log_level",
	"catalog",
	"cycle_policy",
	"server.addr",
	"server.shutdown_timeout",
	"server.metrics",
	"store.driver",
	"store.path",
	"store.redis.addr",
	"store.redis.password",
	"store.redis.db",
	"store.redis.prefix",
	"store.redis.ttl",
	"store.redis.lock",
	"exec.url",
	"exec.timeout",
	"mcp.transport",
	"mcp.port",
}

// EnvName returns the environment variable for a dotted key, e.g.
// "store.redis.addr" -> "MAGNETRADE_STORE_REDIS_ADDR".
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func defaults() map[string]any {
	return map[string]any{
		"log_level":    "info",
		"cycle_policy": "reject",
		"server": map[string]any{
			"addr":             ":8080",
			"shutdown_timeout": "5s",
			"metrics":          true,
		},
		"store": map[string]any{
			"driver": DriverMemory,
			"path":   ".magnetrade/strategies",
			"redis": map[string]any{
				"addr":   "localhost:6379",
				"prefix": "magnetrade:",
			},
		},
		"exec": map[string]any{
			"url": "http://localhost:5000",
		},
		"mcp": map[string]any{
			"transport": "stdio",
			"port":      8081,
		},
	}
}

type options struct {
	dotenv []string
	lookup func(string) (string, bool)
}

// Option configures Load.
type Option func(*options)

// WithDotenv sets the .env files to load. Missing files are ignored.
func WithDotenv(files ...string) Option {
	return func(o *options) {
		o.dotenv = files
	}
}

// WithLookup replaces os.LookupEnv.
func WithLookup(lookup func(string) (string, bool)) Option {
	return func(o *options) {
		o.lookup = lookup
	}
}

// Load builds the configuration. An empty path skips the YAML file.
func Load(path string, opts ...Option) (*Config, error) {
	o := options{
		dotenv: []string{".env"},
		lookup: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(&o)
	}

	settings := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		var file map[string]any
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		merge(settings, file)
	}

	// godotenv never overrides variables that are already set.
	for _, f := range o.dotenv {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	for _, key := range keys {
		if v, ok := o.lookup(EnvName(key)); ok {
			set(settings, key, v)
		}
	}

	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverRedis, DriverSQLite:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.CyclePolicy {
	case "reject", "skip":
	default:
		return fmt.Errorf("unknown cycle policy %q", c.CyclePolicy)
	}
	switch c.MCP.Transport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("unknown mcp transport %q", c.MCP.Transport)
	}
	return nil
}

// merge copies src into dst, descending into nested maps.
func merge(dst, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				merge(existing, sub)
				continue
			}
		}
		dst[k] = v
	}
}

func set(m map[string]any, key string, value string) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}
