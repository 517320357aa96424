package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables overriding file values
const EnvPrefix = "AUCTION_"

// DefaultPath is the config file read when no path is given
const DefaultPath = "configs/config.yaml"

type Config struct {
	LogLevel string `koanf:"log_level"`

	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Sui      SuiConfig      `koanf:"sui"`
	Indexer  IndexerConfig  `koanf:"indexer"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig selects the store. An empty URL keeps everything in memory.
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxConns        int32         `koanf:"max_conns"`
	MinConns        int32         `koanf:"min_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// RedisConfig enables the listing cache when Addr is set
type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	TTL      time.Duration `koanf:"ttl"`
}

type SuiConfig struct {
	RPCURL            string        `koanf:"rpc_url"`
	PackageID         string        `koanf:"package_id"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
	Timeout           time.Duration `koanf:"timeout"`
}

type IndexerConfig struct {
	Enabled       bool          `koanf:"enabled"`
	PollInterval  time.Duration `koanf:"poll_interval"`
	BatchSize     int           `koanf:"batch_size"`
	ListingModule string        `koanf:"listing_module"`
	BidModule     string        `koanf:"bid_module"`
}

// Defaults returns the configuration used when nothing overrides it
func Defaults() *Config {
	return &Config{
		LogLevel: "info",
		Server: ServerConfig{
			Port:            3000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConns:        10,
			MinConns:        1,
			ConnMaxLifetime: 30 * time.Minute,
			AutoMigrate:     true,
		},
		Redis: RedisConfig{
			TTL: time.Minute,
		},
		Sui: SuiConfig{
			RPCURL:            "https://fullnode.testnet.sui.io",
			PackageID:         "0x60e0e56eff9ee19d1baf072bea43883d911d1f9648149fcbc1729ad04fba636b",
			RequestsPerSecond: 10,
			Burst:             5,
			Timeout:           10 * time.Second,
		},
		Indexer: IndexerConfig{
			Enabled:       true,
			PollInterval:  time.Second,
			BatchSize:     50,
			ListingModule: "listing",
			BidModule:     "bid",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the environment.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = DefaultPath
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading config file %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps AUCTION_SERVER__READ_TIMEOUT style names onto koanf keys.
// A double underscore separates sections, a single one stays part of the key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate rejects configurations the services cannot start with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.Sui.RPCURL == "" {
		return errors.New("config: sui.rpc_url is required")
	}
	if c.Indexer.Enabled && c.Sui.PackageID == "" {
		return errors.New("config: sui.package_id is required when the indexer is enabled")
	}
	if c.Indexer.BatchSize <= 0 {
		return fmt.Errorf("config: indexer.batch_size must be positive, got %d", c.Indexer.BatchSize)
	}
	if c.Indexer.PollInterval <= 0 {
		return fmt.Errorf("config: indexer.poll_interval must be positive, got %s", c.Indexer.PollInterval)
	}
	return nil
}

// Addr returns the listen address for the HTTP server
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}
