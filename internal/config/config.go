// Package config loads the world server configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/worldcore/internal/core/observability/log"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Log    LogConfig    `yaml:"log"`
	Entity EntityConfig `yaml:"entity"`
	World  WorldConfig  `yaml:"world"`
	Server ServerConfig `yaml:"server"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type EntityConfig struct {
	// CallTimeout bounds calls whose context has no deadline.
	CallTimeout time.Duration `yaml:"call_timeout"`
}

type WorldConfig struct {
	DirectoryShards int           `yaml:"directory_shards"`
	StopTimeout     time.Duration `yaml:"stop_timeout"`
	// Blueprint is an optional path to a YAML world layout applied at start.
	Blueprint string `yaml:"blueprint"`
}

type ServerConfig struct {
	ListenAddr     string `yaml:"listen_addr"`
	DefaultRoom    string `yaml:"default_room"`
	OutboundBuffer int    `yaml:"outbound_buffer"`
}

// Default returns the configuration used for every field a file leaves out.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Entity: EntityConfig{
			CallTimeout: 5 * time.Second,
		},
		World: WorldConfig{
			DirectoryShards: 16,
			StopTimeout:     10 * time.Second,
		},
		Server: ServerConfig{
			ListenAddr:     "127.0.0.1:8080",
			DefaultRoom:    "lobby",
			OutboundBuffer: 64,
		},
	}
}

// Load decodes YAML from r over the defaults and validates the result.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Entity.CallTimeout <= 0 {
		return fmt.Errorf("%w: entity.call_timeout must be positive", ErrInvalidConfig)
	}
	if c.World.DirectoryShards <= 0 {
		return fmt.Errorf("%w: world.directory_shards must be positive", ErrInvalidConfig)
	}
	if c.World.StopTimeout <= 0 {
		return fmt.Errorf("%w: world.stop_timeout must be positive", ErrInvalidConfig)
	}
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("%w: server.listen_addr is empty", ErrInvalidConfig)
	}
	if c.Server.OutboundBuffer <= 0 {
		return fmt.Errorf("%w: server.outbound_buffer must be positive", ErrInvalidConfig)
	}
	return nil
}

// LogLevel returns the parsed log level. Validate guarantees it parses.
func (c Config) LogLevel() log.Level {
	level, _ := log.ParseLevel(c.Log.Level)
	return level
}
