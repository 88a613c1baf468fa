package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the optional TOML configuration file. Command-line flags
// override every value.
//
//	[cache]
//	redis = "redis://localhost:6379/0"
//	ttl = "720h"
//
//	[limits]
//	max_nodes = 500000
//
//	[mongo]
//	uri = "mongodb://localhost:27017"
//
//	[serve]
//	addr = ":8080"
type Config struct {
	Cache  CacheConfig  `toml:"cache"`
	Limits LimitsConfig `toml:"limits"`
	Mongo  MongoConfig  `toml:"mongo"`
	Serve  ServeConfig  `toml:"serve"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Dir      string   `toml:"dir"`
	Redis    string   `toml:"redis"`
	TTL      duration `toml:"ttl"`
	Disabled bool     `toml:"disabled"`
}

// LimitsConfig sets the explorer ceilings.
type LimitsConfig struct {
	MaxNodes int `toml:"max_nodes"`
	MaxEdges int `toml:"max_edges"`
}

// MongoConfig points the publish command at a collection.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServeConfig configures the artifact server.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// duration decodes TOML strings like "30m" or "720h".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// defaultConfig holds the values used when no file sets them.
func defaultConfig() Config {
	return Config{
		Serve: ServeConfig{Addr: ":8080"},
	}
}

// loadConfig reads path, or the default location when path is empty. A
// missing default file is not an error; a missing explicit file is.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

// configDir returns the config directory using XDG standard (~/.config/klotskigraph/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
