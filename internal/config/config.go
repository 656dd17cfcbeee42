// Package config resolves process settings from defaults, an optional YAML
// file, an optional .env file and KVTTL_* environment variables, in that order.
package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v3"
)

const (
	EngineBolt   = "bolt"
	EngineSocket = "socket"
	EngineRedis  = "redis"
	EngineMemory = "memory"
)

type Config struct {
	Namespace string      `yaml:"namespace"`
	Engine    string      `yaml:"engine"`
	DBPath    string      `yaml:"db_path"`
	Socket    string      `yaml:"socket"`
	LogPath   string      `yaml:"log_path"`
	Redis     RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Namespace: "app-storage",
		Engine:    EngineBolt,
		DBPath:    filepath.Join(cacheDir(), "kvttl.bbolt"),
		Socket:    filepath.Join(cacheDir(), "kvttl.sock"),
		Redis: RedisConfig{
			Addr:    "127.0.0.1:6379",
			Timeout: 2 * time.Second,
		},
	}
}

// Load builds the configuration. path may be empty or name a missing file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, errors.Wrapf(err, "config: read %s", path)
		default:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, errors.Wrapf(err, "config: parse %s", path)
			}
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "config: load .env")
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
	c.Namespace = defaultString(os.Getenv("KVTTL_NAMESPACE"), c.Namespace)
	c.Engine = defaultString(os.Getenv("KVTTL_ENGINE"), c.Engine)
	c.DBPath = defaultString(os.Getenv("KVTTL_DB"), c.DBPath)
	c.Socket = defaultString(os.Getenv("KVTTL_SOCK"), c.Socket)
	c.LogPath = defaultString(os.Getenv("KVTTL_LOG"), c.LogPath)
	c.Redis.Addr = defaultString(os.Getenv("KVTTL_REDIS_ADDR"), c.Redis.Addr)
	c.Redis.Password = defaultString(os.Getenv("KVTTL_REDIS_PASSWORD"), c.Redis.Password)
	if v := os.Getenv("KVTTL_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "config: invalid KVTTL_REDIS_DB %q", v)
		}
		c.Redis.DB = n
	}
	return nil
}

// Validate checks the engine name and namespace.
func (c *Config) Validate() error {
	switch c.Engine {
	case EngineBolt, EngineSocket, EngineRedis, EngineMemory:
	default:
		return errors.Errorf("config: unknown engine %q (expected bolt, socket, redis or memory)", c.Engine)
	}
	if c.Namespace == "" {
		return errors.New("config: namespace cannot be empty")
	}
	return nil
}

func cacheDir() string {
	home, _ := os.UserHomeDir()
	if home == "" {
		home = "."
	}
	return filepath.Join(home, ".cache", "kvttl")
}

func defaultString(v, d string) string {
	if v == "" {
		return d
	}
	return v
}
