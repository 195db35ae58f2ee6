package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Sweeps  SweepsConfig  `yaml:"sweeps"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type StorageConfig struct {
	// Backend: sqlite | postgres | redis | memory
	Backend  string         `yaml:"backend"`
	Path     string         `yaml:"path"`
	Seed     bool           `yaml:"seed"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Интервалы опроса фоновых зачисток, в секундах. Интервал больше 30
// секунд нарушил бы гарантию задержки удаления, поэтому обрезается.
type SweepsConfig struct {
	CanceledIntervalSeconds  int `yaml:"canceled_interval_seconds"`
	DeliveredIntervalSeconds int `yaml:"delivered_interval_seconds"`
	CakesIntervalSeconds     int `yaml:"cakes_interval_seconds"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

const maxSweepIntervalSeconds = 30

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "sqlite"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "chocoslot.db"
	}
	if c.Sweeps.CanceledIntervalSeconds <= 0 {
		c.Sweeps.CanceledIntervalSeconds = 15
	}
	if c.Sweeps.DeliveredIntervalSeconds <= 0 {
		c.Sweeps.DeliveredIntervalSeconds = 15
	}
	if c.Sweeps.CakesIntervalSeconds <= 0 {
		c.Sweeps.CakesIntervalSeconds = 15
	}
	if c.Sweeps.CanceledIntervalSeconds > maxSweepIntervalSeconds {
		c.Sweeps.CanceledIntervalSeconds = maxSweepIntervalSeconds
	}
	if c.Sweeps.DeliveredIntervalSeconds > maxSweepIntervalSeconds {
		c.Sweeps.DeliveredIntervalSeconds = maxSweepIntervalSeconds
	}
	if c.Sweeps.CakesIntervalSeconds > maxSweepIntervalSeconds {
		c.Sweeps.CakesIntervalSeconds = maxSweepIntervalSeconds
	}
}
