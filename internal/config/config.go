package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// WorldServer holds all configuration for the world server process.
type WorldServer struct {
	LogLevel string `yaml:"log_level"`

	// Game loop
	TickIntervalMS int `yaml:"tick_interval_ms"`

	// World tuning
	IdleZoneTTLSeconds        int `yaml:"idle_zone_ttl_seconds"`
	CompactionIntervalSeconds int `yaml:"compaction_interval_seconds"`

	// Template data source: "yaml" or "postgres"
	Data DataConfig `yaml:"data"`

	// Database, used when Data.Source is "postgres"
	Database DatabaseConfig `yaml:"database"`
}

// DataConfig selects where map/monster templates come from.
type DataConfig struct {
	Source       string `yaml:"source"`
	MapsPath     string `yaml:"maps_path"`
	MonstersPath string `yaml:"monsters_path"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// TickInterval returns the game loop tick as a duration.
func (c WorldServer) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// IdleZoneTTL returns the idle-zone reclamation threshold as a duration.
func (c WorldServer) IdleZoneTTL() time.Duration {
	return time.Duration(c.IdleZoneTTLSeconds) * time.Second
}

// CompactionInterval returns the maintenance cadence as a duration.
func (c WorldServer) CompactionInterval() time.Duration {
	return time.Duration(c.CompactionIntervalSeconds) * time.Second
}

// DefaultWorldServer returns WorldServer config with sensible defaults.
func DefaultWorldServer() WorldServer {
	return WorldServer{
		LogLevel:                  "info",
		TickIntervalMS:            100,
		IdleZoneTTLSeconds:        600,
		CompactionIntervalSeconds: 60,
		Data: DataConfig{
			Source:       "yaml",
			MapsPath:     "data/maps.yaml",
			MonstersPath: "data/monsters.yaml",
		},
		Database: DatabaseConfig{
			Host:    "127.0.0.1",
			Port:    5432,
			User:    "myrgo",
			DBName:  "myrgo",
			SSLMode: "disable",
		},
	}
}

// LoadWorldServer reads a YAML config, applying defaults for absent fields.
func LoadWorldServer(path string) (WorldServer, error) {
	cfg := DefaultWorldServer()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	switch cfg.Data.Source {
	case "yaml", "postgres":
	default:
		return cfg, fmt.Errorf("config %s: unknown data source %q", path, cfg.Data.Source)
	}
	return cfg, nil
}
