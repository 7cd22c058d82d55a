package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Sim         SimConfig         `toml:"sim"`
	Zones       ZonesConfig       `toml:"zones"`
	Interaction InteractionConfig `toml:"interaction"`
	Spawner     SpawnerConfig     `toml:"spawner"`
	Environment EnvConfig         `toml:"environment"`
	Database    DatabaseConfig    `toml:"database"`
	Telemetry   TelemetryConfig   `toml:"telemetry"`
	Logging     LoggingConfig     `toml:"logging"`
}

type SimConfig struct {
	TickRate  time.Duration `toml:"tick_rate"`
	Seed      int64         `toml:"seed"` // 0 = derive from wall clock at boot
	DayLength time.Duration `toml:"day_length"`
	Season    string        `toml:"season"`
	Biome     string        `toml:"biome"`
}

// ZonesConfig holds the concentric proximity band radii, outer to inner.
type ZonesConfig struct {
	Detection    float64       `toml:"detection"`
	Awareness    float64       `toml:"awareness"`
	Approach     float64       `toml:"approach"`
	Interaction  float64       `toml:"interaction"`
	StayDebounce time.Duration `toml:"stay_debounce"`
}

type InteractionConfig struct {
	// CooldownScale stretches every per-type cooldown; 1.0 = table values.
	CooldownScale float64 `toml:"cooldown_scale"`
}

type SpawnerConfig struct {
	MaxTotalAnimals int           `toml:"max_total_animals"`
	GlobalSpawnRate float64       `toml:"global_spawn_rate"`
	DespawnDistance float64       `toml:"despawn_distance"`
	DespawnTime     time.Duration `toml:"despawn_time"`
	SpawnInterval   time.Duration `toml:"spawn_interval"`
	CleanupInterval time.Duration `toml:"cleanup_interval"`
	MinPlayerGap    float64       `toml:"min_player_gap"` // new spawns keep this distance
}

type EnvConfig struct {
	WeatherInterval time.Duration `toml:"weather_interval"`
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty = persistence disabled
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	SaveInterval    time.Duration `toml:"save_interval"`
}

type TelemetryConfig struct {
	Dir      string        `toml:"dir"` // empty = telemetry disabled
	Interval time.Duration `toml:"interval"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Defaults returns the built-in configuration; Load layers a file on top.
func Defaults() *Config {
	return &Config{
		Sim: SimConfig{
			TickRate:  200 * time.Millisecond,
			Seed:      0,
			DayLength: 24 * time.Minute,
			Season:    "spring",
			Biome:     "meadow",
		},
		Zones: ZonesConfig{
			Detection:    10,
			Awareness:    6,
			Approach:     4,
			Interaction:  2,
			StayDebounce: 2 * time.Second,
		},
		Interaction: InteractionConfig{
			CooldownScale: 1.0,
		},
		Spawner: SpawnerConfig{
			MaxTotalAnimals: 50,
			GlobalSpawnRate: 1.0,
			DespawnDistance: 60,
			DespawnTime:     20 * time.Minute,
			SpawnInterval:   5 * time.Second,
			CleanupInterval: 10 * time.Second,
			MinPlayerGap:    3,
		},
		Environment: EnvConfig{
			WeatherInterval: time.Minute,
		},
		Database: DatabaseConfig{
			DSN:             "",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
			SaveInterval:    5 * time.Minute,
		},
		Telemetry: TelemetryConfig{
			Dir:      "",
			Interval: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
