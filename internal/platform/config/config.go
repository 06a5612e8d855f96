// Package config loads server settings from the environment (and an optional
// .env file) and simulation parameters from an optional scenario YAML file.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	"github.com/MRamiBalles/BioHome/server/internal/domain/grid"
	"github.com/MRamiBalles/BioHome/server/internal/domain/habitat"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Logging    LoggingConfig
	RateLimit  RateLimitConfig
	Simulation SimulationConfig
	Profile    string
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	CORSDebug      bool
}

type DatabaseConfig struct {
	SQLitePath string
}

type PostgresConfig struct {
	Enabled      bool
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	URL      string
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type LoggingConfig struct {
	Level      string
	JSONFormat bool
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
}

// SimulationConfig holds the mission parameters. Every field may be
// overridden by the scenario file.
type SimulationConfig struct {
	ScenarioName     string            `yaml:"name"`
	GridWidth        int               `yaml:"grid_width"`
	GridHeight       int               `yaml:"grid_height"`
	BaseCost         float64           `yaml:"base_cost"`
	MissionDays      float64           `yaml:"mission_days"`
	StartSpeed       float64           `yaml:"start_speed"`
	FrameRate        time.Duration     `yaml:"frame_rate"`
	SnapshotEvery    int               `yaml:"snapshot_every"`
	LogCapacity      int               `yaml:"log_capacity"`
	Seed             int64             `yaml:"seed"`
	InitialResources habitat.Resources `yaml:"initial_resources"`
}

// DefaultSimulation returns the reference mission: a 100x50 floor, an $800M
// base budget and a 180-day transit to Mars.
func DefaultSimulation() SimulationConfig {
	return SimulationConfig{
		ScenarioName:     "mars-transit",
		GridWidth:        grid.DefaultWidth,
		GridHeight:       grid.DefaultHeight,
		BaseCost:         800,
		MissionDays:      180,
		StartSpeed:       1,
		FrameRate:        100 * time.Millisecond,
		SnapshotEvery:    5,
		LogCapacity:      50,
		InitialResources: habitat.InitialResources(),
	}
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Server:     loadServerConfig(),
		Database:   loadDatabaseConfig(),
		Postgres:   loadPostgresConfig(),
		Redis:      loadRedisConfig(),
		Logging:    loadLoggingConfig(),
		RateLimit:  loadRateLimitConfig(),
		Simulation: DefaultSimulation(),
		Profile:    getEnv("BIOHOME_PROFILE", "default"),
	}

	if path := getEnv("BIOHOME_SCENARIO", ""); path != "" {
		sim, err := LoadScenario(path, cfg.Simulation)
		if err != nil {
			return nil, fmt.Errorf("failed to load scenario: %w", err)
		}
		cfg.Simulation = sim
	}
	if seed := getEnvInt64("BIOHOME_SEED", 0); seed != 0 {
		cfg.Simulation.Seed = seed
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:           getEnv("SERVER_PORT", "8080"),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		ReadTimeout:    getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		CORSDebug:      getEnvBool("CORS_DEBUG", false),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		SQLitePath: getEnv("SQLITE_PATH", "data/biohome.db"),
	}
}

func loadPostgresConfig() PostgresConfig {
	url := getEnv("LEADERBOARD_DATABASE_URL", "")
	return PostgresConfig{
		Enabled:      url != "",
		URL:          url,
		MaxOpenConns: getEnvInt("LEADERBOARD_DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns: getEnvInt("LEADERBOARD_DB_MAX_IDLE_CONNS", 2),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:  getEnvBool("REDIS_ENABLED", false),
		URL:      getEnv("REDIS_URL", ""),
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
		CacheTTL: getEnvDuration("LEADERBOARD_CACHE_TTL", time.Minute),
	}
}

func loadLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		JSONFormat: getEnvBool("LOG_JSON", false),
	}
}

func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:           getEnvBool("RATE_LIMIT_ENABLED", true),
		RequestsPerSecond: getEnvFloat("RATE_LIMIT_RPS", 20),
		BurstSize:         getEnvInt("RATE_LIMIT_BURST", 40),
	}
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}
	if c.Database.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.BurstSize <= 0) {
		return fmt.Errorf("rate limit requires positive RATE_LIMIT_RPS and RATE_LIMIT_BURST")
	}
	return c.Simulation.validate()
}

// Validate checks the simulation parameters.
func (s SimulationConfig) Validate() error {
	return s.validate()
}

func (s SimulationConfig) validate() error {
	if s.GridWidth <= 0 || s.GridHeight <= 0 {
		return fmt.Errorf("grid must be positive, got %dx%d", s.GridWidth, s.GridHeight)
	}
	if s.MissionDays <= 0 {
		return fmt.Errorf("mission_days must be positive")
	}
	if s.StartSpeed <= 0 {
		return fmt.Errorf("start_speed must be positive")
	}
	if s.FrameRate <= 0 {
		return fmt.Errorf("frame_rate must be positive")
	}
	if s.SnapshotEvery <= 0 {
		return fmt.Errorf("snapshot_every must be positive")
	}
	if s.LogCapacity <= 0 {
		return fmt.Errorf("log_capacity must be positive")
	}
	return nil
}
