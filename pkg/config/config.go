package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config carries the operational knobs the core actually reads. Unlike the
// teacher's Config, it has no HTTP port, no JWT secret, no CORS list, no
// storage directories — none of the REST/CLI/export surface this module
// never owns (spec.md §1, "Out of scope").
type Config struct {
	Env string
	Log LogConfig

	Database DatabaseConfig
	Solver   SolverConfig
	Cache    CacheConfig
}

// DatabaseConfig configures the Postgres connection the repository layer
// uses to build the Domain Snapshot and persist the final schedule
// (pkg/database, internal/repository).
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// LogConfig mirrors the teacher's LogConfig verbatim.
type LogConfig struct {
	Level  string
	Format string
}

// SolverConfig holds defaults for the solver driver (spec.md §4.6, §6):
// the wall-clock budget applied when a caller omits one, the backend
// selection, and the worker pool size used to run independent solves
// concurrently (spec.md §5).
type SolverConfig struct {
	DefaultTimeLimitSeconds int
	Backend                 string // "cpsat" or "bruteforce"
	MaxConcurrentSolves     int
}

// CacheConfig configures the Redis-backed solve result cache (spec.md §9
// domain stack wiring via pkg/cache).
type CacheConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

// Load reads configuration the same way the teacher does: godotenv for a
// local .env, viper for env-var binding and typed defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{
		Env: v.GetString("ENV"),
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Solver: SolverConfig{
			DefaultTimeLimitSeconds: v.GetInt("SOLVER_DEFAULT_TIME_LIMIT_SECONDS"),
			Backend:                 v.GetString("SOLVER_BACKEND"),
			MaxConcurrentSolves:     v.GetInt("SOLVER_MAX_CONCURRENT_SOLVES"),
		},
		Cache: CacheConfig{
			Enabled:  v.GetBool("SOLVE_CACHE_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      parseDuration(v.GetString("SOLVE_CACHE_TTL"), 10*time.Minute),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "timetabler")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "timetabler")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("SOLVER_DEFAULT_TIME_LIMIT_SECONDS", 60)
	v.SetDefault("SOLVER_BACKEND", "cpsat")
	v.SetDefault("SOLVER_MAX_CONCURRENT_SOLVES", 4)

	v.SetDefault("SOLVE_CACHE_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SOLVE_CACHE_TTL", "10m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
