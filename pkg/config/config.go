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

const (
	EngineGreedy = "greedy"
	EngineExact  = "exact"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Solver    SolverConfig
	Export    ExportConfig
}

// DatabaseConfig describes the optional schedule archive store.
type DatabaseConfig struct {
	Enabled      bool
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig describes the result store. When disabled the service keeps
// results in process memory instead.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig tunes the timetabling engines.
type SchedulerConfig struct {
	Engine              string
	MaxRounds           int
	FacultyDayCap       int
	RelaxationCap       int
	RelaxationRounds    int
	RelaxationThreshold int
	LabBlockLength      int
	Seed                int64
	ResultTTL           time.Duration
}

// SolverConfig points at the external SAT backend used by the exact engine.
type SolverConfig struct {
	Backend string
	Timeout time.Duration
}

// ExportConfig controls where rendered timetables land and how long they
// are kept.
type ExportConfig struct {
	Dir             string
	FileTTL         time.Duration
	CleanupInterval time.Duration
}

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

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Enabled:      v.GetBool("DB_ENABLED"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		Engine:              v.GetString("SCHEDULER_ENGINE"),
		MaxRounds:           v.GetInt("SCHEDULER_MAX_ROUNDS"),
		FacultyDayCap:       v.GetInt("SCHEDULER_FACULTY_DAY_CAP"),
		RelaxationCap:       v.GetInt("SCHEDULER_RELAXATION_CAP"),
		RelaxationRounds:    v.GetInt("SCHEDULER_RELAXATION_ROUNDS"),
		RelaxationThreshold: v.GetInt("SCHEDULER_RELAXATION_THRESHOLD"),
		LabBlockLength:      v.GetInt("SCHEDULER_LAB_BLOCK_LENGTH"),
		Seed:                v.GetInt64("SCHEDULER_SEED"),
		ResultTTL:           parseDuration(v.GetString("SCHEDULER_RESULT_TTL"), 30*time.Minute),
	}

	cfg.Solver = SolverConfig{
		Backend: v.GetString("SOLVER_BACKEND"),
		Timeout: parseDuration(v.GetString("SOLVER_TIMEOUT"), 30*time.Second),
	}

	cfg.Export = ExportConfig{
		Dir:             v.GetString("EXPORT_DIR"),
		FileTTL:         parseDuration(v.GetString("EXPORT_FILE_TTL"), 24*time.Hour),
		CleanupInterval: parseDuration(v.GetString("EXPORT_CLEANUP_INTERVAL"), time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_ENGINE", EngineGreedy)
	v.SetDefault("SCHEDULER_MAX_ROUNDS", 50)
	v.SetDefault("SCHEDULER_FACULTY_DAY_CAP", 5)
	v.SetDefault("SCHEDULER_RELAXATION_CAP", 8)
	v.SetDefault("SCHEDULER_RELAXATION_ROUNDS", 10)
	v.SetDefault("SCHEDULER_RELAXATION_THRESHOLD", 3)
	v.SetDefault("SCHEDULER_LAB_BLOCK_LENGTH", 2)
	v.SetDefault("SCHEDULER_SEED", 0)
	v.SetDefault("SCHEDULER_RESULT_TTL", "30m")

	v.SetDefault("SOLVER_BACKEND", "kissat")
	v.SetDefault("SOLVER_TIMEOUT", "30s")

	v.SetDefault("EXPORT_DIR", "./exports")
	v.SetDefault("EXPORT_FILE_TTL", "24h")
	v.SetDefault("EXPORT_CLEANUP_INTERVAL", "1h")
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

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
