package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Oracle    OracleConfig
	Sessions  SessionsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig tunes the greedy allocator and the generation pipeline.
type SchedulerConfig struct {
	WindowOpen        string
	WindowClose       string
	DurationTolerance float64
	// Seed fixes the room/slot shuffle. Zero seeds from the clock.
	Seed         int64
	LockTTL      time.Duration
	AsyncWorkers int
	// Timezone is the IANA zone slot times are expressed in.
	Timezone string
}

// OracleConfig configures the external generation service tried before the allocator.
type OracleConfig struct {
	Enabled     bool
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float32
}

// SessionsConfig governs caching of generated session listings.
type SessionsConfig struct {
	CacheTTL time.Duration
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	tolerance := v.GetFloat64("SCHEDULER_DURATION_TOLERANCE")
	if tolerance <= 0 {
		tolerance = 0.1
	}
	workers := v.GetInt("SCHEDULER_ASYNC_WORKERS")
	if workers <= 0 {
		workers = 1
	}
	cfg.Scheduler = SchedulerConfig{
		WindowOpen:        v.GetString("SCHEDULER_WINDOW_OPEN"),
		WindowClose:       v.GetString("SCHEDULER_WINDOW_CLOSE"),
		DurationTolerance: tolerance,
		Seed:              v.GetInt64("SCHEDULER_SEED"),
		LockTTL:           parseDuration(v.GetString("SCHEDULER_LOCK_TTL"), 5*time.Minute),
		AsyncWorkers:      workers,
		Timezone:          v.GetString("SCHEDULER_TIMEZONE"),
	}

	cfg.Oracle = OracleConfig{
		Enabled:     v.GetBool("ENABLE_ORACLE"),
		APIKey:      v.GetString("ORACLE_API_KEY"),
		Model:       v.GetString("ORACLE_MODEL"),
		Timeout:     parseDuration(v.GetString("ORACLE_TIMEOUT"), 30*time.Second),
		Temperature: float32(v.GetFloat64("ORACLE_TEMPERATURE")),
	}

	cfg.Sessions = SessionsConfig{
		CacheTTL: parseDuration(v.GetString("SESSIONS_CACHE_TTL"), 5*time.Minute),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_WINDOW_OPEN", "07:30")
	v.SetDefault("SCHEDULER_WINDOW_CLOSE", "18:00")
	v.SetDefault("SCHEDULER_DURATION_TOLERANCE", 0.1)
	v.SetDefault("SCHEDULER_SEED", 0)
	v.SetDefault("SCHEDULER_LOCK_TTL", "5m")
	v.SetDefault("SCHEDULER_ASYNC_WORKERS", 1)
	v.SetDefault("SCHEDULER_TIMEZONE", "Asia/Jakarta")

	v.SetDefault("ENABLE_ORACLE", false)
	v.SetDefault("ORACLE_API_KEY", "")
	v.SetDefault("ORACLE_MODEL", "gemini-1.5-flash")
	v.SetDefault("ORACLE_TIMEOUT", "30s")
	v.SetDefault("ORACLE_TEMPERATURE", 0.2)

	v.SetDefault("SESSIONS_CACHE_TTL", "5m")
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
