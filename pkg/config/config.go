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

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Scheduler  SchedulerConfig
	Suggestion SuggestionConfig
	Exports    ExportsConfig
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
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig carries every tunable business rule of the optimizer.
// Defaults reproduce the studio's standing policy; overrides come from env.
type SchedulerConfig struct {
	// Locations and the flagship (cycle-only) site.
	Locations        []string
	FlagshipLocation string
	AnchorLocation   string
	AnchorTime       string

	// Top-performer thresholds.
	MinAverageAttendance float64
	MinOccurrences       int
	TopPerformerFloor    float64

	// Teacher workload caps.
	MaxWeeklyHours        float64
	MaxWeeklyHoursJunior  float64
	MaxDailyHours         float64
	MinDaysOff            int
	MaxTrainersFlagship   int
	MaxTrainersStandard   int
	MaxParallelFlagship   int
	MaxParallelStandard   int
	ConsecutiveWindowMins int

	// Midday restriction band boundaries (minutes since midnight semantics
	// are derived from these HH:MM strings).
	RestrictionStart   string
	RestrictionEnd     string
	WeekendRestrictEnd string

	// Rosters.
	ExcludedTeachers []string
	JuniorTeachers   []string
	JuniorFormats    []string

	CacheTTL time.Duration
}

// SuggestionConfig points at the optional remote draft provider.
type SuggestionConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// ExportsConfig governs async timetable export generation.
type ExportsConfig struct {
	WorkerConcurrency int
	WorkerRetries     int
	StorageDir        string
}

// Load reads configuration from environment variables, applying defaults
// suitable for local development. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "studio_scheduler")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_LOCATIONS", "Kwality House, Kemps Corner|Supreme HQ, Bandra|Kenkere House")
	v.SetDefault("SCHEDULER_FLAGSHIP_LOCATION", "Supreme HQ, Bandra")
	v.SetDefault("SCHEDULER_ANCHOR_LOCATION", "Kwality House, Kemps Corner")
	v.SetDefault("SCHEDULER_ANCHOR_TIME", "07:30")
	v.SetDefault("SCHEDULER_MIN_AVERAGE_ATTENDANCE", 5.0)
	v.SetDefault("SCHEDULER_MIN_OCCURRENCES", 2)
	v.SetDefault("SCHEDULER_TOP_PERFORMER_FLOOR", 8.0)
	v.SetDefault("SCHEDULER_MAX_WEEKLY_HOURS", 15.0)
	v.SetDefault("SCHEDULER_MAX_WEEKLY_HOURS_JUNIOR", 10.0)
	v.SetDefault("SCHEDULER_MAX_DAILY_HOURS", 4.0)
	v.SetDefault("SCHEDULER_MIN_DAYS_OFF", 2)
	v.SetDefault("SCHEDULER_MAX_TRAINERS_FLAGSHIP", 3)
	v.SetDefault("SCHEDULER_MAX_TRAINERS_STANDARD", 2)
	v.SetDefault("SCHEDULER_MAX_PARALLEL_FLAGSHIP", 3)
	v.SetDefault("SCHEDULER_MAX_PARALLEL_STANDARD", 2)
	v.SetDefault("SCHEDULER_CONSECUTIVE_WINDOW_MINS", 120)
	v.SetDefault("SCHEDULER_RESTRICTION_START", "12:00")
	v.SetDefault("SCHEDULER_RESTRICTION_END", "16:00")
	v.SetDefault("SCHEDULER_WEEKEND_RESTRICT_END", "16:00")
	v.SetDefault("SCHEDULER_EXCLUDED_TEACHERS", "")
	v.SetDefault("SCHEDULER_JUNIOR_TEACHERS", "")
	v.SetDefault("SCHEDULER_JUNIOR_FORMATS", "Barre 57|Foundations|Recovery|Power Cycle")
	v.SetDefault("SCHEDULER_CACHE_TTL", "10m")

	v.SetDefault("SUGGESTION_ENDPOINT", "")
	v.SetDefault("SUGGESTION_API_KEY", "")
	v.SetDefault("SUGGESTION_MODEL", "deepseek-chat")
	v.SetDefault("SUGGESTION_TIMEOUT", "20s")

	v.SetDefault("EXPORTS_WORKER_CONCURRENCY", 2)
	v.SetDefault("EXPORTS_WORKER_RETRIES", 3)
	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")

	cfg := &Config{
		Env:       v.GetString("ENV"),
		Port:      v.GetInt("PORT"),
		APIPrefix: v.GetString("API_PREFIX"),
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
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			Expiration: v.GetDuration("JWT_EXPIRATION"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS"), ","),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Scheduler: SchedulerConfig{
			Locations:             splitList(v.GetString("SCHEDULER_LOCATIONS"), "|"),
			FlagshipLocation:      v.GetString("SCHEDULER_FLAGSHIP_LOCATION"),
			AnchorLocation:        v.GetString("SCHEDULER_ANCHOR_LOCATION"),
			AnchorTime:            v.GetString("SCHEDULER_ANCHOR_TIME"),
			MinAverageAttendance:  v.GetFloat64("SCHEDULER_MIN_AVERAGE_ATTENDANCE"),
			MinOccurrences:        v.GetInt("SCHEDULER_MIN_OCCURRENCES"),
			TopPerformerFloor:     v.GetFloat64("SCHEDULER_TOP_PERFORMER_FLOOR"),
			MaxWeeklyHours:        v.GetFloat64("SCHEDULER_MAX_WEEKLY_HOURS"),
			MaxWeeklyHoursJunior:  v.GetFloat64("SCHEDULER_MAX_WEEKLY_HOURS_JUNIOR"),
			MaxDailyHours:         v.GetFloat64("SCHEDULER_MAX_DAILY_HOURS"),
			MinDaysOff:            v.GetInt("SCHEDULER_MIN_DAYS_OFF"),
			MaxTrainersFlagship:   v.GetInt("SCHEDULER_MAX_TRAINERS_FLAGSHIP"),
			MaxTrainersStandard:   v.GetInt("SCHEDULER_MAX_TRAINERS_STANDARD"),
			MaxParallelFlagship:   v.GetInt("SCHEDULER_MAX_PARALLEL_FLAGSHIP"),
			MaxParallelStandard:   v.GetInt("SCHEDULER_MAX_PARALLEL_STANDARD"),
			ConsecutiveWindowMins: v.GetInt("SCHEDULER_CONSECUTIVE_WINDOW_MINS"),
			RestrictionStart:      v.GetString("SCHEDULER_RESTRICTION_START"),
			RestrictionEnd:        v.GetString("SCHEDULER_RESTRICTION_END"),
			WeekendRestrictEnd:    v.GetString("SCHEDULER_WEEKEND_RESTRICT_END"),
			ExcludedTeachers:      splitList(v.GetString("SCHEDULER_EXCLUDED_TEACHERS"), "|"),
			JuniorTeachers:        splitList(v.GetString("SCHEDULER_JUNIOR_TEACHERS"), "|"),
			JuniorFormats:         splitList(v.GetString("SCHEDULER_JUNIOR_FORMATS"), "|"),
			CacheTTL:              v.GetDuration("SCHEDULER_CACHE_TTL"),
		},
		Suggestion: SuggestionConfig{
			Endpoint: v.GetString("SUGGESTION_ENDPOINT"),
			APIKey:   v.GetString("SUGGESTION_API_KEY"),
			Model:    v.GetString("SUGGESTION_MODEL"),
			Timeout:  v.GetDuration("SUGGESTION_TIMEOUT"),
		},
		Exports: ExportsConfig{
			WorkerConcurrency: v.GetInt("EXPORTS_WORKER_CONCURRENCY"),
			WorkerRetries:     v.GetInt("EXPORTS_WORKER_RETRIES"),
			StorageDir:        v.GetString("EXPORTS_STORAGE_DIR"),
		},
	}

	if cfg.Env == EnvProduction && cfg.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required in production")
	}

	return cfg, nil
}

func splitList(raw, sep string) []string {
	parts := strings.Split(raw, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
