package config

import (
	"time"

	"github.com/spf13/viper"
)

type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

type (
	// Config is built once at startup and passed by reference into every
	// component. Nothing reads the environment after this point.
	Config struct {
		HTTP
		Global
		Database
		Auth
		CORS
		Audit
		Log
	}

	HTTP struct {
		Port int32
		Host string
		Mode Mode
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Auth struct {
		TokenSecret string
		TokenExpiry time.Duration
		BcryptCost  int

		// Rate limiting configuration for login attempts
		MaxLoginAttempts int
		RateLimitWindow  time.Duration
		LockoutDuration  time.Duration
	}
	CORS struct {
		Origin      string
		Credentials bool
	}
	Audit struct {
		Enabled         bool
		RetentionDays   int
		CleanupSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Log struct {
		Level string
	}
)

// IsProduction reports whether the server runs in production mode.
// Production mode suppresses error details in API responses.
func (c *Config) IsProduction() bool {
	return c.HTTP.Mode == ModeProduction
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", DefaultPort)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("mode", "development")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("token_secret", "")      // Auto-generated if empty
	v.SetDefault("token_expiry", "1h")    // Bearer token lifetime
	v.SetDefault("bcrypt_cost", 12)       // bcrypt cost factor
	v.SetDefault("max_login_attempts", 5) // Max failed attempts
	v.SetDefault("rate_limit_window", "15m")
	v.SetDefault("lockout_duration", "30m")

	// CORS defaults
	v.SetDefault("cors_origin", "http://localhost:3000")
	v.SetDefault("cors_credentials", true)

	// Audit defaults
	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "0 3 * * *")

	v.SetDefault("log_level", "info")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
			Mode: Mode(v.GetString("MODE")),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			TokenSecret:      v.GetString("TOKEN_SECRET"),
			TokenExpiry:      v.GetDuration("TOKEN_EXPIRY"),
			BcryptCost:       v.GetInt("BCRYPT_COST"),
			MaxLoginAttempts: v.GetInt("MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("LOCKOUT_DURATION"),
		},
		CORS: CORS{
			Origin:      v.GetString("CORS_ORIGIN"),
			Credentials: v.GetBool("CORS_CREDENTIALS"),
		},
		Audit: Audit{
			Enabled:         v.GetBool("AUDIT_ENABLED"),
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Log: Log{
			Level: v.GetString("LOG_LEVEL"),
		},
	}
}
