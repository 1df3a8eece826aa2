package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Session  SessionConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string
	Port              int
	CORSAllowOrigins  string
	RateLimitMax      int
	RateLimitDuration time.Duration
}

// JWTConfig holds resume-token generation and validation settings.
type JWTConfig struct {
	Secret           string
	ResumeExpiration time.Duration
}

// SMTPConfig holds outbound email settings. An empty Host disables sending.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	SenderEmail string
	SenderName  string
	UseTLS      bool
}

// SessionConfig holds per-connection channel settings.
type SessionConfig struct {
	PushTimeout   time.Duration
	CloseTimeout  time.Duration
	SendQueueSize int
}

// LoadConfig loads configuration from environment variables and defaults.
// Environment variables should be uppercase with underscores, e.g., DB_PATH.
// Uses viper for automatic env binding.
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)
	bindEnv(v)
	v.AutomaticEnv()

	if err := validateRequired(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Path:            v.GetString("db_path"),
			MaxOpenConns:    v.GetInt("db_max_open_conns"),
			MaxIdleConns:    v.GetInt("db_max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db_conn_max_lifetime"),
			ConnMaxIdleTime: v.GetDuration("db_conn_max_idle_time"),
			MigrationsPath:  v.GetString("db_migrations_path"),
		},
		Server: ServerConfig{
			Host:              v.GetString("server_host"),
			Port:              v.GetInt("server_port"),
			CORSAllowOrigins:  v.GetString("server_cors_allow_origins"),
			RateLimitMax:      v.GetInt("server_rate_limit_max"),
			RateLimitDuration: v.GetDuration("server_rate_limit_duration"),
		},
		JWT: JWTConfig{
			Secret:           v.GetString("jwt_secret"),
			ResumeExpiration: v.GetDuration("jwt_resume_expiration"),
		},
		SMTP: SMTPConfig{
			Host:        v.GetString("smtp_host"),
			Port:        v.GetInt("smtp_port"),
			Username:    v.GetString("smtp_username"),
			Password:    v.GetString("smtp_password"),
			SenderEmail: v.GetString("smtp_sender_email"),
			SenderName:  v.GetString("smtp_sender_name"),
			UseTLS:      v.GetBool("smtp_use_tls"),
		},
		Session: SessionConfig{
			PushTimeout:   v.GetDuration("session_push_timeout"),
			CloseTimeout:  v.GetDuration("session_close_timeout"),
			SendQueueSize: v.GetInt("session_send_queue_size"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("db_path", "./data.db")
	v.SetDefault("db_max_open_conns", 5)
	v.SetDefault("db_max_idle_conns", 2)
	v.SetDefault("db_conn_max_lifetime", 5*time.Minute)
	v.SetDefault("db_conn_max_idle_time", 2*time.Minute)
	v.SetDefault("db_migrations_path", "./migrations")

	// Server defaults
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", 8080)
	v.SetDefault("server_cors_allow_origins", "*")
	v.SetDefault("server_rate_limit_max", 100)
	v.SetDefault("server_rate_limit_duration", time.Minute)

	// JWT defaults
	v.SetDefault("jwt_resume_expiration", 24*time.Hour)

	// SMTP defaults
	v.SetDefault("smtp_port", 587)
	v.SetDefault("smtp_sender_email", "no-reply@forest-tails.example")
	v.SetDefault("smtp_sender_name", "Forest Tails")
	v.SetDefault("smtp_use_tls", true)

	// Session defaults
	v.SetDefault("session_push_timeout", 5*time.Second)
	v.SetDefault("session_close_timeout", 10*time.Second)
	v.SetDefault("session_send_queue_size", 64)
}

func bindEnv(v *viper.Viper) {
	// Database
	_ = v.BindEnv("db_path", "DB_PATH")
	_ = v.BindEnv("db_max_open_conns", "DB_MAX_OPEN_CONNS")
	_ = v.BindEnv("db_max_idle_conns", "DB_MAX_IDLE_CONNS")
	_ = v.BindEnv("db_conn_max_lifetime", "DB_CONN_MAX_LIFETIME")
	_ = v.BindEnv("db_conn_max_idle_time", "DB_CONN_MAX_IDLE_TIME")
	_ = v.BindEnv("db_migrations_path", "DB_MIGRATIONS_PATH")

	// Server
	_ = v.BindEnv("server_host", "SERVER_HOST")
	_ = v.BindEnv("server_port", "SERVER_PORT")
	_ = v.BindEnv("server_cors_allow_origins", "SERVER_CORS_ALLOW_ORIGINS")
	_ = v.BindEnv("server_rate_limit_max", "SERVER_RATE_LIMIT_MAX")
	_ = v.BindEnv("server_rate_limit_duration", "SERVER_RATE_LIMIT_DURATION")

	// JWT
	_ = v.BindEnv("jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("jwt_resume_expiration", "JWT_RESUME_EXPIRATION")

	// SMTP
	_ = v.BindEnv("smtp_host", "SMTP_HOST")
	_ = v.BindEnv("smtp_port", "SMTP_PORT")
	_ = v.BindEnv("smtp_username", "SMTP_USERNAME")
	_ = v.BindEnv("smtp_password", "SMTP_PASSWORD")
	_ = v.BindEnv("smtp_sender_email", "SMTP_SENDER_EMAIL")
	_ = v.BindEnv("smtp_sender_name", "SMTP_SENDER_NAME")
	_ = v.BindEnv("smtp_use_tls", "SMTP_USE_TLS")

	// Session
	_ = v.BindEnv("session_push_timeout", "SESSION_PUSH_TIMEOUT")
	_ = v.BindEnv("session_close_timeout", "SESSION_CLOSE_TIMEOUT")
	_ = v.BindEnv("session_send_queue_size", "SESSION_SEND_QUEUE_SIZE")
}

func validateRequired(v *viper.Viper) error {
	// JWT secret is required
	if v.GetString("jwt_secret") == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	return nil
}
