// Package config loads and validates application configuration from
// environment variables and an optional config file.
package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Study    StudyConfig    `mapstructure:"study"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains token verification settings. This service only
// resolves identity from tokens; issuing them is another system's job.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// StudyConfig exposes the scheduling tunables. Every field defaults to the
// production constants; override only with evidence.
type StudyConfig struct {
	SessionCap        int     `mapstructure:"session_cap"        validate:"required,gt=0"`
	QuickNewLimit     int     `mapstructure:"quick_new_limit"    validate:"gte=0"`
	StandardNewLimit  int     `mapstructure:"standard_new_limit" validate:"gte=0"`
	ThoroughNewLimit  int     `mapstructure:"thorough_new_limit" validate:"gte=0"`
	MasteredThreshold float64 `mapstructure:"mastered_threshold" validate:"required,gt=0,lte=1"`
}
