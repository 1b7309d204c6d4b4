package config

import "fmt"

// ValidationError reports a configuration value that fails validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Message)
}

// Validate checks that required configuration values are present.
func Validate(cfg *Config) error {
	if cfg.JWTSecret == "" {
		return &ValidationError{Field: "JWT_SECRET", Message: "is required"}
	}
	if cfg.DBUser == "" {
		return &ValidationError{Field: "DB_USER", Message: "is required"}
	}
	if cfg.DBPassword == "" && cfg.Environment == "production" {
		return &ValidationError{Field: "DB_PASSWORD", Message: "is required in production"}
	}
	if cfg.ServerPort == "" {
		return &ValidationError{Field: "SERVER_PORT", Message: "is required"}
	}
	return nil
}
