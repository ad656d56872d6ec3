package config

import (
	"fmt"
	"slices"
	"time"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Gateway.Port < 0 || cfg.Gateway.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Gateway.Port),
		})
	}

	validBinds := []string{"loopback", "lan", "custom"}
	if cfg.Gateway.Bind != "" && !slices.Contains(validBinds, cfg.Gateway.Bind) {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.bind",
			Message: fmt.Sprintf("must be one of %v, got %q", validBinds, cfg.Gateway.Bind),
		})
	}
	if cfg.Gateway.Bind == "custom" && cfg.Gateway.CustomBindHost == "" {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.customBindHost",
			Message: "required when gateway.bind is custom",
		})
	}

	validAuthModes := []string{"none", "token"}
	if cfg.Gateway.Auth.Mode != "" && !slices.Contains(validAuthModes, cfg.Gateway.Auth.Mode) {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.auth.mode",
			Message: fmt.Sprintf("must be one of %v, got %q", validAuthModes, cfg.Gateway.Auth.Mode),
		})
	}
	if cfg.Gateway.Auth.Mode == "token" && cfg.Gateway.Auth.Token == "" {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.auth.token",
			Message: "required when gateway.auth.mode is token",
		})
	}

	if cfg.Menu.BaseURL == "" {
		issues = append(issues, ValidationIssue{
			Path:    "menu.baseUrl",
			Message: "base URL is required",
		})
	}
	if cfg.Menu.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Menu.Timezone); err != nil {
			issues = append(issues, ValidationIssue{
				Path:    "menu.timezone",
				Message: fmt.Sprintf("unknown timezone %q", cfg.Menu.Timezone),
			})
		}
	}
	if cfg.Menu.RequestTimeoutMs < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "menu.requestTimeoutMs",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.Menu.RequestTimeoutMs),
		})
	}

	validStores := []string{"sqlite", "redis", "memory"}
	if cfg.Prefs.Store != "" && !slices.Contains(validStores, cfg.Prefs.Store) {
		issues = append(issues, ValidationIssue{
			Path:    "prefs.store",
			Message: fmt.Sprintf("must be one of %v, got %q", validStores, cfg.Prefs.Store),
		})
	}
	if cfg.Prefs.Store == "redis" && cfg.Prefs.RedisAddr == "" {
		issues = append(issues, ValidationIssue{
			Path:    "prefs.redisAddr",
			Message: "required when prefs.store is redis",
		})
	}
	if cfg.Prefs.FetchAbandonMs < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "prefs.fetchAbandonMs",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.Prefs.FetchAbandonMs),
		})
	}

	if cfg.Session.IdleMinutes < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "session.idleMinutes",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.Session.IdleMinutes),
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validConsoleStyles := []string{"pretty", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleStyle",
			Message: fmt.Sprintf("must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle),
		})
	}

	return issues
}
