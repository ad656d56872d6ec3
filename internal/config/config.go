package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Gateway: GatewayConfig{
			Port: 18620,
			Bind: "loopback",
			Auth: GatewayAuth{
				Mode: "none",
			},
		},
		Menu: MenuConfig{
			BaseURL:          "http://scrtest1.blob.core.windows.net/obfood",
			Timezone:         "America/New_York",
			RequestTimeoutMs: 5000,
		},
		Prefs: PrefsConfig{
			Store:          "sqlite",
			FetchAbandonMs: 2000,
		},
		Session: SessionConfig{
			IdleMinutes: 30,
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}
