package config

// Config is the root configuration for the Obie food skill backend.
type Config struct {
	Skill   SkillConfig   `yaml:"skill,omitempty"`
	Gateway GatewayConfig `yaml:"gateway,omitempty"`
	Menu    MenuConfig    `yaml:"menu,omitempty"`
	Prefs   PrefsConfig   `yaml:"prefs,omitempty"`
	Session SessionConfig `yaml:"session,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// SkillConfig identifies the skill towards the host platform.
type SkillConfig struct {
	// AppID, when set, must match the application id on inbound turns.
	AppID string `yaml:"appId,omitempty"`
}

// GatewayConfig controls the HTTP server the host platform calls.
type GatewayConfig struct {
	Port           int         `yaml:"port,omitempty"`
	Bind           string      `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string      `yaml:"customBindHost,omitempty"`
	Auth           GatewayAuth `yaml:"auth,omitempty"`
}

// GatewayAuth configures gateway authentication.
type GatewayAuth struct {
	Mode  string `yaml:"mode,omitempty"` // "none" | "token"
	Token string `yaml:"token,omitempty"`
}

// MenuConfig points at the upstream menu data store.
type MenuConfig struct {
	BaseURL string `yaml:"baseUrl,omitempty"`
	// Timezone is the campus reference zone for meal defaulting.
	Timezone         string `yaml:"timezone,omitempty"`
	RequestTimeoutMs int    `yaml:"requestTimeoutMs,omitempty"`
}

// PrefsConfig selects and tunes the user preference store.
type PrefsConfig struct {
	Store          string `yaml:"store,omitempty"` // "sqlite" | "redis" | "memory"
	RedisAddr      string `yaml:"redisAddr,omitempty"`
	RedisPassword  string `yaml:"redisPassword,omitempty"`
	RedisDB        int    `yaml:"redisDb,omitempty"`
	FetchAbandonMs int    `yaml:"fetchAbandonMs,omitempty"`
}

// SessionConfig defines session behavior.
type SessionConfig struct {
	IdleMinutes int `yaml:"idleMinutes,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}
