// Package config loads service settings from defaults, an optional YAML
// file and environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete service configuration
type Config struct {
	Server   ServerConfig  `yaml:"server"`
	Mongo    MongoConfig   `yaml:"mongo"`
	Redis    RedisConfig   `yaml:"redis"`
	Auth     AuthConfig    `yaml:"auth"`
	AI       AIConfig      `yaml:"ai"`
	Log      LogConfig     `yaml:"log"`
	Survey   SurveyConfig  `yaml:"survey"`
	Sessions SessionConfig `yaml:"sessions"`
	Chat     ChatConfig    `yaml:"chat"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	AllowedOrigins  string        `yaml:"allowedOrigins"`
	AllowedMethods  string        `yaml:"allowedMethods"`
	AllowedHeaders  string        `yaml:"allowedHeaders"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// MongoConfig configures assessment history. An empty URI disables history.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// RedisConfig configures the result slot store. An empty address keeps
// slots in process memory.
type RedisConfig struct {
	Addr string `yaml:"addr"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwtSecret"`
	TokenTTL  time.Duration `yaml:"tokenTTL"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

type SurveyConfig struct {
	TransitionDelay time.Duration `yaml:"transitionDelay"`
	LoadingInterval time.Duration `yaml:"loadingInterval"`
}

// SessionConfig bounds the in-memory session registry. Sessions idle for
// longer than IdleTimeout are dropped on the next sweep; their results stay
// in the slot store.
type SessionConfig struct {
	IdleTimeout   time.Duration `yaml:"idleTimeout"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
	MaxSessions   int           `yaml:"maxSessions"`
}

type ChatConfig struct {
	RequestsPerMinute int `yaml:"requestsPerMinute"`
	Burst             int `yaml:"burst"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			AllowedOrigins:  "*",
			AllowedMethods:  "GET, POST, PUT, DELETE, OPTIONS",
			AllowedHeaders:  "Content-Type, Authorization",
			ShutdownTimeout: 30 * time.Second,
		},
		Mongo: MongoConfig{
			Database: "maturitymap",
		},
		Auth: AuthConfig{
			JWTSecret: "super-secret-key-change-in-production",
			TokenTTL:  24 * time.Hour,
		},
		AI: DefaultAIConfig(),
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Survey: SurveyConfig{
			LoadingInterval: 2 * time.Second,
		},
		Sessions: SessionConfig{
			IdleTimeout:   30 * time.Minute,
			SweepInterval: time.Minute,
			MaxSessions:   10000,
		},
		Chat: ChatConfig{
			RequestsPerMinute: 20,
			Burst:             5,
		},
	}
}

// Load builds the configuration. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	c.Server.AllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", c.Server.AllowedOrigins)
	c.Server.AllowedMethods = getEnv("CORS_ALLOWED_METHODS", c.Server.AllowedMethods)
	c.Server.AllowedHeaders = getEnv("CORS_ALLOWED_HEADERS", c.Server.AllowedHeaders)

	c.Mongo.URI = getEnv("MONGO_URI", c.Mongo.URI)
	c.Mongo.Database = getEnv("MONGO_DATABASE", c.Mongo.Database)

	// Remove redis:// prefix if present
	c.Redis.Addr = strings.TrimPrefix(getEnv("REDIS_URI", c.Redis.Addr), "redis://")

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Log.Level = strings.ToLower(getEnv("LOG_LEVEL", c.Log.Level))
	c.Log.Format = strings.ToLower(getEnv("LOG_FORMAT", c.Log.Format))

	c.AI.applyEnv()
	return nil
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwtSecret is required")
	}
	if c.Survey.TransitionDelay < 0 {
		return fmt.Errorf("survey.transitionDelay must not be negative")
	}
	if c.Survey.LoadingInterval <= 0 {
		return fmt.Errorf("survey.loadingInterval must be positive")
	}
	if c.Sessions.IdleTimeout <= 0 || c.Sessions.SweepInterval <= 0 {
		return fmt.Errorf("sessions.idleTimeout and sessions.sweepInterval must be positive")
	}
	if c.Sessions.MaxSessions <= 0 {
		return fmt.Errorf("sessions.maxSessions must be positive")
	}
	if c.Chat.RequestsPerMinute <= 0 || c.Chat.Burst <= 0 {
		return fmt.Errorf("chat.requestsPerMinute and chat.burst must be positive")
	}
	if c.AI.TimeoutMS <= 0 || c.AI.ChatTimeoutMS <= 0 {
		return fmt.Errorf("ai timeouts must be positive")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
