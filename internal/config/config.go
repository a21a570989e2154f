package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full server configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Upload    UploadConfig    `mapstructure:"upload"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Name            string        `mapstructure:"name"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address returns host:port for the listener
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type WebSocketConfig struct {
	Path           string        `mapstructure:"path"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	SendBuffer     int           `mapstructure:"send_buffer"`
}

// PingPeriod is how often pings are sent. Must be less than PongWait.
func (w WebSocketConfig) PingPeriod() time.Duration {
	return (w.PongWait * 9) / 10
}

type UploadConfig struct {
	Path      string `mapstructure:"path"`
	FormField string `mapstructure:"form_field"`
	BodyLimit string `mapstructure:"body_limit"`
}

type CORSConfig struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// SetDefaults registers every default on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "nature-translator")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("websocket.path", "/ws/audio")
	v.SetDefault("websocket.write_wait", 10*time.Second)
	v.SetDefault("websocket.pong_wait", 60*time.Second)
	v.SetDefault("websocket.max_message_size", 512*1024) // 512KB, room for base64 audio blobs
	v.SetDefault("websocket.send_buffer", 256)

	v.SetDefault("upload.path", "/api/audio/analyze")
	v.SetDefault("upload.form_field", "file")
	v.SetDefault("upload.body_limit", "25M")

	v.SetDefault("cors.allow_origins", []string{"*"})
	v.SetDefault("cors.allow_methods", []string{"*"})
	v.SetDefault("cors.allow_headers", []string{"*"})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Load reads .env, an optional config file and the environment, in that
// order of increasing precedence.
func Load() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper applies defaults and environment bindings to v and decodes it
func FromViper(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Common names without the APP_ prefix
	_ = v.BindEnv("server.port", "PORT", "APP_SERVER_PORT")
	_ = v.BindEnv("server.host", "HOST", "APP_SERVER_HOST")
	_ = v.BindEnv("log.level", "LOG_LEVEL", "APP_LOG_LEVEL")
	_ = v.BindEnv("log.development", "LOG_DEVELOPMENT", "APP_LOG_DEVELOPMENT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if !strings.HasPrefix(c.WebSocket.Path, "/") {
		return fmt.Errorf("websocket path must start with '/': %q", c.WebSocket.Path)
	}
	if !strings.HasPrefix(c.Upload.Path, "/") {
		return fmt.Errorf("upload path must start with '/': %q", c.Upload.Path)
	}
	if c.Upload.FormField == "" {
		return errors.New("upload form field is required")
	}
	if c.WebSocket.PongWait <= 0 || c.WebSocket.WriteWait <= 0 {
		return errors.New("websocket timeouts must be positive")
	}
	if c.WebSocket.MaxMessageSize <= 0 {
		return errors.New("websocket max message size must be positive")
	}
	if c.WebSocket.SendBuffer < 0 {
		return errors.New("websocket send buffer cannot be negative")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with '/': %q", c.Metrics.Path)
	}
	return nil
}
