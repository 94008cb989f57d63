package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/goliatone/go-config/cfgx"
)

// Config captures module-level configuration knobs. Feature packages (auth,
// ratelimit, push, server) pull from these nested structs.
type Config struct {
	App         AppConfig         `mapstructure:"app" json:"app"`
	Server      ServerConfig      `mapstructure:"server" json:"server"`
	Auth        AuthConfig        `mapstructure:"auth" json:"auth"`
	Persistence PersistenceConfig `mapstructure:"persistence" json:"persistence"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit" json:"rate_limit"`
	Push        PushConfig        `mapstructure:"push" json:"push"`
}

// AppConfig identifies the application to clients and push payloads.
type AppConfig struct {
	Name                string `mapstructure:"name" json:"name"`
	Version             string `mapstructure:"version" json:"version"`
	RegistrationEnabled bool   `mapstructure:"registration_enabled" json:"registration_enabled"`
	DataDir             string `mapstructure:"data_dir" json:"data_dir"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `mapstructure:"host" json:"host"`
	Port string `mapstructure:"port" json:"port"`
}

// AuthConfig configures token issuance.
type AuthConfig struct {
	SecretKey   string        `mapstructure:"secret_key" json:"secret_key"`
	TokenExpiry time.Duration `mapstructure:"token_expiry" json:"token_expiry"`
}

// PersistenceConfig configures the database connection.
type PersistenceConfig struct {
	Driver string `mapstructure:"driver" json:"driver"`
	DSN    string `mapstructure:"dsn" json:"dsn"`
}

// WindowConfig is one sliding-window rate limit.
type WindowConfig struct {
	Window      time.Duration `mapstructure:"window" json:"window"`
	MaxAttempts int           `mapstructure:"max_attempts" json:"max_attempts"`
}

// RateLimitConfig holds independently tuned limits for the two
// authentication surfaces. They never share state.
type RateLimitConfig struct {
	Login    WindowConfig `mapstructure:"login" json:"login"`
	Register WindowConfig `mapstructure:"register" json:"register"`
}

// PushConfig configures Web Push delivery. Empty key material triggers the
// file/generate fallback chain at startup.
type PushConfig struct {
	VAPIDPublicKey  string `mapstructure:"vapid_public_key" json:"vapid_public_key"`
	VAPIDPrivateKey string `mapstructure:"vapid_private_key" json:"vapid_private_key"`
	SubscriberEmail string `mapstructure:"subscriber_email" json:"subscriber_email"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		App: AppConfig{
			Name:                "Kitchen Cupboard",
			Version:             "1.0.0",
			RegistrationEnabled: true,
			DataDir:             "data",
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
		},
		Auth: AuthConfig{
			SecretKey:   "change-me-in-production-use-a-long-random-string",
			TokenExpiry: 24 * time.Hour,
		},
		Persistence: PersistenceConfig{
			Driver: "sqlite",
			DSN:    "file:data/shoplist.db?cache=shared",
		},
		RateLimit: RateLimitConfig{
			Login:    WindowConfig{Window: 300 * time.Second, MaxAttempts: 10},
			Register: WindowConfig{Window: time.Hour, MaxAttempts: 5},
		},
		Push: PushConfig{
			SubscriberEmail: "mailto:admin@localhost",
		},
	}
}

// Validate ensures required fields are present and sane.
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return errors.New("app.name is required")
	}
	if c.Auth.SecretKey == "" {
		return errors.New("auth.secret_key is required")
	}
	if c.Auth.TokenExpiry <= 0 {
		return fmt.Errorf("auth.token_expiry must be > 0")
	}
	if c.RateLimit.Login.Window <= 0 || c.RateLimit.Login.MaxAttempts <= 0 {
		return fmt.Errorf("rate_limit.login window and max_attempts must be > 0")
	}
	if c.RateLimit.Register.Window <= 0 || c.RateLimit.Register.MaxAttempts <= 0 {
		return fmt.Errorf("rate_limit.register window and max_attempts must be > 0")
	}
	return nil
}

// Load decodes arbitrary input (struct, map, cfg struct) using cfgx helpers,
// with a lightweight JSON fallback while cfgx.Build returns zero values.
func Load(input any, opts ...LoadOption) (Config, error) {
	settings := loadOptions{}
	for _, opt := range opts {
		opt(&settings)
	}

	cfg, err := cfgx.Build(input, settings.buildOpts...)
	if err != nil {
		return Config{}, err
	}

	if isZero(cfg) {
		if err := decodeFallback(input, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg = cfg.withDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadOption lets callers amend cfgx build options.
type LoadOption func(*loadOptions)

type loadOptions struct {
	buildOpts []cfgx.Option[Config]
}

// WithBuildOptions forwards cfgx options (duration hooks, preprocessors, etc.).
func WithBuildOptions(opts ...cfgx.Option[Config]) LoadOption {
	return func(lo *loadOptions) {
		lo.buildOpts = append(lo.buildOpts, opts...)
	}
}

// FromEnv layers environment overrides on top of the defaults.
func FromEnv() Config {
	cfg := Defaults()

	setString(&cfg.App.Name, "APP_NAME")
	setString(&cfg.App.DataDir, "DATA_DIR")
	setBool(&cfg.App.RegistrationEnabled, "REGISTRATION_ENABLED")
	setString(&cfg.Server.Host, "HOST")
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Auth.SecretKey, "SECRET_KEY")
	setString(&cfg.Persistence.DSN, "DATABASE_DSN")
	setString(&cfg.Push.VAPIDPublicKey, "VAPID_PUBLIC_KEY")
	setString(&cfg.Push.VAPIDPrivateKey, "VAPID_PRIVATE_KEY")
	setString(&cfg.Push.SubscriberEmail, "VAPID_CLAIMS_EMAIL")
	setSeconds(&cfg.RateLimit.Login.Window, "LOGIN_RATE_LIMIT_WINDOW")
	setInt(&cfg.RateLimit.Login.MaxAttempts, "LOGIN_RATE_LIMIT_MAX")
	setSeconds(&cfg.RateLimit.Register.Window, "REGISTER_RATE_LIMIT_WINDOW")
	setInt(&cfg.RateLimit.Register.MaxAttempts, "REGISTER_RATE_LIMIT_MAX")

	return cfg
}

func (c Config) withDefaults() Config {
	defaults := Defaults()

	if c.App.Name == "" {
		c.App.Name = defaults.App.Name
	}
	if c.App.Version == "" {
		c.App.Version = defaults.App.Version
	}
	if c.App.DataDir == "" {
		c.App.DataDir = defaults.App.DataDir
	}
	if c.Server.Host == "" {
		c.Server.Host = defaults.Server.Host
	}
	if c.Server.Port == "" {
		c.Server.Port = defaults.Server.Port
	}
	if c.Auth.SecretKey == "" {
		c.Auth.SecretKey = defaults.Auth.SecretKey
	}
	if c.Auth.TokenExpiry == 0 {
		c.Auth.TokenExpiry = defaults.Auth.TokenExpiry
	}
	if c.Persistence.DSN == "" {
		c.Persistence = defaults.Persistence
	}
	if c.RateLimit.Login.Window == 0 {
		c.RateLimit.Login = defaults.RateLimit.Login
	}
	if c.RateLimit.Register.Window == 0 {
		c.RateLimit.Register = defaults.RateLimit.Register
	}
	if c.Push.SubscriberEmail == "" {
		c.Push.SubscriberEmail = defaults.Push.SubscriberEmail
	}
	return c
}

func isZero(cfg Config) bool {
	return reflect.DeepEqual(cfg, Config{})
}

func decodeFallback(input any, cfg *Config) error {
	switch v := input.(type) {
	case nil:
		return nil
	case Config:
		*cfg = v
		return nil
	case *Config:
		if v != nil {
			*cfg = *v
		}
		return nil
	case map[string]any:
		payload, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(payload, cfg)
	default:
		return fmt.Errorf("unsupported config input type: %T", input)
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setSeconds(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = time.Duration(parsed) * time.Second
		}
	}
}
