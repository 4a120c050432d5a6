// Package config assembles service configuration from .env, an optional
// venturemind.yaml and the process environment, in increasing priority.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port      string
	Env       string
	Gemini    GeminiConfig
	Image     ImageConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	SMTP      SMTPConfig
	Artifact  ArtifactConfig
	RateLimit RateLimitConfig
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type ImageConfig struct {
	// Provider is "stability", "imagen" or "none".
	Provider          string
	StabilityAPIKey   string
	StabilityEndpoint string
	ImagenModel       string
	Timeout           time.Duration
	Workers           int
}

type DatabaseConfig struct {
	// Driver is "sqlite3" or "pgx".
	Driver string
	DSN    string
}

type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
}

type SMTPConfig struct {
	Server   string
	Port     int
	User     string
	Password string
	Sender   string
}

// Configured reports whether real delivery is possible.
func (c SMTPConfig) Configured() bool {
	return c.Server != "" && c.User != "" && c.Password != ""
}

type ArtifactConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func (c ArtifactConfig) Enabled() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != ""
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// envAliases maps config keys to environment names that do not follow the
// KEY_PART convention.
var envAliases = map[string]string{
	"env":                 "APP_ENV",
	"gemini.timeout":      "GENERATION_TIMEOUT",
	"smtp.sender":         "SENDER_EMAIL",
	"artifact.endpoint":   "ARTIFACT_S3_ENDPOINT",
	"artifact.region":     "ARTIFACT_S3_REGION",
	"artifact.access_key": "ARTIFACT_S3_ACCESS_KEY",
	"artifact.secret_key": "ARTIFACT_S3_SECRET_KEY",
	"artifact.bucket":     "ARTIFACT_S3_BUCKET",
	"artifact.use_ssl":    "ARTIFACT_S3_USE_SSL",
}

func defaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("env", "local")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.timeout", 90*time.Second)
	v.SetDefault("image.provider", "stability")
	v.SetDefault("image.timeout", 60*time.Second)
	v.SetDefault("image.workers", 4)
	v.SetDefault("stability.endpoint", "https://api.stability.ai/v2beta/stable-image/generate/core")
	v.SetDefault("imagen.model", "imagen-3.0-generate-002")
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "venturemind.db")
	v.SetDefault("auth.token_ttl", 30*time.Minute)
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.sender", "noreply@venturemind.ai")
	v.SetDefault("artifact.region", "us-east-1")
	v.SetDefault("artifact.bucket", "venturemind-logos")
	v.SetDefault("artifact.use_ssl", true)
	v.SetDefault("rate_limit.rps", 0.5)
	v.SetDefault("rate_limit.burst", 3)

	// Env-only keys need a default or binding so Get sees them.
	for _, key := range []string{
		"gemini.api_key", "stability.api_key", "auth.secret",
		"smtp.server", "smtp.user", "smtp.password",
	} {
		v.SetDefault(key, "")
	}
}

// Load reads configuration. configFile may be empty, in which case
// ./venturemind.yaml is used when present.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	defaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("venturemind")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else {
		slog.Info("using config file", "path", v.ConfigFileUsed())
	}

	cfg := &Config{
		Port: normalizePort(v.GetString("port")),
		Env:  v.GetString("env"),
		Gemini: GeminiConfig{
			APIKey:  strings.TrimSpace(v.GetString("gemini.api_key")),
			Model:   v.GetString("gemini.model"),
			Timeout: v.GetDuration("gemini.timeout"),
		},
		Image: ImageConfig{
			Provider:          strings.ToLower(strings.TrimSpace(v.GetString("image.provider"))),
			StabilityAPIKey:   strings.TrimSpace(v.GetString("stability.api_key")),
			StabilityEndpoint: v.GetString("stability.endpoint"),
			ImagenModel:       v.GetString("imagen.model"),
			Timeout:           v.GetDuration("image.timeout"),
			Workers:           v.GetInt("image.workers"),
		},
		Database: DatabaseConfig{
			Driver: v.GetString("database.driver"),
			DSN:    v.GetString("database.dsn"),
		},
		Auth: AuthConfig{
			Secret:   v.GetString("auth.secret"),
			TokenTTL: v.GetDuration("auth.token_ttl"),
		},
		SMTP: SMTPConfig{
			Server:   v.GetString("smtp.server"),
			Port:     v.GetInt("smtp.port"),
			User:     v.GetString("smtp.user"),
			Password: v.GetString("smtp.password"),
			Sender:   v.GetString("smtp.sender"),
		},
		Artifact: ArtifactConfig{
			Endpoint:  strings.TrimSpace(v.GetString("artifact.endpoint")),
			Region:    v.GetString("artifact.region"),
			AccessKey: strings.TrimSpace(v.GetString("artifact.access_key")),
			SecretKey: strings.TrimSpace(v.GetString("artifact.secret_key")),
			Bucket:    v.GetString("artifact.bucket"),
			UseSSL:    v.GetBool("artifact.use_ssl"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("rate_limit.rps"),
			Burst: v.GetInt("rate_limit.burst"),
		},
	}

	switch cfg.Image.Provider {
	case "stability", "imagen", "none":
	default:
		return nil, fmt.Errorf("unknown image provider %q", cfg.Image.Provider)
	}
	switch cfg.Database.Driver {
	case "sqlite3", "pgx":
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	if cfg.Auth.Secret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.Auth.Secret = secret
		slog.Warn("AUTH_SECRET not set, using an ephemeral secret; tokens will not survive a restart")
	}
	if cfg.Gemini.APIKey == "" {
		slog.Warn("GEMINI_API_KEY not set, startup pack generation will fail")
	}

	return cfg, nil
}

func normalizePort(p string) string {
	return strings.TrimPrefix(strings.TrimSpace(p), ":")
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating auth secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
