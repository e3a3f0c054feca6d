package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	DatabaseURL    string   `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32    `mapstructure:"DB_MIN_CONNS"`
	JWTSecret      string   `mapstructure:"JWT_SECRET"`
	AdminCode      string   `mapstructure:"ADMIN_CODE"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`
	UploadDir      string   `mapstructure:"UPLOAD_DIR"`
	AIBaseURL      string   `mapstructure:"AI_BASE_URL"`
	EmailHost      string   `mapstructure:"EMAIL_HOST"`
	EmailPort      int      `mapstructure:"EMAIL_PORT"`
	EmailUser      string   `mapstructure:"EMAIL_USER"`
	EmailPassword  string   `mapstructure:"EMAIL_PASSWORD"`
	EmailFrom      string   `mapstructure:"EMAIL_FROM"`
	FrontendURL    string   `mapstructure:"FRONTEND_URL"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "5000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("EMAIL_PORT", 587)
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("ADMIN_CODE")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("UPLOAD_DIR")
	v.BindEnv("AI_BASE_URL")
	v.BindEnv("EMAIL_HOST")
	v.BindEnv("EMAIL_PORT")
	v.BindEnv("EMAIL_USER")
	v.BindEnv("EMAIL_PASSWORD")
	v.BindEnv("EMAIL_FROM")
	v.BindEnv("FRONTEND_URL")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. The server refuses
// to start without a database and a JWT signing secret; in production the
// admin registration code must also be set so that the admin role cannot be
// claimed freely.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() && c.AdminCode == "" {
		return fmt.Errorf("ADMIN_CODE is required in production")
	}
	if c.EmailHost != "" && c.EmailFrom == "" {
		return fmt.Errorf("EMAIL_FROM is required when EMAIL_HOST is set")
	}
	return nil
}
