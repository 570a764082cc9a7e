package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/xxxsen/common/logger"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	DBTypeMongo    = "mongo"
	DBTypePostgres = "postgres"
	DBTypeMemory   = "memory"
)

type Config struct {
	Port                int              `json:"port"`
	Env                 string           `json:"env"`
	JWTSecret           string           `json:"jwt_secret"`
	JWTTTLHours         int              `json:"jwt_ttl_hours"`
	CookieMaxAgeDays    int              `json:"cookie_max_age_days"`
	ClientURL           []string         `json:"client_url"`
	VerifyOTPTTLHours   int              `json:"verify_otp_ttl_hours"`
	ResetOTPTTLMinutes  int              `json:"reset_otp_ttl_minutes"`
	OTPRateLimitSeconds int              `json:"otp_rate_limit_seconds"`
	Database            DatabaseConfig   `json:"database"`
	Mail                MailConfig       `json:"mail"`
	LogConfig           logger.LogConfig `json:"log_config"`
}

type DatabaseConfig struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
	Name string `json:"name"`
	DSN  string `json:"dsn"`
}

type MailConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads the JSON config at path (optional), overlays the environment and
// validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()
		if err := json.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotEnv exports the variables of an env file into the process environment.
// A missing default .env is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		return godotenv.Load()
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields with the matching environment variables.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be a number: %w", key, err)
		}
		*dst = n
		return nil
	}
	str("APP_ENV", &cfg.Env)
	str("JWT_SECRET", &cfg.JWTSecret)
	str("DB_TYPE", &cfg.Database.Type)
	str("MONGODB_URI", &cfg.Database.URI)
	str("MONGODB_DB", &cfg.Database.Name)
	str("POSTGRES_DSN", &cfg.Database.DSN)
	str("SMTP_HOST", &cfg.Mail.Host)
	str("SMTP_USER", &cfg.Mail.Username)
	str("SMTP_PASSWORD", &cfg.Mail.Password)
	str("SENDER_EMAIL", &cfg.Mail.From)
	if v, ok := lookup("CLIENT_URL"); ok && v != "" {
		cfg.ClientURL = strings.Split(v, ",")
	}
	if err := num("PORT", &cfg.Port); err != nil {
		return err
	}
	if err := num("SMTP_PORT", &cfg.Mail.Port); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalize() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if c.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if c.Env == "" {
		c.Env = EnvDevelopment
	}
	if c.IsProduction() && len(c.ClientURL) == 0 {
		return fmt.Errorf("client_url is required in production")
	}
	if c.JWTTTLHours == 0 {
		c.JWTTTLHours = 24
	}
	if c.CookieMaxAgeDays == 0 {
		c.CookieMaxAgeDays = 7
	}
	if c.VerifyOTPTTLHours == 0 {
		c.VerifyOTPTTLHours = 24
	}
	if c.ResetOTPTTLMinutes == 0 {
		c.ResetOTPTTLMinutes = 15
	}
	if c.OTPRateLimitSeconds == 0 {
		c.OTPRateLimitSeconds = 60
	}
	if c.LogConfig.Level == "" {
		c.LogConfig.Level = "info"
	}
	if c.Database.Type == "" {
		c.Database.Type = DBTypeMongo
	}
	if c.Database.Name == "" {
		c.Database.Name = "mauth"
	}
	switch c.Database.Type {
	case DBTypeMongo:
		if c.Database.URI == "" {
			return fmt.Errorf("database.uri is required for mongo")
		}
	case DBTypePostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for postgres")
		}
	case DBTypeMemory:
	default:
		return fmt.Errorf("database.type must be mongo, postgres or memory")
	}
	return nil
}
