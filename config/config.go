package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "MEET_"
	envConfigFile = "MEET_CONFIG"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL      string        `koanf:"database_url"`
	DBConnectTimeout time.Duration `koanf:"db_connect_timeout"`
	JWTSecretKey     string        `koanf:"jwt_secret_key"`
	JWTTTL           time.Duration `koanf:"jwt_ttl"`
	ServerPort       int           `koanf:"server_port"`
	LogLevel         string        `koanf:"log_level"`

	CORSOrigins    []string `koanf:"cors_origins"`
	RateLimitRPS   float64  `koanf:"rate_limit_rps"`
	RateLimitBurst int      `koanf:"rate_limit_burst"`

	// Объектное хранилище для стартовых листов. Пустой account id - публикация отключена.
	R2AccountID       string `koanf:"r2_account_id"`
	R2AccessKeyID     string `koanf:"r2_access_key_id"`
	R2SecretAccessKey string `koanf:"r2_secret_access_key"`
	R2BucketName      string `koanf:"r2_bucket_name"`
	R2PublicBaseURL   string `koanf:"r2_public_base_url"`

	ScheduleDays               int `koanf:"schedule_days"`
	ScheduleTrackGapMinutes    int `koanf:"schedule_track_gap_minutes"`
	ScheduleAthleteRestMinutes int `koanf:"schedule_athlete_rest_minutes"`
}

func Defaults() *Config {
	return &Config{
		DBConnectTimeout:           5 * time.Second,
		JWTTTL:                     24 * time.Hour,
		ServerPort:                 8080,
		LogLevel:                   "info",
		CORSOrigins:                []string{"*"},
		RateLimitRPS:               5,
		RateLimitBurst:             10,
		ScheduleDays:               2,
		ScheduleTrackGapMinutes:    15,
		ScheduleAthleteRestMinutes: 60,
	}
}

// legacyEnv - переменные окружения без префикса, которые понимал прежний сервис.
var legacyEnv = map[string]string{
	"DATABASE_URL":   "database_url",
	"JWT_SECRET_KEY": "jwt_secret_key",
	"SERVER_PORT":    "server_port",
}

// listKeys - ключи, которые в окружении задаются через запятую.
var listKeys = map[string]struct{}{"cors_origins": {}}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load builds a Config by layering, low to high precedence:
//  1. Defaults()
//  2. YAML file named by MEET_CONFIG
//  3. legacy env (DATABASE_URL, JWT_SECRET_KEY, SERVER_PORT)
//  4. env with the MEET_ prefix (MEET_RATE_LIMIT_RPS -> rate_limit_rps)
//
// An optional .env file is loaded into the process environment first.
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: failed to read %s: %v", ErrInvalidConfig, path, err)
		}
	}

	for name, key := range legacyEnv {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			if err := k.Set(key, v); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
			}
		}
	}

	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
		if _, ok := listKeys[key]; ok {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: failed to read environment: %v", ErrInvalidConfig, err)
	}

	cfg := *Defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%w: DATABASE_URL is not set", ErrInvalidConfig)
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("%w: SERVER_PORT must be between 1 and 65535, got %d", ErrInvalidConfig, c.ServerPort)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("%w: rate limit must be positive", ErrInvalidConfig)
	}
	if c.ScheduleDays < 1 || c.ScheduleTrackGapMinutes < 0 || c.ScheduleAthleteRestMinutes < 0 {
		return fmt.Errorf("%w: schedule defaults out of range", ErrInvalidConfig)
	}
	return nil
}

// RequireJWT проверяет наличие секрета; нужен только командам, выдающим или проверяющим токены.
func (c *Config) RequireJWT() error {
	if c.JWTSecretKey == "" {
		return fmt.Errorf("%w: JWT_SECRET_KEY is not set", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2BucketName != ""
}
