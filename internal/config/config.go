// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// キャッシュバックエンド
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// minJWTSecretLength はJWT署名鍵の最小長（バイト）。
const minJWTSecretLength = 32

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL       string        `envconfig:"DATABASE_URL"`
	DBMaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	DBMaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	DBConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`

	// Token
	JWTSecret string        `envconfig:"JWT_SECRET"`
	JWTIssuer string        `envconfig:"JWT_ISSUER" default:"furcode-api"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"2h"`

	// Server
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`
	AppEnv     string `envconfig:"APP_ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`

	// Cache
	CacheBackend string `envconfig:"CACHE_BACKEND" default:"memory"`
	CacheSize    int    `envconfig:"CACHE_SIZE" default:"10000"`
	RedisAddr    string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	// Dog API
	DogAPIBaseURL string        `envconfig:"DOG_API_BASE_URL" default:"https://dogapi.dog/api/v2"`
	DogAPITimeout time.Duration `envconfig:"DOG_API_TIMEOUT" default:"10s"`

	// Authorization
	AuthzDefault string `envconfig:"AUTHZ_DEFAULT" default:"permit"`

	// Rate Limit
	RateLimitGeneral int `envconfig:"RATE_LIMIT_GENERAL" default:"120"`
	RateLimitLogin   int `envconfig:"RATE_LIMIT_LOGIN" default:"10"`

	// CORS
	CORSAllowedOrigin string `envconfig:"CORS_ALLOWED_ORIGIN" default:"http://localhost:3000"`
}

// IsProduction は本番環境かどうかを返す。
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合は、未設定のキーをすべて列挙したエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minJWTSecretLength)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive: %s", c.JWTTTL)
	}
	c.CacheBackend = strings.ToLower(c.CacheBackend)
	switch c.CacheBackend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("CACHE_BACKEND must be %q or %q: %q", CacheBackendMemory, CacheBackendRedis, c.CacheBackend)
	}
	if c.DBMaxOpenConns <= 0 || c.DBMaxIdleConns < 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive and DB_MAX_IDLE_CONNS non-negative")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("CACHE_SIZE must be positive: %d", c.CacheSize)
	}
	if c.RateLimitGeneral <= 0 || c.RateLimitLogin <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	return nil
}
