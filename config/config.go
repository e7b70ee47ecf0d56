// Package config loads settings from the environment. A .env file in the
// working directory is read first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Log       LogConfig
	Search    SearchConfig
	App       AppConfig
	Captcha   CaptchaConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Path string // e.g. ./data/forum.db
}

type JWTConfig struct {
	Secret            string // keep it secret
	AccessTokenExpiry int    // minutes
}

type LogConfig struct {
	Level  string
	Pretty bool // console output instead of JSON
}

type SearchConfig struct {
	CacheTTL time.Duration
}

type AppConfig struct {
	// BaseURL is where the client lives; redirects append #forum:<token>.
	BaseURL        string
	AllowedOrigins []string
}

type CaptchaConfig struct {
	TTL time.Duration
}

// RedisConfig: an empty Addr keeps the result cache in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	LoginAttempts   int
	LoginWindow     time.Duration
	CaptchaRequests int
	CaptchaWindow   time.Duration
	Posts           int
	PostWindow      time.Duration
	PostCooldown    time.Duration
}

// Load builds the Config. JWT_SECRET is the only required variable.
func Load() (*Config, error) {
	// no .env in production; real variables win anyway
	_ = godotenv.Load()

	p := &parser{}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: p.int("SERVER_PORT", "9090"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/forum.db"),
		},
		JWT: JWTConfig{
			Secret:            jwtSecret,
			AccessTokenExpiry: p.int("JWT_ACCESS_EXPIRY_MINUTES", "60"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: p.bool("LOG_PRETTY", "false"),
		},
		Search: SearchConfig{
			CacheTTL: p.duration("SEARCH_CACHE_TTL", "30s"),
		},
		App: AppConfig{
			BaseURL:        getEnv("APP_BASE_URL", "http://localhost:9090"),
			AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:9090")),
		},
		Captcha: CaptchaConfig{
			TTL: p.duration("CAPTCHA_TTL", "5m"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       p.int("REDIS_DB", "0"),
		},
		RateLimit: RateLimitConfig{
			LoginAttempts:   p.int("LOGIN_MAX_ATTEMPTS", "5"),
			LoginWindow:     p.duration("LOGIN_WINDOW", "1m"),
			CaptchaRequests: p.int("CAPTCHA_MAX_REQUESTS", "20"),
			CaptchaWindow:   p.duration("CAPTCHA_WINDOW", "1m"),
			Posts:           p.int("POST_MAX_PER_WINDOW", "5"),
			PostWindow:      p.duration("POST_WINDOW", "1m"),
			PostCooldown:    p.duration("POST_COOLDOWN", "2m"),
		},
	}

	if p.err != nil {
		return nil, p.err
	}
	return cfg, nil
}

// Addr is the listen address, e.g. "0.0.0.0:9090".
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AccessTokenDuration converts AccessTokenExpiry to a time.Duration.
func (c *JWTConfig) AccessTokenDuration() time.Duration {
	return time.Duration(c.AccessTokenExpiry) * time.Minute
}

// parser keeps the first conversion error so Load can check once.
type parser struct {
	err error
}

func (p *parser) int(key, fallback string) int {
	v, err := strconv.Atoi(getEnv(key, fallback))
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func (p *parser) bool(key, fallback string) bool {
	v, err := strconv.ParseBool(getEnv(key, fallback))
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func (p *parser) duration(key, fallback string) time.Duration {
	v, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
