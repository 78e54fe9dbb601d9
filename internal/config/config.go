package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultJWTSecret        = "change-me-in-production"
	defaultJWTRefreshSecret = "change-me-refresh-in-production"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	DatabaseURL string
	RedisURL    string

	// Origins allowed to open the live feed; empty allows any.
	AllowedOrigins []string

	JWT       JWTConfig
	Discord   DiscordConfig
	Lobby     LobbyConfig
	RateLimit RateLimitConfig
}

type JWTConfig struct {
	Secret        string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type DiscordConfig struct {
	Token   string
	GuildID string
}

// Enabled reports whether the chat bot should be started.
func (d DiscordConfig) Enabled() bool {
	return d.Token != ""
}

type LobbyConfig struct {
	// Window is how long a chat-created or bumped lobby stays joinable.
	Window          time.Duration
	RefreshInterval time.Duration
}

type RateLimitConfig struct {
	Requests       int
	Window         time.Duration
	StrictRequests int
}

// Load reads .env.local / .env when present and builds the config from the
// environment.
func Load() *Config {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		AllowedOrigins: getEnvList("WS_ALLOWED_ORIGINS"),
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", defaultJWTSecret),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", defaultJWTRefreshSecret),
			AccessTTL:     getEnvDuration("JWT_ACCESS_TTL", 15*time.Minute),
			RefreshTTL:    getEnvDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		},
		Discord: DiscordConfig{
			Token:   os.Getenv("DISCORD_BOT_TOKEN"),
			GuildID: os.Getenv("DISCORD_GUILD_ID"),
		},
		Lobby: LobbyConfig{
			Window:          getEnvDuration("LOBBY_WINDOW", 5*time.Minute),
			RefreshInterval: getEnvDuration("LOBBY_REFRESH_INTERVAL", 30*time.Second),
		},
		RateLimit: RateLimitConfig{
			Requests:       getEnvInt("RATE_LIMIT_REQUESTS", 100),
			Window:         getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
			StrictRequests: getEnvInt("RATE_LIMIT_STRICT_REQUESTS", 5),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	if c.IsProduction() && (c.JWT.Secret == defaultJWTSecret || c.JWT.RefreshSecret == defaultJWTRefreshSecret) {
		return errors.New("JWT_SECRET and JWT_REFRESH_SECRET must be set in production")
	}
	if c.Lobby.Window <= 0 {
		return errors.New("LOBBY_WINDOW must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
