package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ayomabar")
	t.Setenv("LOBBY_WINDOW", "")
	t.Setenv("PORT", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.Lobby.Window)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.False(t, cfg.Discord.Enabled())
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ayomabar")
	t.Setenv("LOBBY_WINDOW", "10m")
	t.Setenv("RATE_LIMIT_REQUESTS", "42")
	t.Setenv("RATE_LIMIT_WINDOW", "not-a-duration")
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("WS_ALLOWED_ORIGINS", "https://ayomabar.gg, ,http://localhost:3000")

	cfg := Load()

	assert.Equal(t, 10*time.Minute, cfg.Lobby.Window)
	assert.Equal(t, 42, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.True(t, cfg.Discord.Enabled())
	assert.Equal(t, []string{"https://ayomabar.gg", "http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Lobby: LobbyConfig{Window: time.Minute}}
	assert.EqualError(t, cfg.Validate(), "DATABASE_URL is not set")

	cfg.DatabaseURL = "postgres://localhost/ayomabar"
	cfg.Environment = "production"
	cfg.JWT = JWTConfig{Secret: defaultJWTSecret, RefreshSecret: "x"}
	assert.Error(t, cfg.Validate())

	cfg.JWT.Secret = "real-secret"
	assert.NoError(t, cfg.Validate())
}
