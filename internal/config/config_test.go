package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalempire/internal/game"
)

func TestLoadServerFromEnvDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("EMPIRE_ADDR", "")
	t.Setenv("EMPIRE_STORE", "")
	t.Setenv("EMPIRE_TUNING_FILE", "")
	t.Setenv("EMPIRE_TICK_EVERY", "")

	cfg, err := LoadServerFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, StoreFile, cfg.Store)
	assert.Equal(t, time.Second, cfg.Engine.TickEvery)
	assert.Equal(t, 10*time.Second, cfg.Engine.SaveEvery)
}

func TestLoadServerFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("EMPIRE_STORE", "SQLite")
	t.Setenv("EMPIRE_TICK_EVERY", "250ms")
	t.Setenv("EMPIRE_EVENT_PROBABILITY", "0.5")
	t.Setenv("EMPIRE_LOG_LEVEL", "debug")
	t.Setenv("EMPIRE_TUNING_FILE", "")

	cfg, err := LoadServerFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, 250*time.Millisecond, cfg.Engine.TickEvery)
	assert.Equal(t, 0.5, cfg.Engine.EventProbability)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadServerFromEnvRejectsBadStore(t *testing.T) {
	t.Setenv("EMPIRE_TUNING_FILE", "")
	t.Setenv("EMPIRE_STORE", "floppy")
	_, err := LoadServerFromEnv()
	require.Error(t, err)

	t.Setenv("EMPIRE_STORE", "postgres")
	t.Setenv("DATABASE_URL", "")
	_, err = LoadServerFromEnv()
	require.Error(t, err)
}

func TestTuningFileOverridesEngine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tick_every: 2s\nevent_cooldown: 30s\nstarting_balance: 500\noffline_efficiency: 0.5\n"), 0o644))
	t.Setenv("EMPIRE_TUNING_FILE", path)
	t.Setenv("EMPIRE_TICK_EVERY", "")

	cfg, err := LoadCLIFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Engine.TickEvery)
	assert.Equal(t, 30*time.Second, cfg.Engine.EventCooldown)
	assert.Equal(t, 500.0, cfg.Engine.StartingBalance)
	assert.Equal(t, 0.5, cfg.Engine.OfflineEfficiency)
	assert.Equal(t, game.DefaultConfig().SaveEvery, cfg.Engine.SaveEvery)
}

func TestTuningRejectsBadDuration(t *testing.T) {
	_, err := Tuning{TickEvery: "soon"}.Apply(game.DefaultConfig())
	require.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("chatty"))
}
