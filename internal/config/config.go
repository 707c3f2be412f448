package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"rentalempire/internal/game"
)

const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type ServerConfig struct {
	Addr           string
	LogLevel       slog.Level
	Store          string
	SavePath       string
	SQLitePath     string
	DatabaseURL    string
	SaveSlot       string
	DiscordToken   string
	DiscordChannel string
	Engine         game.Config
}

type CLIConfig struct {
	APIBaseURL string
	SavePath   string
	LogLevel   slog.Level
	Engine     game.Config
}

// LoadDotEnv reads .env into the process environment when the file exists.
// Variables already set win.
func LoadDotEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(); err != nil {
		slog.Warn("load .env", "err", err)
	}
}

func LoadServerFromEnv() (ServerConfig, error) {
	LoadDotEnv()
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("EMPIRE_ADDR", ":8080")
	}

	engine, err := engineFromEnv()
	if err != nil {
		return ServerConfig{}, err
	}
	cfg := ServerConfig{
		Addr:           addr,
		LogLevel:       ParseLogLevel(os.Getenv("EMPIRE_LOG_LEVEL")),
		Store:          strings.ToLower(envDefault("EMPIRE_STORE", StoreFile)),
		SavePath:       envDefault("EMPIRE_SAVE_PATH", defaultSavePath()),
		SQLitePath:     envDefault("EMPIRE_SQLITE_PATH", "data/empire.db"),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SaveSlot:       envDefault("EMPIRE_SAVE_SLOT", "default"),
		DiscordToken:   strings.TrimSpace(os.Getenv("EMPIRE_DISCORD_TOKEN")),
		DiscordChannel: strings.TrimSpace(os.Getenv("EMPIRE_DISCORD_CHANNEL")),
		Engine:         engine,
	}
	switch cfg.Store {
	case StoreFile, StoreSQLite, StoreMemory:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return cfg, fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return cfg, fmt.Errorf("unknown EMPIRE_STORE %q", cfg.Store)
	}
	if cfg.DiscordToken != "" && cfg.DiscordChannel == "" {
		return cfg, fmt.Errorf("EMPIRE_DISCORD_CHANNEL is required when EMPIRE_DISCORD_TOKEN is set")
	}
	return cfg, nil
}

func LoadCLIFromEnv() (CLIConfig, error) {
	LoadDotEnv()
	engine, err := engineFromEnv()
	if err != nil {
		return CLIConfig{}, err
	}
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("EMPIRE_API_BASE_URL", "http://localhost:8080"), "/"),
		SavePath:   envDefault("EMPIRE_SAVE_PATH", defaultSavePath()),
		LogLevel:   ParseLogLevel(os.Getenv("EMPIRE_LOG_LEVEL")),
		Engine:     engine,
	}, nil
}

// Tuning is the optional YAML file of engine tunables. Zero fields keep
// the environment or default value.
type Tuning struct {
	TickEvery         string  `yaml:"tick_every"`
	SaveEvery         string  `yaml:"save_every"`
	MarketCheckEvery  string  `yaml:"market_check_every"`
	EventCooldown     string  `yaml:"event_cooldown"`
	EventProbability  float64 `yaml:"event_probability"`
	OfflineCap        string  `yaml:"offline_cap"`
	OfflineEfficiency float64 `yaml:"offline_efficiency"`
	StartingBalance   float64 `yaml:"starting_balance"`
}

func LoadTuning(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func (t Tuning) Apply(cfg game.Config) (game.Config, error) {
	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"tick_every", t.TickEvery, &cfg.TickEvery},
		{"save_every", t.SaveEvery, &cfg.SaveEvery},
		{"market_check_every", t.MarketCheckEvery, &cfg.MarketCheckEvery},
		{"event_cooldown", t.EventCooldown, &cfg.EventCooldown},
		{"offline_cap", t.OfflineCap, &cfg.OfflineCap},
	}
	for _, d := range durations {
		if strings.TrimSpace(d.raw) == "" {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil || v <= 0 {
			return cfg, fmt.Errorf("tuning %s: invalid duration %q", d.name, d.raw)
		}
		*d.dst = v
	}
	if t.EventProbability != 0 {
		cfg.EventProbability = t.EventProbability
	}
	if t.OfflineEfficiency != 0 {
		cfg.OfflineEfficiency = t.OfflineEfficiency
	}
	if t.StartingBalance != 0 {
		cfg.StartingBalance = t.StartingBalance
	}
	return cfg, nil
}

func engineFromEnv() (game.Config, error) {
	d := game.DefaultConfig()
	cfg := game.Config{
		TickEvery:         envDurationDefault("EMPIRE_TICK_EVERY", d.TickEvery),
		SaveEvery:         envDurationDefault("EMPIRE_SAVE_EVERY", d.SaveEvery),
		MarketCheckEvery:  envDurationDefault("EMPIRE_MARKET_CHECK_EVERY", d.MarketCheckEvery),
		TimedCheckEvery:   d.TimedCheckEvery,
		EventCooldown:     envDurationDefault("EMPIRE_EVENT_COOLDOWN", d.EventCooldown),
		EventProbability:  envFloatDefault("EMPIRE_EVENT_PROBABILITY", d.EventProbability),
		OfflineCap:        d.OfflineCap,
		OfflineEfficiency: d.OfflineEfficiency,
		StartingBalance:   d.StartingBalance,
	}
	path := strings.TrimSpace(os.Getenv("EMPIRE_TUNING_FILE"))
	if path == "" {
		return cfg, nil
	}
	t, err := LoadTuning(path)
	if err != nil {
		return cfg, fmt.Errorf("load tuning: %w", err)
	}
	return t.Apply(cfg)
}

func ParseLogLevel(v string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultSavePath() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return dir + string(os.PathSeparator) + "rentalempire" + string(os.PathSeparator) + "save.json.zst"
	}
	return "empire-save.json.zst"
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envFloatDefault(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
