package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"osrs-tracker/internal/domain"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	// DatabaseURL selects the storage backend: a postgres:// URL uses the
	// networked store, empty falls back to the embedded SQLite file.
	DatabaseURL string
	DBPath      string
	SeedDBPath  string

	AnchorPlayer string
	AnchorMode   domain.Mode
	TrackAhead   int
	TrackBehind  int
	BaseEntries  []domain.TrackedEntry

	ServerPort string
	LogLevel   string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	anchorMode, err := domain.ParseMode(getEnv("ANCHOR_MODE", "regular"))
	if err != nil {
		return nil, fmt.Errorf("ANCHOR_MODE: %w", err)
	}

	baseEntries, err := parseEntries(getEnv("TRACKED_ENTRIES", "tibble49:regular,xespis:regular"))
	if err != nil {
		return nil, fmt.Errorf("TRACKED_ENTRIES: %w", err)
	}

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		DBPath:       getEnv("OSRS_DB_PATH", "osrs_hiscores.db"),
		SeedDBPath:   getEnv("OSRS_SEED_DB_PATH", "seed/osrs_hiscores_seed.sqlite3"),
		AnchorPlayer: getEnv("ANCHOR_PLAYER", "xespis"),
		AnchorMode:   anchorMode,
		TrackAhead:   getEnvInt("TRACK_AHEAD", 10),
		TrackBehind:  getEnvInt("TRACK_BEHIND", 3),
		BaseEntries:  baseEntries,
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}

	if cfg.AnchorPlayer == "" {
		return nil, fmt.Errorf("ANCHOR_PLAYER must not be empty")
	}
	if cfg.TrackAhead < 0 || cfg.TrackBehind < 0 {
		return nil, fmt.Errorf("TRACK_AHEAD and TRACK_BEHIND must be non-negative")
	}

	logger.Info().
		Bool("postgres", IsPostgresURL(cfg.DatabaseURL)).
		Str("db_path", cfg.DBPath).
		Str("anchor_player", cfg.AnchorPlayer).
		Str("anchor_mode", string(cfg.AnchorMode)).
		Int("track_ahead", cfg.TrackAhead).
		Int("track_behind", cfg.TrackBehind).
		Int("base_entries", len(cfg.BaseEntries)).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Msg("configuration loaded")

	return cfg, nil
}

// IsPostgresURL reports whether the connection string points at the
// networked backend rather than the embedded file store.
func IsPostgresURL(databaseURL string) bool {
	return strings.HasPrefix(databaseURL, "postgresql://") || strings.HasPrefix(databaseURL, "postgres://")
}

// parseEntries parses a "player:mode,player:mode" roster string. The mode
// part is optional and defaults to regular.
func parseEntries(s string) ([]domain.TrackedEntry, error) {
	var entries []domain.TrackedEntry
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		player, modeStr, found := strings.Cut(item, ":")
		player = strings.TrimSpace(player)
		if player == "" {
			return nil, fmt.Errorf("entry %q has no player name", item)
		}
		mode := domain.ModeRegular
		if found {
			var err error
			mode, err = domain.ParseMode(modeStr)
			if err != nil {
				return nil, fmt.Errorf("entry %q: %w", item, err)
			}
		}
		entries = append(entries, domain.TrackedEntry{Player: player, Mode: mode})
	}
	return entries, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
