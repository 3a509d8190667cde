package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"osrs-tracker/internal/constants"
	"osrs-tracker/internal/domain"
	"osrs-tracker/internal/hiscores"
	"osrs-tracker/internal/repository"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// Collector runs one collection pass: fetch each tracked entry's raw
// record and persist it as a snapshot. Entries are processed strictly
// one at a time; a failure is contained to its entry and never aborts
// the batch.
type Collector struct {
	client *hiscores.Client
	repo   *repository.SnapshotRepository
	logger zerolog.Logger
}

func NewCollector(client *hiscores.Client, repo *repository.SnapshotRepository, logger zerolog.Logger) *Collector {
	return &Collector{
		client: client,
		repo:   repo,
		logger: logger.With().Str("component", "collector").Logger(),
	}
}

// RunSummary reports how one collection pass went.
type RunSummary struct {
	RunID     string
	Collected int
	NotFound  int
	Failed    int
}

// Run collects snapshots for every entry in order.
func (c *Collector) Run(ctx context.Context, entries []domain.TrackedEntry) RunSummary {
	summary := RunSummary{RunID: gonanoid.Must()}
	logger := c.logger.With().Str("run_id", summary.RunID).Logger()

	logger.Info().Int("entries", len(entries)).Msg("collection run starting")

	for _, entry := range entries {
		entryLog := logger.With().
			Str("player", entry.Player).
			Str("mode", string(entry.Mode)).
			Logger()

		entryCtx, cancel := context.WithTimeout(ctx, constants.IngestTimeout)
		snapshotID, lines, err := c.collectEntry(entryCtx, entry)
		cancel()

		switch {
		case errors.Is(err, hiscores.ErrPlayerNotFound):
			summary.NotFound++
			entryLog.Warn().Msg("player not found on this mode's hiscores")
		case err != nil:
			summary.Failed++
			entryLog.Error().Err(err).Msg("failed to collect snapshot")
		default:
			summary.Collected++
			level, xp := overallSummary(lines)
			entryLog.Info().
				Int64("snapshot_id", snapshotID).
				Str("total_level", level).
				Str("total_xp", xp).
				Msg("snapshot collected")
		}
	}

	logger.Info().
		Int("collected", summary.Collected).
		Int("not_found", summary.NotFound).
		Int("failed", summary.Failed).
		Msg("collection run finished")

	return summary
}

func (c *Collector) collectEntry(ctx context.Context, entry domain.TrackedEntry) (int64, []string, error) {
	lines, err := c.client.FetchRaw(ctx, entry.Player, entry.Mode)
	if err != nil {
		return 0, nil, err
	}

	snapshotID, err := c.Ingest(ctx, entry.Player, entry.Mode, lines)
	if err != nil {
		return 0, nil, err
	}
	return snapshotID, lines, nil
}

// Ingest parses the raw record lines and persists the snapshot with all
// of its skill and minigame rows in one transaction. The timestamp is
// taken here, at ingest time.
func (c *Collector) Ingest(ctx context.Context, player string, mode domain.Mode, lines []string) (int64, error) {
	// A snapshot header without children must never be committed.
	if len(lines) == 0 {
		return 0, fmt.Errorf("empty record for %q (%s)", player, mode)
	}

	now := time.Now().UTC()
	skills, minigames := hiscores.ParseRecord(lines)

	snapshot := domain.Snapshot{
		Player:    player,
		Mode:      mode,
		Timestamp: now,
		Date:      now.Format("2006-01-02"),
	}

	return c.repo.Insert(ctx, snapshot, skills, minigames)
}

// overallSummary pulls total level and xp out of the record's first line
// for the success log.
func overallSummary(lines []string) (string, string) {
	level, xp := "?", "?"
	if len(lines) == 0 {
		return level, xp
	}
	parts := strings.Split(lines[0], ",")
	if len(parts) > 1 {
		level = parts[1]
	}
	if len(parts) > 2 {
		xp = parts[2]
	}
	return level, xp
}
