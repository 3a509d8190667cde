package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"osrs-tracker/internal/config"
	"osrs-tracker/internal/domain"

	"github.com/rs/zerolog"
)

// SnapshotRepository is the only writer of the snapshot tables. A
// snapshot header and all of its skill/minigame children go through one
// transaction; a header without children is never visible.
type SnapshotRepository struct {
	db       *sql.DB
	postgres bool
	logger   zerolog.Logger
}

func NewSnapshotRepository(db *sql.DB, cfg *config.Config, logger zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:       db,
		postgres: config.IsPostgresURL(cfg.DatabaseURL),
		logger:   logger.With().Str("component", "repository").Logger(),
	}
}

// Insert writes one snapshot atomically and returns its id. On any error
// the transaction rolls back and no rows for the snapshot remain.
func (r *SnapshotRepository) Insert(ctx context.Context, snapshot domain.Snapshot, skills []domain.SkillRecord, minigames []domain.MinigameRecord) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	snapshotID, err := r.insertHeader(ctx, tx, snapshot)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot header: %w", err)
	}

	skillStmt, err := tx.PrepareContext(ctx, r.rebind(
		"INSERT INTO skill_data (snapshot_id, skill, rank, level, xp) VALUES (?, ?, ?, ?, ?)"))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare skill insert: %w", err)
	}
	defer skillStmt.Close()

	for _, skill := range skills {
		if _, err := skillStmt.ExecContext(ctx, snapshotID, skill.Skill,
			nullable(skill.Rank), nullable(skill.Level), nullable(skill.XP)); err != nil {
			return 0, fmt.Errorf("failed to insert skill %q: %w", skill.Skill, err)
		}
	}

	minigameStmt, err := tx.PrepareContext(ctx, r.rebind(
		"INSERT INTO minigame_data (snapshot_id, activity, rank, score) VALUES (?, ?, ?, ?)"))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare minigame insert: %w", err)
	}
	defer minigameStmt.Close()

	for _, minigame := range minigames {
		if _, err := minigameStmt.ExecContext(ctx, snapshotID, minigame.Activity,
			nullable(minigame.Rank), nullable(minigame.Score)); err != nil {
			return 0, fmt.Errorf("failed to insert minigame %q: %w", minigame.Activity, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit snapshot: %w", err)
	}

	r.logger.Debug().
		Int64("snapshot_id", snapshotID).
		Str("player", snapshot.Player).
		Str("mode", string(snapshot.Mode)).
		Int("skills", len(skills)).
		Int("minigames", len(minigames)).
		Msg("snapshot committed")

	return snapshotID, nil
}

func (r *SnapshotRepository) insertHeader(ctx context.Context, tx *sql.Tx, snapshot domain.Snapshot) (int64, error) {
	player := strings.ToLower(snapshot.Player)
	timestamp := snapshot.Timestamp.UTC().Format(time.RFC3339Nano)

	if r.postgres {
		var id int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO snapshots (player, mode, timestamp, date) VALUES ($1, $2, $3, $4) RETURNING id`,
			player, string(snapshot.Mode), timestamp, snapshot.Date).Scan(&id)
		return id, err
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (player, mode, timestamp, date) VALUES (?, ?, ?, ?)`,
		player, string(snapshot.Mode), timestamp, snapshot.Date)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListPlayers returns the distinct (player, mode) pairs present in the
// store.
func (r *SnapshotRepository) ListPlayers(ctx context.Context) ([]domain.TrackedEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT player, mode FROM snapshots ORDER BY player, mode`)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var entries []domain.TrackedEntry
	for rows.Next() {
		var player, mode string
		if err := rows.Scan(&player, &mode); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		entries = append(entries, domain.TrackedEntry{Player: player, Mode: domain.Mode(mode)})
	}
	return entries, rows.Err()
}

// LatestSkills returns the skill rows of the most recent snapshot for a
// (player, mode) pair.
func (r *SnapshotRepository) LatestSkills(ctx context.Context, player string, mode domain.Mode) ([]domain.SkillRecord, error) {
	query := r.rebind(`
		SELECT sd.snapshot_id, sd.skill, sd.rank, sd.level, sd.xp
		FROM skill_data sd
		WHERE sd.snapshot_id = (
			SELECT id FROM snapshots
			WHERE player = ? AND mode = ?
			ORDER BY timestamp DESC LIMIT 1
		)`)

	rows, err := r.db.QueryContext(ctx, query, strings.ToLower(player), string(mode))
	if err != nil {
		return nil, fmt.Errorf("failed to query latest skills: %w", err)
	}
	defer rows.Close()

	var skills []domain.SkillRecord
	for rows.Next() {
		var record domain.SkillRecord
		var rank, level, xp sql.NullInt64
		if err := rows.Scan(&record.SnapshotID, &record.Skill, &rank, &level, &xp); err != nil {
			return nil, fmt.Errorf("failed to scan skill row: %w", err)
		}
		record.Rank = fromNullable(rank)
		record.Level = fromNullable(level)
		record.XP = fromNullable(xp)
		skills = append(skills, record)
	}
	return skills, rows.Err()
}

// SkillPoint is one observation in a skill's time series.
type SkillPoint struct {
	Timestamp string `json:"timestamp"`
	Rank      *int64 `json:"rank"`
	Level     *int64 `json:"level"`
	XP        *int64 `json:"xp"`
}

// SkillHistory returns the full time series of one skill for a
// (player, mode) pair, oldest first.
func (r *SnapshotRepository) SkillHistory(ctx context.Context, player, skill string, mode domain.Mode) ([]SkillPoint, error) {
	query := r.rebind(`
		SELECT s.timestamp, sd.rank, sd.level, sd.xp
		FROM skill_data sd
		JOIN snapshots s ON s.id = sd.snapshot_id
		WHERE s.player = ? AND s.mode = ? AND sd.skill = ?
		ORDER BY s.timestamp`)

	rows, err := r.db.QueryContext(ctx, query, strings.ToLower(player), string(mode), skill)
	if err != nil {
		return nil, fmt.Errorf("failed to query skill history: %w", err)
	}
	defer rows.Close()

	var points []SkillPoint
	for rows.Next() {
		var point SkillPoint
		var rank, level, xp sql.NullInt64
		if err := rows.Scan(&point.Timestamp, &rank, &level, &xp); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		point.Rank = fromNullable(rank)
		point.Level = fromNullable(level)
		point.XP = fromNullable(xp)
		points = append(points, point)
	}
	return points, rows.Err()
}

// SnapshotCount returns how many snapshots exist for a (player, mode)
// pair.
func (r *SnapshotRepository) SnapshotCount(ctx context.Context, player string, mode domain.Mode) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		r.rebind(`SELECT COUNT(*) FROM snapshots WHERE player = ? AND mode = ?`),
		strings.ToLower(player), string(mode)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return count, nil
}

// FirstLastDates returns the calendar range covered by a player's
// snapshots. Both values are nil when no snapshots exist.
func (r *SnapshotRepository) FirstLastDates(ctx context.Context, player string, mode domain.Mode) (*string, *string, error) {
	var first, last sql.NullString
	err := r.db.QueryRowContext(ctx,
		r.rebind(`SELECT MIN(date), MAX(date) FROM snapshots WHERE player = ? AND mode = ?`),
		strings.ToLower(player), string(mode)).Scan(&first, &last)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query snapshot dates: %w", err)
	}

	var firstDate, lastDate *string
	if first.Valid {
		firstDate = &first.String
	}
	if last.Valid {
		lastDate = &last.String
	}
	return firstDate, lastDate, nil
}

// LatestOverallRanks returns each tracked (player, mode) pair's Overall
// rank from its most recent snapshot, best rank first.
func (r *SnapshotRepository) LatestOverallRanks(ctx context.Context) ([]domain.PlayerRank, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.player, s.mode, sd.rank
		FROM snapshots s
		JOIN (
			SELECT player, mode, MAX(timestamp) AS max_ts
			FROM snapshots
			GROUP BY player, mode
		) latest ON latest.player = s.player AND latest.mode = s.mode AND latest.max_ts = s.timestamp
		JOIN skill_data sd ON sd.snapshot_id = s.id AND sd.skill = 'Overall'
		ORDER BY sd.rank IS NULL, sd.rank`)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest ranks: %w", err)
	}
	defer rows.Close()

	var ranks []domain.PlayerRank
	for rows.Next() {
		var entry domain.PlayerRank
		var mode string
		var rank sql.NullInt64
		if err := rows.Scan(&entry.Player, &mode, &rank); err != nil {
			return nil, fmt.Errorf("failed to scan rank row: %w", err)
		}
		entry.Mode = domain.Mode(mode)
		entry.Rank = fromNullable(rank)
		ranks = append(ranks, entry)
	}
	return ranks, rows.Err()
}

// rebind rewrites ? placeholders to $N for the postgres backend so the
// same query text serves both dialects.
func (r *SnapshotRepository) rebind(query string) string {
	if !r.postgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func nullable(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func fromNullable(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	value := v.Int64
	return &value
}
