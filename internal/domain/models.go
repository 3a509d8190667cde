package domain

import (
	"fmt"
	"strings"
	"time"
)

// Mode is a hiscore leaderboard partition. A player's rank is only
// meaningful within one mode.
type Mode string

const (
	ModeRegular         Mode = "regular"
	ModeIronman         Mode = "ironman"
	ModeHardcoreIronman Mode = "hardcore_ironman"
	ModeUltimateIronman Mode = "ultimate_ironman"
	ModeDeadman         Mode = "deadman"
	ModeSeasonal        Mode = "seasonal"
)

var Modes = []Mode{
	ModeRegular,
	ModeIronman,
	ModeHardcoreIronman,
	ModeUltimateIronman,
	ModeDeadman,
	ModeSeasonal,
}

// ParseMode validates a mode string from config or a request.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown game mode %q", s)
}

// TrackedEntry is one (player, mode) pair to snapshot during a run.
type TrackedEntry struct {
	Player string
	Mode   Mode
}

// Key is the identity used for dedup: player names are case-insensitive.
func (e TrackedEntry) Key() string {
	return strings.ToLower(e.Player) + "|" + string(e.Mode)
}

// RankRow is one (rank, name) pair extracted from a leaderboard page.
// Rows are transient parse output and are never persisted.
type RankRow struct {
	Rank int64
	Name string
}

// Snapshot is one point-in-time capture header for a (player, mode) pair.
// Immutable once written; a later poll inserts a new row rather than
// updating this one.
type Snapshot struct {
	ID        int64
	Player    string // stored lowercase
	Mode      Mode
	Timestamp time.Time // UTC
	Date      string    // YYYY-MM-DD, derived from Timestamp
}

// SkillRecord is one skill line of a snapshot. Nil values mean the feed
// reported the player as unranked for that column.
type SkillRecord struct {
	SnapshotID int64
	Skill      string
	Rank       *int64
	Level      *int64
	XP         *int64
}

// MinigameRecord is one activity/boss line of a snapshot.
type MinigameRecord struct {
	SnapshotID int64
	Activity   string
	Rank       *int64
	Score      *int64
}

// PlayerRank pairs a tracked entry with its most recent Overall rank.
type PlayerRank struct {
	Player string `json:"player"`
	Mode   Mode   `json:"mode"`
	Rank   *int64 `json:"rank"`
}
