package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"osrs-tracker/internal/config"
	"osrs-tracker/internal/database"
	"osrs-tracker/internal/domain"
	"osrs-tracker/internal/repository"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestRepo(t *testing.T) (*sql.DB, *repository.SnapshotRepository) {
	t.Helper()
	cfg := &config.Config{
		DBPath:     filepath.Join(t.TempDir(), "test.db"),
		SeedDBPath: filepath.Join(t.TempDir(), "no-seed.sqlite3"),
	}
	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, repository.NewSnapshotRepository(db, cfg, zerolog.Nop())
}

func intPtr(v int64) *int64 { return &v }

func testSnapshot() (domain.Snapshot, []domain.SkillRecord, []domain.MinigameRecord) {
	snapshot := domain.Snapshot{
		Player: "Tibble49",
		Mode:   domain.ModeRegular,
		Date:   "2026-08-24",
	}
	skills := []domain.SkillRecord{
		{Skill: "Overall", Rank: intPtr(50), Level: intPtr(2000), XP: intPtr(123456789)},
		{Skill: "Attack", Rank: nil, Level: intPtr(99), XP: nil},
	}
	minigames := []domain.MinigameRecord{
		{Activity: "League Points", Rank: intPtr(10), Score: intPtr(500)},
		{Activity: "Zulrah", Rank: nil, Score: nil},
	}
	return snapshot, skills, minigames
}

func TestSnapshotInsert(t *testing.T) {
	Convey("Given an empty store", t, func() {
		db, repo := newTestRepo(t)
		ctx := context.Background()

		Convey("When a snapshot is inserted", func() {
			snapshot, skills, minigames := testSnapshot()
			id, err := repo.Insert(ctx, snapshot, skills, minigames)

			Convey("Then it gets an id and all children are present", func() {
				So(err, ShouldBeNil)
				So(id, ShouldBeGreaterThan, 0)

				var skillCount, minigameCount int
				So(db.QueryRow(`SELECT COUNT(*) FROM skill_data WHERE snapshot_id = ?`, id).Scan(&skillCount), ShouldBeNil)
				So(db.QueryRow(`SELECT COUNT(*) FROM minigame_data WHERE snapshot_id = ?`, id).Scan(&minigameCount), ShouldBeNil)
				So(skillCount, ShouldEqual, 2)
				So(minigameCount, ShouldEqual, 2)
			})

			Convey("Then the player name is stored lowercase", func() {
				So(err, ShouldBeNil)
				var player string
				So(db.QueryRow(`SELECT player FROM snapshots WHERE id = ?`, id).Scan(&player), ShouldBeNil)
				So(player, ShouldEqual, "tibble49")
			})

			Convey("Then absent values round-trip as NULL", func() {
				So(err, ShouldBeNil)
				var rank sql.NullInt64
				So(db.QueryRow(`SELECT rank FROM skill_data WHERE snapshot_id = ? AND skill = 'Attack'`, id).Scan(&rank), ShouldBeNil)
				So(rank.Valid, ShouldBeFalse)
			})
		})

		Convey("When the same pair is snapshotted twice", func() {
			snapshot, skills, minigames := testSnapshot()
			first, err1 := repo.Insert(ctx, snapshot, skills, minigames)
			second, err2 := repo.Insert(ctx, snapshot, skills, minigames)

			Convey("Then both snapshots coexist as a time series", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(second, ShouldNotEqual, first)

				count, err := repo.SnapshotCount(ctx, "tibble49", domain.ModeRegular)
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 2)
			})
		})
	})
}

func TestSnapshotInsertAtomicity(t *testing.T) {
	Convey("Given a store where the minigame write will fail", t, func() {
		db, repo := newTestRepo(t)
		ctx := context.Background()

		_, err := db.Exec(`DROP TABLE minigame_data`)
		So(err, ShouldBeNil)

		Convey("When a snapshot insert fails after header and skills are staged", func() {
			snapshot, skills, minigames := testSnapshot()
			_, insertErr := repo.Insert(ctx, snapshot, skills, minigames)

			Convey("Then the insert reports failure", func() {
				So(insertErr, ShouldNotBeNil)
			})

			Convey("Then no rows for the snapshot are visible", func() {
				var headers, skillRows int
				So(db.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&headers), ShouldBeNil)
				So(db.QueryRow(`SELECT COUNT(*) FROM skill_data`).Scan(&skillRows), ShouldBeNil)
				So(headers, ShouldEqual, 0)
				So(skillRows, ShouldEqual, 0)
			})
		})
	})
}

func TestSnapshotReads(t *testing.T) {
	Convey("Given a store with a short history", t, func() {
		_, repo := newTestRepo(t)
		ctx := context.Background()

		older := domain.Snapshot{
			Player:    "xespis",
			Mode:      domain.ModeRegular,
			Timestamp: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
			Date:      "2026-08-23",
		}
		olderSkills := []domain.SkillRecord{{Skill: "Overall", Rank: intPtr(55), Level: intPtr(1999), XP: intPtr(100)}}
		_, err := repo.Insert(ctx, older, olderSkills, nil)
		So(err, ShouldBeNil)

		newer := domain.Snapshot{
			Player:    "XESPIS",
			Mode:      domain.ModeRegular,
			Timestamp: time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
			Date:      "2026-08-24",
		}
		newerSkills := []domain.SkillRecord{{Skill: "Overall", Rank: intPtr(50), Level: intPtr(2000), XP: intPtr(200)}}
		_, err = repo.Insert(ctx, newer, newerSkills, nil)
		So(err, ShouldBeNil)

		Convey("When listing players", func() {
			players, err := repo.ListPlayers(ctx)

			Convey("Then the pair appears once", func() {
				So(err, ShouldBeNil)
				So(players, ShouldResemble, []domain.TrackedEntry{{Player: "xespis", Mode: domain.ModeRegular}})
			})
		})

		Convey("When reading the latest skills", func() {
			skills, err := repo.LatestSkills(ctx, "xespis", domain.ModeRegular)

			Convey("Then only the most recent snapshot's rows come back", func() {
				So(err, ShouldBeNil)
				So(skills, ShouldHaveLength, 1)
				So(*skills[0].Rank, ShouldEqual, 50)
			})
		})

		Convey("When reading a skill history", func() {
			points, err := repo.SkillHistory(ctx, "xespis", "Overall", domain.ModeRegular)

			Convey("Then observations come back oldest first", func() {
				So(err, ShouldBeNil)
				So(points, ShouldHaveLength, 2)
				So(*points[0].XP, ShouldEqual, 100)
				So(*points[1].XP, ShouldEqual, 200)
			})
		})

		Convey("When reading the date range", func() {
			first, last, err := repo.FirstLastDates(ctx, "xespis", domain.ModeRegular)

			Convey("Then both bounds are reported", func() {
				So(err, ShouldBeNil)
				So(*first, ShouldEqual, "2026-08-23")
				So(*last, ShouldEqual, "2026-08-24")
			})
		})

		Convey("When reading the latest overall ranks", func() {
			ranks, err := repo.LatestOverallRanks(ctx)

			Convey("Then each pair reports its newest rank", func() {
				So(err, ShouldBeNil)
				So(ranks, ShouldHaveLength, 1)
				So(ranks[0].Player, ShouldEqual, "xespis")
				So(*ranks[0].Rank, ShouldEqual, 50)
			})
		})

		Convey("When an unranked player shares the board with ranked ones", func() {
			unranked := domain.Snapshot{
				Player:    "freshacct",
				Mode:      domain.ModeRegular,
				Timestamp: time.Date(2026, 8, 24, 13, 0, 0, 0, time.UTC),
				Date:      "2026-08-24",
			}
			unrankedSkills := []domain.SkillRecord{{Skill: "Overall", Rank: nil, Level: intPtr(3), XP: nil}}
			_, err := repo.Insert(ctx, unranked, unrankedSkills, nil)
			So(err, ShouldBeNil)

			ranks, err := repo.LatestOverallRanks(ctx)

			Convey("Then ranked players sort before the unranked one", func() {
				So(err, ShouldBeNil)
				So(ranks, ShouldHaveLength, 2)
				So(ranks[0].Player, ShouldEqual, "xespis")
				So(*ranks[0].Rank, ShouldEqual, 50)
				So(ranks[1].Player, ShouldEqual, "freshacct")
				So(ranks[1].Rank, ShouldBeNil)
			})
		})
	})
}
