package constants

import "time"

const (
	HiscoresTimeout    = 10 * time.Second
	OverallPageTimeout = 12 * time.Second
	DatabaseTimeout    = 5 * time.Second
	IngestTimeout      = 30 * time.Second
)

// LeaderboardPageSize is the number of rows the overall hiscores UI shows
// per page. If the upstream ever changes it, resolution degrades to
// fetching more candidate pages; nothing breaks.
const LeaderboardPageSize = 25

const (
	DBMaxOpenConns    = 10
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)
