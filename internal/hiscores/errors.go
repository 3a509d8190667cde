package hiscores

import "errors"

var (
	// ErrPlayerNotFound means the player has no record on the requested
	// mode's hiscores. Terminal for that entry, not a transport problem.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrFetchFailed covers transport errors and non-2xx responses other
	// than not-found. Worth retrying on the next scheduled run.
	ErrFetchFailed = errors.New("hiscores fetch failed")
)
