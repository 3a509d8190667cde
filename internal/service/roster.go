package service

import (
	"context"
	"strings"

	"osrs-tracker/internal/config"
	"osrs-tracker/internal/constants"
	"osrs-tracker/internal/domain"
	"osrs-tracker/internal/hiscores"

	"github.com/rs/zerolog"
)

// NeighborResolver locates the players ranked around an anchor account on
// the overall leaderboard. The upstream only exposes fixed-size HTML
// pages, so resolution probes a padded range of candidate pages and
// stops as soon as the requested rank window is covered.
type NeighborResolver struct {
	client   *hiscores.Client
	pageSize int
	logger   zerolog.Logger
}

func NewNeighborResolver(client *hiscores.Client, logger zerolog.Logger) *NeighborResolver {
	return &NeighborResolver{
		client:   client,
		pageSize: constants.LeaderboardPageSize,
		logger:   logger.With().Str("component", "resolver").Logger(),
	}
}

// Resolve returns the names holding ranks [anchor-ahead, anchor+behind]
// in ascending rank order, the anchor included. An empty result means
// the window could not be resolved; callers fall back to their static
// roster rather than failing.
func (r *NeighborResolver) Resolve(ctx context.Context, anchor string, mode domain.Mode, ahead, behind int) []string {
	anchorRank, err := r.client.OverallRank(ctx, anchor, mode)
	if err != nil {
		r.logger.Warn().Err(err).Str("anchor", anchor).Msg("could not determine anchor rank")
		return nil
	}

	startRank := anchorRank - int64(ahead)
	if startRank < 1 {
		startRank = 1
	}
	endRank := anchorRank + int64(behind)

	rankToName := make(map[int64]string)
	for _, page := range r.candidatePages(startRank, endRank) {
		html, err := r.client.FetchOverallPage(ctx, page)
		if err != nil {
			// A dead page just means fewer rows; the remaining candidates
			// may still cover the window.
			r.logger.Debug().Err(err).Int("page", page).Msg("overall page fetch failed")
			continue
		}

		for _, row := range hiscores.ParseOverallTable(html) {
			if row.Rank >= startRank && row.Rank <= endRank && row.Name != "" {
				rankToName[row.Rank] = row.Name
			}
		}

		if coversInterval(rankToName, startRank, endRank) {
			break
		}
	}

	if len(rankToName) == 0 {
		r.logger.Warn().
			Str("anchor", anchor).
			Int64("anchor_rank", anchorRank).
			Msg("no leaderboard rows resolved for rank window")
		return nil
	}

	var names []string
	seen := make(map[string]bool)
	for rank := startRank; rank <= endRank; rank++ {
		name, ok := rankToName[rank]
		if !ok || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		names = append(names, name)
	}

	// Pagination drift can push the anchor itself off every fetched page;
	// it must still be tracked whenever a window was resolved.
	if !seen[strings.ToLower(anchor)] {
		names = append(names, anchor)
	}

	r.logger.Info().
		Str("anchor", anchor).
		Int64("anchor_rank", anchorRank).
		Int64("start_rank", startRank).
		Int64("end_rank", endRank).
		Int("resolved", len(names)).
		Msg("rank window resolved")

	return names
}

// candidatePages maps the rank interval onto leaderboard pages, padded by
// one page on each side to tolerate off-by-one placement upstream,
// ascending so the coverage check can terminate early.
func (r *NeighborResolver) candidatePages(startRank, endRank int64) []int {
	firstPage := int((startRank-1)/int64(r.pageSize)) + 1
	lastPage := int((endRank-1)/int64(r.pageSize)) + 1

	var pages []int
	for page := firstPage - 1; page <= lastPage+1; page++ {
		if page >= 1 {
			pages = append(pages, page)
		}
	}
	return pages
}

func coversInterval(rankToName map[int64]string, startRank, endRank int64) bool {
	for rank := startRank; rank <= endRank; rank++ {
		if _, ok := rankToName[rank]; !ok {
			return false
		}
	}
	return true
}

// BuildEntries appends the resolved neighbor names to the base roster and
// deduplicates by (lowercased name, mode), keeping first-seen order.
func BuildEntries(base []domain.TrackedEntry, resolved []string, mode domain.Mode) []domain.TrackedEntry {
	entries := make([]domain.TrackedEntry, 0, len(base)+len(resolved))
	entries = append(entries, base...)
	for _, name := range resolved {
		entries = append(entries, domain.TrackedEntry{Player: name, Mode: mode})
	}

	var deduped []domain.TrackedEntry
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		key := entry.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, entry)
	}
	return deduped
}

// RosterService assembles the per-run tracking set: the static base
// roster plus whatever the resolver finds around the anchor.
type RosterService struct {
	resolver *NeighborResolver
	cfg      *config.Config
	logger   zerolog.Logger
}

func NewRosterService(resolver *NeighborResolver, cfg *config.Config, logger zerolog.Logger) *RosterService {
	return &RosterService{
		resolver: resolver,
		cfg:      cfg,
		logger:   logger.With().Str("component", "roster").Logger(),
	}
}

// DefaultEntries builds the tracking set for one collection run.
func (s *RosterService) DefaultEntries(ctx context.Context) []domain.TrackedEntry {
	neighbors := s.resolver.Resolve(ctx, s.cfg.AnchorPlayer, s.cfg.AnchorMode, s.cfg.TrackAhead, s.cfg.TrackBehind)
	if len(neighbors) == 0 {
		s.logger.Warn().
			Str("anchor", s.cfg.AnchorPlayer).
			Msg("no neighbors resolved, collecting base entries only")
	}
	return BuildEntries(s.cfg.BaseEntries, neighbors, s.cfg.AnchorMode)
}
