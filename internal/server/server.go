package server

import (
	"encoding/json"
	"net/http"

	"osrs-tracker/internal/domain"
	"osrs-tracker/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DashboardServer exposes the snapshot store as a read-only JSON API for
// the charting frontend.
type DashboardServer struct {
	repo   *repository.SnapshotRepository
	logger zerolog.Logger
}

func NewDashboardServer(repo *repository.SnapshotRepository, logger zerolog.Logger) *DashboardServer {
	return &DashboardServer{
		repo:   repo,
		logger: logger.With().Str("component", "server").Logger(),
	}
}

func (s *DashboardServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/players", s.handlePlayers)
	mux.HandleFunc("GET /api/players/{player}/skills/latest", s.handleLatestSkills)
	mux.HandleFunc("GET /api/players/{player}/skills/{skill}/history", s.handleSkillHistory)
	mux.HandleFunc("GET /api/players/{player}/stats", s.handlePlayerStats)
	mux.HandleFunc("GET /api/ranks/latest", s.handleLatestRanks)
	return mux
}

func (s *DashboardServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *DashboardServer) handlePlayers(w http.ResponseWriter, r *http.Request) {
	entries, err := s.repo.ListPlayers(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	type player struct {
		Player string `json:"player"`
		Mode   string `json:"mode"`
	}
	players := make([]player, 0, len(entries))
	for _, entry := range entries {
		players = append(players, player{Player: entry.Player, Mode: string(entry.Mode)})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"players": players})
}

func (s *DashboardServer) handleLatestSkills(w http.ResponseWriter, r *http.Request) {
	mode, ok := s.queryMode(w, r)
	if !ok {
		return
	}

	skills, err := s.repo.LatestSkills(r.Context(), r.PathValue("player"), mode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	type skillRow struct {
		Skill string `json:"skill"`
		Rank  *int64 `json:"rank"`
		Level *int64 `json:"level"`
		XP    *int64 `json:"xp"`
	}
	rows := make([]skillRow, 0, len(skills))
	for _, skill := range skills {
		rows = append(rows, skillRow{Skill: skill.Skill, Rank: skill.Rank, Level: skill.Level, XP: skill.XP})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"skills": rows})
}

func (s *DashboardServer) handleSkillHistory(w http.ResponseWriter, r *http.Request) {
	mode, ok := s.queryMode(w, r)
	if !ok {
		return
	}

	points, err := s.repo.SkillHistory(r.Context(), r.PathValue("player"), r.PathValue("skill"), mode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if points == nil {
		points = []repository.SkillPoint{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"history": points})
}

func (s *DashboardServer) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	mode, ok := s.queryMode(w, r)
	if !ok {
		return
	}
	player := r.PathValue("player")

	var (
		count       int64
		first, last *string
	)
	group, ctx := errgroup.WithContext(r.Context())
	group.Go(func() error {
		var err error
		count, err = s.repo.SnapshotCount(ctx, player, mode)
		return err
	})
	group.Go(func() error {
		var err error
		first, last, err = s.repo.FirstLastDates(ctx, player, mode)
		return err
	})
	if err := group.Wait(); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"player":     player,
		"mode":       string(mode),
		"snapshots":  count,
		"first_date": first,
		"last_date":  last,
	})
}

func (s *DashboardServer) handleLatestRanks(w http.ResponseWriter, r *http.Request) {
	ranks, err := s.repo.LatestOverallRanks(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ranks == nil {
		ranks = []domain.PlayerRank{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ranks": ranks})
}

// queryMode reads the optional ?mode= parameter, defaulting to regular.
func (s *DashboardServer) queryMode(w http.ResponseWriter, r *http.Request) (domain.Mode, bool) {
	raw := r.URL.Query().Get("mode")
	if raw == "" {
		return domain.ModeRegular, true
	}
	mode, err := domain.ParseMode(raw)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return "", false
	}
	return mode, true
}

func (s *DashboardServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *DashboardServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
