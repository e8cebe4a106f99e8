package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/StevenSuh/feeder/internal/domain"
	"github.com/StevenSuh/feeder/internal/middleware"
	"github.com/StevenSuh/feeder/internal/riot"
	"github.com/StevenSuh/feeder/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const riotFailureMessage = "Riot API failed probably because of their stingy rate limiting - try again in 2 minutes"

// Roster is the slice of the roster service the HTTP layer consumes.
type Roster interface {
	Refresh(ctx context.Context, forceIDs []string) ([]domain.Feeder, error)
	AddFeeder(ctx context.Context, name string) (string, error)
	RemoveFeeders(ctx context.Context, ids []string) error
}

type Server struct {
	roster Roster
	logger zerolog.Logger
}

func NewServer(roster Roster, logger zerolog.Logger) *Server {
	return &Server{roster: roster, logger: logger}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/api/feeders", s.ListFeeders)
	r.Post("/api/feeder", s.AddFeeder)
	r.Delete("/api/feeders", s.RemoveFeeders)
}

type feederResponse struct {
	ID                                  string   `json:"id"`
	FeederName                          string   `json:"feederName"`
	LastFetched                         int64    `json:"lastFetched"`
	HoursPlayedOneWeek                  int      `json:"hoursPlayedOneWeek"`
	GamesPlayedOneWeek                  int      `json:"gamesPlayedOneWeek"`
	AvgImpactScoreOneWeek               int      `json:"avgImpactScoreOneWeek"`
	DeathParticipationPercentageOneWeek *float64 `json:"deathParticipationPercentageOneWeek"`
	KillParticipationPercentageOneWeek  *float64 `json:"killParticipationPercentageOneWeek"`
}

func toFeederResponse(f domain.Feeder) feederResponse {
	return feederResponse{
		ID:                                  f.Puuid,
		FeederName:                          f.Name,
		LastFetched:                         f.LastFetchedMillis(),
		HoursPlayedOneWeek:                  f.Stats.HoursPlayedOneWeek,
		GamesPlayedOneWeek:                  f.Stats.GamesPlayedOneWeek,
		AvgImpactScoreOneWeek:               f.Stats.AvgImpactScoreOneWeek,
		DeathParticipationPercentageOneWeek: f.Stats.DeathParticipationOneWeek,
		KillParticipationPercentageOneWeek:  f.Stats.KillParticipationOneWeek,
	}
}

// ListFeeders refreshes due entries and returns the whole roster. The
// optional ids query parameter forces a refresh of those entries regardless
// of staleness.
func (s *Server) ListFeeders(w http.ResponseWriter, r *http.Request) {
	var forceIDs []string
	if raw := r.URL.Query().Get("ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				forceIDs = append(forceIDs, id)
			}
		}
	}

	feeders, err := s.roster.Refresh(r.Context(), forceIDs)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	resp := make([]feederResponse, len(feeders))
	for i, f := range feeders {
		resp[i] = toFeederResponse(f)
	}
	writeJSON(w, http.StatusOK, resp)
}

type addFeederRequest struct {
	Name string `json:"name"`
}

func (s *Server) AddFeeder(w http.ResponseWriter, r *http.Request) {
	var req addFeederRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	puuid, err := s.roster.AddFeeder(r.Context(), req.Name)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": puuid})
}

type removeFeedersRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) RemoveFeeders(w http.ResponseWriter, r *http.Request) {
	var req removeFeedersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.roster.RemoveFeeders(r.Context(), req.IDs); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{})
}

func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := s.logger
	if id := middleware.GetRequestID(ctx); id != "" {
		logger = logger.With().Str("request_id", id).Logger()
	}

	if service.IsValidation(err) {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var apiErr *riot.APIError
	if errors.As(err, &apiErr) {
		logger.Warn().Int("upstream_status", apiErr.StatusCode).Msg("riot API failure surfaced to client")
		writeMessage(w, http.StatusBadRequest, riotFailureMessage)
		return
	}

	logger.Error().Err(err).Msg("request failed")
	writeMessage(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
