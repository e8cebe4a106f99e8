package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/StevenSuh/feeder/internal/config"
	"github.com/StevenSuh/feeder/internal/constants"
	"github.com/StevenSuh/feeder/internal/domain"
	"github.com/StevenSuh/feeder/internal/repository"
	"github.com/StevenSuh/feeder/internal/riot"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// FeederStore is the persisted roster collection, keyed by puuid.
type FeederStore interface {
	ListAll(ctx context.Context) ([]domain.Feeder, error)
	Count(ctx context.Context) (int, error)
	Insert(ctx context.Context, puuid, name string) error
	GetByNameFold(ctx context.Context, name string) (*domain.Feeder, error)
	DeleteByIDs(ctx context.Context, ids []string) error
	UpdateStats(ctx context.Context, puuid string, stats domain.Stats, lastFetched time.Time) error
	UpdateName(ctx context.Context, puuid, name string) error
}

// RosterService owns the roster lifecycle: add, remove, and the
// staleness-driven refresh that re-aggregates due entries.
type RosterService struct {
	api        MatchAPI
	store      FeederStore
	aggregator *Aggregator
	capacity   int
	staleAfter time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

func NewRosterService(api MatchAPI, store FeederStore, aggregator *Aggregator, cfg *config.Config, logger zerolog.Logger) *RosterService {
	return &RosterService{
		api:        api,
		store:      store,
		aggregator: aggregator,
		capacity:   cfg.RosterCapacity,
		staleAfter: cfg.StaleAfter,
		logger:     logger,
		now:        time.Now,
	}
}

// Refresh re-aggregates every due roster entry and returns the full roster.
// An entry is due when its id is in forceIDs or its cached stats are older
// than the staleness threshold. Profile lookups run for every entry so
// upstream renames propagate even to entries that are not due.
//
// One entry's pipeline failure aborts the whole refresh; no partial payload
// is returned.
func (s *RosterService) Refresh(ctx context.Context, forceIDs []string) ([]domain.Feeder, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RefreshTimeout)
	defer cancel()

	cycleID, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	logger := s.logger.With().Str("cycle_id", cycleID).Logger()

	feeders, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(feeders) == 0 {
		return []domain.Feeder{}, nil
	}

	forced := make(map[string]bool, len(forceIDs))
	for _, id := range forceIDs {
		forced[id] = true
	}

	now := s.now()
	var due []domain.Feeder
	for _, f := range feeders {
		if forced[f.Puuid] || now.Sub(f.LastFetched) > s.staleAfter {
			due = append(due, f)
		}
	}

	logger.Info().
		Int("roster_size", len(feeders)).
		Int("due", len(due)).
		Int("forced", len(forceIDs)).
		Msg("starting refresh cycle")

	var mu sync.Mutex
	renames := make(map[string]string)
	idsByPuuid := make(map[string][]string, len(due))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(constants.RefreshConcurrency)

	for _, f := range feeders {
		f := f
		g.Go(func() error {
			summoner, err := s.api.GetSummonerByName(gCtx, f.Name)
			if err != nil {
				if riot.IsNotFound(err) {
					// Renamed out from under us; keep the stored
					// name until the owner fixes it.
					logger.Warn().Str("puuid", f.Puuid).Str("name", f.Name).Msg("summoner name no longer resolves")
					return nil
				}
				return err
			}
			if summoner.Puuid == f.Puuid && summoner.Name != f.Name {
				mu.Lock()
				renames[f.Puuid] = summoner.Name
				mu.Unlock()
			}
			return nil
		})
	}

	for _, f := range due {
		f := f
		g.Go(func() error {
			matchIDs, err := s.aggregator.CollectRecentMatchIDs(gCtx, f.Puuid)
			if err != nil {
				return err
			}
			mu.Lock()
			idsByPuuid[f.Puuid] = matchIDs
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("refresh cycle failed")
		return nil, err
	}

	details, err := s.aggregator.FetchMatchDetails(ctx, idsByPuuid)
	if err != nil {
		logger.Error().Err(err).Msg("refresh cycle failed")
		return nil, err
	}

	// Persist only after every fetch for the cycle resolved.
	fetchedAt := s.now()
	for _, f := range due {
		stats := ComputeStats(f.Puuid, idsByPuuid[f.Puuid], details)
		if err := s.store.UpdateStats(ctx, f.Puuid, stats, fetchedAt); err != nil {
			return nil, err
		}
	}
	for puuid, name := range renames {
		if err := s.store.UpdateName(ctx, puuid, name); err != nil {
			return nil, err
		}
	}

	logger.Info().Int("refreshed", len(due)).Int("renamed", len(renames)).Msg("refresh cycle completed")
	return s.store.ListAll(ctx)
}

// AddFeeder adds a player by display name. All validation runs before the
// upstream profile lookup. Returns the new entry's puuid.
func (s *RosterService) AddFeeder(ctx context.Context, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}

	count, err := s.store.Count(ctx)
	if err != nil {
		return "", err
	}
	if count >= s.capacity {
		return "", ErrRosterFull
	}

	existing, err := s.store.GetByNameFold(ctx, name)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}
	if existing != nil {
		return "", ErrDuplicateName
	}

	summoner, err := s.api.GetSummonerByName(ctx, name)
	if err != nil {
		if riot.IsNotFound(err) {
			return "", &NotFoundError{Name: name}
		}
		s.logger.Error().Err(err).Str("name", name).Msg("failed to fetch summoner profile")
		return "", err
	}
	if summoner.Puuid == "" {
		return "", &NotFoundError{Name: name}
	}

	if err := s.store.Insert(ctx, summoner.Puuid, summoner.Name); err != nil {
		return "", err
	}

	s.logger.Info().Str("puuid", summoner.Puuid).Str("name", summoner.Name).Msg("feeder added")
	return summoner.Puuid, nil
}

// RemoveFeeders deletes every roster entry whose id is in ids. Absent ids
// are tolerated; an empty selection is not.
func (s *RosterService) RemoveFeeders(ctx context.Context, ids []string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	var cleaned []string
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			cleaned = append(cleaned, id)
		}
	}
	if len(cleaned) == 0 {
		return ErrNoSelection
	}

	return s.store.DeleteByIDs(ctx, cleaned)
}
