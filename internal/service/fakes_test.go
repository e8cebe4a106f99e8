package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/StevenSuh/feeder/internal/domain"
	"github.com/StevenSuh/feeder/internal/repository"
	"github.com/StevenSuh/feeder/internal/riot"

	"github.com/valyala/fasthttp"
)

var errNotFound = repository.ErrNotFound

type matchIDCall struct {
	puuid string
	start int
	count int
}

// fakeAPI is an in-memory MatchAPI. Summoners are keyed by lowercased name;
// match ids per puuid are a flat list that GetMatchIDs pages over the way
// Riot does.
type fakeAPI struct {
	mu sync.Mutex

	summoners   map[string]*riot.Summoner
	summonerErr error

	idsByPuuid    map[string][]string
	idsErr        error
	idsErrByPuuid map[string]error
	idCalls       []matchIDCall

	matches    map[string]*riot.Match
	matchErrs  map[string]error
	matchCalls map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		summoners:     make(map[string]*riot.Summoner),
		idsByPuuid:    make(map[string][]string),
		idsErrByPuuid: make(map[string]error),
		matches:    make(map[string]*riot.Match),
		matchErrs:  make(map[string]error),
		matchCalls: make(map[string]int),
	}
}

func (f *fakeAPI) addSummoner(puuid, name string) {
	f.summoners[strings.ToLower(name)] = &riot.Summoner{Puuid: puuid, Name: name}
}

func (f *fakeAPI) addMatch(m *riot.Match) {
	f.matches[m.Metadata.MatchID] = m
}

func (f *fakeAPI) GetSummonerByName(ctx context.Context, name string) (*riot.Summoner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.summonerErr != nil {
		return nil, f.summonerErr
	}
	s, ok := f.summoners[strings.ToLower(name)]
	if !ok {
		return nil, &riot.APIError{StatusCode: fasthttp.StatusNotFound}
	}
	return s, nil
}

func (f *fakeAPI) GetMatchIDs(ctx context.Context, puuid string, startTime int64, start, count int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.idCalls = append(f.idCalls, matchIDCall{puuid: puuid, start: start, count: count})
	if f.idsErr != nil {
		return nil, f.idsErr
	}
	if err, ok := f.idsErrByPuuid[puuid]; ok {
		return nil, err
	}
	all := f.idsByPuuid[puuid]
	if start >= len(all) {
		return []string{}, nil
	}
	end := start + count
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (f *fakeAPI) GetMatch(ctx context.Context, matchID string) (*riot.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matchCalls[matchID]++
	if err, ok := f.matchErrs[matchID]; ok {
		return nil, err
	}
	m, ok := f.matches[matchID]
	if !ok {
		return nil, &riot.APIError{StatusCode: fasthttp.StatusNotFound}
	}
	return m, nil
}

// fakeStore is an in-memory FeederStore.
type fakeStore struct {
	mu      sync.Mutex
	feeders []domain.Feeder

	insertErr error
	statsErr  error

	statUpdates []string
	nameUpdates []string
	deleted     [][]string
}

func (f *fakeStore) ListAll(ctx context.Context) ([]domain.Feeder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Feeder, len(f.feeders))
	copy(out, f.feeders)
	return out, nil
}

func (f *fakeStore) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.feeders), nil
}

func (f *fakeStore) Insert(ctx context.Context, puuid, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.feeders = append(f.feeders, domain.Feeder{Puuid: puuid, Name: name})
	return nil
}

func (f *fakeStore) GetByNameFold(ctx context.Context, name string) (*domain.Feeder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.feeders {
		if strings.EqualFold(f.feeders[i].Name, name) {
			feeder := f.feeders[i]
			return &feeder, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeStore) DeleteByIDs(ctx context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ids)
	var kept []domain.Feeder
	for _, feeder := range f.feeders {
		remove := false
		for _, id := range ids {
			if feeder.Puuid == id {
				remove = true
				break
			}
		}
		if !remove {
			kept = append(kept, feeder)
		}
	}
	f.feeders = kept
	return nil
}

func (f *fakeStore) UpdateStats(ctx context.Context, puuid string, stats domain.Stats, lastFetched time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statsErr != nil {
		return f.statsErr
	}
	f.statUpdates = append(f.statUpdates, puuid)
	for i := range f.feeders {
		if f.feeders[i].Puuid == puuid {
			f.feeders[i].Stats = stats
			f.feeders[i].LastFetched = lastFetched
		}
	}
	return nil
}

func (f *fakeStore) UpdateName(ctx context.Context, puuid, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nameUpdates = append(f.nameUpdates, puuid)
	for i := range f.feeders {
		if f.feeders[i].Puuid == puuid {
			f.feeders[i].Name = name
		}
	}
	return nil
}

func (f *fakeStore) get(puuid string) *domain.Feeder {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.feeders {
		if f.feeders[i].Puuid == puuid {
			feeder := f.feeders[i]
			return &feeder
		}
	}
	return nil
}
