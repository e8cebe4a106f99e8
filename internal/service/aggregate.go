package service

import (
	"context"
	"sync"
	"time"

	"github.com/StevenSuh/feeder/internal/constants"
	"github.com/StevenSuh/feeder/internal/domain"
	"github.com/StevenSuh/feeder/internal/riot"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// MatchAPI is the slice of the Riot client the aggregation pipeline needs.
type MatchAPI interface {
	GetSummonerByName(ctx context.Context, name string) (*riot.Summoner, error)
	GetMatchIDs(ctx context.Context, puuid string, startTime int64, start, count int) ([]string, error)
	GetMatch(ctx context.Context, matchID string) (*riot.Match, error)
}

// Aggregator discovers a player's matches inside the trailing window and
// reduces them into derived statistics. Matches are transient: fetched per
// refresh cycle, reduced, discarded.
type Aggregator struct {
	api    MatchAPI
	logger zerolog.Logger
}

func NewAggregator(api MatchAPI, logger zerolog.Logger) *Aggregator {
	return &Aggregator{api: api, logger: logger}
}

// CollectRecentMatchIDs pages through the player's match ids within the
// trailing window. The offset advances by the number of ids already
// collected; a page shorter than the page size is the end of the data.
// Returns the raw concatenation, no dedupe.
func (a *Aggregator) CollectRecentMatchIDs(ctx context.Context, puuid string) ([]string, error) {
	windowStart := time.Now().Add(-constants.MatchWindow).Unix()

	var matchIDs []string
	for {
		page, err := a.api.GetMatchIDs(ctx, puuid, windowStart, len(matchIDs), constants.MatchIDPageSize)
		if err != nil {
			return nil, err
		}

		matchIDs = append(matchIDs, page...)

		if len(page) < constants.MatchIDPageSize {
			break
		}
	}

	a.logger.Debug().Str("puuid", puuid).Int("match_count", len(matchIDs)).Msg("collected recent match ids")
	return matchIDs, nil
}

// FetchMatchDetails fetches full detail for every distinct id across all
// the per-player lists, each exactly once. A match shared by two tracked
// players costs a single request. The first failure cancels the rest.
func (a *Aggregator) FetchMatchDetails(ctx context.Context, idsByPlayer map[string][]string) (map[string]*riot.Match, error) {
	seen := make(map[string]bool)
	var distinct []string
	for _, ids := range idsByPlayer {
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			distinct = append(distinct, id)
		}
	}

	details := make(map[string]*riot.Match, len(distinct))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(constants.RefreshConcurrency)

	for _, id := range distinct {
		id := id
		g.Go(func() error {
			match, err := a.api.GetMatch(gCtx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			details[id] = match
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		a.logger.Error().Err(err).Int("match_count", len(distinct)).Msg("failed to fetch match details")
		return nil, err
	}

	a.logger.Debug().Int("match_count", len(distinct)).Msg("match details fetched")
	return details, nil
}

// ComputeStats reduces the player's matches for the window into the cached
// statistic fields. It never divides by zero: ratios whose denominator sums
// to zero come back nil.
func ComputeStats(puuid string, matchIDs []string, details map[string]*riot.Match) domain.Stats {
	var (
		totalDuration   int64
		totalKills      int
		totalDeaths     int
		totalAssists    int
		totalImpact     int
		totalTeamKills  int
		totalEnemyKills int
	)

	for _, id := range matchIDs {
		match, ok := details[id]
		if !ok {
			continue
		}

		// Two upstream schema generations: with an explicit end
		// timestamp the duration is already seconds, without it the
		// field holds milliseconds.
		if match.Info.GameEndTimestamp != 0 {
			totalDuration += match.Info.GameDuration
		} else {
			totalDuration += match.Info.GameDuration / 1000
		}

		var self *riot.Participant
		for i := range match.Info.Participants {
			if match.Info.Participants[i].Puuid == puuid {
				self = &match.Info.Participants[i]
				break
			}
		}
		if self == nil {
			continue
		}

		totalKills += self.Kills
		totalDeaths += self.Deaths
		totalAssists += self.Assists
		totalImpact += self.TimeCCingOthers

		for _, p := range match.Info.Participants {
			if p.TeamID == self.TeamID {
				totalTeamKills += p.Kills
			} else {
				totalEnemyKills += p.Kills
			}
		}
	}

	stats := domain.Stats{
		HoursPlayedOneWeek: int(totalDuration / 3600),
		GamesPlayedOneWeek: len(matchIDs),
	}

	if len(matchIDs) > 0 {
		stats.AvgImpactScoreOneWeek = totalImpact / len(matchIDs)
	}
	if totalTeamKills > 0 {
		kp := float64(totalKills+totalAssists) / float64(totalTeamKills)
		stats.KillParticipationOneWeek = &kp
	}
	if totalEnemyKills > 0 {
		dp := float64(totalDeaths) / float64(totalEnemyKills)
		stats.DeathParticipationOneWeek = &dp
	}

	return stats
}
