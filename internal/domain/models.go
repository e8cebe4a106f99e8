package domain

import (
	"time"
)

type Feeder struct {
	Puuid       string
	Name        string
	LastFetched time.Time // zero until the first successful aggregation
	Stats       Stats
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Stats holds the derived one-week numbers cached on a roster entry.
// The participation ratios are nil when the relevant team kill totals are
// zero for the window; they serialize as null and render as "N/A".
type Stats struct {
	HoursPlayedOneWeek    int
	GamesPlayedOneWeek    int
	AvgImpactScoreOneWeek int

	DeathParticipationOneWeek *float64
	KillParticipationOneWeek  *float64
}

// LastFetchedMillis is the wire form of LastFetched: epoch millis, 0 for
// never fetched.
func (f *Feeder) LastFetchedMillis() int64 {
	if f.LastFetched.IsZero() {
		return 0
	}
	return f.LastFetched.UnixMilli()
}
