package constants

import "time"

const (
	// MatchWindow is the trailing window matches are aggregated over.
	MatchWindow = 7 * 24 * time.Hour

	// MatchIDPageSize is the Riot match-id listing page size; a page
	// shorter than this marks the end of the window.
	MatchIDPageSize = 100
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second

	// RefreshTimeout bounds a whole roster refresh cycle. A cycle can fan
	// out to dozens of match-detail fetches behind the rate limiter, so it
	// is far looser than the per-call timeout.
	RefreshTimeout = 5 * time.Minute
)

const (
	RefreshConcurrency = 4
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)
