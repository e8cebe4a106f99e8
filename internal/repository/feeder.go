package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/StevenSuh/feeder/internal/domain"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a lookup matches no feeder.
var ErrNotFound = sql.ErrNoRows

type FeederRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewFeederRepository(sqlDB *sql.DB, logger zerolog.Logger) *FeederRepository {
	return &FeederRepository{
		db:     sqlDB,
		logger: logger,
	}
}

const feederColumns = `puuid, name, hours_played_one_week, games_played_one_week,
	avg_impact_score_one_week, death_participation_one_week,
	kill_participation_one_week, last_fetched, created_at, updated_at`

func (r *FeederRepository) ListAll(ctx context.Context) ([]domain.Feeder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+feederColumns+` FROM feeders ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feeders []domain.Feeder
	for rows.Next() {
		feeder, err := scanFeeder(rows)
		if err != nil {
			return nil, err
		}
		feeders = append(feeders, *feeder)
	}
	return feeders, rows.Err()
}

func (r *FeederRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feeders`).Scan(&count)
	return count, err
}

func (r *FeederRepository) Insert(ctx context.Context, puuid, name string) error {
	now := time.Now().Unix()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO feeders (puuid, name, last_fetched, created_at, updated_at)
		 VALUES (?, ?, 0, ?, ?)`,
		puuid, name, now, now)
	if err != nil {
		r.logger.Error().Err(err).Str("puuid", puuid).Str("name", name).Msg("failed to insert feeder")
		return fmt.Errorf("failed to insert feeder %s: %w", puuid, err)
	}
	return nil
}

// GetByNameFold looks a feeder up by exact case-insensitive name match.
func (r *FeederRepository) GetByNameFold(ctx context.Context, name string) (*domain.Feeder, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+feederColumns+` FROM feeders WHERE LOWER(name) = LOWER(?)`, name)
	return scanFeeder(row)
}

// DeleteByIDs removes every feeder whose puuid is in ids. Absent ids are
// not an error.
func (r *FeederRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM feeders WHERE puuid IN (`+placeholders+`)`, args...)
	if err != nil {
		r.logger.Error().Err(err).Strs("ids", ids).Msg("failed to delete feeders")
		return fmt.Errorf("failed to delete feeders: %w", err)
	}

	deleted, _ := result.RowsAffected()
	r.logger.Info().Int64("deleted", deleted).Int("requested", len(ids)).Msg("feeders deleted")
	return nil
}

func (r *FeederRepository) UpdateStats(ctx context.Context, puuid string, stats domain.Stats, lastFetched time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE feeders SET
			hours_played_one_week = ?,
			games_played_one_week = ?,
			avg_impact_score_one_week = ?,
			death_participation_one_week = ?,
			kill_participation_one_week = ?,
			last_fetched = ?,
			updated_at = ?
		 WHERE puuid = ?`,
		stats.HoursPlayedOneWeek,
		stats.GamesPlayedOneWeek,
		stats.AvgImpactScoreOneWeek,
		nullFloat(stats.DeathParticipationOneWeek),
		nullFloat(stats.KillParticipationOneWeek),
		lastFetched.UnixMilli(),
		time.Now().Unix(),
		puuid)
	if err != nil {
		r.logger.Error().Err(err).Str("puuid", puuid).Msg("failed to update feeder stats")
		return fmt.Errorf("failed to update stats for %s: %w", puuid, err)
	}
	return nil
}

func (r *FeederRepository) UpdateName(ctx context.Context, puuid, name string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE feeders SET name = ?, updated_at = ? WHERE puuid = ?`,
		name, time.Now().Unix(), puuid)
	if err != nil {
		r.logger.Error().Err(err).Str("puuid", puuid).Msg("failed to update feeder name")
		return fmt.Errorf("failed to update name for %s: %w", puuid, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeeder(row rowScanner) (*domain.Feeder, error) {
	var (
		feeder      domain.Feeder
		death       sql.NullFloat64
		kill        sql.NullFloat64
		lastFetched int64
		createdAt   int64
		updatedAt   int64
	)

	err := row.Scan(
		&feeder.Puuid,
		&feeder.Name,
		&feeder.Stats.HoursPlayedOneWeek,
		&feeder.Stats.GamesPlayedOneWeek,
		&feeder.Stats.AvgImpactScoreOneWeek,
		&death,
		&kill,
		&lastFetched,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if death.Valid {
		feeder.Stats.DeathParticipationOneWeek = &death.Float64
	}
	if kill.Valid {
		feeder.Stats.KillParticipationOneWeek = &kill.Float64
	}
	if lastFetched > 0 {
		feeder.LastFetched = time.UnixMilli(lastFetched)
	}
	feeder.CreatedAt = time.Unix(createdAt, 0)
	feeder.UpdatedAt = time.Unix(updatedAt, 0)

	return &feeder, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
