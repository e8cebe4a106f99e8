package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/StevenSuh/feeder/internal/database"
	"github.com/StevenSuh/feeder/internal/domain"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

func newTestRepo(t *testing.T) *FeederRepository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return NewFeederRepository(db, zerolog.Nop())
}

func TestInsertAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, "p1", "Alpha"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := repo.Insert(ctx, "p2", "Beta"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	feeders, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(feeders) != 2 {
		t.Fatalf("got %d feeders, want 2", len(feeders))
	}

	got := feeders[0]
	if got.Puuid != "p1" || got.Name != "Alpha" {
		t.Errorf("first feeder = %+v", got)
	}
	if !got.LastFetched.IsZero() {
		t.Errorf("new feeder LastFetched = %v, want zero", got.LastFetched)
	}
	if got.Stats.KillParticipationOneWeek != nil {
		t.Error("new feeder should have nil kill participation")
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}
}

func TestInsertDuplicatePuuid(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, "p1", "Alpha"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := repo.Insert(ctx, "p1", "AlphaAgain"); err == nil {
		t.Fatal("Insert() with duplicate puuid should fail")
	}
}

func TestGetByNameFold(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, "p1", "MixedCase"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	tests := []struct {
		name  string
		query string
		found bool
	}{
		{"exact", "MixedCase", true},
		{"different case", "mixedcase", true},
		{"upper", "MIXEDCASE", true},
		{"substring does not match", "Mixed", false},
		{"regex metacharacters are literal", "Mixed.*", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feeder, err := repo.GetByNameFold(ctx, tt.query)
			if tt.found {
				if err != nil {
					t.Fatalf("GetByNameFold(%q) error = %v", tt.query, err)
				}
				if feeder.Puuid != "p1" {
					t.Errorf("puuid = %q, want p1", feeder.Puuid)
				}
				return
			}
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("GetByNameFold(%q) error = %v, want ErrNotFound", tt.query, err)
			}
		})
	}
}

func TestDeleteByIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, f := range []struct{ puuid, name string }{
		{"p1", "Alpha"}, {"p2", "Beta"}, {"p3", "Gamma"},
	} {
		if err := repo.Insert(ctx, f.puuid, f.name); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	// One absent id in the set is fine.
	if err := repo.DeleteByIDs(ctx, []string{"p1", "p3", "ghost"}); err != nil {
		t.Fatalf("DeleteByIDs() error = %v", err)
	}

	feeders, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(feeders) != 1 || feeders[0].Puuid != "p2" {
		t.Errorf("remaining = %+v, want just p2", feeders)
	}
}

func TestUpdateStats(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, "p1", "Alpha"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	kp := 0.4
	fetchedAt := time.Now().Truncate(time.Millisecond)
	stats := domain.Stats{
		HoursPlayedOneWeek:       12,
		GamesPlayedOneWeek:       30,
		AvgImpactScoreOneWeek:    45,
		KillParticipationOneWeek: &kp,
		// death participation stays undefined
	}

	if err := repo.UpdateStats(ctx, "p1", stats, fetchedAt); err != nil {
		t.Fatalf("UpdateStats() error = %v", err)
	}

	feeders, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	got := feeders[0]

	if got.Stats.HoursPlayedOneWeek != 12 || got.Stats.GamesPlayedOneWeek != 30 || got.Stats.AvgImpactScoreOneWeek != 45 {
		t.Errorf("stats = %+v", got.Stats)
	}
	if got.Stats.KillParticipationOneWeek == nil || *got.Stats.KillParticipationOneWeek != 0.4 {
		t.Errorf("kill participation = %v, want 0.4", got.Stats.KillParticipationOneWeek)
	}
	if got.Stats.DeathParticipationOneWeek != nil {
		t.Errorf("death participation = %v, want nil", got.Stats.DeathParticipationOneWeek)
	}
	if !got.LastFetched.Equal(fetchedAt) {
		t.Errorf("LastFetched = %v, want %v", got.LastFetched, fetchedAt)
	}
}

func TestUpdateName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, "p1", "OldName"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := repo.UpdateName(ctx, "p1", "NewName"); err != nil {
		t.Fatalf("UpdateName() error = %v", err)
	}

	feeder, err := repo.GetByNameFold(ctx, "newname")
	if err != nil {
		t.Fatalf("GetByNameFold() error = %v", err)
	}
	if feeder.Name != "NewName" {
		t.Errorf("name = %q, want NewName", feeder.Name)
	}
}
