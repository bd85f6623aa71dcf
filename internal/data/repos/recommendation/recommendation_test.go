package recommendation

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/fitpilot/fitpilot-backend/internal/data/repos/testutil"
)

func TestUserRecommendationRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRecommendationRepo(db, testutil.Logger(t))
	ctx := context.Background()
	userID := uuid.New()

	exists, err := repo.Exists(ctx, tx, userID)
	if err != nil || exists {
		t.Fatalf("Exists (empty): %v, %v", exists, err)
	}

	if err := repo.Upsert(ctx, tx, userID, "2026-10-15", []byte(`{"title":"first"}`)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Upsert(ctx, tx, userID, "2026-10-15", []byte(`{"title":"second"}`)); err != nil {
		t.Fatalf("Upsert (overwrite): %v", err)
	}

	rows, err := repo.ListRange(ctx, tx, userID, "2026-10-01", "2026-10-31")
	if err != nil {
		t.Fatalf("ListRange: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row per (user, date), got %d", len(rows))
	}

	got, err := repo.GetByUserAndDate(ctx, tx, userID, "2026-10-15")
	if err != nil || got == nil {
		t.Fatalf("GetByUserAndDate: %+v, %v", got, err)
	}
	if string(got.PlanJSON) != `{"title":"second"}` {
		t.Fatalf("expected overwrite, got %s", got.PlanJSON)
	}

	exists, err = repo.Exists(ctx, tx, userID)
	if err != nil || !exists {
		t.Fatalf("Exists: %v, %v", exists, err)
	}
}

func TestUserRecommendationRepoHistory(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRecommendationRepo(db, testutil.Logger(t))
	ctx := context.Background()
	userID := uuid.New()

	for _, d := range []string{"2026-10-07", "2026-10-12", "2026-10-14", "2026-10-15"} {
		if err := repo.Upsert(ctx, tx, userID, d, []byte(`{"title":"`+d+`"}`)); err != nil {
			t.Fatalf("Upsert %s: %v", d, err)
		}
	}

	rows, err := repo.ListRange(ctx, tx, userID, "2026-10-08", "2026-10-15")
	if err != nil {
		t.Fatalf("ListRange: %v", err)
	}
	if len(rows) != 2 || rows[0].PlanDate != "2026-10-14" || rows[1].PlanDate != "2026-10-12" {
		t.Fatalf("ListRange: unexpected rows %+v", rows)
	}

	latest, err := repo.GetLatestByUser(ctx, tx, userID)
	if err != nil || latest == nil || latest.PlanDate != "2026-10-15" {
		t.Fatalf("GetLatestByUser: %+v, %v", latest, err)
	}

	missing, err := repo.GetByUserAndDate(ctx, tx, userID, "2026-10-01")
	if err != nil || missing != nil {
		t.Fatalf("GetByUserAndDate (missing): %+v, %v", missing, err)
	}
}
