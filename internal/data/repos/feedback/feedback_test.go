package feedback

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fitpilot/fitpilot-backend/internal/data/repos/testutil"
	types "github.com/fitpilot/fitpilot-backend/internal/domain"
	"github.com/fitpilot/fitpilot-backend/internal/pkg/pointers"
)

func TestUserFeedbackRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserFeedbackRepo(db, testutil.Logger(t))
	ctx := context.Background()
	userID := uuid.New()
	today := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	for i, rating := range []int{4, 3, 5} {
		f := &types.UserFeedback{
			UserID:       userID,
			FeedbackDate: today.AddDate(0, 0, -i),
			Rating:       pointers.Int(rating),
		}
		if err := repo.Create(ctx, tx, f); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if err := repo.Create(ctx, tx, &types.UserFeedback{UserID: uuid.New(), FeedbackDate: today.AddDate(0, 0, -1)}); err != nil {
		t.Fatalf("Create other user: %v", err)
	}

	window, err := repo.ListRange(ctx, tx, userID, today.AddDate(0, 0, -7), today)
	if err != nil {
		t.Fatalf("ListRange: %v", err)
	}
	if len(window) != 2 {
		t.Fatalf("ListRange: expected 2 rows ending yesterday, got %d", len(window))
	}
	if !window[0].FeedbackDate.After(window[1].FeedbackDate) {
		t.Fatalf("ListRange: expected newest first")
	}

	got, err := repo.GetLatestOnDay(ctx, tx, userID, today)
	if err != nil || got == nil || *got.Rating != 4 {
		t.Fatalf("GetLatestOnDay: %+v, %v", got, err)
	}
	none, err := repo.GetLatestOnDay(ctx, tx, userID, today.AddDate(0, 0, -5))
	if err != nil || none != nil {
		t.Fatalf("GetLatestOnDay (empty day): %+v, %v", none, err)
	}
}
