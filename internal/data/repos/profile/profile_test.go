package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/fitpilot/fitpilot-backend/internal/data/repos/testutil"
	types "github.com/fitpilot/fitpilot-backend/internal/domain"
	pkgerrors "github.com/fitpilot/fitpilot-backend/internal/pkg/errors"
	"github.com/fitpilot/fitpilot-backend/internal/pkg/pointers"
)

func TestUserProfileRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserProfileRepo(db, testutil.Logger(t))
	ctx := context.Background()
	userID := uuid.New()

	missing, err := repo.GetByUserID(ctx, tx, userID)
	if err != nil || missing != nil {
		t.Fatalf("GetByUserID (missing): got %+v, %v", missing, err)
	}

	p := &types.UserProfile{
		UserID:    userID,
		Sex:       types.SexFemale,
		WeightKG:  pointers.Float64(58),
		Goal:      types.GoalCut,
		LabValues: datatypes.JSON(`{"uric_acid":"400"}`),
	}
	if err := repo.Create(ctx, tx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Fatalf("Create: expected id to be assigned")
	}

	err = repo.Create(ctx, tx, &types.UserProfile{UserID: userID})
	if !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("Create duplicate: expected ErrConflict, got %v", err)
	}
}

func TestUserProfileRepoUpdate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserProfileRepo(db, testutil.Logger(t))
	ctx := context.Background()
	userID := uuid.New()

	p := &types.UserProfile{UserID: userID, Goal: types.GoalCut, ActivityLevel: types.ActivityLight}
	if err := repo.Create(ctx, tx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	p.Goal = types.GoalBulk
	p.SnackTime = "15:30"
	if err := repo.Update(ctx, tx, p); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := repo.UpdateMedicalAdvice(ctx, tx, userID, "NO_MEDICAL_RISK"); err != nil {
		t.Fatalf("UpdateMedicalAdvice: %v", err)
	}

	got, err := repo.GetByUserID(ctx, tx, userID)
	if err != nil || got == nil {
		t.Fatalf("GetByUserID: %+v, %v", got, err)
	}
	if got.Goal != types.GoalBulk || !got.HasSnack() || got.MedicalAdvicePrompt != "NO_MEDICAL_RISK" {
		t.Fatalf("unexpected profile after update: %+v", got)
	}

	err = repo.Update(ctx, tx, &types.UserProfile{ID: uuid.New(), UserID: userID})
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("Update unknown id: expected ErrNotFound, got %v", err)
	}
}

func TestUserProfileRepoListUserIDs(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserProfileRepo(db, testutil.Logger(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := repo.Create(ctx, tx, &types.UserProfile{UserID: uuid.New()}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	first, err := repo.ListUserIDs(ctx, tx, uuid.Nil, 2)
	if err != nil {
		t.Fatalf("ListUserIDs: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("ListUserIDs: expected 2 ids, got %d", len(first))
	}
	rest, err := repo.ListUserIDs(ctx, tx, first[1], 2)
	if err != nil {
		t.Fatalf("ListUserIDs (page 2): %v", err)
	}
	if len(rest) != 1 || rest[0] == first[0] || rest[0] == first[1] {
		t.Fatalf("ListUserIDs (page 2): unexpected %v after %v", rest, first)
	}
}
