package dailyplan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitpilot/fitpilot-backend/internal/modules/planning"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/plan"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
)

type fakeUsers struct {
	ids   []uuid.UUID
	calls int
	err   error
}

func (f *fakeUsers) ListUserIDs(_ context.Context, _ *gorm.DB, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	start := 0
	if after != uuid.Nil {
		for i, id := range f.ids {
			if id == after {
				start = i + 1
			}
		}
	}
	end := start + limit
	if end > len(f.ids) {
		end = len(f.ids)
	}
	return f.ids[start:end], nil
}

type fakeGen struct {
	seen     []uuid.UUID
	fail     map[uuid.UUID]bool
	fallback map[uuid.UUID]bool
}

func (f *fakeGen) GenerateDailyPlan(_ context.Context, userID uuid.UUID, _ planning.GenerateRequest) ([]plan.Plan, error) {
	f.seen = append(f.seen, userID)
	if f.fail[userID] {
		return nil, errors.New("boom")
	}
	if f.fallback[userID] {
		return []plan.Plan{{Source: plan.SourceFallback}}, nil
	}
	return []plan.Plan{{Source: plan.SourceAI}, {Source: plan.SourceAI}}, nil
}

func newTestRunner(gen Generator, users UserLister) (*Runner, *[]time.Duration) {
	r := NewRunner(logger.Nop(), gen, users, planning.BatchConfig{Schedule: "0 0 2 * * *", Delay: 2 * time.Second}, time.UTC)
	r.pageSize = 2
	var sleeps []time.Duration
	r.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return r, &sleeps
}

func TestRunOnceWalksAllUsersSequentially(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	gen := &fakeGen{fail: map[uuid.UUID]bool{ids[1]: true}, fallback: map[uuid.UUID]bool{ids[3]: true}}
	users := &fakeUsers{ids: ids}
	r, sleeps := newTestRunner(gen, users)

	stats, err := r.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if stats != (Stats{Users: 5, Generated: 4, Fallbacks: 1, Failed: 1}) {
		t.Fatalf("stats=%+v", stats)
	}
	if len(gen.seen) != 5 || gen.seen[4] != ids[4] {
		t.Fatalf("users visited out of order: %v", gen.seen)
	}
	if users.calls != 3 {
		t.Fatalf("expected 3 pages, got %d", users.calls)
	}
	if len(*sleeps) != 4 || (*sleeps)[0] != 2*time.Second {
		t.Fatalf("expected a delay between each user, got %v", *sleeps)
	}
}

func TestRunOnceStopsOnListError(t *testing.T) {
	r, _ := newTestRunner(&fakeGen{}, &fakeUsers{err: errors.New("db down")})
	if _, err := r.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected list error")
	}
}

func TestRunOnceStopsOnCancel(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	gen := &fakeGen{}
	r, _ := newTestRunner(gen, &fakeUsers{ids: ids})
	r.sleep = func(context.Context, time.Duration) error { return context.Canceled }

	stats, err := r.RunOnce(context.Background())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if stats.Users != 1 || len(gen.seen) != 1 {
		t.Fatalf("expected to stop after the first user, got %+v", stats)
	}
}

func TestRunOnceSkipsOverlap(t *testing.T) {
	gen := &fakeGen{}
	r, _ := newTestRunner(gen, &fakeUsers{ids: []uuid.UUID{uuid.New()}})
	r.running.Store(true)
	stats, err := r.RunOnce(context.Background())
	if err != nil || stats.Users != 0 || len(gen.seen) != 0 {
		t.Fatalf("overlapping run should be skipped: %+v %v", stats, err)
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	r := NewRunner(logger.Nop(), &fakeGen{}, &fakeUsers{}, planning.BatchConfig{Schedule: "nope"}, time.UTC)
	if err := r.Start(context.Background()); err == nil {
		t.Fatalf("expected schedule error")
	}
}
