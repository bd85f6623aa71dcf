// Package dailyplan regenerates every user's plan once a day, one user at a
// time, so the generator sees a steady trickle instead of a burst.
package dailyplan

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron"
	"gorm.io/gorm"

	"github.com/fitpilot/fitpilot-backend/internal/modules/planning"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/plan"
	"github.com/fitpilot/fitpilot-backend/internal/platform/httpx"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
)

const defaultPageSize = 200

type Generator interface {
	GenerateDailyPlan(ctx context.Context, userID uuid.UUID, req planning.GenerateRequest) ([]plan.Plan, error)
}

type UserLister interface {
	ListUserIDs(ctx context.Context, tx *gorm.DB, after uuid.UUID, limit int) ([]uuid.UUID, error)
}

type Stats struct {
	Users     int
	Generated int
	Fallbacks int
	Failed    int
}

type Runner struct {
	log      *logger.Logger
	gen      Generator
	users    UserLister
	cfg      planning.BatchConfig
	loc      *time.Location
	pageSize int
	running  atomic.Bool
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewRunner(log *logger.Logger, gen Generator, users UserLister, cfg planning.BatchConfig, loc *time.Location) *Runner {
	if loc == nil {
		loc = time.Local
	}
	return &Runner{
		log:      log.With("component", "DailyPlanRunner"),
		gen:      gen,
		users:    users,
		cfg:      cfg,
		loc:      loc,
		pageSize: defaultPageSize,
		sleep:    httpx.Sleep,
	}
}

// Start schedules RunOnce on the configured cron spec and blocks until ctx is done.
func (r *Runner) Start(ctx context.Context) error {
	c := cron.NewWithLocation(r.loc)
	err := c.AddFunc(r.cfg.Schedule, func() {
		stats, err := r.RunOnce(ctx)
		if err != nil {
			r.log.Warn("daily plan batch aborted", "error", err, "users", stats.Users)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule daily plan batch %q: %w", r.cfg.Schedule, err)
	}
	c.Start()
	r.log.Info("daily plan batch scheduled", "schedule", r.cfg.Schedule, "delay", r.cfg.Delay.String())
	<-ctx.Done()
	c.Stop()
	return nil
}

// RunOnce walks every user with a profile. Per-user failures are counted and
// logged; only listing errors and cancellation stop the walk. Overlapping runs
// are skipped.
func (r *Runner) RunOnce(ctx context.Context) (Stats, error) {
	var stats Stats
	if !r.running.CompareAndSwap(false, true) {
		r.log.Warn("daily plan batch still running, skipping")
		return stats, nil
	}
	defer r.running.Store(false)

	start := time.Now()
	after := uuid.Nil
	for {
		ids, err := r.users.ListUserIDs(ctx, nil, after, r.pageSize)
		if err != nil {
			return stats, fmt.Errorf("list users: %w", err)
		}
		for _, id := range ids {
			if stats.Users > 0 {
				if err := r.sleep(ctx, r.cfg.Delay); err != nil {
					return stats, err
				}
			}
			stats.Users++
			r.generate(ctx, id, &stats)
		}
		if len(ids) < r.pageSize {
			break
		}
		after = ids[len(ids)-1]
	}
	r.log.Info("daily plan batch finished",
		"users", stats.Users,
		"generated", stats.Generated,
		"fallbacks", stats.Fallbacks,
		"failed", stats.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return stats, nil
}

func (r *Runner) generate(ctx context.Context, userID uuid.UUID, stats *Stats) {
	plans, err := r.gen.GenerateDailyPlan(ctx, userID, planning.GenerateRequest{})
	if err != nil {
		stats.Failed++
		r.log.Warn("daily plan generation failed", "user_id", userID.String(), "error", err)
		return
	}
	stats.Generated++
	if len(plans) > 0 && plans[0].Source == plan.SourceFallback {
		stats.Fallbacks++
	}
}
