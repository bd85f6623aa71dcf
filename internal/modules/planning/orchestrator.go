// Package planning assembles the daily training and diet plan: it runs the
// workload, medical and nutrition engines, asks the generator for a plan,
// falls back to rules when that fails, then persists and caches the result.
package planning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/fitpilot/fitpilot-backend/internal/clients/llm"
	"github.com/fitpilot/fitpilot-backend/internal/data/cache"
	"github.com/fitpilot/fitpilot-backend/internal/domain"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/medical"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/nutrition"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/plan"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/workload"
	"github.com/fitpilot/fitpilot-backend/internal/observability"
	"github.com/fitpilot/fitpilot-backend/internal/platform/apierr"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
)

// ErrProfileRequired is the only error generation surfaces to callers besides
// profile load failures.
var ErrProfileRequired = apierr.New(http.StatusPreconditionFailed, "profile_required",
	errors.New("complete your health profile first"))

type GenerateRequest struct {
	Wearable *plan.Wearable `json:"wearable,omitempty"`
}

type Deps struct {
	Generator Generator
	Store     PlanStore
	Cache     Cache
	Profiles  ProfileReader
	Feedback  FeedbackReader
	History   PlanHistoryReader
	// Now defaults to time.Now.
	Now func() time.Time
}

type Orchestrator struct {
	log       *logger.Logger
	cfg       Config
	loc       *time.Location
	generator Generator
	store     PlanStore
	cache     Cache
	profiles  ProfileReader
	feedback  FeedbackReader
	history   PlanHistoryReader
	now       func() time.Time
}

func NewOrchestrator(log *logger.Logger, cfg Config, deps Deps) (*Orchestrator, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if deps.Generator == nil || deps.Store == nil || deps.Cache == nil ||
		deps.Profiles == nil || deps.Feedback == nil || deps.History == nil {
		return nil, fmt.Errorf("planning: all collaborators are required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		log:       log.With("service", "PlanOrchestrator"),
		cfg:       cfg,
		loc:       loc,
		generator: deps.Generator,
		store:     deps.Store,
		cache:     deps.Cache,
		profiles:  deps.Profiles,
		feedback:  deps.Feedback,
		history:   deps.History,
		now:       now,
	}, nil
}

// Today is the ISO date plans are keyed by.
func (o *Orchestrator) Today() string {
	return o.now().In(o.loc).Format(time.DateOnly)
}

type history struct {
	feedback []*domain.UserFeedback
	plans    []*domain.UserRecommendation
	hasAny   bool
}

type analysis struct {
	status      workload.Status
	constraints medical.Constraints
	advice      string
	target      nutrition.Target
	ratios      plan.Ratios
}

// GenerateDailyPlan builds today's candidate plans for userID. The first
// candidate is the chosen plan and the only one persisted and cached. Rest and
// fallback results are single-element lists. Only a missing profile or a
// failed profile read is returned as an error; generation failures yield the
// rule-based fallback and storage failures are logged.
func (o *Orchestrator) GenerateDailyPlan(ctx context.Context, userID uuid.UUID, req GenerateRequest) ([]plan.Plan, error) {
	ctx, span := observability.Tracer().Start(ctx, "planning.GenerateDailyPlan")
	defer span.End()

	now := o.now().In(o.loc)
	today := now.Format(time.DateOnly)
	log := o.log.With("user_id", userID.String(), "date", today)

	profile, err := o.profiles.GetProfile(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "profile load failed")
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileRequired
	}

	hist := o.loadHistory(ctx, log, userID)

	if !hist.hasAny && now.Hour() >= o.cfg.LateHour {
		rest := plan.RestPlan()
		span.SetAttributes(attribute.String("plan.source", rest.Source))
		log.Info("first plan requested late, returning rest plan", "hour", now.Hour())
		return []plan.Plan{rest}, nil
	}

	out := o.compose(ctx, log, profile, hist, req, now)
	span.SetAttributes(
		attribute.String("plan.source", out[0].Source),
		attribute.String("plan.strategy", out[0].Strategy),
		attribute.Int("plan.candidates", len(out)),
	)

	o.persist(ctx, log, userID, today, now, out[0])
	return out, nil
}

func (o *Orchestrator) loadHistory(ctx context.Context, log *logger.Logger, userID uuid.UUID) history {
	ctx, span := observability.Tracer().Start(ctx, "planning.loadHistory")
	defer span.End()

	// Unknown means "has plans" so a failed lookup never forces the rest plan.
	h := history{hasAny: true}
	var g errgroup.Group
	g.Go(func() error {
		rows, err := o.feedback.GetRecentFeedback(ctx, userID, o.cfg.HistoryDays)
		if err != nil {
			log.Warn("feedback history unavailable, continuing without it", "error", err)
			return nil
		}
		h.feedback = rows
		return nil
	})
	g.Go(func() error {
		rows, err := o.history.GetRecentPlans(ctx, userID, o.cfg.HistoryDays)
		if err != nil {
			log.Warn("plan history unavailable, continuing without it", "error", err)
			return nil
		}
		h.plans = rows
		return nil
	})
	g.Go(func() error {
		ok, err := o.history.HasAnyPlan(ctx, userID)
		if err != nil {
			log.Warn("plan existence check failed", "error", err)
			return nil
		}
		h.hasAny = ok
		return nil
	})
	_ = g.Wait()

	span.SetAttributes(
		attribute.Int("history.feedback", len(h.feedback)),
		attribute.Int("history.plans", len(h.plans)),
	)
	return h
}

// compose never panics; any failure below turns into the fallback plan.
// The result always holds at least one plan.
func (o *Orchestrator) compose(ctx context.Context, log *logger.Logger, profile *domain.UserProfile, hist history, req GenerateRequest, now time.Time) (out []plan.Plan) {
	var a analysis
	defer func() {
		if r := recover(); r != nil {
			log.Error("plan pipeline panicked, using fallback", "panic", fmt.Sprint(r))
			out = []plan.Plan{o.fallback(profile, a)}
		}
	}()

	a = o.analyze(ctx, profile, hist)

	prompt := plan.NewPrompt(plan.PromptInput{
		Profile:             profile,
		Target:              a.target,
		Status:              a.status,
		Constraints:         a.constraints,
		MedicalAdvice:       a.advice,
		RecentPlans:         plan.SummarizePlans(hist.plans),
		Feedback:            plan.SummarizeFeedback(hist.feedback),
		DaysWithoutFeedback: plan.DaysWithoutFeedback(hist.plans, hist.feedback, now, o.cfg.HistoryDays),
		Wearable:            req.Wearable,
		Ratios:              a.ratios,
	})

	candidates, err := o.generate(ctx, prompt)
	if err != nil {
		log.Warn("generation failed, using fallback", "error", err, "strategy", a.status.StrategyName())
		return []plan.Plan{o.fallback(profile, a)}
	}

	for i := range candidates {
		o.finalize(&candidates[i], a)
	}
	log.Info("plan generated", "strategy", candidates[0].Strategy, "candidates", len(candidates))
	return candidates
}

func (o *Orchestrator) analyze(ctx context.Context, profile *domain.UserProfile, hist history) analysis {
	_, span := observability.Tracer().Start(ctx, "planning.analyze")
	defer span.End()

	a := analysis{
		status: workload.Analyze(hist.feedback, profile),
		target: nutrition.Calculate(profile),
		ratios: plan.RatiosFor(profile.HasSnack(), o.cfg.MealRatios.ThreeMeal, o.cfg.MealRatios.WithSnack),
	}
	if labs := medical.ParseLabValues(profile.LabValues); len(labs) > 0 {
		a.constraints = medical.InferConstraints(labs, profile.Sex)
		if medical.HasAdvice(profile.MedicalAdvicePrompt) {
			a.advice = profile.MedicalAdvicePrompt
		} else {
			a.advice = medical.GenerateAdviceText(labs, profile.Sex)
		}
	}

	span.SetAttributes(
		attribute.String("workload.strategy", a.status.StrategyName()),
		attribute.Bool("workload.mandatory", a.status.Mandatory),
		attribute.Int("nutrition.calories", a.target.DailyCalories),
	)
	return a
}

func (o *Orchestrator) generate(ctx context.Context, prompt plan.Prompt) ([]plan.Plan, error) {
	ctx, span := observability.Tracer().Start(ctx, "planning.generate")
	defer span.End()

	raw, err := o.generator.Chat(ctx, prompt.System(), prompt.User(), llm.ChatOptions{
		Model:       o.cfg.Generator.Model,
		Temperature: o.cfg.Generator.Temperature,
		TopP:        o.cfg.Generator.TopP,
		MaxTokens:   o.cfg.Generator.MaxTokens,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generator call failed")
		return nil, fmt.Errorf("generator: %w", err)
	}
	candidates, err := plan.Parse(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unusable generator output")
		return nil, fmt.Errorf("parse generator output: %w", err)
	}
	return candidates, nil
}

// finalize fills zero diet totals from the nutrition target, merges the
// medical forbidden list and recomputes the meal split.
func (o *Orchestrator) finalize(p *plan.Plan, a analysis) {
	p.Strategy = a.status.StrategyName()
	d := p.Diet
	if d.TotalCalories == 0 {
		d.TotalCalories = plan.Amount(a.target.DailyCalories)
	}
	if d.Macros.ProteinG == 0 && d.Macros.CarbsG == 0 && d.Macros.FatG == 0 {
		d.Macros = plan.Macros{
			ProteinG: plan.Amount(a.target.ProteinG),
			CarbsG:   plan.Amount(a.target.CarbG),
			FatG:     plan.Amount(a.target.FatG),
		}
	}
	d.ForbiddenCategories = mergeCategories(d.ForbiddenCategories, a.constraints.ForbiddenCategories)
	plan.ApplyMealSplit(d, a.ratios)
}

func (o *Orchestrator) fallback(profile *domain.UserProfile, a analysis) plan.Plan {
	if a.target.DailyCalories == 0 {
		a.target = safeTarget(profile)
	}
	if a.ratios.Validate() != nil {
		a.ratios = plan.ThreeMealRatios
	}
	return plan.Fallback(plan.FallbackInput{
		Profile:     profile,
		Target:      a.target,
		Status:      a.status,
		Constraints: a.constraints,
		Ratios:      a.ratios,
	})
}

func safeTarget(profile *domain.UserProfile) (t nutrition.Target) {
	defer func() {
		if recover() != nil {
			t = nutrition.Calculate(nil)
		}
	}()
	return nutrition.Calculate(profile)
}

func (o *Orchestrator) persist(ctx context.Context, log *logger.Logger, userID uuid.UUID, today string, now time.Time, p plan.Plan) {
	ctx, span := observability.Tracer().Start(ctx, "planning.persist")
	defer span.End()

	raw, err := json.Marshal(p)
	if err != nil {
		log.Error("plan encode failed", "error", err)
		return
	}
	if err := o.store.Upsert(ctx, userID, today, string(raw)); err != nil {
		span.RecordError(err)
		log.Error("plan upsert failed", "error", err)
	}
	if err := o.cache.Set(ctx, cache.PlanKey(userID, today), string(raw), TTLUntilMidnight(now)); err != nil {
		span.RecordError(err)
		log.Warn("plan cache write failed", "error", err)
	}
}

// GetTodayPlan reads today's plan from the cache, then the store. It returns
// nil, nil when neither has one and never generates.
func (o *Orchestrator) GetTodayPlan(ctx context.Context, userID uuid.UUID) (*plan.Plan, error) {
	ctx, span := observability.Tracer().Start(ctx, "planning.GetTodayPlan")
	defer span.End()

	now := o.now().In(o.loc)
	today := now.Format(time.DateOnly)
	key := cache.PlanKey(userID, today)
	log := o.log.With("user_id", userID.String(), "date", today)

	if raw, ok, err := o.cache.Get(ctx, key); err != nil {
		log.Warn("plan cache read failed", "error", err)
	} else if ok {
		if p, err := decodePlan(raw); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return p, nil
		}
		log.Warn("cached plan unreadable, falling back to store")
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	raw, ok, err := o.store.GetByUserAndDate(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("load today's plan: %w", err)
	}
	if !ok {
		return nil, nil
	}
	p, err := decodePlan(raw)
	if err != nil {
		return nil, fmt.Errorf("decode stored plan: %w", err)
	}
	if err := o.cache.Set(ctx, key, raw, TTLUntilMidnight(now)); err != nil {
		log.Warn("plan cache refill failed", "error", err)
	}
	return p, nil
}

// GetLatestPlan returns the most recent stored plan and its date, or nil.
func (o *Orchestrator) GetLatestPlan(ctx context.Context, userID uuid.UUID) (string, *plan.Plan, error) {
	date, raw, ok, err := o.store.GetLatestByUser(ctx, userID)
	if err != nil {
		return "", nil, fmt.Errorf("load latest plan: %w", err)
	}
	if !ok {
		return "", nil, nil
	}
	p, err := decodePlan(raw)
	if err != nil {
		return "", nil, fmt.Errorf("decode stored plan: %w", err)
	}
	return date, p, nil
}

// TTLUntilMidnight is the time left until the next local midnight, at least one second.
func TTLUntilMidnight(now time.Time) time.Duration {
	y, m, d := now.Date()
	end := time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
	ttl := end.Sub(now).Truncate(time.Second)
	if ttl < time.Second {
		return time.Second
	}
	return ttl
}

func decodePlan(raw string) (*plan.Plan, error) {
	var p plan.Plan
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func mergeCategories(lists ...[]string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, list := range lists {
		for _, c := range list {
			c = strings.TrimSpace(c)
			k := strings.ToLower(c)
			if c == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, c)
		}
	}
	return out
}
