package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fitpilot/fitpilot-backend/internal/data/repos"
	"github.com/fitpilot/fitpilot-backend/internal/data/repos/testutil"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/plan"
	"github.com/fitpilot/fitpilot-backend/internal/platform/ctxutil"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
	"github.com/fitpilot/fitpilot-backend/internal/services"
)

type fakePlans struct {
	generated []plan.Plan
	genErr    error
	gotReq    planning.GenerateRequest
	today     *plan.Plan
	latest    *plan.Plan
}

func (f *fakePlans) Today() string { return "2026-10-15" }

func (f *fakePlans) GenerateDailyPlan(_ context.Context, _ uuid.UUID, req planning.GenerateRequest) ([]plan.Plan, error) {
	f.gotReq = req
	return f.generated, f.genErr
}

func (f *fakePlans) GetTodayPlan(context.Context, uuid.UUID) (*plan.Plan, error) { return f.today, nil }

func (f *fakePlans) GetLatestPlan(context.Context, uuid.UUID) (string, *plan.Plan, error) {
	if f.latest == nil {
		return "", nil, nil
	}
	return "2026-10-14", f.latest, nil
}

// asUser stands in for the auth middleware.
func asUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: userID}))
		c.Next()
	}
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	env, _ := decode(t, rec)["error"].(map[string]any)
	code, _ := env["code"].(string)
	return code
}

func TestPlanHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	plans := &fakePlans{generated: []plan.Plan{
		{Title: "Push day", Source: plan.SourceAI},
		{Title: "Easy run", Source: plan.SourceAI},
	}}
	h := NewPlanHandler(logger.Nop(), plans)

	r := gin.New()
	r.Use(asUser(uuid.New()))
	r.POST("/plans/generate", h.Generate)
	r.GET("/plans/today", h.GetToday)
	r.GET("/plans/latest", h.GetLatest)

	steps := 9000
	rec := do(t, r, http.MethodPost, "/plans/generate", map[string]any{"wearable": map[string]any{"steps": steps}})
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status=%d body=%s", rec.Code, rec.Body.String())
	}
	if plans.gotReq.Wearable == nil || plans.gotReq.Wearable.Steps == nil || *plans.gotReq.Wearable.Steps != steps {
		t.Fatalf("wearable not forwarded: %+v", plans.gotReq.Wearable)
	}
	body := decode(t, rec)
	if got := body["date"]; got != "2026-10-15" {
		t.Fatalf("date=%v", got)
	}
	chosen, _ := body["plan"].(map[string]any)
	all, _ := body["plans"].([]any)
	if chosen["title"] != "Push day" || len(all) != 2 {
		t.Fatalf("expected chosen plan and both candidates, got %s", rec.Body.String())
	}

	if rec := do(t, r, http.MethodPost, "/plans/generate", nil); rec.Code != http.StatusOK {
		t.Fatalf("generate without body status=%d", rec.Code)
	}

	plans.genErr = planning.ErrProfileRequired
	rec = do(t, r, http.MethodPost, "/plans/generate", nil)
	if rec.Code != http.StatusPreconditionFailed || errorCode(t, rec) != "profile_required" {
		t.Fatalf("profile required: status=%d body=%s", rec.Code, rec.Body.String())
	}

	plans.genErr = errors.New("db exploded")
	rec = do(t, r, http.MethodPost, "/plans/generate", nil)
	if rec.Code != http.StatusInternalServerError || bytes.Contains(rec.Body.Bytes(), []byte("exploded")) {
		t.Fatalf("internal error leaked: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = do(t, r, http.MethodGet, "/plans/today", nil)
	if rec.Code != http.StatusOK || decode(t, rec)["plan"] != nil {
		t.Fatalf("today without plan: status=%d body=%s", rec.Code, rec.Body.String())
	}

	if rec := do(t, r, http.MethodGet, "/plans/latest", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("latest without plan status=%d", rec.Code)
	}
	plans.latest = &plan.Plan{Title: "Rest"}
	rec = do(t, r, http.MethodGet, "/plans/latest", nil)
	if rec.Code != http.StatusOK || decode(t, rec)["date"] != "2026-10-14" {
		t.Fatalf("latest: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestPlanHandlerRequiresUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewPlanHandler(logger.Nop(), &fakePlans{})
	r := gin.New()
	r.GET("/plans/today", h.GetToday)
	if rec := do(t, r, http.MethodGet, "/plans/today", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestProfileAndFeedbackHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	now := func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) }

	profiles := NewProfileHandler(log, services.NewProfileService(db, log, repos.NewUserProfileRepo(db, log)))
	feedback := NewFeedbackHandler(log, services.NewFeedbackService(db, log, repos.NewUserFeedbackRepo(db, log), time.UTC, now))

	r := gin.New()
	r.GET("/feedback/tags", feedback.ListTags)
	authed := r.Group("/", asUser(uuid.New()))
	authed.GET("/profile", profiles.Get)
	authed.PUT("/profile", profiles.Save)
	authed.POST("/feedback", feedback.Create)
	authed.GET("/feedback/today", feedback.GetToday)

	if rec := do(t, r, http.MethodGet, "/profile", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing profile status=%d", rec.Code)
	}
	rec := do(t, r, http.MethodPut, "/profile", map[string]any{"sex": "male", "age": 30, "weight_kg": 80, "height_cm": 180})
	if rec.Code != http.StatusOK {
		t.Fatalf("save profile status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = do(t, r, http.MethodPut, "/profile", map[string]any{"sex": "male", "lunch_time": "noon"})
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_profile" {
		t.Fatalf("invalid profile: status=%d body=%s", rec.Code, rec.Body.String())
	}
	if rec := do(t, r, http.MethodGet, "/profile", nil); rec.Code != http.StatusOK {
		t.Fatalf("get profile status=%d", rec.Code)
	}

	rec = do(t, r, http.MethodGet, "/feedback/today", nil)
	if rec.Code != http.StatusOK || decode(t, rec)["feedback"] != nil {
		t.Fatalf("feedback before create: status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = do(t, r, http.MethodPost, "/feedback", map[string]any{"rating": 4, "pain_areas": []string{"KNEE"}})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create feedback status=%d body=%s", rec.Code, rec.Body.String())
	}
	if rec := do(t, r, http.MethodPost, "/feedback", map[string]any{"rating": 9}); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid rating status=%d", rec.Code)
	}
	rec = do(t, r, http.MethodGet, "/feedback/today", nil)
	if rec.Code != http.StatusOK || decode(t, rec)["feedback"] == nil {
		t.Fatalf("feedback after create: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = do(t, r, http.MethodGet, "/feedback/tags", nil)
	body := decode(t, rec)
	pain, _ := body["pain"].([]any)
	if rec.Code != http.StatusOK || len(pain) == 0 {
		t.Fatalf("tags: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	down := NewHealthHandler(map[string]Probe{"redis": func(context.Context) error { return errors.New("refused") }})
	r.GET("/down", down.HealthCheck)
	r.GET("/up", NewHealthHandler(nil).HealthCheck)

	if rec := do(t, r, http.MethodGet, "/up", nil); rec.Code != http.StatusOK {
		t.Fatalf("up status=%d", rec.Code)
	}
	if rec := do(t, r, http.MethodGet, "/down", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("down status=%d", rec.Code)
	}
}
