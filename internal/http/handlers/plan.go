package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fitpilot/fitpilot-backend/internal/http/response"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/plan"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
)

// PlanService is the slice of the orchestrator the handler needs.
type PlanService interface {
	Today() string
	GenerateDailyPlan(ctx context.Context, userID uuid.UUID, req planning.GenerateRequest) ([]plan.Plan, error)
	GetTodayPlan(ctx context.Context, userID uuid.UUID) (*plan.Plan, error)
	GetLatestPlan(ctx context.Context, userID uuid.UUID) (string, *plan.Plan, error)
}

type PlanHandler struct {
	log   *logger.Logger
	plans PlanService
}

func NewPlanHandler(log *logger.Logger, plans PlanService) *PlanHandler {
	return &PlanHandler{log: log.With("handler", "PlanHandler"), plans: plans}
}

// POST /api/plans/generate
// body (optional): { "wearable": { "steps": 8000, "average_heart_rate": 72, "sleep_hours": 7.5 } }
// plan is the chosen candidate (the one stored for today); plans lists every candidate.
func (h *PlanHandler) Generate(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req planning.GenerateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	plans, err := h.plans.GenerateDailyPlan(c.Request.Context(), userID, req)
	if err != nil {
		h.log.Warn("Generate failed", "error", err, "user_id", userID.String())
		response.RespondAPIError(c, err)
		return
	}
	if len(plans) == 0 {
		response.RespondError(c, http.StatusInternalServerError, "plan_generation_failed", nil)
		return
	}
	response.RespondOK(c, gin.H{"date": h.plans.Today(), "plan": plans[0], "plans": plans})
}

// GET /api/plans/today
// plan is null when nothing was generated today.
func (h *PlanHandler) GetToday(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	p, err := h.plans.GetTodayPlan(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("GetToday failed", "error", err, "user_id", userID.String())
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"date": h.plans.Today(), "plan": p})
}

// GET /api/plans/latest
func (h *PlanHandler) GetLatest(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	date, p, err := h.plans.GetLatestPlan(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("GetLatest failed", "error", err, "user_id", userID.String())
		response.RespondAPIError(c, err)
		return
	}
	if p == nil {
		response.RespondError(c, http.StatusNotFound, "plan_not_found", nil)
		return
	}
	response.RespondOK(c, gin.H{"date": date, "plan": p})
}
