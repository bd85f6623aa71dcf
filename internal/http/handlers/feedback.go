package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitpilot/fitpilot-backend/internal/http/response"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/tags"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
	"github.com/fitpilot/fitpilot-backend/internal/services"
)

type FeedbackHandler struct {
	log      *logger.Logger
	feedback services.FeedbackService
}

func NewFeedbackHandler(log *logger.Logger, feedback services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{log: log.With("handler", "FeedbackHandler"), feedback: feedback}
}

// POST /api/feedback
func (h *FeedbackHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var in services.FeedbackInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	f, err := h.feedback.Create(c.Request.Context(), userID, in)
	if err != nil {
		h.log.Warn("Create feedback failed", "error", err, "user_id", userID.String())
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"feedback": f})
}

// GET /api/feedback/today
func (h *FeedbackHandler) GetToday(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	f, err := h.feedback.GetToday(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"feedback": f})
}

type tagOption struct {
	Code    string `json:"code"`
	Display string `json:"display"`
}

// GET /api/feedback/tags
func (h *FeedbackHandler) ListTags(c *gin.Context) {
	options := func(kind tags.Kind) []tagOption {
		codes := tags.Codes(kind)
		out := make([]tagOption, 0, len(codes))
		for _, code := range codes {
			out = append(out, tagOption{Code: code, Display: tags.DisplayName(code)})
		}
		return out
	}
	response.RespondOK(c, gin.H{
		"version":  tags.VocabularyVersion,
		"positive": options(tags.KindPositive),
		"negative": options(tags.KindNegative),
		"pain":     options(tags.KindPain),
	})
}
