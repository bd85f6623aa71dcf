package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitpilot/fitpilot-backend/internal/http/response"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
	"github.com/fitpilot/fitpilot-backend/internal/services"
)

type ProfileHandler struct {
	log      *logger.Logger
	profiles services.ProfileService
}

func NewProfileHandler(log *logger.Logger, profiles services.ProfileService) *ProfileHandler {
	return &ProfileHandler{log: log.With("handler", "ProfileHandler"), profiles: profiles}
}

// GET /api/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	p, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"profile": p})
}

// PUT /api/profile
func (h *ProfileHandler) Save(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var in services.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	p, err := h.profiles.Save(c.Request.Context(), userID, in)
	if err != nil {
		h.log.Warn("Save profile failed", "error", err, "user_id", userID.String())
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"profile": p})
}
