package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fitpilot/fitpilot-backend/internal/http/response"
	"github.com/fitpilot/fitpilot-backend/internal/platform/ctxutil"
)

// requireUser returns the authenticated user id or writes a 401.
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, false
	}
	return rd.UserID, true
}
