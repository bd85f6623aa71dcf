package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitpilot/fitpilot-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError maps err through apierr. Internal errors never leak their text.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.As(err)
	if ae.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
		RespondError(c, ae.Status, ae.Code, nil)
		return
	}
	RespondError(c, ae.Status, ae.Code, ae.Err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
