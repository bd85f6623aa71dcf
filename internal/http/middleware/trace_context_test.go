package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/fitpilot/fitpilot-backend/internal/platform/ctxutil"
)

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) {
		td := ctxutil.GetTraceData(c.Request.Context())
		c.String(http.StatusOK, td.RequestID)
	})

	cases := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "client id kept", incoming: "req-123", keep: true},
		{name: "spaces rejected", incoming: "req 123"},
		{name: "too long rejected", incoming: strings.Repeat("a", maxCorrelationIDLen+1)},
		{name: "missing", incoming: ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if tc.incoming != "" {
			req.Header.Set(headerRequestID, tc.incoming)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		got := rec.Header().Get(headerRequestID)
		if got == "" || got != rec.Body.String() {
			t.Fatalf("%s: header=%q body=%q", tc.name, got, rec.Body.String())
		}
		if tc.keep != (got == tc.incoming) {
			t.Fatalf("%s: request id=%q incoming=%q", tc.name, got, tc.incoming)
		}
		if rec.Header().Get(headerTraceID) == "" {
			t.Fatalf("%s: missing trace id", tc.name)
		}
	}
}
