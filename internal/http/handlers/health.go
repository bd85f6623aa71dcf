package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Probe reports whether a dependency is reachable.
type Probe func(ctx context.Context) error

type HealthHandler struct {
	probes map[string]Probe
}

func NewHealthHandler(probes map[string]Probe) *HealthHandler {
	return &HealthHandler{probes: probes}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	for name, probe := range h.probes {
		if err := probe(ctx); err != nil {
			c.String(http.StatusServiceUnavailable, name+" unavailable")
			return
		}
	}
	c.String(http.StatusOK, "ok")
}
