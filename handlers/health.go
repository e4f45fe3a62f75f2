package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/testimonials/testimonials/pkg/logger"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// readyTimeout bounds all checks of one /ready request.
const readyTimeout = 2 * time.Second

// RegisterHealth adds /health (liveness) and /ready, which runs every check
// and answers 503 when any fails.
func RegisterHealth(rg gin.IRouter, started time.Time, checks map[string]Check) {
	rg.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	rg.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()

		ready := true
		deps := make(map[string]bool, len(names))
		for _, name := range names {
			err := checks[name](ctx)
			deps[name] = err == nil
			if err != nil {
				ready = false
				logger.Warnf("readiness: %s: %v", name, err)
			}
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(started).Round(time.Second).String()})
	})
}
