package api

import (
	"context"
	"net/http"
	"time"
)

// healthCheckTimeout bounds each component check.
const healthCheckTimeout = 2 * time.Second

// Component health values.
const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusDown     = "down"
)

// checkComponents runs every configured health check. Only the database
// is mandatory; the optional brokers are reported when present.
func (s *Server) checkComponents(ctx context.Context) map[string]string {
	checks := map[string]HealthChecker{
		"database": s.database,
		"mqtt":     s.mqtt,
		"influxdb": s.influx,
	}

	results := make(map[string]string, len(checks))
	for name, check := range checks {
		if check == nil {
			continue
		}
		checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		err := check.HealthCheck(checkCtx)
		cancel()

		if err != nil {
			s.logger.Warn("health check failed", "component", name, "error", err)
			results[name] = statusDown
			continue
		}
		results[name] = statusOK
	}
	return results
}

// handleHealth returns 200 while the database is reachable. A failing
// optional component degrades the status without failing the check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	components := s.checkComponents(r.Context())

	status, code := statusOK, http.StatusOK
	for name, result := range components {
		if result == statusOK {
			continue
		}
		if name == "database" {
			status, code = statusDown, http.StatusServiceUnavailable
			break
		}
		status = statusDegraded
	}

	writeJSON(w, code, map[string]any{
		"status":     status,
		"version":    s.version,
		"components": components,
	})
}
