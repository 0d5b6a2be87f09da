package httpx

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker is satisfied by any dependency that exposes Ping
// (Database, RedisClient, EventBus, TemporalClient).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthCheck names one probe in the health report.
type HealthCheck struct {
	Name    string
	Checker HealthChecker
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthHandler probes every check within 2s and answers 503 with status
// "degraded" when any of them fails. Nil checkers are reported as
// "disabled" and do not degrade the result.
func HealthHandler(checks ...HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		for _, c := range checks {
			switch {
			case c.Checker == nil:
				resp.Checks[c.Name] = "disabled"
			case c.Checker.Ping(ctx) != nil:
				resp.Status = "degraded"
				resp.Checks[c.Name] = "unreachable"
			default:
				resp.Checks[c.Name] = "ok"
			}
		}

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}
