package api

import (
	"context"
	"net/http"
	"time"

	"github.com/hangsome/system-builder-studio/internal/infrastructure/database"
)

// healthCheckTimeout bounds all service probes made by one /health request.
const healthCheckTimeout = 2 * time.Second

// HealthChecker is a backing service probed by /health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// SchemaReporter reports the layout database's migration state.
type SchemaReporter interface {
	SchemaStatus(ctx context.Context) (database.SchemaStatus, error)
}

// BrokerReporter describes the MQTT link.
type BrokerReporter interface {
	IsConnected() bool
	SubscriptionCount() int
}

// HealthResponse is the /health payload. Services maps each configured
// service to "ok" or its failure.
type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Services map[string]string `json:"services"`
}

// handleHealth returns 200 "ok" when every configured service answers and
// 503 "degraded" otherwise.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:   "ok",
		Version:  s.version,
		Services: make(map[string]string, len(s.services)),
	}
	code := http.StatusOK
	for name, svc := range s.services {
		if err := svc.HealthCheck(ctx); err != nil {
			resp.Services[name] = err.Error()
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Services[name] = "ok"
	}
	writeJSON(w, code, resp)
}
