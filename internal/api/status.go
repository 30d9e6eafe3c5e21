package api

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/hangsome/system-builder-studio/internal/infrastructure/database"
	"github.com/hangsome/system-builder-studio/internal/world"
)

// SystemStatus represents the complete status response.
type SystemStatus struct {
	Timestamp     string           `json:"timestamp"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Runtime       RuntimeMetrics   `json:"runtime"`
	WebSocket     WSMetrics        `json:"websocket"`
	Simulation    SimulationStatus `json:"simulation"`
	Layout        LayoutStatus     `json:"layout"`
	Database      *DatabaseStatus  `json:"database,omitempty"`
	MQTT          *MQTTStatus      `json:"mqtt,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// SimulationStatus describes the clock and whether it could start.
type SimulationStatus struct {
	Clock    world.ClockState `json:"clock"`
	Deployed bool             `json:"deployed"`
	Ready    bool             `json:"ready"`
	Issues   []string         `json:"issues"`
}

// LayoutStatus summarises what is on the canvas.
type LayoutStatus struct {
	Components     int      `json:"components"`
	Wires          int      `json:"wires"`
	Powered        int      `json:"powered"`
	NetworkOnline  bool     `json:"network_online"`
	ServerRunning  bool     `json:"server_running"`
	Warnings       []string `json:"warnings"`
	DatabaseRows   int      `json:"database_rows"`
	LayoutsEnabled bool     `json:"layouts_enabled"`
}

// DatabaseStatus is the layout database's schema state.
type DatabaseStatus struct {
	Schema database.SchemaStatus `json:"schema"`
	Error  string                `json:"error,omitempty"`
}

// MQTTStatus describes the telemetry broker link.
type MQTTStatus struct {
	Connected     bool `json:"connected"`
	Subscriptions int  `json:"subscriptions"`
}

// handleStatus returns runtime, simulation and layout status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	snap := s.store.Snapshot()
	analyzer := s.store.Analyzer()
	eval := analyzer.Evaluate(snap.Components, snap.Wires)

	powered := 0
	for _, on := range eval.PowerStatus {
		if on {
			powered++
		}
	}
	rows := 0
	for _, r := range snap.Database.Records {
		rows += len(r)
	}

	issues := s.scheduler.Readiness()
	warnings := eval.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	status := SystemStatus{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		WebSocket: WSMetrics{ConnectedClients: s.hub.ClientCount()},
		Simulation: SimulationStatus{
			Clock:    snap.Clock,
			Deployed: snap.Deployed,
			Ready:    len(issues) == 0,
			Issues:   issues,
		},
		Layout: LayoutStatus{
			Components:     len(snap.Components),
			Wires:          len(snap.Wires),
			Powered:        powered,
			NetworkOnline:  analyzer.NetworkReachable(snap.Components, snap.Wires, snap.Router.SSID, eval),
			ServerRunning:  snap.Server.Running,
			Warnings:       warnings,
			DatabaseRows:   rows,
			LayoutsEnabled: s.layouts != nil,
		},
	}

	if s.schema != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		db := &DatabaseStatus{}
		if schema, err := s.schema.SchemaStatus(ctx); err != nil {
			db.Error = err.Error()
		} else {
			db.Schema = schema
		}
		status.Database = db
	}
	if s.broker != nil {
		status.MQTT = &MQTTStatus{
			Connected:     s.broker.IsConnected(),
			Subscriptions: s.broker.SubscriptionCount(),
		}
	}

	writeJSON(w, http.StatusOK, status)
}
