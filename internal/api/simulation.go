package api

import (
	"encoding/json"
	"net/http"
)

// SpeedRequest is the body of PUT /simulation/speed.
type SpeedRequest struct {
	Speed float64 `json:"speed"`
}

// FluctuationRequest is the body of PUT /simulation/fluctuation.
type FluctuationRequest struct {
	Enabled bool `json:"enabled"`
}

// CodeRequest is the body of PUT /code.
type CodeRequest struct {
	Code string `json:"code"`
}

// handleStartSimulation starts the scheduler. A layout that is not ready
// yields 409 with the blocking issues.
func (s *Server) handleStartSimulation(w http.ResponseWriter, r *http.Request) {
	if err := s.scheduler.Start(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.scheduler.State())
}

// handleStopSimulation stops the scheduler. Stopping twice is not an error.
func (s *Server) handleStopSimulation(w http.ResponseWriter, _ *http.Request) {
	s.scheduler.Stop()
	writeJSON(w, http.StatusOK, s.scheduler.State())
}

// handleSetSpeed changes the speed multiplier.
func (s *Server) handleSetSpeed(w http.ResponseWriter, r *http.Request) {
	var req SpeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if err := s.scheduler.SetSpeed(req.Speed); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.scheduler.State())
}

// handleSetFluctuation toggles automatic sensor fluctuation.
func (s *Server) handleSetFluctuation(w http.ResponseWriter, r *http.Request) {
	var req FluctuationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	s.store.SetAutoFluctuation(req.Enabled)
	writeJSON(w, http.StatusOK, s.scheduler.State())
}

// handleEditCode replaces the controller program, clearing any deployment.
func (s *Server) handleEditCode(w http.ResponseWriter, r *http.Request) {
	var req CodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	s.store.EditCode(req.Code)
	writeJSON(w, http.StatusOK, map[string]any{"deployed": false})
}

// handleDeploy flashes the current program onto the controller.
func (s *Server) handleDeploy(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Deploy(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deployed": true})
}
