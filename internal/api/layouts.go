package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hangsome/system-builder-studio/internal/world"
)

// SaveLayoutRequest is the body of POST /layouts.
type SaveLayoutRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// handleListScenarios lists the built-in scenarios.
func (s *Server) handleListScenarios(w http.ResponseWriter, _ *http.Request) {
	names := world.ScenarioNames()
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scenarios": names,
		"count":     len(names),
	})
}

// handleLoadScenario stops the simulation and applies a built-in scenario.
func (s *Server) handleLoadScenario(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.scheduler.Stop()
	if err := s.store.LoadScenario(name); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.logger.Info("scenario loaded", "scenario", name)
	writeJSON(w, http.StatusOK, s.worldResponse())
}

// handleListLayouts lists saved layouts, most recently updated first.
func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	list, err := s.layouts.List(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if list == nil {
		list = []world.LayoutSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"layouts": list,
		"count":   len(list),
	})
}

// handleSaveLayout saves the current world under a name, replacing any
// layout with the same name.
func (s *Server) handleSaveLayout(w http.ResponseWriter, r *http.Request) {
	var req SaveLayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}

	l := s.store.ExportLayout(req.Name, req.Description)
	if err := s.layouts.Save(r.Context(), l); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// handleGetLayout returns a saved layout.
func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	l, err := s.layouts.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// handleDeleteLayout removes a saved layout.
func (s *Server) handleDeleteLayout(w http.ResponseWriter, r *http.Request) {
	if err := s.layouts.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLoadLayout stops the simulation and applies a saved layout.
func (s *Server) handleLoadLayout(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	l, err := s.layouts.Get(r.Context(), name)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.scheduler.Stop()
	if err := s.store.ApplyLayout(l); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.logger.Info("layout loaded", "layout", name)
	writeJSON(w, http.StatusOK, s.worldResponse())
}
