package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hangsome/system-builder-studio/internal/catalog"
	"github.com/hangsome/system-builder-studio/internal/circuit"
	"github.com/hangsome/system-builder-studio/internal/world"
)

// WorldResponse is the world with derived power status.
type WorldResponse struct {
	World      world.World        `json:"world"`
	Evaluation circuit.Evaluation `json:"evaluation"`
}

// PlaceComponentRequest is the body of POST /components.
type PlaceComponentRequest struct {
	DefinitionID string           `json:"definitionId"`
	Position     catalog.Position `json:"position"`
}

// UpdateComponentRequest is the body of PATCH /components/{id}.
// Value applies to sensors only.
type UpdateComponentRequest struct {
	Position *catalog.Position `json:"position,omitempty"`
	Value    *float64          `json:"value,omitempty"`
}

// AddWireRequest is the body of POST /wires.
type AddWireRequest struct {
	FromInstance string `json:"fromInstance"`
	FromPin      string `json:"fromPin"`
	ToInstance   string `json:"toInstance"`
	ToPin        string `json:"toPin"`
}

// AddWireResponse carries the stored wire and any validation warnings.
type AddWireResponse struct {
	Wire   circuit.Wire   `json:"wire"`
	Result circuit.Result `json:"result"`
}

// handleCatalog lists component definitions, optionally filtered by category.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.store.Analyzer().Catalog()

	defs := cat.List()
	if c := r.URL.Query().Get("category"); c != "" {
		if !catalog.Category(c).IsValid() {
			writeBadRequest(w, "unknown category: "+c)
			return
		}
		defs = cat.ByCategory(catalog.Category(c))
	}
	if defs == nil {
		defs = []catalog.ComponentDefinition{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"definitions": defs,
		"count":       len(defs),
	})
}

// handleGetWorld returns the current world with power status applied.
func (s *Server) handleGetWorld(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.worldResponse())
}

// handleResetWorld stops the simulation and restores an empty world.
func (s *Server) handleResetWorld(w http.ResponseWriter, _ *http.Request) {
	s.scheduler.Stop()
	s.store.Reset()
	writeJSON(w, http.StatusOK, s.worldResponse())
}

func (s *Server) worldResponse() WorldResponse {
	snap := s.store.Snapshot()
	eval := s.store.Analyzer().Evaluate(snap.Components, snap.Wires)
	return WorldResponse{World: snap.WithPower(eval), Evaluation: eval}
}

// handlePlaceComponent places a new component instance.
func (s *Server) handlePlaceComponent(w http.ResponseWriter, r *http.Request) {
	var req PlaceComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.DefinitionID == "" {
		writeBadRequest(w, "definitionId is required")
		return
	}

	id, err := s.store.PlaceComponent(req.DefinitionID, req.Position)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	comp, _ := s.store.Snapshot().Component(id)
	writeJSON(w, http.StatusCreated, comp)
}

// handleUpdateComponent moves a component and/or sets a sensor reading.
func (s *Server) handleUpdateComponent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.Position == nil && req.Value == nil {
		writeBadRequest(w, "position or value is required")
		return
	}

	if req.Position != nil {
		if err := s.store.MoveComponent(id, *req.Position); err != nil {
			s.writeDomainError(w, r, err)
			return
		}
	}
	if req.Value != nil {
		if err := s.store.SetReading(id, *req.Value); err != nil {
			s.writeDomainError(w, r, err)
			return
		}
	}

	comp, _ := s.store.Snapshot().Component(id)
	writeJSON(w, http.StatusOK, comp)
}

// handleRemoveComponent removes a component and every wire touching it.
func (s *Server) handleRemoveComponent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	comp, ok := s.store.Snapshot().Component(id)
	if !ok {
		writeNotFound(w, "component not found: "+id)
		return
	}
	if err := s.store.RemoveComponent(id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.metrics.ForgetSensor(comp.InstanceID, comp.DefinitionID)

	w.WriteHeader(http.StatusNoContent)
}

// handleAddWire validates and stores a wire. Rejected wires return 422 with
// the full validation result.
func (s *Server) handleAddWire(w http.ResponseWriter, r *http.Request) {
	var req AddWireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}

	wire, res, err := s.store.RequestWire(req.FromInstance, req.FromPin, req.ToInstance, req.ToPin)
	if err != nil {
		if !res.Valid {
			status := http.StatusUnprocessableEntity
			writeJSON(w, status, wireError{
				Error:  Error{Status: status, Code: ErrCodeInvalidWire, Message: err.Error()},
				Result: res,
			})
			return
		}
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, AddWireResponse{Wire: wire, Result: res})
}

// handleRemoveWire deletes a wire by id.
func (s *Server) handleRemoveWire(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveWire(chi.URLParam(r, "id")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
