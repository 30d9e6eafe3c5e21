package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hangsome/system-builder-studio/internal/dispatch"
	"github.com/hangsome/system-builder-studio/internal/world"
)

// handleGetRouter returns the wireless router configuration.
func (s *Server) handleGetRouter(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot().Router)
}

// handleSetRouter replaces the wireless router configuration.
func (s *Server) handleSetRouter(w http.ResponseWriter, r *http.Request) {
	var cfg world.RouterConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeDecodeError(w, err)
		return
	}
	s.store.SetRouter(cfg)
	writeJSON(w, http.StatusOK, s.store.Snapshot().Router)
}

// handleGetServer returns the mock server configuration.
func (s *Server) handleGetServer(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot().Server)
}

// handleSetServer replaces the mock server configuration. The running flag
// in the body is honoured.
func (s *Server) handleSetServer(w http.ResponseWriter, r *http.Request) {
	var cfg dispatch.ServerConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeDecodeError(w, err)
		return
	}
	if err := s.store.SetServer(cfg); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.Snapshot().Server)
}

func (s *Server) handleStartServer(w http.ResponseWriter, _ *http.Request) {
	s.setServerRunning(w, true)
}

func (s *Server) handleStopServer(w http.ResponseWriter, _ *http.Request) {
	s.setServerRunning(w, false)
}

func (s *Server) setServerRunning(w http.ResponseWriter, running bool) {
	s.store.SetServerRunning(running)
	cfg := s.store.Snapshot().Server
	if running {
		s.store.AppendLog(world.LevelInfo, "server", "server listening on "+cfg.URL(""))
	} else {
		s.store.AppendLog(world.LevelInfo, "server", "server stopped")
	}
	writeJSON(w, http.StatusOK, cfg)
}

// handleGetLogs returns the log stream. since=<seq> returns only newer entries.
func (s *Server) handleGetLogs(w http.ResponseWriter, r *http.Request) {
	logs := s.store.Logs()

	if v := r.URL.Query().Get("since"); v != "" {
		since, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeBadRequest(w, "since must be a non-negative integer")
			return
		}
		kept := logs[:0]
		for _, e := range logs {
			if e.Seq > since {
				kept = append(kept, e)
			}
		}
		logs = kept
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"logs":  logs,
		"count": len(logs),
	})
}

// handleClearLogs empties the log stream.
func (s *Server) handleClearLogs(w http.ResponseWriter, _ *http.Request) {
	s.store.ClearLogs()
	w.WriteHeader(http.StatusNoContent)
}

// handleGetDatabase returns the in-memory database. table=<name> returns the
// rows of one table.
func (s *Server) handleGetDatabase(w http.ResponseWriter, r *http.Request) {
	db := s.store.Snapshot().Database

	table := r.URL.Query().Get("table")
	if table == "" {
		writeJSON(w, http.StatusOK, db)
		return
	}
	rows, ok := db.Records[table]
	if !ok {
		writeNotFound(w, "table not found: "+table)
		return
	}
	if rows == nil {
		rows = []dispatch.Row{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"table": table,
		"rows":  rows,
		"count": len(rows),
	})
}

// handleResetDatabase restores the default classroom database.
func (s *Server) handleResetDatabase(w http.ResponseWriter, _ *http.Request) {
	s.store.SetDatabase(dispatch.DefaultDatabase())
	writeJSON(w, http.StatusOK, s.store.Snapshot().Database)
}
