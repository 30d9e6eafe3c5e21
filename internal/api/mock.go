package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hangsome/system-builder-studio/internal/dispatch"
	"github.com/hangsome/system-builder-studio/internal/world"
)

// browserSource identifies requests issued from the simulated browser.
const browserSource = "browser"

// handleMock routes a request from the simulated browser client through the
// mock server. The response status and body are the mock server's own.
func (s *Server) handleMock(w http.ResponseWriter, r *http.Request) {
	req := dispatch.Request{
		Method: r.Method,
		Path:   "/" + chi.URLParam(r, "*"),
	}
	if r.URL.RawQuery != "" {
		req.Path += "?" + r.URL.RawQuery
	}

	if r.Body != nil && r.ContentLength != 0 {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeDecodeError(w, err)
			return
		}
		req.Body = body
	}

	if !s.store.Snapshot().Server.Running {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "server is not running"})
		return
	}

	now := time.Now()
	var (
		res dispatch.Result
		url string
	)
	s.store.Update(func(wd world.World) world.World {
		url = wd.Server.URL(req.Path)
		res = dispatch.DispatchAt(req, wd.Server, wd.Database, now)
		if res.UpdatedDatabase != nil {
			wd.Database = *res.UpdatedDatabase
		}
		return wd
	})

	if err := res.Err(); err != nil {
		s.store.AppendLog(world.LevelError, browserSource, fmt.Sprintf("%s %s failed: %v", req.Method, url, err))
	} else {
		s.store.AppendLog(world.LevelData, browserSource, fmt.Sprintf("%s %s -> %d", req.Method, url, res.Response.Status))
	}
	s.metrics.RequestDispatched(browserSource, req, res, now)
	s.hub.RequestDispatched(browserSource, req, res, now)

	writeJSON(w, res.Response.Status, res.Response.Body)
}
