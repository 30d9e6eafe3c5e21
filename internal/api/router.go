package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// defaultWSPath is used when the websocket config leaves the path empty.
const defaultWSPath = "/ws"

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Get("/catalog", s.handleCatalog)

		r.Get("/world", s.handleGetWorld)
		r.Delete("/world", s.handleResetWorld)

		r.Route("/components", func(r chi.Router) {
			r.Post("/", s.handlePlaceComponent)
			r.Patch("/{id}", s.handleUpdateComponent)
			r.Delete("/{id}", s.handleRemoveComponent)
		})

		r.Route("/wires", func(r chi.Router) {
			r.Post("/", s.handleAddWire)
			r.Delete("/{id}", s.handleRemoveWire)
		})

		r.Route("/simulation", func(r chi.Router) {
			r.Post("/start", s.handleStartSimulation)
			r.Post("/stop", s.handleStopSimulation)
			r.Put("/speed", s.handleSetSpeed)
			r.Put("/fluctuation", s.handleSetFluctuation)
		})

		r.Put("/code", s.handleEditCode)
		r.Post("/code/deploy", s.handleDeploy)

		r.Get("/router", s.handleGetRouter)
		r.Put("/router", s.handleSetRouter)

		r.Route("/server", func(r chi.Router) {
			r.Get("/", s.handleGetServer)
			r.Put("/", s.handleSetServer)
			r.Post("/start", s.handleStartServer)
			r.Post("/stop", s.handleStopServer)
		})

		r.Get("/logs", s.handleGetLogs)
		r.Delete("/logs", s.handleClearLogs)

		r.Get("/database", s.handleGetDatabase)
		r.Delete("/database", s.handleResetDatabase)

		r.Get("/scenarios", s.handleListScenarios)
		r.Post("/scenarios/{name}/load", s.handleLoadScenario)

		r.Route("/layouts", func(r chi.Router) {
			r.Use(s.requireLayouts)
			r.Get("/", s.handleListLayouts)
			r.Post("/", s.handleSaveLayout)
			r.Get("/{name}", s.handleGetLayout)
			r.Delete("/{name}", s.handleDeleteLayout)
			r.Post("/{name}/load", s.handleLoadLayout)
		})
	})

	// Requests from the simulated browser client to the mock server.
	r.HandleFunc("/mock/*", s.handleMock)

	r.Get(s.wsPath(), s.handleWebSocket)

	if g := s.metrics.Gatherer(); g != nil {
		r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	}

	return r
}

func (s *Server) wsPath() string {
	if s.wsCfg.Path == "" {
		return defaultWSPath
	}
	return s.wsCfg.Path
}

