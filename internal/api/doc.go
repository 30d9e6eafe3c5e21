// Package api implements the HTTP REST API and WebSocket server for System
// Builder Studio.
//
// This package provides:
//   - REST endpoints for the catalogue, canvas (components and wires),
//     simulation control, router/server/database settings and the log stream
//   - Scenario loading and, when a repository is configured, saved layouts
//   - /mock/*, which routes browser-client requests through the mock server
//   - A WebSocket hub streaming log, reading and dispatch events
//   - /metrics for Prometheus
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Usage
//
//	srv, err := api.New(api.Deps{Logger: log, Store: store, Scheduler: sched})
//	sched.AddObserver(srv.Hub())
//	srv.Start(ctx)
//	defer srv.Close()
//
// # WebSocket
//
// Clients subscribe to channels ("log", "reading", "dispatch") with a
// subscribe message, or pass ?channels=log,reading on connect. Events are
// delivered as {"type":"event","event_type":<channel>,"payload":...}.
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
package api
