// Package observability exposes Prometheus metrics for the studio.
//
// SimulationCollector counts scheduler ticks, mock requests, sensor
// readings and log entries, and samples world gauges (components, wires,
// powered sensors, running state) from the store on every scrape. The
// API serves the registry at /metrics.
package observability
