package observability

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hangsome/system-builder-studio/internal/circuit"
	"github.com/hangsome/system-builder-studio/internal/dispatch"
	"github.com/hangsome/system-builder-studio/internal/simulation"
	"github.com/hangsome/system-builder-studio/internal/world"
)

// WorldSource is the part of the world store the collector samples.
type WorldSource interface {
	Snapshot() world.World
	Evaluate() circuit.Evaluation
	Analyzer() *circuit.Analyzer
}

// SimulationCollector exposes simulation metrics to Prometheus.
//
// It observes the scheduler (simulation.Observer) and the log stream
// (ObserveLog). World-shaped gauges are sampled from the store at scrape
// time.
type SimulationCollector struct {
	gatherer prometheus.Gatherer

	TicksTotal    *prometheus.CounterVec
	TickDuration  *prometheus.HistogramVec
	RequestsTotal *prometheus.CounterVec
	ReadingsTotal prometheus.Counter
	SensorValue   *prometheus.GaugeVec
	LogEntries    *prometheus.CounterVec
}

var _ simulation.Observer = (*SimulationCollector)(nil)

// NewSimulationCollector registers simulation metrics against reg,
// defaulting to the global registry when nil. src may be nil, in which
// case the world gauges are not registered.
func NewSimulationCollector(reg prometheus.Registerer, src WorldSource) (*SimulationCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	ticks, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_simulation_ticks_total",
		Help: "Completed scheduler ticks, labeled by activity.",
	}, []string{"kind"}), "studio_simulation_ticks_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "studio_simulation_tick_duration_seconds",
		Help:    "Time spent running one scheduler tick.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	}, []string{"kind"}), "studio_simulation_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_mock_requests_total",
		Help: "Mock HTTP requests dispatched to the simulated server, labeled by status code.",
	}, []string{"status"}), "studio_mock_requests_total")
	if err != nil {
		return nil, err
	}

	readings, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "studio_sensor_readings_total",
		Help: "Sensor value changes produced by fluctuation.",
	}), "studio_sensor_readings_total")
	if err != nil {
		return nil, err
	}

	values, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "studio_sensor_value",
		Help: "Latest value of each placed sensor.",
	}, []string{"instance_id", "definition_id"}), "studio_sensor_value")
	if err != nil {
		return nil, err
	}

	logs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_log_entries_total",
		Help: "Simulation log entries appended, labeled by level.",
	}, []string{"level"}), "studio_log_entries_total")
	if err != nil {
		return nil, err
	}

	if src != nil {
		if err := registerWorldGauges(reg, src); err != nil {
			return nil, err
		}
	}

	return &SimulationCollector{
		gatherer:      gatherer,
		TicksTotal:    ticks,
		TickDuration:  durations,
		RequestsTotal: requests,
		ReadingsTotal: readings,
		SensorValue:   values,
		LogEntries:    logs,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *SimulationCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ReadingChanged implements simulation.Observer.
func (c *SimulationCollector) ReadingChanged(instanceID, definitionID string, value float64, _ time.Time) {
	if c == nil {
		return
	}
	c.ReadingsTotal.Inc()
	c.SensorValue.WithLabelValues(instanceID, definitionID).Set(value)
}

// RequestDispatched implements simulation.Observer.
func (c *SimulationCollector) RequestDispatched(_ string, _ dispatch.Request, res dispatch.Result, _ time.Time) {
	if c == nil {
		return
	}
	c.RequestsTotal.WithLabelValues(strconv.Itoa(res.Response.Status)).Inc()
}

// TickCompleted implements simulation.Observer.
func (c *SimulationCollector) TickCompleted(kind simulation.TickKind, _ time.Time, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.TicksTotal.WithLabelValues(string(kind)).Inc()
	c.TickDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

// ObserveLog counts an appended log entry.
func (c *SimulationCollector) ObserveLog(entry world.LogEntry) {
	if c == nil {
		return
	}
	c.LogEntries.WithLabelValues(string(entry.Level)).Inc()
}

// ForgetSensor drops the value series of a removed sensor instance.
func (c *SimulationCollector) ForgetSensor(instanceID, definitionID string) {
	if c == nil {
		return
	}
	c.SensorValue.DeleteLabelValues(instanceID, definitionID)
}

func registerWorldGauges(reg prometheus.Registerer, src WorldSource) error {
	gauges := []struct {
		name string
		help string
		fn   func(world.World) float64
	}{
		{"studio_components", "Component instances on the canvas.", func(w world.World) float64 {
			return float64(len(w.Components))
		}},
		{"studio_wires", "Wires on the canvas.", func(w world.World) float64 {
			return float64(len(w.Wires))
		}},
		{"studio_powered_sensors", "Sensor instances currently powered.", func(w world.World) float64 {
			return poweredSensors(src, w)
		}},
		{"studio_simulation_running", "1 while the simulation is running.", func(w world.World) float64 {
			return boolGauge(w.Clock.Running)
		}},
		{"studio_simulation_speed", "Current simulation speed multiplier.", func(w world.World) float64 {
			return w.Clock.Speed
		}},
		{"studio_database_rows", "Rows in the simulated sensor log table.", func(w world.World) float64 {
			return float64(len(w.Database.Rows(dispatch.TableSensorLog)))
		}},
	}

	for _, g := range gauges {
		fn := g.fn
		gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: g.name, Help: g.help}, func() float64 {
			return fn(src.Snapshot())
		})
		if err := reg.Register(gauge); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok { //nolint:errorlint // Registry returns the value type
				continue
			}
			return fmt.Errorf("registering %s: %w", g.name, err)
		}
	}
	return nil
}

func poweredSensors(src WorldSource, w world.World) float64 {
	eval := src.Evaluate()
	n := 0
	for _, c := range src.Analyzer().Sensors(w.Components) {
		if eval.Powered(c.InstanceID) {
			n++
		}
	}
	return float64(n)
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
