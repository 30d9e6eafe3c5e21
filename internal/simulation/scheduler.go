package simulation

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hangsome/system-builder-studio/internal/circuit"
	"github.com/hangsome/system-builder-studio/internal/dispatch"
	"github.com/hangsome/system-builder-studio/internal/sensor"
	"github.com/hangsome/system-builder-studio/internal/world"
)

// Base periods at speed 1.0.
const (
	FluctuationPeriod = 2000 * time.Millisecond
	DispatchPeriod    = 3000 * time.Millisecond
)

// Readiness messages added on top of the power engine's issues.
const (
	IssueNoController = "no micro:bit placed"
	IssueNotDeployed  = "code has not been deployed to the micro:bit"
)

// TickKind names one of the two periodic activities.
type TickKind string

// Tick kinds.
const (
	TickFluctuation TickKind = "fluctuation"
	TickDispatch    TickKind = "dispatch"
)

// Logger defines the logging interface used by the Scheduler.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Observer receives simulation events. Methods are called from the tick
// goroutine with the scheduler lock held; they must not block or call back
// into the scheduler.
type Observer interface {
	ReadingChanged(instanceID, definitionID string, value float64, at time.Time)
	RequestDispatched(instanceID string, req dispatch.Request, res dispatch.Result, at time.Time)
	TickCompleted(kind TickKind, at time.Time, elapsed time.Duration)
}

// Scheduler runs the fluctuation and dispatch activities against a world
// store.
//
// All public methods are thread-safe.
type Scheduler struct {
	store    *world.Store
	analyzer *circuit.Analyzer
	fluct    *sensor.Fluctuator
	clock    Clock

	mu            sync.Mutex
	running       bool
	gen           uint64 // bumped on every stop/re-arm; stale timers compare and bail
	fluctTimer    Timer
	dispatchTimer Timer
	observers     []Observer
	logger        Logger
}

// New creates a stopped scheduler.
func New(store *world.Store, fluct *sensor.Fluctuator, clock Clock) *Scheduler {
	return &Scheduler{
		store:    store,
		analyzer: store.Analyzer(),
		fluct:    fluct,
		clock:    clock,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the scheduler.
func (s *Scheduler) SetLogger(logger Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}

// AddObserver registers an observer.
func (s *Scheduler) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Running reports whether the scheduler is in the Running state.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// State returns the clock state as recorded in the world.
func (s *Scheduler) State() world.ClockState {
	return s.store.Snapshot().Clock
}

// Readiness returns the issues that would keep Start from succeeding.
func (s *Scheduler) Readiness() []string {
	w := s.store.Snapshot()
	eval := s.analyzer.Evaluate(w.Components, w.Wires)

	issues := append([]string{}, eval.Issues...)
	if !s.analyzer.HasController(w.Components) {
		issues = append(issues, IssueNoController)
	}
	if !w.Deployed {
		issues = append(issues, IssueNotDeployed)
	}
	return issues
}

// Start moves to Running. It returns a *ReadinessError, and leaves the
// scheduler stopped, if the layout is not ready. Starting a running
// scheduler is a no-op.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	if issues := s.Readiness(); len(issues) > 0 {
		s.mu.Unlock()
		return &ReadinessError{Issues: issues}
	}

	s.running = true
	s.gen++
	now := s.clock.Now()
	s.store.Update(func(w world.World) world.World {
		w.Clock.Running = true
		w.Clock.LastTick = now
		return w
	})
	speed := s.store.Snapshot().Clock.Speed
	s.armLocked(TickFluctuation, speed)
	s.armLocked(TickDispatch, speed)
	logger := s.logger
	s.mu.Unlock()

	logger.Info("simulation started", "speed", speed)
	s.store.AppendLog(world.LevelInfo, "system", "simulation started")
	return nil
}

// Stop cancels both activities and moves to Stopped. No tick runs after Stop
// returns. Calling Stop on a stopped scheduler does nothing.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.gen++
	s.cancelLocked()
	s.store.SetRunning(false)
	logger := s.logger
	s.mu.Unlock()

	logger.Info("simulation stopped")
	s.store.AppendLog(world.LevelInfo, "system", "simulation stopped")
}

// SetSpeed changes the speed multiplier. While running, both activities are
// re-armed with the new period.
func (s *Scheduler) SetSpeed(speed float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SetSpeed(speed); err != nil {
		return err
	}
	if s.running {
		s.gen++
		s.cancelLocked()
		s.armLocked(TickFluctuation, speed)
		s.armLocked(TickDispatch, speed)
	}
	s.logger.Debug("simulation speed changed", "speed", speed)
	return nil
}

// Period returns the interval between runs of kind at the given speed.
func Period(kind TickKind, speed float64) time.Duration {
	base := FluctuationPeriod
	if kind == TickDispatch {
		base = DispatchPeriod
	}
	if speed <= 0 {
		speed = world.DefaultSpeed
	}
	return time.Duration(float64(base) / speed)
}

func (s *Scheduler) armLocked(kind TickKind, speed float64) {
	gen := s.gen
	t := s.clock.AfterFunc(Period(kind, speed), func() { s.fire(kind, gen) })
	if kind == TickFluctuation {
		s.fluctTimer = t
	} else {
		s.dispatchTimer = t
	}
}

func (s *Scheduler) cancelLocked() {
	if s.fluctTimer != nil {
		s.fluctTimer.Stop()
		s.fluctTimer = nil
	}
	if s.dispatchTimer != nil {
		s.dispatchTimer.Stop()
		s.dispatchTimer = nil
	}
}

// fire runs one activity and re-arms it. Timers from an earlier generation
// are ignored.
func (s *Scheduler) fire(kind TickKind, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || gen != s.gen {
		return
	}

	start := s.clock.Now()
	switch kind {
	case TickFluctuation:
		s.fluctuateLocked(start)
	case TickDispatch:
		s.dispatchLocked(start)
	}
	elapsed := s.clock.Now().Sub(start)

	for _, o := range s.observers {
		o.TickCompleted(kind, start, elapsed)
	}
	s.armLocked(kind, s.store.Snapshot().Clock.Speed)
}

// fluctuateLocked gives every powered sensor a new reading.
func (s *Scheduler) fluctuateLocked(now time.Time) {
	w := s.store.Snapshot()
	if !w.Clock.AutoFluctuation {
		return
	}
	eval := s.analyzer.Evaluate(w.Components, w.Wires)

	type reading struct {
		id, def string
		value   float64
	}
	var changed []reading
	for _, c := range s.analyzer.Sensors(w.Components) {
		if !eval.Powered(c.InstanceID) {
			continue
		}
		current := sensor.InitialValue(c.DefinitionID)
		if c.State.Value != nil {
			current = *c.State.Value
		}
		changed = append(changed, reading{c.InstanceID, c.DefinitionID, s.fluct.Next(c.DefinitionID, current)})
	}

	s.store.Update(func(w world.World) world.World {
		for _, r := range changed {
			for i := range w.Components {
				if w.Components[i].InstanceID == r.id {
					v := r.value
					w.Components[i].State.Value = &v
					w.Components[i].State.Active = true
				}
			}
		}
		w.Clock.LastTick = now
		return w
	})

	for _, r := range changed {
		for _, o := range s.observers {
			o.ReadingChanged(r.id, r.def, r.value, now)
		}
	}
}

// dispatchLocked uploads every powered sensor's reading through the mock
// server, folding each resulting database into the world before the next
// request so no write is lost.
func (s *Scheduler) dispatchLocked(now time.Time) {
	w := s.store.Snapshot()
	if !w.Server.Running {
		return
	}
	eval := s.analyzer.Evaluate(w.Components, w.Wires)
	if !s.analyzer.NetworkReachable(w.Components, w.Wires, w.Router.SSID, eval) {
		s.logger.Debug("dispatch skipped, network unreachable")
		return
	}

	for _, c := range s.analyzer.Sensors(w.Components) {
		if !eval.Powered(c.InstanceID) {
			s.store.AppendLog(world.LevelWarning, c.InstanceID, "sensor is not powered, skipping upload")
			continue
		}

		value := sensor.InitialValue(c.DefinitionID)
		if c.State.Value != nil {
			value = *c.State.Value
		}
		req := dispatch.Request{
			Method: http.MethodGet,
			Path:   "/upload?temperature=" + strconv.FormatFloat(value, 'f', -1, 64),
		}

		var (
			res dispatch.Result
			url string
		)
		s.store.Update(func(w world.World) world.World {
			url = w.Server.URL(req.Path)
			res = dispatch.DispatchAt(req, w.Server, w.Database, now)
			if res.UpdatedDatabase != nil {
				w.Database = *res.UpdatedDatabase
			}
			return w
		})

		if err := res.Err(); err != nil {
			s.store.AppendLog(world.LevelError, "server", fmt.Sprintf("GET %s failed: %v", url, err))
			s.logger.Warn("mock dispatch failed", "instance_id", c.InstanceID, "status", res.Response.Status)
		} else {
			s.store.AppendLog(world.LevelData, c.InstanceID, fmt.Sprintf("GET %s -> %d", url, res.Response.Status))
			if body, ok := res.Response.Body.(map[string]any); ok {
				if msg, ok := body["message"].(string); ok {
					s.store.AppendLog(world.LevelInfo, "server", msg)
				}
			}
		}

		for _, o := range s.observers {
			o.RequestDispatched(c.InstanceID, req, res, now)
		}
	}
}
