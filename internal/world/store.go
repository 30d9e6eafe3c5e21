package world

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hangsome/system-builder-studio/internal/catalog"
	"github.com/hangsome/system-builder-studio/internal/circuit"
	"github.com/hangsome/system-builder-studio/internal/dispatch"
	"github.com/hangsome/system-builder-studio/internal/sensor"
)

// Logger defines the logging interface used by the Store.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// boardLinks are the pins joined automatically when a micro:bit is seated in
// an expansion board.
var boardLinks = [][2]string{
	{"p0", "slot-p0"},
	{"p1", "slot-p1"},
	{"p2", "slot-p2"},
	{"3v", "slot-3v"},
	{"gnd", "slot-gnd"},
}

const (
	microbitID       = "microbit"
	expansionBoardID = "expansion-board"
)

// Store is the authoritative world container.
//
// All public methods are thread-safe.
type Store struct {
	mu       sync.Mutex
	world    World
	seq      uint64
	analyzer *circuit.Analyzer
	now      func() time.Time
	logHook  func(LogEntry)
	logger   Logger
}

// NewStore creates a store holding a fresh world.
func NewStore(analyzer *circuit.Analyzer) *Store {
	return &Store{
		world:    Default(),
		analyzer: analyzer,
		now:      time.Now,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}

func (s *Store) getLogger() Logger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logger
}

// SetNow replaces the time source used for log timestamps.
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetLogHook registers fn to receive every appended log entry. fn is called
// without the store lock held.
func (s *Store) SetLogHook(fn func(LogEntry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logHook = fn
}

// Analyzer returns the circuit analyzer the store validates against.
func (s *Store) Analyzer() *circuit.Analyzer {
	return s.analyzer
}

// Snapshot returns a deep copy of the current world.
func (s *Store) Snapshot() World {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Clone()
}

// Update replaces the world with fn(copy of current world).
// fn runs with the store lock held and must not call the store.
func (s *Store) Update(fn func(World) World) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.world = fn(s.world.Clone())
}

// mutate is Update with an error: if fn fails the world is left unchanged.
func (s *Store) mutate(fn func(*World) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.world.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	s.world = next
	return nil
}

// Evaluate derives power status and readiness issues for the current layout.
func (s *Store) Evaluate() circuit.Evaluation {
	w := s.Snapshot()
	return s.analyzer.Evaluate(w.Components, w.Wires)
}

// PlaceComponent adds an instance of definitionID at pos and returns its
// instance id. Sensors start at their profile's default reading. Seating a
// micro:bit and an expansion board together wires the board slots.
func (s *Store) PlaceComponent(definitionID string, pos catalog.Position) (string, error) {
	def, ok := s.analyzer.Catalog().Get(definitionID)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDefinition, definitionID)
	}

	id := definitionID + "-" + uuid.NewString()[:8]
	err := s.mutate(func(w *World) error {
		c := circuit.Component{InstanceID: id, DefinitionID: definitionID, Position: pos}
		if def.Category == catalog.CategorySensor {
			v := sensor.InitialValue(definitionID)
			c.State.Value = &v
		}
		w.Components = append(w.Components, c)
		s.seatBoard(w)
		return nil
	})
	if err != nil {
		return "", err
	}

	s.getLogger().Debug("component placed", "instance_id", id, "definition_id", definitionID)
	return id, nil
}

// seatBoard joins the first micro:bit to the first expansion board when both
// are present, skipping pins that are already wired together.
func (s *Store) seatBoard(w *World) {
	var mb, exp string
	for _, c := range w.Components {
		switch {
		case c.DefinitionID == microbitID && mb == "":
			mb = c.InstanceID
		case c.DefinitionID == expansionBoardID && exp == "":
			exp = c.InstanceID
		}
	}
	if mb == "" || exp == "" {
		return
	}

	set := circuit.NewWireSet(w.Wires)
	for _, link := range boardLinks {
		from := circuit.Endpoint{Instance: mb, Pin: link[0]}
		to := circuit.Endpoint{Instance: exp, Pin: link[1]}
		if set.Has(from, to) {
			continue
		}
		res := s.analyzer.Validate(mb, link[0], exp, link[1], w.Components, w.Wires)
		if !res.Valid {
			continue
		}
		wr := newWire(from, to, res.Role)
		w.Wires = append(w.Wires, wr)
		set.Add(wr)
	}
}

// RemoveComponent deletes an instance and every wire touching it.
func (s *Store) RemoveComponent(instanceID string) error {
	err := s.mutate(func(w *World) error {
		i := w.componentIndex(instanceID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrComponentNotFound, instanceID)
		}
		w.Components = append(w.Components[:i], w.Components[i+1:]...)

		kept := w.Wires[:0]
		for _, wr := range w.Wires {
			if wr.FromInstance != instanceID && wr.ToInstance != instanceID {
				kept = append(kept, wr)
			}
		}
		w.Wires = kept
		return nil
	})
	if err == nil {
		s.getLogger().Debug("component removed", "instance_id", instanceID)
	}
	return err
}

// MoveComponent updates an instance's canvas position.
func (s *Store) MoveComponent(instanceID string, pos catalog.Position) error {
	return s.mutate(func(w *World) error {
		i := w.componentIndex(instanceID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrComponentNotFound, instanceID)
		}
		w.Components[i].Position = pos
		return nil
	})
}

// RequestWire validates a connection and, if it is admissible and not a
// duplicate, stores it.
//
// Parameters:
//   - fromInstance, fromPin: First endpoint
//   - toInstance, toPin: Second endpoint
//
// Returns:
//   - circuit.Wire: The stored wire (zero value if rejected)
//   - circuit.Result: The validation outcome, always populated
//   - error: Wraps circuit.ErrInvalidWire or ErrDuplicateWire on rejection
func (s *Store) RequestWire(fromInstance, fromPin, toInstance, toPin string) (circuit.Wire, circuit.Result, error) {
	var (
		wire circuit.Wire
		res  circuit.Result
	)
	err := s.mutate(func(w *World) error {
		res = s.analyzer.Validate(fromInstance, fromPin, toInstance, toPin, w.Components, w.Wires)
		if err := res.Err(); err != nil {
			return err
		}
		from := circuit.Endpoint{Instance: fromInstance, Pin: fromPin}
		to := circuit.Endpoint{Instance: toInstance, Pin: toPin}
		if existing, dup := circuit.NewWireSet(w.Wires).Lookup(from, to); dup {
			return fmt.Errorf("%w: %s", ErrDuplicateWire, existing)
		}
		wire = newWire(from, to, res.Role)
		w.Wires = append(w.Wires, wire)
		return nil
	})
	if err != nil {
		return circuit.Wire{}, res, err
	}

	s.getLogger().Debug("wire added", "wire_id", wire.ID, "role", wire.Role, "warnings", len(res.Warnings))
	return wire, res, nil
}

// RemoveWire deletes a wire.
func (s *Store) RemoveWire(wireID string) error {
	return s.mutate(func(w *World) error {
		i := w.wireIndex(wireID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrWireNotFound, wireID)
		}
		w.Wires = append(w.Wires[:i], w.Wires[i+1:]...)
		return nil
	})
}

// SetRunning sets the clock's running flag.
func (s *Store) SetRunning(running bool) {
	s.Update(func(w World) World {
		w.Clock.Running = running
		return w
	})
}

// SetSpeed sets the speed multiplier, which must be in [MinSpeed, MaxSpeed].
func (s *Store) SetSpeed(speed float64) error {
	if !ValidSpeed(speed) {
		return fmt.Errorf("%w: %v not in [%v, %v]", ErrInvalidSpeed, speed, MinSpeed, MaxSpeed)
	}
	s.Update(func(w World) World {
		w.Clock.Speed = speed
		return w
	})
	return nil
}

// ValidSpeed reports whether speed is an accepted multiplier.
func ValidSpeed(speed float64) bool {
	return speed >= MinSpeed && speed <= MaxSpeed
}

// SetAutoFluctuation toggles automatic sensor fluctuation.
func (s *Store) SetAutoFluctuation(on bool) {
	s.Update(func(w World) World {
		w.Clock.AutoFluctuation = on
		return w
	})
}

// EditCode replaces the controller program. Any previous deployment is
// invalidated.
func (s *Store) EditCode(code string) {
	s.Update(func(w World) World {
		w.Code = code
		w.Deployed = false
		return w
	})
}

// Deploy marks the current program as flashed onto the controller.
func (s *Store) Deploy() error {
	err := s.mutate(func(w *World) error {
		if !s.analyzer.HasController(w.Components) {
			return ErrNoController
		}
		w.Deployed = true
		return nil
	})
	if err == nil {
		s.AppendLog(LevelInfo, "microbit", "program deployed to controller")
	}
	return err
}

// SetRouter replaces the router configuration.
func (s *Store) SetRouter(cfg RouterConfig) {
	cfg.SSID = strings.TrimSpace(cfg.SSID)
	s.Update(func(w World) World {
		w.Router = cfg
		return w
	})
}

// SetServer replaces the mock server configuration.
func (s *Store) SetServer(cfg dispatch.ServerConfig) error {
	if err := validateServer(cfg); err != nil {
		return err
	}
	s.Update(func(w World) World {
		w.Server = cfg.Clone()
		return w
	})
	return nil
}

// SetServerRunning starts or stops the mock server.
func (s *Store) SetServerRunning(running bool) {
	s.Update(func(w World) World {
		w.Server.Running = running
		return w
	})
}

func validateServer(cfg dispatch.ServerConfig) error {
	var errs []string
	if strings.TrimSpace(cfg.Host) == "" {
		errs = append(errs, "host is required")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, fmt.Sprintf("port %d out of range", cfg.Port))
	}
	for i, r := range cfg.Routes {
		if !strings.HasPrefix(r.Path, "/") {
			errs = append(errs, fmt.Sprintf("route %d: path must start with /", i))
		}
		if r.Method == "" || r.Handler == "" {
			errs = append(errs, fmt.Sprintf("route %d: method and handler are required", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidServer, strings.Join(errs, "; "))
	}
	return nil
}

// SetDatabase replaces the database snapshot.
func (s *Store) SetDatabase(db dispatch.Database) {
	s.Update(func(w World) World {
		w.Database = db.Clone()
		return w
	})
}

// SetReading sets a sensor's current value.
func (s *Store) SetReading(instanceID string, value float64) error {
	return s.mutate(func(w *World) error {
		i := w.componentIndex(instanceID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrComponentNotFound, instanceID)
		}
		def, ok := s.analyzer.Catalog().Get(w.Components[i].DefinitionID)
		if !ok || def.Category != catalog.CategorySensor {
			return fmt.Errorf("%w: %s", ErrNotSensor, instanceID)
		}
		v := value
		w.Components[i].State.Value = &v
		return nil
	})
}

// AppendLog adds an entry to the log stream, dropping the oldest entries
// beyond MaxLogEntries.
func (s *Store) AppendLog(level LogLevel, source, message string) LogEntry {
	s.mu.Lock()
	s.seq++
	entry := LogEntry{
		Seq:       s.seq,
		Timestamp: s.now(),
		Level:     level,
		Source:    source,
		Message:   message,
	}
	next := s.world.Clone()
	next.Logs = append(next.Logs, entry)
	if over := len(next.Logs) - MaxLogEntries; over > 0 {
		next.Logs = append([]LogEntry{}, next.Logs[over:]...)
	}
	s.world = next
	hook := s.logHook
	s.mu.Unlock()

	if hook != nil {
		hook(entry)
	}
	return entry
}

// Logs returns the current log stream, oldest first.
func (s *Store) Logs() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LogEntry{}, s.world.Logs...)
}

// ClearLogs empties the log stream.
func (s *Store) ClearLogs() {
	s.Update(func(w World) World {
		w.Logs = []LogEntry{}
		return w
	})
}

// Reset restores a fresh world. The clock's speed and auto-fluctuation
// setting carry over; everything else returns to its default.
func (s *Store) Reset() {
	s.Update(func(w World) World {
		fresh := Default()
		fresh.Clock.Speed = w.Clock.Speed
		fresh.Clock.AutoFluctuation = w.Clock.AutoFluctuation
		return fresh
	})
	s.getLogger().Info("world reset")
}

func newWire(from, to circuit.Endpoint, role circuit.WireRole) circuit.Wire {
	return circuit.Wire{
		ID:           uuid.NewString(),
		FromInstance: from.Instance,
		FromPin:      from.Pin,
		ToInstance:   to.Instance,
		ToPin:        to.Pin,
		Role:         role,
		Valid:        true,
	}
}
