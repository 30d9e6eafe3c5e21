package mqtt

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/hangsome/system-builder-studio/internal/dispatch"
	"github.com/hangsome/system-builder-studio/internal/sensor"
	"github.com/hangsome/system-builder-studio/internal/simulation"
	"github.com/hangsome/system-builder-studio/internal/world"
)

// defaultQueueSize bounds the number of messages waiting to be published.
const defaultQueueSize = 256

// Publisher is the subset of *Client used by Telemetry.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// ReadingMessage is published on <prefix>/readings/<instance>.
type ReadingMessage struct {
	InstanceID   string    `json:"instanceId"`
	DefinitionID string    `json:"definitionId"`
	Value        float64   `json:"value"`
	Unit         string    `json:"unit,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// DispatchMessage is published on <prefix>/dispatch for every mock request.
type DispatchMessage struct {
	InstanceID string    `json:"instanceId"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Status     int       `json:"status"`
	Body       any       `json:"body,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type outbound struct {
	topic    string
	payload  []byte
	retained bool
}

// Telemetry mirrors simulation activity onto MQTT.
//
// It implements simulation.Observer and can be installed as a world log
// hook. Messages are queued and published by a single goroutine so the
// scheduler never waits on the broker; when the queue is full the message
// is dropped and counted.
type Telemetry struct {
	pub    Publisher
	topics Topics
	qos    byte
	logger Logger

	queue chan outbound
	done  chan struct{}

	mu      sync.Mutex
	closed  bool
	dropped uint64
}

var _ simulation.Observer = (*Telemetry)(nil)

// NewTelemetry creates a telemetry feed and starts its publishing goroutine.
// Call Close to flush and stop it.
func NewTelemetry(pub Publisher, topics Topics, qos byte) *Telemetry {
	t := &Telemetry{
		pub:    pub,
		topics: topics,
		qos:    qos,
		queue:  make(chan outbound, defaultQueueSize),
		done:   make(chan struct{}),
	}
	go t.run()
	return t
}

// SetLogger sets the logger for publish failures.
func (t *Telemetry) SetLogger(logger Logger) {
	t.mu.Lock()
	t.logger = logger
	t.mu.Unlock()
}

// ReadingChanged publishes a retained reading for the sensor instance.
func (t *Telemetry) ReadingChanged(instanceID, definitionID string, value float64, at time.Time) {
	msg := ReadingMessage{
		InstanceID:   instanceID,
		DefinitionID: definitionID,
		Value:        value,
		Timestamp:    at.UTC(),
	}
	if p, ok := sensor.ProfileFor(definitionID); ok {
		msg.Unit = p.Unit
	}
	t.enqueue(t.topics.Reading(instanceID), msg, true)
}

// RequestDispatched publishes the request and its response.
func (t *Telemetry) RequestDispatched(instanceID string, req dispatch.Request, res dispatch.Result, at time.Time) {
	t.enqueue(t.topics.Dispatch(), DispatchMessage{
		InstanceID: instanceID,
		Method:     req.Method,
		Path:       req.Path,
		Status:     res.Response.Status,
		Body:       res.Response.Body,
		Timestamp:  at.UTC(),
	}, false)
}

// TickCompleted is a no-op; tick timing goes to metrics, not the bus.
func (t *Telemetry) TickCompleted(simulation.TickKind, time.Time, time.Duration) {}

// PublishLog mirrors a world log entry. Its signature matches
// world.Store.SetLogHook.
func (t *Telemetry) PublishLog(entry world.LogEntry) {
	t.enqueue(t.topics.Logs(), entry, false)
}

// Dropped returns how many messages were discarded because the queue was full.
func (t *Telemetry) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

// Close stops accepting messages and waits for queued ones to be published.
func (t *Telemetry) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	close(t.queue)
	t.mu.Unlock()
	<-t.done
}

func (t *Telemetry) enqueue(topic string, v any, retained bool) {
	payload, err := json.Marshal(v)
	if err != nil {
		t.warn("MQTT telemetry encode failed", "topic", topic, "error", err)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	select {
	case t.queue <- outbound{topic: topic, payload: payload, retained: retained}:
	default:
		t.dropped++
	}
}

func (t *Telemetry) run() {
	defer close(t.done)
	for msg := range t.queue {
		if err := t.pub.Publish(msg.topic, msg.payload, t.qos, msg.retained); err != nil {
			t.warn("MQTT telemetry publish failed", "topic", msg.topic, "error", err)
		}
	}
}

func (t *Telemetry) warn(msg string, args ...any) {
	t.mu.Lock()
	logger := t.logger
	t.mu.Unlock()
	if logger != nil {
		logger.Warn(msg, args...)
	}
}
