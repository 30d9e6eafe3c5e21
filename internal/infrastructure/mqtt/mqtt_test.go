package mqtt

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hangsome/system-builder-studio/internal/dispatch"
	"github.com/hangsome/system-builder-studio/internal/infrastructure/config"
	"github.com/hangsome/system-builder-studio/internal/world"
)

func TestTopicBuilders(t *testing.T) {
	topics := NewTopics("")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"status", topics.Status(), "studio/status"},
		{"reading", topics.Reading("temp-sensor-1"), "studio/readings/temp-sensor-1"},
		{"dispatch", topics.Dispatch(), "studio/dispatch"},
		{"logs", topics.Logs(), "studio/logs"},
		{"control", topics.Control(ControlStart), "studio/control/start"},
		{"all readings", topics.AllReadings(), "studio/readings/+"},
		{"all control", topics.AllControl(), "studio/control/+"},
		{"all", topics.All(), "studio/#"},
		{"custom prefix", NewTopics("lab/3").Status(), "lab/3/status"},
		{"zero value", Topics{}.Logs(), "studio/logs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{Host: "broker.local", Port: 8883, TLS: true, ClientID: "studio-1"},
		Auth:   config.MQTTAuthConfig{Username: "studio", Password: "secret"},
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     30,
		},
	}

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "ssl://broker.local:8883" {
		t.Errorf("Servers = %v", opts.Servers)
	}
	if opts.ClientID != "studio-1" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "studio" || opts.Password != "secret" {
		t.Error("credentials not applied")
	}
	if !opts.AutoReconnect || !opts.CleanSession {
		t.Error("expected auto-reconnect and clean session")
	}
	if opts.MaxReconnectInterval != 30*time.Second {
		t.Errorf("MaxReconnectInterval = %v", opts.MaxReconnectInterval)
	}
	if opts.TLSConfig == nil {
		t.Error("TLSConfig not set with TLS enabled")
	}
}

func TestConfigureLWT(t *testing.T) {
	cfg := config.MQTTConfig{Broker: config.MQTTBrokerConfig{Host: "localhost", Port: 1883, ClientID: "studio-1"}}
	opts := buildClientOptions(cfg)
	configureLWT(opts, NewTopics("lab"), "studio-1")

	if !opts.WillEnabled || opts.WillTopic != "lab/status" || !opts.WillRetained {
		t.Errorf("will = enabled:%v topic:%q retained:%v", opts.WillEnabled, opts.WillTopic, opts.WillRetained)
	}

	var payload map[string]string
	if err := json.Unmarshal(opts.WillPayload, &payload); err != nil {
		t.Fatalf("will payload is not JSON: %v", err)
	}
	if payload["status"] != "offline" || payload["reason"] != "unexpected_disconnect" {
		t.Errorf("will payload = %v", payload)
	}
}

func TestStatusPayloads(t *testing.T) {
	for _, tt := range []struct {
		payload string
		status  string
	}{
		{buildOnlinePayload("studio-1"), "online"},
		{buildOfflinePayload("studio-1"), "offline"},
	} {
		var m map[string]string
		if err := json.Unmarshal([]byte(tt.payload), &m); err != nil {
			t.Fatalf("payload %q: %v", tt.payload, err)
		}
		if m["status"] != tt.status || m["client_id"] != "studio-1" {
			t.Errorf("payload = %v, want status %q", m, tt.status)
		}
	}
}

func TestClient_ValidationWithoutBroker(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}
	noop := func(string, []byte) error { return nil }

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"publish empty topic", c.Publish("", nil, 0, false), ErrInvalidTopic},
		{"publish bad qos", c.Publish("studio/logs", nil, 3, false), ErrInvalidQoS},
		{"publish too large", c.Publish("studio/logs", make([]byte, maxPayloadSize+1), 0, false), ErrPublishFailed},
		{"publish disconnected", c.Publish("studio/logs", []byte("{}"), 0, false), ErrNotConnected},
		{"retained disconnected", c.PublishRetained("studio/status", []byte("{}")), ErrNotConnected},
		{"subscribe nil handler", c.Subscribe("studio/#", 0, nil), ErrSubscribeFailed},
		{"subscribe disconnected", c.Subscribe("studio/#", 0, noop), ErrNotConnected},
		{"unsubscribe empty", c.Unsubscribe(""), ErrInvalidTopic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("error = %v, want %v", tt.err, tt.want)
			}
		})
	}

	if c.IsConnected() {
		t.Error("IsConnected() should be false for an unconnected client")
	}
	if c.SubscriptionCount() != 0 {
		t.Error("failed subscribe should not be tracked")
	}
}

func TestClient_CloseNil(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on unconnected client error = %v", err)
	}
}

type published struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{topic, payload, qos, retained})
	return f.err
}

func (f *fakePublisher) messages() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.msgs...)
}

type warnRecorder struct {
	mu    sync.Mutex
	warns []string
}

func (w *warnRecorder) Error(string, ...any) {}
func (w *warnRecorder) Warn(msg string, _ ...any) {
	w.mu.Lock()
	w.warns = append(w.warns, msg)
	w.mu.Unlock()
}

func TestTelemetry_PublishesInOrder(t *testing.T) {
	pub := &fakePublisher{}
	feed := NewTelemetry(pub, NewTopics("studio"), 1)

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	feed.ReadingChanged("temp-sensor-1", "temp-humidity-sensor", 26.6, at)
	feed.RequestDispatched("temp-sensor-1",
		dispatch.Request{Method: "GET", Path: "/upload?temperature=26.6"},
		dispatch.Result{Response: dispatch.Response{Status: 200, Body: map[string]any{"status": "success"}}},
		at)
	feed.PublishLog(world.LogEntry{Seq: 7, Timestamp: at, Level: world.LevelInfo, Source: "simulation", Message: "simulation started"})
	feed.Close()

	msgs := pub.messages()
	if len(msgs) != 3 {
		t.Fatalf("published %d messages, want 3", len(msgs))
	}

	if msgs[0].topic != "studio/readings/temp-sensor-1" || !msgs[0].retained || msgs[0].qos != 1 {
		t.Errorf("reading message = %+v", msgs[0])
	}
	var reading ReadingMessage
	if err := json.Unmarshal(msgs[0].payload, &reading); err != nil {
		t.Fatal(err)
	}
	if reading.Value != 26.6 || reading.Unit != "°C" || !reading.Timestamp.Equal(at) {
		t.Errorf("reading = %+v", reading)
	}

	if msgs[1].topic != "studio/dispatch" || msgs[1].retained {
		t.Errorf("dispatch message = %+v", msgs[1])
	}
	var dm DispatchMessage
	if err := json.Unmarshal(msgs[1].payload, &dm); err != nil {
		t.Fatal(err)
	}
	if dm.Status != 200 || dm.Path != "/upload?temperature=26.6" {
		t.Errorf("dispatch = %+v", dm)
	}

	if msgs[2].topic != "studio/logs" || !strings.Contains(string(msgs[2].payload), "simulation started") {
		t.Errorf("log message = %+v", msgs[2])
	}
}

func TestTelemetry_PublishErrorIsLogged(t *testing.T) {
	pub := &fakePublisher{err: ErrNotConnected}
	logger := &warnRecorder{}
	feed := NewTelemetry(pub, NewTopics(""), 0)
	feed.SetLogger(logger)

	feed.PublishLog(world.LogEntry{Message: "x"})
	feed.Close()

	logger.mu.Lock()
	defer logger.mu.Unlock()
	if len(logger.warns) != 1 {
		t.Errorf("warnings = %v, want one publish failure", logger.warns)
	}
}

func TestTelemetry_CloseIsIdempotent(t *testing.T) {
	pub := &fakePublisher{}
	feed := NewTelemetry(pub, NewTopics(""), 0)
	feed.Close()
	feed.Close()

	feed.PublishLog(world.LogEntry{Message: "after close"})
	if n := len(pub.messages()); n != 0 {
		t.Errorf("published %d messages after close", n)
	}
}

type blockingPublisher struct {
	release chan struct{}
}

func (b *blockingPublisher) Publish(string, []byte, byte, bool) error {
	<-b.release
	return nil
}

func TestTelemetry_DropsWhenQueueFull(t *testing.T) {
	pub := &blockingPublisher{release: make(chan struct{})}
	feed := NewTelemetry(pub, NewTopics(""), 0)

	// One message is held by the publisher, defaultQueueSize wait in the queue.
	total := defaultQueueSize + 10
	for i := 0; i < total; i++ {
		feed.PublishLog(world.LogEntry{Seq: uint64(i)})
	}
	close(pub.release)
	feed.Close()

	if d := feed.Dropped(); d == 0 || d > 10 {
		t.Errorf("Dropped() = %d, want between 1 and 10", d)
	}
}

type fakeController struct {
	starts, stops int
	err           error
}

func (f *fakeController) Start() error {
	f.starts++
	return f.err
}

func (f *fakeController) Stop() { f.stops++ }

func TestControlHandler(t *testing.T) {
	topics := NewTopics("studio")

	t.Run("start", func(t *testing.T) {
		ctrl := &fakeController{}
		if err := ControlHandler(ctrl)(topics.Control(ControlStart), nil); err != nil {
			t.Fatalf("handler error = %v", err)
		}
		if ctrl.starts != 1 {
			t.Errorf("starts = %d", ctrl.starts)
		}
	})

	t.Run("stop", func(t *testing.T) {
		ctrl := &fakeController{}
		if err := ControlHandler(ctrl)(topics.Control(ControlStop), nil); err != nil {
			t.Fatalf("handler error = %v", err)
		}
		if ctrl.stops != 1 {
			t.Errorf("stops = %d", ctrl.stops)
		}
	})

	t.Run("start refused", func(t *testing.T) {
		notReady := errors.New("not ready")
		ctrl := &fakeController{err: notReady}
		err := ControlHandler(ctrl)(topics.Control(ControlStart), nil)
		if !errors.Is(err, notReady) {
			t.Errorf("error = %v, want wrapped start error", err)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		ctrl := &fakeController{}
		err := ControlHandler(ctrl)(topics.Control("reboot"), nil)
		if !errors.Is(err, ErrUnknownCommand) {
			t.Errorf("error = %v, want ErrUnknownCommand", err)
		}
		if ctrl.starts+ctrl.stops != 0 {
			t.Error("unknown command reached the controller")
		}
	})
}
