package influxdb

import (
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/hangsome/system-builder-studio/internal/dispatch"
	"github.com/hangsome/system-builder-studio/internal/simulation"
)

var testTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestPoints(t *testing.T) {
	tests := []struct {
		name   string
		point  *write.Point
		prefix string
		fields []string
	}{
		{
			name:   "reading",
			point:  ReadingPoint("temp-sensor-1", "temp-humidity-sensor", 24.6, testTime),
			prefix: "sensor_reading,definition_id=temp-humidity-sensor,instance_id=temp-sensor-1 ",
			fields: []string{"value=24.6"},
		},
		{
			name: "dispatch ok",
			point: DispatchPoint("temp-sensor-1",
				dispatch.Request{Method: "GET", Path: "/upload?temperature=24.6"},
				dispatch.Result{Response: dispatch.Response{Status: 200}},
				testTime),
			prefix: "mock_request,instance_id=temp-sensor-1,method=GET ",
			fields: []string{"ok=true", "status=200i", `path="/upload?temperature=24.6"`},
		},
		{
			name: "dispatch not found",
			point: DispatchPoint("temp-sensor-1",
				dispatch.Request{Method: "GET", Path: "/missing"},
				dispatch.Result{Response: dispatch.Response{Status: 404}},
				testTime),
			prefix: "mock_request,",
			fields: []string{"ok=false", "status=404i"},
		},
		{
			name:   "tick",
			point:  TickPoint(simulation.TickFluctuation, 1500*time.Microsecond, testTime),
			prefix: "simulation_tick,kind=fluctuation ",
			fields: []string{"elapsed_us=1500i"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := write.PointToLineProtocol(tt.point, time.Second)
			if !strings.HasPrefix(line, tt.prefix) {
				t.Errorf("line %q does not start with %q", line, tt.prefix)
			}
			for _, f := range tt.fields {
				if !strings.Contains(line, f) {
					t.Errorf("line %q missing field %q", line, f)
				}
			}
			if tt.point.Time() != testTime {
				t.Errorf("Time() = %v, want %v", tt.point.Time(), testTime)
			}
		})
	}
}

type fakeWriter struct {
	readings   int
	dispatches int
	ticks      int
}

func (f *fakeWriter) WriteReading(string, string, float64, time.Time) { f.readings++ }
func (f *fakeWriter) WriteDispatch(string, dispatch.Request, dispatch.Result, time.Time) {
	f.dispatches++
}
func (f *fakeWriter) WriteTick(simulation.TickKind, time.Duration, time.Time) { f.ticks++ }

func TestRecorder(t *testing.T) {
	w := &fakeWriter{}
	r := NewRecorder(w)

	r.ReadingChanged("temp-sensor-1", "temp-humidity-sensor", 25, testTime)
	r.RequestDispatched("temp-sensor-1", dispatch.Request{}, dispatch.Result{}, testTime)
	r.TickCompleted(simulation.TickDispatch, testTime, time.Millisecond)

	if w.readings != 1 || w.dispatches != 1 {
		t.Errorf("readings=%d dispatches=%d, want 1 each", w.readings, w.dispatches)
	}
	if w.ticks != 0 {
		t.Errorf("ticks = %d with RecordTicks off", w.ticks)
	}

	r.RecordTicks = true
	r.TickCompleted(simulation.TickDispatch, testTime, time.Millisecond)
	if w.ticks != 1 {
		t.Errorf("ticks = %d, want 1", w.ticks)
	}
}
