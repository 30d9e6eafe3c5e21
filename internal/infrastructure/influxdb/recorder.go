package influxdb

import (
	"time"

	"github.com/hangsome/system-builder-studio/internal/dispatch"
	"github.com/hangsome/system-builder-studio/internal/simulation"
)

// Writer is the subset of *Client used by Recorder.
type Writer interface {
	WriteReading(instanceID, definitionID string, value float64, at time.Time)
	WriteDispatch(instanceID string, req dispatch.Request, res dispatch.Result, at time.Time)
	WriteTick(kind simulation.TickKind, elapsed time.Duration, at time.Time)
}

// Recorder stores simulation activity as time-series points. It is a
// simulation.Observer; writes are batched by the client and never block
// the scheduler.
type Recorder struct {
	w Writer

	// RecordTicks enables simulation_tick points. Off by default because
	// tick timing is already exported as Prometheus histograms.
	RecordTicks bool
}

var _ simulation.Observer = (*Recorder)(nil)

// NewRecorder creates a recorder writing through w.
func NewRecorder(w Writer) *Recorder {
	return &Recorder{w: w}
}

// ReadingChanged implements simulation.Observer.
func (r *Recorder) ReadingChanged(instanceID, definitionID string, value float64, at time.Time) {
	r.w.WriteReading(instanceID, definitionID, value, at)
}

// RequestDispatched implements simulation.Observer.
func (r *Recorder) RequestDispatched(instanceID string, req dispatch.Request, res dispatch.Result, at time.Time) {
	r.w.WriteDispatch(instanceID, req, res, at)
}

// TickCompleted implements simulation.Observer.
func (r *Recorder) TickCompleted(kind simulation.TickKind, at time.Time, elapsed time.Duration) {
	if r.RecordTicks {
		r.w.WriteTick(kind, elapsed, at)
	}
}
