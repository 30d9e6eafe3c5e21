package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/hangsome/system-builder-studio/internal/dispatch"
	"github.com/hangsome/system-builder-studio/internal/simulation"
)

// Measurement names written by the studio.
const (
	MeasurementReading  = "sensor_reading"
	MeasurementDispatch = "mock_request"
	MeasurementTick     = "simulation_tick"
)

// ReadingPoint builds the point for one sensor reading.
//
//	sensor_reading,instance_id=temp-sensor-1,definition_id=temp-humidity-sensor value=24.6
func ReadingPoint(instanceID, definitionID string, value float64, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementReading,
		map[string]string{
			"instance_id":   instanceID,
			"definition_id": definitionID,
		},
		map[string]any{
			"value": value,
		},
		at,
	)
}

// DispatchPoint builds the point for one mock HTTP request. The request
// path is a field, not a tag, because it carries the reading value.
func DispatchPoint(instanceID string, req dispatch.Request, res dispatch.Result, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementDispatch,
		map[string]string{
			"instance_id": instanceID,
			"method":      req.Method,
		},
		map[string]any{
			"path":   req.Path,
			"status": int64(res.Response.Status),
			"ok":     res.OK(),
		},
		at,
	)
}

// TickPoint builds the point recording how long a scheduler tick took.
func TickPoint(kind simulation.TickKind, elapsed time.Duration, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementTick,
		map[string]string{
			"kind": string(kind),
		},
		map[string]any{
			"elapsed_us": elapsed.Microseconds(),
		},
		at,
	)
}

// WriteReading records a sensor reading. The write is non-blocking.
func (c *Client) WriteReading(instanceID, definitionID string, value float64, at time.Time) {
	c.writePoint(ReadingPoint(instanceID, definitionID, value, at))
}

// WriteDispatch records a mock HTTP request and its status.
func (c *Client) WriteDispatch(instanceID string, req dispatch.Request, res dispatch.Result, at time.Time) {
	c.writePoint(DispatchPoint(instanceID, req, res, at))
}

// WriteTick records a scheduler tick duration.
func (c *Client) WriteTick(kind simulation.TickKind, elapsed time.Duration, at time.Time) {
	c.writePoint(TickPoint(kind, elapsed, at))
}

func (c *Client) writePoint(p *write.Point) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(p)
}
