// Package influxdb records simulation history in InfluxDB.
//
// It is optional (influxdb.enabled). When enabled, every sensor reading
// and every mock HTTP request becomes a point, so a lesson can be
// replayed or charted after the fact.
//
// # Measurements
//
//	sensor_reading   tags: instance_id, definition_id   fields: value
//	mock_request     tags: instance_id, method          fields: path, status, ok
//	simulation_tick  tags: kind                         fields: elapsed_us
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	client.SetOnError(func(err error) { logger.Warn("influx write failed", "error", err) })
//
//	scheduler.AddObserver(influxdb.NewRecorder(client))
//
// # Thread Safety
//
// All methods are safe for concurrent use. Writes are non-blocking and
// batched according to batch_size and flush_interval.
package influxdb
