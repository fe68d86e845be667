package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementAuthEvents = "auth_events"
	MeasurementJobEvents  = "job_events"
)

// WriteAuthEvent records one authentication outcome (authenticated,
// anonymous, invalid_token, login_failed, ...) as a counter point.
// The write is non-blocking; points are batched.
func (c *Client) WriteAuthEvent(outcome string) {
	c.WritePoint(MeasurementAuthEvents,
		map[string]string{"outcome": outcome},
		map[string]interface{}{"count": 1},
	)
}

// WriteJobEvent records a job application lifecycle event. Status is
// omitted from the tags when empty (deletes carry none).
func (c *Client) WriteJobEvent(event, status string) {
	tags := map[string]string{"event": event}
	if status != "" {
		tags["status"] = status
	}
	c.WritePoint(MeasurementJobEvents, tags, map[string]interface{}{"count": 1})
}

// WritePoint writes a custom point stamped with the current time.
//
// Example:
//
//	client.WritePoint("http_requests",
//	    map[string]string{"route": "/api/v1/jobs"},
//	    map[string]interface{}{"duration_ms": 4.2})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes a custom point with a specific timestamp.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
