package events

import "context"

// JobEventWriter is the subset of *influxdb.Client used for event counters.
type JobEventWriter interface {
	WriteJobEvent(event, status string)
}

// MetricsPublisher counts events in the job_events measurement.
type MetricsPublisher struct {
	writer JobEventWriter
}

// NewMetricsPublisher wraps a metrics writer.
func NewMetricsPublisher(w JobEventWriter) *MetricsPublisher {
	return &MetricsPublisher{writer: w}
}

// Publish implements Publisher. Writes are batched and never fail here.
func (p *MetricsPublisher) Publish(_ context.Context, e Event) error {
	p.writer.WriteJobEvent(string(e.Type), e.Status)
	return nil
}
