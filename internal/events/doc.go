// Package events publishes job application lifecycle events.
//
// The jobs service emits an Event after every committed mutation. Sinks are
// optional and pluggable: MQTTPublisher sends JSON to the broker,
// MetricsPublisher counts events in InfluxDB, Multi combines them and Nop is
// used when neither is configured. Publishing failures never roll back the
// change that produced the event.
package events
