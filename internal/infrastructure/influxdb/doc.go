// Package influxdb writes jobtrack metrics to InfluxDB v2.
//
// It wraps influxdb-client-go with connection management, batched
// non-blocking writes and health checks. Two measurements are produced:
//
//   - auth_events: one point per authentication outcome, tagged by outcome
//   - job_events: one point per job application lifecycle event
//
// InfluxDB is optional. Connect returns ErrDisabled when it is switched off
// and every write method is a no-op on a nil or closed client.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteAuthEvent("login_failed")
package influxdb
