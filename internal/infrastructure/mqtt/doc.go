// Package mqtt publishes jobtrack events to an MQTT broker.
//
// The client is publish-only. It connects with auto-reconnect, announces a
// retained online status on jobtrack/system/status and registers a Last Will
// so the broker marks the instance offline if it dies. Job application
// lifecycle events go to jobtrack/events/jobs/{event} as JSON.
//
// MQTT is optional: with mqtt.enabled=false nothing in this package is used.
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishJSON(mqtt.Topics{}.JobEvent("created"), event)
package mqtt
