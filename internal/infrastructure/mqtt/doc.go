// Package mqtt provides MQTT client connectivity for Homebase.
//
// Homebase publishes a change event for every committed record mutation,
// so other services can react without polling the HTTP API:
//
//	Homebase → MQTT Broker → subscribers (automation, dashboards, audit)
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) on the retained status topic
//   - Connection health monitoring
//
// Topics live under a configurable prefix (default "homebase/events"):
//
//	homebase/events/{collection}/{op}   change events, not retained
//	homebase/events/status              online/offline, retained
//
// TLS should be enabled (mqtt.broker.tls) whenever the broker is not local.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	topic := client.Topics().Change("rooms", "renamed")
//	client.Publish(topic, payload, client.QoS(), false)
package mqtt
