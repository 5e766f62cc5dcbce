// Package influxdb records store telemetry in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. The Client
// implements store.Recorder, so attaching it to a registry yields one
// point per store operation:
//
//	store_operation,site=home,collection=rooms,op=rekey,outcome=ok duration_ms=0.42
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB, cfg.Site.ID)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	registry.SetRecorder(client)
//
// Writes are batched according to influxdb.batch_size and
// influxdb.flush_interval. Batch failures are reported through SetOnError;
// connection and health check errors are returned directly.
package influxdb
