package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/homebase/internal/store"
)

// MeasurementStoreOperation is the measurement written for each store call.
const MeasurementStoreOperation = "store_operation"

// RecordOperation writes one store_operation point. It implements
// store.Recorder so a Client can be attached to every collection.
//
// Tags: site, collection, op, outcome. Fields: duration_ms.
func (c *Client) RecordOperation(collection, operation string, duration time.Duration, err error) {
	if !c.IsConnected() {
		return
	}
	p := operationPoint(c.site, collection, operation, duration, err, time.Now())
	c.writer.WritePoint(p)
}

func operationPoint(site, collection, operation string, duration time.Duration, err error, ts time.Time) *write.Point {
	tags := map[string]string{
		"collection": collection,
		"op":         operation,
		"outcome":    store.Outcome(err),
	}
	if site != "" {
		tags["site"] = site
	}

	return write.NewPoint(
		MeasurementStoreOperation,
		tags,
		map[string]interface{}{
			"duration_ms": float64(duration.Microseconds()) / 1000,
		},
		ts,
	)
}

var _ store.Recorder = (*Client)(nil)
