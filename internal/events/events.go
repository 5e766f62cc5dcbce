package events

import (
	"context"
	"encoding/json"

	"github.com/nerrad567/homebase/internal/infrastructure/mqtt"
	"github.com/nerrad567/homebase/internal/store"
)

// Logger is the logging surface used by publishers.
type Logger interface {
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Debug(string, ...any) {}

// Fanout delivers each change to every observer in order.
// Nil observers are skipped.
type Fanout []store.Observer

// Changed implements store.Observer.
func (f Fanout) Changed(ctx context.Context, change store.Change) {
	for _, o := range f {
		if o != nil {
			o.Changed(ctx, change)
		}
	}
}

// Publisher is the MQTT surface needed to publish changes.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Topics() mqtt.Topics
	QoS() byte
}

// MQTTPublisher publishes every change to <prefix>/<collection>/<op>.
// Failures are logged; the mutation has already been persisted.
type MQTTPublisher struct {
	client Publisher
	logger Logger
}

// NewMQTTPublisher creates a publisher over client. logger may be nil.
func NewMQTTPublisher(client Publisher, logger Logger) *MQTTPublisher {
	if logger == nil {
		logger = noopLogger{}
	}
	return &MQTTPublisher{client: client, logger: logger}
}

// Changed implements store.Observer.
func (p *MQTTPublisher) Changed(_ context.Context, change store.Change) {
	payload, err := json.Marshal(change)
	if err != nil {
		p.logger.Warn("encoding change event failed", "collection", change.Collection, "key", change.Key, "error", err)
		return
	}

	topic := p.client.Topics().Change(change.Collection, string(change.Op))
	if err := p.client.Publish(topic, payload, p.client.QoS(), false); err != nil {
		p.logger.Warn("publishing change event failed",
			"topic", topic,
			"key", change.Key,
			"error", err,
		)
		return
	}
	p.logger.Debug("change event published", "topic", topic, "key", change.Key)
}

var (
	_ store.Observer = Fanout(nil)
	_ store.Observer = (*MQTTPublisher)(nil)
	_ Publisher      = (*mqtt.Client)(nil)
)
