package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/nerrad567/homebase/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "homebase-test",
		},
		QoS:         1,
		TopicPrefix: "homebase-test/events",
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// connectOrSkip connects to the broker named by HOMEBASE_TEST_MQTT_PORT on
// localhost, skipping the test when the variable is unset.
func connectOrSkip(t *testing.T) *Client {
	t.Helper()
	port := os.Getenv("HOMEBASE_TEST_MQTT_PORT")
	if port == "" {
		t.Skip("HOMEBASE_TEST_MQTT_PORT not set; skipping broker test")
	}
	cfg := testConfig()
	p, err := strconv.Atoi(port)
	if err != nil {
		t.Fatalf("bad HOMEBASE_TEST_MQTT_PORT: %v", err)
	}
	cfg.Broker.Port = p

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() }) //nolint:errcheck // Test cleanup
	return client
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.MQTTAuthConfig{Username: "svc", Password: "pw"}

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("Servers = %v, want [tcp://127.0.0.1:1883]", opts.Servers)
	}
	if opts.ClientID != "homebase-test" {
		t.Errorf("ClientID = %q, want homebase-test", opts.ClientID)
	}
	if opts.Username != "svc" || opts.Password != "pw" {
		t.Errorf("credentials = %q/%q, want svc/pw", opts.Username, opts.Password)
	}
	if !opts.AutoReconnect || !opts.CleanSession {
		t.Error("expected auto-reconnect and clean session")
	}
	if opts.TLSConfig != nil && opts.TLSConfig.MinVersion != 0 {
		t.Error("TLS configured without broker.tls")
	}
}

func TestBuildClientOptions_TLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883

	opts := buildClientOptions(cfg)

	if opts.Servers[0].Scheme != "ssl" {
		t.Errorf("scheme = %q, want ssl", opts.Servers[0].Scheme)
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("expected TLS 1.2 minimum")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, NewTopics("homebase-test/events"), "homebase-test")

	if !opts.WillEnabled || opts.WillTopic != "homebase-test/events/status" {
		t.Errorf("will = %v %q, want enabled on status topic", opts.WillEnabled, opts.WillTopic)
	}
	if !opts.WillRetained {
		t.Error("will should be retained")
	}

	var payload map[string]string
	if err := json.Unmarshal(opts.WillPayload, &payload); err != nil {
		t.Fatalf("will payload is not JSON: %v", err)
	}
	if payload["status"] != "offline" || payload["reason"] != "unexpected_disconnect" {
		t.Errorf("will payload = %v", payload)
	}
}

func TestTopics(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{"custom prefix", "site/records", "site/records/users/created"},
		{"slashes trimmed", "/site/records/", "site/records/users/created"},
		{"empty uses default", "", DefaultTopicPrefix + "/users/created"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewTopics(tt.prefix).Change("users", "created"); got != tt.want {
				t.Errorf("Change() = %q, want %q", got, tt.want)
			}
		})
	}

	topics := NewTopics("hb")
	if got := topics.AllChanges(); got != "hb/+/+" {
		t.Errorf("AllChanges() = %q, want hb/+/+", got)
	}
	if got := topics.Status(); got != "hb/status" {
		t.Errorf("Status() = %q, want hb/status", got)
	}
}

func TestPublish_Validation(t *testing.T) {
	c := &Client{topics: NewTopics("")}

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"empty topic", "", []byte("{}"), 1, ErrInvalidTopic},
		{"wildcard topic", "homebase/events/+/created", []byte("{}"), 1, ErrInvalidTopic},
		{"bad qos", "homebase/events/users/created", []byte("{}"), 3, ErrInvalidQoS},
		{"oversized payload", "homebase/events/users/created", []byte(strings.Repeat("x", maxPayloadSize+1)), 1, ErrPublishFailed},
		{"not connected", "homebase/events/users/created", []byte("{}"), 1, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHealthCheck_Disconnected(t *testing.T) {
	c := &Client{}

	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestClose_NotConnected(t *testing.T) {
	var nilClient *Client
	if err := nilClient.Close(); err != nil {
		t.Errorf("Close() on nil client error = %v", err)
	}
	if err := (&Client{}).Close(); err != nil {
		t.Errorf("Close() on zero client error = %v", err)
	}
}

func TestStatusPayload(t *testing.T) {
	var online map[string]string
	if err := json.Unmarshal([]byte(buildStatusPayload("c1", "online", "")), &online); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if online["status"] != "online" || online["client_id"] != "c1" {
		t.Errorf("payload = %v", online)
	}
	if _, ok := online["reason"]; ok {
		t.Error("online payload should not carry a reason")
	}
}

func TestConnectAndPublish(t *testing.T) {
	client := connectOrSkip(t)

	if !client.IsConnected() {
		t.Fatal("IsConnected() = false after Connect")
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	topic := client.Topics().Change("users", "created")
	if err := client.Publish(topic, []byte(`{"key":"u1"}`), client.QoS(), false); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
}
