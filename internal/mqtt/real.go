package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/dfpong/dfpong-controller/internal/ble"
)

// RealPublisher publishes to an actual MQTT broker.
type RealPublisher struct {
	client paho.Client
	topic  string
}

// Compile-time check that RealPublisher implements Publisher.
var _ Publisher = (*RealPublisher)(nil)

// NewRealPublisher creates a publisher connected to broker. Status goes to
// topic, retained, with an offline last will.
func NewRealPublisher(broker, topic string, controllerNumber int) (*RealPublisher, error) {
	will, err := formatOffline(controllerNumber)
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(fmt.Sprintf("dfpong-controller-%d", controllerNumber)).
		SetBinaryWill(topic, will, 1, true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	if err := connectClient(client, connectTimeout); err != nil {
		return nil, err
	}

	return &RealPublisher{
		client: client,
		topic:  topic,
	}, nil
}

const connectTimeout = 10 * time.Second

// connectClient waits up to timeout for client to reach the broker. On
// failure the client is disconnected so its retry loop does not outlive
// the caller.
func connectClient(client paho.Client, timeout time.Duration) error {
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		client.Disconnect(0)
		return fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return fmt.Errorf("connect to broker: %w", err)
	}
	return nil
}

// PublishStatus sends a status snapshot to the MQTT broker.
func (p *RealPublisher) PublishStatus(s ble.Status) error {
	payload, err := FormatPayload(s)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 1, retained so late subscribers see the current state.
	token := p.client.Publish(p.topic, 1, true, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

// IsConnected reports whether the client currently holds a broker connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
