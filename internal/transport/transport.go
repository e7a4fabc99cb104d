// Package transport implements the Transport component (spec.md §4,
// Component 3): connect, subscribe, publish, and inbound delivery over a
// publish/subscribe messaging bus. It wraps paho.mqtt.golang the way
// pkg/rabbitmq did in the teacher project, with a bounded exponential
// backoff around each connect attempt (github.com/cenkalti/backoff/v4)
// and a mutex around publish/subscribe calls, per spec.md §9 "Transport
// re-entrancy": the underlying client is not safe enough for this
// module's taste to trust bare, so every call that touches it is
// serialized.
package transport

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MessageHandler receives an inbound frame's topic and raw payload.
type MessageHandler func(topic string, payload []byte)

// Config describes how to reach the broker.
type Config struct {
	Address      string // host:port
	ClientID     string
	Username     string
	Password     string
	CleanSession bool
	ConnectRetry backoff.BackOff // nil uses a small default

	// OnConnectionLost is invoked on the paho client's own goroutine when
	// the network-level connection drops. spec.md §4.7 treats this as a
	// trigger for a full controller reboot rather than in-band recovery.
	OnConnectionLost func(error)
}

// Transport is the seam between the firmware and the wire-level messaging
// client (spec.md §1 "the wire-level messaging client (modeled as a
// subscribe/publish transport)").
type Transport interface {
	Connect() error
	IsConnected() bool
	Subscribe(topic string, qos byte, handler MessageHandler) error
	Publish(topic string, qos byte, retained bool, payload string) error
	Disconnect()
}

// MQTT is the concrete Transport backed by paho.mqtt.golang.
type MQTT struct {
	mu     sync.Mutex
	client mqtt.Client
	cfg    Config
}

// NewMQTT builds a disconnected client from cfg. Call Connect before use.
func NewMQTT(cfg Config) *MQTT {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.Address))
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetCleanSession(cfg.CleanSession)
	opts.SetAutoReconnect(false) // the Reconnect Supervisor owns retry cadence
	if cfg.OnConnectionLost != nil {
		opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			cfg.OnConnectionLost(err)
		})
	}

	return &MQTT{client: mqtt.NewClient(opts), cfg: cfg}
}

// Connect makes one bounded-retry attempt to reach the broker, matching
// the teacher's NewRabbitMQConn shape: a short exponential backoff around
// the blocking Connect() token, not an unbounded retry loop (the
// Reconnect Supervisor's 5s poll is the outer retry, per spec.md §4.7).
func (m *MQTT) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bo := m.cfg.ConnectRetry
	if bo == nil {
		eb := backoff.NewExponentialBackOff()
		eb.MaxElapsedTime = 3 * time.Second
		bo = eb
	}

	err := backoff.Retry(func() error {
		token := m.client.Connect()
		if token.Wait() && token.Error() != nil {
			log.Printf("transport: connect attempt failed: %v", token.Error())
			return token.Error()
		}
		return nil
	}, bo)
	if err != nil {
		return fmt.Errorf("transport: connect to %s: %w", m.cfg.Address, err)
	}
	return nil
}

func (m *MQTT) IsConnected() bool {
	return m.client.IsConnectionOpen()
}

func (m *MQTT) Subscribe(topic string, qos byte, handler MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	token := m.client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("transport: subscribe %s: %w", topic, token.Error())
	}
	return nil
}

func (m *MQTT) Publish(topic string, qos byte, retained bool, payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	token := m.client.Publish(topic, qos, retained, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("transport: publish %s: %w", topic, token.Error())
	}
	return nil
}

func (m *MQTT) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client.IsConnected() {
		m.client.Disconnect(250)
	}
}
