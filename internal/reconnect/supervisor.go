// Package reconnect implements the Reconnect Supervisor (spec.md §4.7): a
// 5s poll loop that reconnects the transport and re-subscribes the
// command topics whenever the connection is down.
package reconnect

import (
	"context"
	"log"
	"time"

	"github.com/openfarm-labs/garden-firmware/internal/transport"
)

// PollInterval is the supervisor's wake period (spec.md §4.7).
const PollInterval = 5 * time.Second

// Subscription pairs a command topic with the handler that decodes it.
type Subscription struct {
	Topic   string
	QoS     byte
	Handler transport.MessageHandler
}

// Supervisor owns the reconnect/resubscribe cycle.
type Supervisor struct {
	tr            transport.Transport
	subscriptions []Subscription
	logsTopic     string
	bootID        string
}

// New builds a Supervisor. subscriptions is the fixed set of command
// topics spec.md §4.7 names; logsTopic is where the one-shot "setup
// complete" line goes (<prefix>/data/logs). bootID is appended to that
// line so operators can tell reboots apart in aggregated logs
// (SPEC_FULL.md §5); it is published only on the logs topic, never in a
// line-protocol telemetry payload.
func New(tr transport.Transport, subscriptions []Subscription, logsTopic, bootID string) *Supervisor {
	return &Supervisor{tr: tr, subscriptions: subscriptions, logsTopic: logsTopic, bootID: bootID}
}

// Run polls every PollInterval until ctx is done, reconnecting and
// re-subscribing whenever the transport is found disconnected.
func (s *Supervisor) Run(ctx context.Context) {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.tr.IsConnected() {
				continue
			}
			s.reconnect()
		}
	}
}

func (s *Supervisor) reconnect() {
	if err := s.tr.Connect(); err != nil {
		log.Printf("reconnect: connect failed: %v", err)
		return
	}

	for _, sub := range s.subscriptions {
		if err := s.tr.Subscribe(sub.Topic, sub.QoS, sub.Handler); err != nil {
			log.Printf("reconnect: subscribe %s failed: %v", sub.Topic, err)
			return
		}
	}

	if err := s.tr.Publish(s.logsTopic, 1, false, "setup complete boot="+s.bootID); err != nil {
		log.Printf("reconnect: setup-complete log publish failed: %v", err)
	}
}
