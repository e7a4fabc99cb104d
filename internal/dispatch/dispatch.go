// Package dispatch wires inbound command topics to the Command Codec and
// the components that act on them, in the topic-suffix switch style of
// the teacher's event decoder (internal/services/event/decoder.go). It
// also folds in QoS 1 redelivery dedup via pkg/dedup, the way the
// teacher's sensor simulator deduped redelivered state-change events
// (internal/sensor-simulator/sensorSimulator.go).
package dispatch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"strings"
	"time"

	"github.com/openfarm-labs/garden-firmware/internal/codec"
	"github.com/openfarm-labs/garden-firmware/internal/config"
	"github.com/openfarm-labs/garden-firmware/internal/light"
	"github.com/openfarm-labs/garden-firmware/internal/watering"
	"github.com/openfarm-labs/garden-firmware/pkg/dedup"
)

// RebootRequester is the subset of bootstrap.RebootMailbox the
// update_config path needs.
type RebootRequester interface {
	RequestReboot(delay time.Duration)
}

// ConfigUpdateDelay is how long after a successful update_config the
// reboot fires (spec.md §4.2: "requests a delayed reboot (1 s)").
const ConfigUpdateDelay = 1 * time.Second

// Dispatcher routes one controller's five command topics to the Watering
// Worker, Light Controller, and Config Store.
type Dispatcher struct {
	ctx     context.Context
	worker  *watering.Worker
	lights  *light.Controller
	store   *config.Store
	reboot  RebootRequester
	deduper *dedup.Deduper
}

// New builds a Dispatcher. ctx bounds the blocking Enqueue calls the
// water handler makes; it should be the controller's run context, not a
// per-message context.
func New(ctx context.Context, worker *watering.Worker, lights *light.Controller, store *config.Store, reboot RebootRequester) *Dispatcher {
	return &Dispatcher{
		ctx:     ctx,
		worker:  worker,
		lights:  lights,
		store:   store,
		reboot:  reboot,
		deduper: dedup.New(2*time.Minute, 1000),
	}
}

// Handle is the transport.MessageHandler for every command topic;
// install it once per subscription with the topic bound in the closure,
// or call it directly with the concrete topic from a single shared
// subscription — both shapes work since dispatch is topic-suffix based.
func (d *Dispatcher) Handle(topic string, payload []byte) {
	// The dedup key includes topic, not just payload: stop and stop_all
	// both carry an empty payload, and hashing payload alone would make
	// a legitimate stop following a recent stop_all (or vice versa) look
	// like a QoS 1 redelivery of the same command and get dropped.
	h := sha256.New()
	h.Write([]byte(topic))
	h.Write(payload)
	if !d.deduper.ShouldProcess(hex.EncodeToString(h.Sum(nil))) {
		return
	}

	switch {
	case strings.HasSuffix(topic, "/command/water"):
		d.handleWater(payload)
	case strings.HasSuffix(topic, "/command/stop_all"):
		d.worker.StopAll()
	case strings.HasSuffix(topic, "/command/stop"):
		d.worker.StopOne()
	case strings.HasSuffix(topic, "/command/light"):
		d.handleLight(payload)
	case strings.HasSuffix(topic, "/command/update_config"):
		d.handleUpdateConfig(payload)
	default:
		log.Printf("dispatch: ignoring unrecognized topic %s", topic)
	}
}

func (d *Dispatcher) handleWater(payload []byte) {
	req, err := codec.ParseWaterRequest(payload)
	if err != nil {
		log.Printf("dispatch: water: %v", err)
		return
	}
	if err := d.worker.Enqueue(d.ctx, req); err != nil {
		log.Printf("dispatch: water: enqueue: %v", err)
	}
}

func (d *Dispatcher) handleLight(payload []byte) {
	cmd, err := codec.ParseLightCommand(payload)
	if err != nil {
		log.Printf("dispatch: light: %v", err)
		return
	}
	d.lights.Apply(d.ctx, cmd)
}

func (d *Dispatcher) handleUpdateConfig(payload []byte) {
	cfg, err := codec.ParseConfiguration(payload)
	if err != nil {
		log.Printf("dispatch: update_config: %v", err)
		return
	}
	if err := d.store.Update(cfg); err != nil {
		log.Printf("dispatch: update_config: %v", err)
		return
	}
	d.reboot.RequestReboot(ConfigUpdateDelay)
}
