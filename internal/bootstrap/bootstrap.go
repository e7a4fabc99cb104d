// Package bootstrap implements the two pieces of startup spec.md §6
// and §4.5 describe that don't belong to any single component: the
// first-boot Provisioning step (captive portal modeled as an external
// collaborator — see DESIGN.md) and the capacity-1 reboot mailbox that
// `update_config` and the transport's connection-lost handler both post
// to.
package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/openfarm-labs/garden-firmware/internal/model"
)

// Credentials is what the Provisioning step collects before the device
// has a configuration document to load (spec.md §6): the broker address,
// its port, and the topic prefix to operate under. WiFi credentials are
// collected the same way but are a physical-radio concern this module
// does not model.
type Credentials struct {
	BrokerAddress string
	BrokerPort    int
	TopicPrefix   string
}

// Provisioner exposes the captive-portal step spec.md §6 describes: on
// first boot (no stored credentials) the device advertises a setup SSID
// and waits for an operator to submit Credentials over it. Implementing
// an actual SoftAP/captive-portal HTTP server is board-specific and out
// of this module's scope (see DESIGN.md); Provisioner lets a concrete
// board wire its own radio stack in without this package needing to know
// about it.
type Provisioner interface {
	// Provision blocks until credentials are submitted or ctx is done.
	Provision(ctx context.Context) (Credentials, error)
}

// NeedsProvisioning reports whether cfg lacks the broker/prefix
// information a device must have before it can do anything useful —
// the "no credentials stored" condition spec.md §6 gates first-boot
// provisioning on.
func NeedsProvisioning(cfg model.Configuration) bool {
	return cfg.BrokerAddress == "" || cfg.TopicPrefix == ""
}

// RebootMailbox is the capacity-1 channel spec.md §3 calls out as the
// rendezvous between "something decided we must reboot" (an
// update_config, or the transport's connection-lost handler) and the
// task that actually performs the reboot. A pending request is never
// queued twice — a second RequestReboot before the first is serviced
// just keeps the earliest requested delay.
type RebootMailbox struct {
	ch chan time.Duration
}

// NewRebootMailbox returns an empty mailbox.
func NewRebootMailbox() *RebootMailbox {
	return &RebootMailbox{ch: make(chan time.Duration, 1)}
}

// RequestReboot posts delay, the time to wait before rebooting. Non-
// blocking: if a request is already pending, this one is dropped.
func (r *RebootMailbox) RequestReboot(delay time.Duration) {
	select {
	case r.ch <- delay:
	default:
		log.Printf("bootstrap: reboot already pending, dropping request for %s", delay)
	}
}

// Watch blocks until a reboot is requested or ctx is done, then sleeps
// for the requested delay and calls perform. Intended to run as its own
// task (spec.md §5 "Reboot Task").
func (r *RebootMailbox) Watch(ctx context.Context, perform func()) {
	select {
	case <-ctx.Done():
		return
	case delay := <-r.ch:
		log.Printf("bootstrap: reboot requested, firing in %s", delay)
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			perform()
		}
	}
}
