// Package button implements the Button Input component (spec.md §4.3):
// one debounced reader per configured zone button plus one stop button,
// polled at 5ms or less, accepting a transition only once the raw level
// has held steady for DEBOUNCE_DELAY. Button input is gated off entirely
// when the configuration omits buttons.
package button

import (
	"context"
	"time"

	"github.com/openfarm-labs/garden-firmware/internal/model"
	"github.com/openfarm-labs/garden-firmware/internal/pin"
	"github.com/openfarm-labs/garden-firmware/internal/watering"
)

// DebounceDelay is the minimum steady time before a raw level transition
// is accepted (spec.md §4.3).
const DebounceDelay = 50 * time.Millisecond

// PollInterval is the reader loop's polling period (spec.md §4.3: "5 ms
// or less").
const PollInterval = 5 * time.Millisecond

// debouncer tracks one digital input's raw level and reports accepted
// low-to-high transitions.
type debouncer struct {
	delay       time.Duration
	initialized bool
	lastRaw     bool
	changedAt   time.Time
	accepted    bool
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay}
}

// sample feeds one raw reading and reports whether it produced a newly
// accepted low-to-high transition.
func (d *debouncer) sample(raw bool, now time.Time) bool {
	if !d.initialized {
		d.initialized = true
		d.lastRaw = raw
		d.changedAt = now
		d.accepted = raw
		return false
	}
	if raw != d.lastRaw {
		d.lastRaw = raw
		d.changedAt = now
	}
	if raw != d.accepted && now.Sub(d.changedAt) >= d.delay {
		wasLow := !d.accepted
		d.accepted = raw
		return wasLow && raw
	}
	return false
}

// zoneButton pairs a configured zone's index with its input pin.
type zoneButton struct {
	position int16
	pin      int
	debounce *debouncer
}

// Poller reads every configured button and the stop button, injecting
// WaterRequest / stop_one events into the Watering Worker on accepted
// low-to-high transitions. Buttons are active-high; pull-downs are the
// caller's wiring concern.
type Poller struct {
	source    pin.Source
	worker    *watering.Worker
	zones     []zoneButton
	hasStop   bool
	stopPin   int
	stopDeb   *debouncer
}

// NewPoller builds a Poller from the zone configuration. Zones without
// HasButton are skipped entirely, and if hasStopButton is false the stop
// button is never polled — matching spec.md §4.3's gating rule.
func NewPoller(zones []model.Zone, hasStopButton bool, stopButtonPin int, source pin.Source, worker *watering.Worker) *Poller {
	p := &Poller{source: source, worker: worker, hasStop: hasStopButton, stopPin: stopButtonPin}
	for _, z := range zones {
		if !z.HasButton {
			continue
		}
		p.zones = append(p.zones, zoneButton{
			position: int16(z.Index),
			pin:      z.ButtonPin,
			debounce: newDebouncer(DebounceDelay),
		})
	}
	if hasStopButton {
		p.stopDeb = newDebouncer(DebounceDelay)
	}
	return p
}

// Run polls every configured button at PollInterval until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	if len(p.zones) == 0 && !p.hasStop {
		return
	}

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for i := range p.zones {
				zb := &p.zones[i]
				if zb.debounce.sample(p.source.Read(zb.pin), now) {
					_ = p.worker.Enqueue(ctx, model.WaterRequest{
						Position:   zb.position,
						DurationMs: model.DefaultDuration,
						ZoneID:     model.DefaultZoneID,
						RequestID:  model.DefaultRequestID,
					})
				}
			}
			if p.hasStop && p.stopDeb.sample(p.source.Read(p.stopPin), now) {
				p.worker.StopOne()
			}
		}
	}
}
