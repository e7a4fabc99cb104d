// Package watering implements the Watering Core (spec.md §4.1): the
// bounded FIFO of pending requests, the single worker that owns valve and
// pump actuation, the interruptible delay used to cut a pulse short, and
// the distinct cancel-all path that atomically drains the queue and
// preempts the in-flight pulse.
//
// This is the hard, paper-worthy core spec.md §1 names: only the Worker's
// own goroutine ever calls pin.Sink.Set for a valve or pump pin
// (spec.md §9 "single-writer pin invariant"). Every other component
// reaches the hardware only by pushing a WaterRequest onto the pending
// queue or by calling StopOne/StopAll.
package watering

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/openfarm-labs/garden-firmware/internal/model"
	"github.com/openfarm-labs/garden-firmware/internal/pin"
	"github.com/openfarm-labs/garden-firmware/internal/queue"
)

// State is the worker's current phase.
type State int32

const (
	Idle State = iota
	Pulsing
)

// Worker is the single-task state machine described in spec.md §4.1.
type Worker struct {
	zones        []model.Zone
	sink         pin.Sink
	pending      *queue.Bounded[model.WaterRequest]
	publish      *queue.Bounded[model.WaterEvent]
	notify       *queue.Notify
	defaultDurMs uint64

	// state is written only by Run's goroutine but read by State() (and,
	// historically, by StopOne/StopAll) from arbitrary caller goroutines;
	// it is an atomic.Int32 rather than a plain State so those reads never
	// race with Run's writes (spec.md §5's "no lock beyond the FIFOs and
	// notifications" still holds — this is a lock-free read, not a mutex).
	state atomic.Int32
}

// NewWorker builds a Worker over the given zones. pending and publishQ are
// the water_pending and water_publish queues from spec.md §3; capacity 10
// is the caller's responsibility (queue.NewBounded(10)).
func NewWorker(
	zones []model.Zone,
	sink pin.Sink,
	pending *queue.Bounded[model.WaterRequest],
	publishQ *queue.Bounded[model.WaterEvent],
	defaultDurationMs uint64,
) *Worker {
	return &Worker{
		zones:        zones,
		sink:         sink,
		pending:      pending,
		publish:      publishQ,
		notify:       queue.NewNotify(),
		defaultDurMs: defaultDurationMs,
	}
}

// Enqueue is the single entry point for placing a request on the pending
// queue — used by both the Command Codec and Button Input. It performs
// the bounds check spec.md §4.1 requires before anything else: an
// out-of-range position is rejected "without enqueueing and without a
// side effect other than a log line."
func (w *Worker) Enqueue(ctx context.Context, req model.WaterRequest) error {
	if req.Position < 0 || int(req.Position) >= len(w.zones) {
		log.Printf("watering: reject out-of-range position=%d (zones=%d)", req.Position, len(w.zones))
		return nil
	}
	return w.pending.Push(ctx, req)
}

// StopOne cancels exactly the currently-pulsing request, if any. Queued
// requests are left untouched and proceed in order (spec.md §4.1
// "Pulsing + stop_one"). A stop_one with nothing pulsing is a harmless
// no-op: Signal is unconditional rather than gated on State() because
// the notify's own clear-then-wait discipline already makes a stray
// signal to an idle worker safe, and skipping the gate avoids reading
// state from a goroutine other than Run's.
func (w *Worker) StopOne() {
	w.notify.Signal()
}

// StopAll drains the pending queue and signals any in-flight pulse to
// stop. The drain happens strictly before the signal (spec.md §5
// "Cancel-all ordering: drain before signal") so the worker, on wake,
// finds no successor queued and returns to idle — not the next request.
func (w *Worker) StopAll() {
	w.pending.DrainAll()
	w.notify.Signal()
}

// State reports the worker's current phase, for diagnostics/tests. Safe
// to call from any goroutine: state is only ever written via Store.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// Run is the worker's main loop. It blocks on the pending queue, actuates
// the requested zone for its target duration (or until interrupted), and
// publishes start/completion events in the order spec.md §5 requires.
// Run returns when ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		req, ok := w.pending.Pop(ctx)
		if !ok {
			return
		}

		durationMs := req.DurationMs
		if durationMs == 0 {
			durationMs = w.defaultDurMs
		}

		zone := w.zones[req.Position]

		// Clear any stray signal left over from a stop_one/stop_all that
		// fired while the worker was idle — without this, such a signal
		// would immediately cut short the pulse we are about to start
		// (spec.md §9 "clear-then-wait").
		w.notify.Clear()

		w.state.Store(int32(Pulsing))

		// Start event is enqueued before pins are raised, in logical
		// order; publication itself is asynchronous (spec.md §4.1
		// "Publish timing"), but the push still blocks on a full queue
		// (spec.md §7 "QueueFull: producer blocks") rather than dropping
		// the start half of the start/complete pair spec.md §8 requires.
		startEvt := model.WaterEvent{
			Position:  req.Position,
			ZoneID:    req.ZoneID,
			RequestID: req.RequestID,
			Done:      false,
		}
		_ = w.publish.Push(ctx, startEvt)

		w.sink.Set(zone.PumpPin, true)
		w.sink.Set(zone.ValvePin, true)
		started := time.Now()

		w.notify.Wait(time.Duration(durationMs) * time.Millisecond)

		// Pin-lower happens-before the complete-event enqueue, and the
		// measured duration is read after pin-lower (spec.md §5).
		w.sink.Set(zone.ValvePin, false)
		if !w.pumpStillNeeded(zone) {
			w.sink.Set(zone.PumpPin, false)
		}
		actual := uint64(time.Since(started).Milliseconds())

		w.state.Store(int32(Idle))

		completeEvt := model.WaterEvent{
			Position:         req.Position,
			ZoneID:           req.ZoneID,
			RequestID:        req.RequestID,
			Done:             true,
			ActualDurationMs: actual,
		}
		_ = w.publish.Push(ctx, completeEvt)
	}
}

// pumpStillNeeded reports whether another zone sharing this zone's pump
// pin is still mid-pulse. It always returns false without inspecting any
// other zone: only one zone pulses at a time (invariant 1), so no other
// zone can still need the pump when this one stops.
func (w *Worker) pumpStillNeeded(_ model.Zone) bool {
	return false
}

// ErrZoneOutOfRange is a sentinel for out-of-range rejection. Enqueue does
// not return it: an out-of-range request is logged, dropped, and Enqueue
// returns nil.
var ErrZoneOutOfRange = fmt.Errorf("watering: position out of range")
