// Package light implements the Light Controller (spec.md §4.4): a single
// boolean toggled synchronously by inbound LightCommand values, with the
// pin write and the telemetry enqueue happening on the caller's goroutine
// — there is no separate worker task for this component.
package light

import (
	"context"
	"strings"

	"github.com/openfarm-labs/garden-firmware/internal/model"
	"github.com/openfarm-labs/garden-firmware/internal/pin"
	"github.com/openfarm-labs/garden-firmware/internal/queue"
)

// Controller holds the light's on/off state and the pin/queue it drives.
type Controller struct {
	pinNum  int
	sink    pin.Sink
	publish *queue.Bounded[int]
	on      bool
}

// NewController wires a Controller to its pin and its output queue
// (light_publish, capacity per spec.md §3).
func NewController(pinNum int, sink pin.Sink, publish *queue.Bounded[int]) *Controller {
	return &Controller{pinNum: pinNum, sink: sink, publish: publish}
}

// Apply handles one LightCommand per spec.md §4.4:
//
//	""    -> toggle
//	"on"  -> force on   (case-insensitive)
//	"off" -> force off  (case-insensitive)
//	else  -> no change
//
// The pin write and telemetry enqueue happen unconditionally, reflecting
// whatever the state ends up being — including an unrecognized command,
// which still re-publishes the unchanged current state (spec.md §8
// scenario 5: "no change, still emit current state"). The enqueue blocks
// on a full queue (spec.md §7 "QueueFull: producer blocks... never
// dropped") rather than silently discarding the state change; ctx bounds
// that wait the same way watering's Worker.Enqueue does.
func (c *Controller) Apply(ctx context.Context, cmd model.LightCommand) {
	switch strings.ToLower(cmd.State) {
	case "":
		c.on = !c.on
	case "on":
		c.on = true
	case "off":
		c.on = false
	}

	c.sink.Set(c.pinNum, c.on)

	state := 0
	if c.on {
		state = 1
	}
	_ = c.publish.Push(ctx, state)
}

// On reports the current light state, for diagnostics/tests.
func (c *Controller) On() bool {
	return c.on
}
