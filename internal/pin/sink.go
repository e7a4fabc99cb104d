// Package pin abstracts the pin-level side effects the firmware drives:
// setting a GPIO output high or low, and reading a raw digital input
// (debouncing is the button package's job).
// The real driver (rpio, gobot, or a board HAL) lives outside this module;
// this package only defines the seam so the watering core, light
// controller, and button poller never touch hardware registers directly.
package pin

// Sink is the pin-level output the Watering Core and Light Controller
// drive. Only the Watering Worker may call Set for a
// valve or pump pin (spec.md §9 "single-writer pin invariant").
type Sink interface {
	Set(pinNum int, high bool)
}

// Source is a digital input read by the Button Input subsystem.
type Source interface {
	Read(pinNum int) bool
}

// Analog is a raw ADC-style reading used by the moisture poller.
type Analog interface {
	ReadRaw(channel int) (int, error)
}

// NoopSink discards every Set call and reports every input as low. It
// satisfies Sink, Source, and Analog so a development-host build of the
// controller can wire every component without a board present; a
// board-specific build swaps in a real driver behind the same
// interfaces.
type NoopSink struct{}

func (NoopSink) Set(int, bool) {}

func (NoopSink) Read(int) bool { return false }

func (NoopSink) ReadRaw(int) (int, error) { return 0, nil }

// MemorySink records the last level written to each pin, for tests that
// assert on invariant (1)/(2) of spec.md §3 without real hardware.
type MemorySink struct {
	levels map[int]bool
}

func NewMemorySink() *MemorySink {
	return &MemorySink{levels: make(map[int]bool)}
}

func (m *MemorySink) Set(pinNum int, high bool) {
	if m.levels == nil {
		m.levels = make(map[int]bool)
	}
	m.levels[pinNum] = high
}

func (m *MemorySink) Level(pinNum int) bool {
	return m.levels[pinNum]
}

// AnyHigh reports whether any of the given pins is currently high — used
// by tests asserting spec.md §3 invariant 1 (at most one zone active).
func (m *MemorySink) AnyHigh(pins ...int) bool {
	for _, p := range pins {
		if m.levels[p] {
			return true
		}
	}
	return false
}
