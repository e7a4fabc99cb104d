package button

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfarm-labs/garden-firmware/internal/model"
	"github.com/openfarm-labs/garden-firmware/internal/pin"
	"github.com/openfarm-labs/garden-firmware/internal/queue"
	"github.com/openfarm-labs/garden-firmware/internal/watering"
)

func TestDebouncerFirstSampleNeverAccepted(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)
	now := time.Now()
	assert.False(t, d.sample(true, now), "the very first sample only establishes a baseline")
}

func TestDebouncerRejectsShortTransition(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)
	now := time.Now()
	d.sample(false, now)
	assert.False(t, d.sample(true, now.Add(5*time.Millisecond)), "transition shorter than the debounce delay must not be accepted")
}

func TestDebouncerAcceptsSteadyLowToHigh(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)
	now := time.Now()
	d.sample(false, now)
	d.sample(true, now.Add(1*time.Millisecond))
	assert.True(t, d.sample(true, now.Add(12*time.Millisecond)), "steady high held past the debounce delay must be accepted")
}

func TestDebouncerDoesNotReacceptSameLevel(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)
	now := time.Now()
	d.sample(false, now)
	d.sample(true, now.Add(1*time.Millisecond))
	assert.True(t, d.sample(true, now.Add(12*time.Millisecond)))
	assert.False(t, d.sample(true, now.Add(20*time.Millisecond)), "an already-accepted level must not fire again")
}

func TestDebouncerHighToLowIsNotReported(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)
	now := time.Now()
	d.sample(true, now)
	assert.False(t, d.sample(false, now.Add(20*time.Millisecond)), "only low-to-high transitions are reported")
	assert.False(t, d.sample(false, now.Add(35*time.Millisecond)), "a high-to-low transition held past the debounce delay is accepted but not reported")
}

// fakeSource reports a fixed level per pin, mutable between poll ticks.
type fakeSource struct {
	levels map[int]bool
}

func (f *fakeSource) Read(p int) bool { return f.levels[p] }

func TestPollerSkipsZonesWithoutButton(t *testing.T) {
	zones := []model.Zone{
		{Index: 0, HasButton: false},
		{Index: 1, HasButton: true, ButtonPin: 20},
	}
	p := NewPoller(zones, false, 0, &fakeSource{}, nil)
	require.Len(t, p.zones, 1)
	assert.Equal(t, int16(1), p.zones[0].position)
	assert.False(t, p.hasStop)
}

func TestPollerGatesOffStopButtonWhenAbsent(t *testing.T) {
	p := NewPoller(nil, false, 99, &fakeSource{}, nil)
	assert.Nil(t, p.stopDeb)
}

func TestPollerEnqueuesOnAcceptedEdge(t *testing.T) {
	sink := pin.NewMemorySink()
	pending := queue.NewBounded[model.WaterRequest](4)
	publishQ := queue.NewBounded[model.WaterEvent](4)
	worker := watering.NewWorker([]model.Zone{
		{Index: 0, ValvePin: 1, PumpPin: 9},
	}, sink, pending, publishQ, 100)

	source := &fakeSource{levels: map[int]bool{7: false}}
	zones := []model.Zone{{Index: 0, HasButton: true, ButtonPin: 7}}
	p := NewPoller(zones, false, 0, source, worker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	time.Sleep(2 * PollInterval)
	source.levels[7] = true
	time.Sleep(DebounceDelay + 4*PollInterval)

	timeout, cancel2 := context.WithTimeout(ctx, time.Second)
	defer cancel2()
	req, ok := pending.Pop(timeout)
	require.True(t, ok, "a steady button press must enqueue a water request")
	assert.Equal(t, int16(0), req.Position)
	assert.Equal(t, model.DefaultDuration, req.DurationMs)
}
