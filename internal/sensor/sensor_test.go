package sensor

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfarm-labs/garden-firmware/internal/publish"
	"github.com/openfarm-labs/garden-firmware/internal/queue"
)

func TestMoisturePercentClampsAtWetEnd(t *testing.T) {
	p := &MoisturePoller{wetRef: 200, dryRef: 800}
	assert.Equal(t, 100.0, p.percent(100), "a raw reading wetter than wetRef still clamps to 100")
	assert.Equal(t, 100.0, p.percent(200))
}

func TestMoisturePercentClampsAtDryEnd(t *testing.T) {
	p := &MoisturePoller{wetRef: 200, dryRef: 800}
	assert.Equal(t, 0.0, p.percent(800))
	assert.Equal(t, 0.0, p.percent(1000), "a raw reading drier than dryRef still clamps to 0")
}

func TestMoisturePercentMonotonicallyDecreasesWithRawReading(t *testing.T) {
	p := &MoisturePoller{wetRef: 200, dryRef: 800}
	prev := p.percent(200)
	for raw := 250; raw <= 800; raw += 50 {
		cur := p.percent(raw)
		assert.LessOrEqual(t, cur, prev, "a higher raw reading must never map to a higher moisture percentage")
		prev = cur
	}
}

func TestMoisturePercentHandlesInvertedRefs(t *testing.T) {
	// Some boards report a higher raw value when wetter; the mapping must
	// still interpolate correctly regardless of which ref is numerically
	// larger.
	p := &MoisturePoller{wetRef: 800, dryRef: 200}
	assert.Equal(t, 100.0, p.percent(800))
	assert.Equal(t, 0.0, p.percent(200))
	assert.InDelta(t, 50.0, p.percent(500), 0.01)
}

type fakeTempHumiditySource struct {
	temp, humid       float64
	tempErr, humidErr error
}

func (f *fakeTempHumiditySource) ReadTemperature() (float64, error) { return f.temp, f.tempErr }
func (f *fakeTempHumiditySource) ReadHumidity() (float64, error)    { return f.humid, f.humidErr }

func TestTempHumidityPollerDropsNaNSamples(t *testing.T) {
	tempQ := queue.NewBounded[float64](4)
	humidQ := queue.NewBounded[float64](4)
	src := &fakeTempHumiditySource{temp: math.NaN(), humid: 55.0}
	p := NewTempHumidityPoller(src, 5, tempQ, humidQ)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	p.Run(ctx)

	assert.Equal(t, 0, tempQ.Len(), "a NaN temperature sample must be dropped")

	timeout, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	h, ok := humidQ.Pop(timeout)
	require.True(t, ok)
	assert.Equal(t, 55.0, h)
}

func TestTempHumidityPollerSkipsOnReadError(t *testing.T) {
	tempQ := queue.NewBounded[float64](4)
	humidQ := queue.NewBounded[float64](4)
	src := &fakeTempHumiditySource{tempErr: errors.New("bus timeout"), humid: 40.0}
	p := NewTempHumidityPoller(src, 5, tempQ, humidQ)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	p.Run(ctx)

	assert.Equal(t, 0, tempQ.Len())
}

type fakeAnalog struct {
	raw int
	err error
}

func (f *fakeAnalog) ReadRaw(int) (int, error) { return f.raw, f.err }

func TestMoisturePollerEmitsZoneSample(t *testing.T) {
	out := queue.NewBounded[publish.ZoneSample](4)
	analog := &fakeAnalog{raw: 500}
	p := NewMoisturePoller(2, 0, 800, 200, 5, analog, out)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	p.Run(ctx)

	timeout, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	sample, ok := out.Pop(timeout)
	require.True(t, ok)
	assert.Equal(t, 2, sample.Zone)
	assert.InDelta(t, 50.0, sample.Percent, 0.01)
}
