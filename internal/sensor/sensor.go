// Package sensor implements the Sensor Pollers (spec.md §4.8): an
// optional temperature/humidity reader and an optional per-zone capacitive
// moisture reader, each a ticker-driven loop in the shape of the teacher's
// sensor-simulator (internal/sensor-simulator/sensorSimulator.go) —
// select on ctx.Done() vs. an interval timer — stripped of the SoilGrids
// HTTP seeding and the RabbitMQ state-change subscription, which have no
// counterpart in this firmware's scope.
package sensor

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/openfarm-labs/garden-firmware/internal/pin"
	"github.com/openfarm-labs/garden-firmware/internal/publish"
	"github.com/openfarm-labs/garden-firmware/internal/queue"
)

// TempHumiditySource reads one temperature+humidity pair per
// ReadTemperature/ReadHumidity call pair; the concrete implementation is
// responsible for whatever bus protocol the physical sensor speaks.
type TempHumiditySource interface {
	ReadTemperature() (float64, error)
	ReadHumidity() (float64, error)
}

// NoopTempHumiditySource reports NaN for both readings, so a
// development-host build can still run the poller loop (and have it
// correctly drop every sample per Run's NaN check) without a real bus
// driver present — the temp/humidity analogue of pin.NoopSink standing
// in for pin.Analog on the moisture side.
type NoopTempHumiditySource struct{}

func (NoopTempHumiditySource) ReadTemperature() (float64, error) { return math.NaN(), nil }

func (NoopTempHumiditySource) ReadHumidity() (float64, error) { return math.NaN(), nil }

// TempHumidityPoller samples TempHumiditySource every interval and
// enqueues non-NaN readings onto the emitter queues.
type TempHumidityPoller struct {
	source   TempHumiditySource
	interval time.Duration
	tempQ    *queue.Bounded[float64]
	humidQ   *queue.Bounded[float64]
}

// NewTempHumidityPoller builds a poller. intervalMs comes straight from
// Configuration.TempHumidityInterval.
func NewTempHumidityPoller(source TempHumiditySource, intervalMs int, tempQ, humidQ *queue.Bounded[float64]) *TempHumidityPoller {
	return &TempHumidityPoller{source: source, interval: time.Duration(intervalMs) * time.Millisecond, tempQ: tempQ, humidQ: humidQ}
}

// Run polls until ctx is done, dropping any sample that reads NaN
// (spec.md §4.8 "drop samples that are NaN"). Accepted samples are
// pushed with blocking backpressure (spec.md §7 "QueueFull: producer
// blocks"), bounded by ctx so a cancelled controller doesn't hang here.
func (p *TempHumidityPoller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.interval):
			t, err := p.source.ReadTemperature()
			if err != nil {
				log.Printf("sensor: temperature read: %v", err)
			} else if !math.IsNaN(t) {
				_ = p.tempQ.Push(ctx, t)
			}

			h, err := p.source.ReadHumidity()
			if err != nil {
				log.Printf("sensor: humidity read: %v", err)
			} else if !math.IsNaN(h) {
				_ = p.humidQ.Push(ctx, h)
			}
		}
	}
}

// MoisturePoller samples one zone's analog moisture channel every
// interval, linearly mapping the raw reading to a 0..100 percentage.
type MoisturePoller struct {
	zone     int
	channel  int
	wetRef   int
	dryRef   int
	interval time.Duration
	analog   pin.Analog
	out      *queue.Bounded[publish.ZoneSample]
}

// NewMoisturePoller builds a poller for one zone's moisture channel.
// wetRef and dryRef are raw ADC readings at fully-wet and fully-dry soil;
// spec.md §4.8 notes the mapping is inverted ("larger raw reading is
// drier").
func NewMoisturePoller(zone, channel, wetRef, dryRef, intervalMs int, analog pin.Analog, out *queue.Bounded[publish.ZoneSample]) *MoisturePoller {
	return &MoisturePoller{
		zone:     zone,
		channel:  channel,
		wetRef:   wetRef,
		dryRef:   dryRef,
		interval: time.Duration(intervalMs) * time.Millisecond,
		analog:   analog,
		out:      out,
	}
}

// Run polls until ctx is done. Samples are pushed with blocking
// backpressure (spec.md §7 "QueueFull: producer blocks"), bounded by ctx.
func (p *MoisturePoller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.interval):
			raw, err := p.analog.ReadRaw(p.channel)
			if err != nil {
				log.Printf("sensor: moisture zone=%d read: %v", p.zone, err)
				continue
			}
			_ = p.out.Push(ctx, publish.ZoneSample{Zone: p.zone, Percent: p.percent(raw)})
		}
	}
}

// percent maps a raw reading in [wetRef..dryRef] to [100..0], clamped.
func (p *MoisturePoller) percent(raw int) float64 {
	span := p.dryRef - p.wetRef
	if span == 0 {
		return 0
	}
	pct := 100.0 * float64(p.dryRef-raw) / float64(span)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
