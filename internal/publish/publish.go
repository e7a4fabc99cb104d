// Package publish implements the Publisher Fabric (spec.md §4.6): the
// water, light, health, and sensor emitters, each a long-running task
// draining its own input queue and formatting telemetry through
// internal/codec. Every outbound call is wrapped in a gobreaker circuit
// breaker — mkCB below mirrors the teacher gateway's breaker-per-upstream
// shape (internal/services/gateway/cmd/main.go) — so a wedged broker
// trips the breaker instead of stalling every emitter task on repeated
// publish timeouts. Dropping is best-effort and happens only on the
// emitter side; the components that feed these queues push with blocking
// backpressure, so a stalled emitter eventually blocks its producer.
package publish

import (
	"context"
	"log"
	"time"

	"github.com/sony/gobreaker"

	"github.com/openfarm-labs/garden-firmware/internal/codec"
	"github.com/openfarm-labs/garden-firmware/internal/model"
	"github.com/openfarm-labs/garden-firmware/internal/queue"
	"github.com/openfarm-labs/garden-firmware/internal/transport"
)

// HealthInterval is the health emitter's publish period (spec.md §4.6).
const HealthInterval = 60 * time.Second

// mkCB builds a breaker named for the emitter it guards, tripping after
// consecutiveFailures in a row and staying open for openFor before
// allowing a single trial publish through.
func mkCB(name string, consecutiveFailures int, openFor time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: openFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(consecutiveFailures)
		},
	})
}

// Fabric wires every emitter to its queue, the transport, and the
// configured topic prefix.
type Fabric struct {
	tr     transport.Transport
	prefix string

	waterQ    *queue.Bounded[model.WaterEvent]
	lightQ    *queue.Bounded[int]
	tempQ     *queue.Bounded[float64]
	humidityQ *queue.Bounded[float64]
	moistureQ *queue.Bounded[ZoneSample]

	waterCB     *gobreaker.CircuitBreaker
	lightCB     *gobreaker.CircuitBreaker
	healthCB    *gobreaker.CircuitBreaker
	tempCB      *gobreaker.CircuitBreaker
	humidityCB  *gobreaker.CircuitBreaker
	moistureCB  *gobreaker.CircuitBreaker
}

// ZoneSample is a moisture reading tagged with its zone index.
type ZoneSample struct {
	Zone    int
	Percent float64
}

// NewFabric builds a Fabric. Any of the sensor queues may be nil when the
// corresponding sensor is not configured; the matching emitter is then
// simply never started.
func NewFabric(
	tr transport.Transport,
	prefix string,
	waterQ *queue.Bounded[model.WaterEvent],
	lightQ *queue.Bounded[int],
	tempQ *queue.Bounded[float64],
	humidityQ *queue.Bounded[float64],
	moistureQ *queue.Bounded[ZoneSample],
) *Fabric {
	return &Fabric{
		tr:         tr,
		prefix:     prefix,
		waterQ:     waterQ,
		lightQ:     lightQ,
		tempQ:      tempQ,
		humidityQ:  humidityQ,
		moistureQ:  moistureQ,
		waterCB:    mkCB("water-emitter", 5, 10*time.Second),
		lightCB:    mkCB("light-emitter", 5, 10*time.Second),
		healthCB:   mkCB("health-emitter", 5, 10*time.Second),
		tempCB:     mkCB("temperature-emitter", 5, 10*time.Second),
		humidityCB: mkCB("humidity-emitter", 5, 10*time.Second),
		moistureCB: mkCB("moisture-emitter", 5, 10*time.Second),
	}
}

// publish pushes line through breaker, dropping with a log line on a
// disconnected transport or a breaker trip (spec.md §4.6 "best-effort").
func (f *Fabric) publish(breaker *gobreaker.CircuitBreaker, topic, line string) {
	if !f.tr.IsConnected() {
		log.Printf("publish: transport down, dropping %s", topic)
		return
	}
	_, err := breaker.Execute(func() (any, error) {
		return nil, f.tr.Publish(topic, 1, false, line)
	})
	if err != nil {
		log.Printf("publish: %s: %v", topic, err)
	}
}

// RunWaterEmitter drains waterQ and publishes to <prefix>/data/water,
// preserving FIFO so a start-event always precedes its complete-event
// (spec.md §5).
func (f *Fabric) RunWaterEmitter(ctx context.Context) {
	topic := f.prefix + "/data/water"
	for {
		evt, ok := f.waterQ.Pop(ctx)
		if !ok {
			return
		}
		f.publish(f.waterCB, topic, codec.FormatWater(evt))
	}
}

// RunLightEmitter drains lightQ and publishes to <prefix>/data/light.
func (f *Fabric) RunLightEmitter(ctx context.Context) {
	topic := f.prefix + "/data/light"
	for {
		state, ok := f.lightQ.Pop(ctx)
		if !ok {
			return
		}
		f.publish(f.lightCB, topic, codec.FormatLight(f.prefix, state))
	}
}

// RunHealthEmitter has no input queue: it wakes every HealthInterval and
// publishes unconditionally (spec.md §4.6).
func (f *Fabric) RunHealthEmitter(ctx context.Context) {
	topic := f.prefix + "/data/health"
	ticker := time.NewTicker(HealthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.publish(f.healthCB, topic, codec.FormatHealth(f.prefix))
		}
	}
}

// RunTemperatureEmitter drains tempQ and publishes to
// <prefix>/data/temperature.
func (f *Fabric) RunTemperatureEmitter(ctx context.Context) {
	topic := f.prefix + "/data/temperature"
	for {
		v, ok := f.tempQ.Pop(ctx)
		if !ok {
			return
		}
		f.publish(f.tempCB, topic, codec.FormatTemperature(v))
	}
}

// RunHumidityEmitter drains humidityQ and publishes to
// <prefix>/data/humidity.
func (f *Fabric) RunHumidityEmitter(ctx context.Context) {
	topic := f.prefix + "/data/humidity"
	for {
		v, ok := f.humidityQ.Pop(ctx)
		if !ok {
			return
		}
		f.publish(f.humidityCB, topic, codec.FormatHumidity(v))
	}
}

// RunMoistureEmitter drains moistureQ and publishes to
// <prefix>/data/moisture, tagged per zone.
func (f *Fabric) RunMoistureEmitter(ctx context.Context) {
	topic := f.prefix + "/data/moisture"
	for {
		s, ok := f.moistureQ.Pop(ctx)
		if !ok {
			return
		}
		f.publish(f.moistureCB, topic, codec.FormatMoisture(s.Zone, s.Percent))
	}
}
