// Command controller is the firmware entrypoint: it loads the
// configuration document, wires every component spec.md §4 describes,
// and runs until told to shut down (SIGINT/SIGTERM, or a reboot request
// from the update_config handler or the transport's connection-lost
// handler).
//
// Pin access is seamed behind internal/pin so this binary can run on a
// development host against pin.NoopSink/MemorySink; a board-specific
// build swaps in a concrete Sink/Source/Analog (see DESIGN.md — no GPIO
// driver library was available in the retrieved example set, so that
// seam is this module's boundary rather than a dependency).
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/openfarm-labs/garden-firmware/internal/bootstrap"
	"github.com/openfarm-labs/garden-firmware/internal/button"
	"github.com/openfarm-labs/garden-firmware/internal/config"
	"github.com/openfarm-labs/garden-firmware/internal/dispatch"
	"github.com/openfarm-labs/garden-firmware/internal/env"
	"github.com/openfarm-labs/garden-firmware/internal/light"
	"github.com/openfarm-labs/garden-firmware/internal/model"
	"github.com/openfarm-labs/garden-firmware/internal/pin"
	"github.com/openfarm-labs/garden-firmware/internal/publish"
	"github.com/openfarm-labs/garden-firmware/internal/queue"
	"github.com/openfarm-labs/garden-firmware/internal/reconnect"
	"github.com/openfarm-labs/garden-firmware/internal/sensor"
	"github.com/openfarm-labs/garden-firmware/internal/transport"
	"github.com/openfarm-labs/garden-firmware/internal/watering"
)

func main() {
	configPath := env.Str("GARDEN_CONFIG_PATH", "/garden_config.json")

	bootID := uuid.New().String()
	log.Printf("controller: boot session %s", bootID)

	store := config.New(config.FileBlob{Path: configPath})
	cfg := store.Load()

	if bootstrap.NeedsProvisioning(cfg) {
		log.Printf("controller: no broker credentials on file; a board build would now advertise the setup SSID (spec.md §6) — continuing with compiled-in defaults")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := pin.NoopSink{}
	var source pin.Source = pin.NoopSink{}

	rebootMailbox := bootstrap.NewRebootMailbox()

	tr := transport.NewMQTT(transport.Config{
		Address:      fmt.Sprintf("%s:%d", cfg.BrokerAddress, cfg.BrokerPort),
		ClientID:     cfg.TopicPrefix,
		CleanSession: false,
		OnConnectionLost: func(err error) {
			log.Printf("controller: transport connection lost (%v); requesting reboot", err)
			rebootMailbox.RequestReboot(0)
		},
	})

	waterPending := queue.NewBounded[model.WaterRequest](10)
	waterPublish := queue.NewBounded[model.WaterEvent](10)
	worker := watering.NewWorker(cfg.Zones, sink, waterPending, waterPublish, cfg.DefaultWaterDurationMs)

	lightPublish := queue.NewBounded[int](10)
	lightCtrl := light.NewController(cfg.LightPin, sink, lightPublish)

	dispatcher := dispatch.New(ctx, worker, lightCtrl, store, rebootMailbox)

	subscriptions := []reconnect.Subscription{
		{Topic: cfg.TopicPrefix + "/command/water", QoS: 1, Handler: dispatcher.Handle},
		{Topic: cfg.TopicPrefix + "/command/stop", QoS: 1, Handler: dispatcher.Handle},
		{Topic: cfg.TopicPrefix + "/command/stop_all", QoS: 1, Handler: dispatcher.Handle},
		{Topic: cfg.TopicPrefix + "/command/light", QoS: 1, Handler: dispatcher.Handle},
		{Topic: cfg.TopicPrefix + "/command/update_config", QoS: 1, Handler: dispatcher.Handle},
	}
	supervisor := reconnect.New(tr, subscriptions, cfg.TopicPrefix+"/data/logs", bootID)

	var tempQ, humidQ *queue.Bounded[float64]
	if cfg.TempHumidity {
		tempQ = queue.NewBounded[float64](10)
		humidQ = queue.NewBounded[float64](10)
	}
	var moistureQ *queue.Bounded[publish.ZoneSample]
	if cfg.Moisture {
		moistureQ = queue.NewBounded[publish.ZoneSample](10)
	}

	fabric := publish.NewFabric(tr, cfg.TopicPrefix, waterPublish, lightPublish, tempQ, humidQ, moistureQ)

	buttons := button.NewPoller(cfg.Zones, cfg.HasStopButton, cfg.StopButtonPin, source, worker)

	go worker.Run(ctx)
	go supervisor.Run(ctx)
	go fabric.RunWaterEmitter(ctx)
	go fabric.RunLightEmitter(ctx)
	go fabric.RunHealthEmitter(ctx)
	go buttons.Run(ctx)
	go rebootMailbox.Watch(ctx, func() {
		log.Println("controller: rebooting")
		cancel()
		os.Exit(0)
	})

	if cfg.TempHumidity {
		go fabric.RunTemperatureEmitter(ctx)
		go fabric.RunHumidityEmitter(ctx)
		// A board build supplies a real sensor.TempHumiditySource; this
		// development-host build wires sensor.NoopTempHumiditySource in
		// its place, the same way pin.NoopSink stands in for pin.Analog
		// on the moisture poller below.
		poller := sensor.NewTempHumidityPoller(sensor.NoopTempHumiditySource{}, cfg.TempHumidityInterval, tempQ, humidQ)
		go poller.Run(ctx)
	}
	if cfg.Moisture {
		go fabric.RunMoistureEmitter(ctx)
		var analog pin.Analog = pin.NoopSink{}
		for _, z := range cfg.Zones {
			if !z.HasMoisture {
				continue
			}
			p := sensor.NewMoisturePoller(z.Index, z.MoistureChan, cfg.MoistureWetRef, cfg.MoistureDryRef, cfg.MoistureInterval, analog, moistureQ)
			go p.Run(ctx)
		}
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	<-sigc
	log.Println("controller: shutting down")
	cancel()
	tr.Disconnect()
	time.Sleep(300 * time.Millisecond)
}
