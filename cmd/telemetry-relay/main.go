// Command telemetry-relay is the companion process described in
// SPEC_FULL.md §3: an independent MQTT subscriber that decodes this
// firmware's line-protocol telemetry and writes it to InfluxDB, exposing
// health and Prometheus endpoints. It is an external observer of the
// controller's public topics, not part of the firmware process itself.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openfarm-labs/garden-firmware/internal/env"
	"github.com/openfarm-labs/garden-firmware/internal/relay"
)

func main() {
	brokerAddr := env.Str("GARDEN_BROKER_ADDRESS", "localhost:1883")
	prefix := env.Str("GARDEN_TOPIC_PREFIX", "garden")
	metricsAddr := env.Str("GARDEN_RELAY_METRICS_ADDR", ":9110")

	influxURL := env.Str("INFLUX_URL", "http://localhost:8086")
	influxToken := env.Str("INFLUX_TOKEN", "")
	influxOrg := env.Str("INFLUX_ORG", "garden")
	influxBucket := env.Str("INFLUX_BUCKET", "telemetry")

	runID := uuid.New().String()
	log.Printf("telemetry-relay: run %s, broker=%s prefix=%s", runID, brokerAddr, prefix)

	writer := relay.NewWriter(influxURL, influxToken, influxOrg, influxBucket)
	defer writer.Close()

	reg := prometheus.NewRegistry()
	metrics := relay.NewMetrics(reg)

	opts := mqtt.NewClientOptions()
	opts.AddBroker("tcp://" + brokerAddr)
	opts.SetClientID("telemetry-relay-" + runID)
	opts.SetCleanSession(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Printf("telemetry-relay: connection lost: %v", err)
		metrics.MQTTConnected.Set(0)
	})
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		metrics.MQTTConnected.Set(1)
	})

	client := mqtt.NewClient(opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		p, err := relay.Decode(string(msg.Payload()))
		if err != nil {
			log.Printf("telemetry-relay: decode %s: %v", msg.Topic(), err)
			metrics.DecodeErrors.Inc()
			return
		}
		if err := writer.Write(ctx, p); err != nil {
			log.Printf("telemetry-relay: write %s: %v", msg.Topic(), err)
			return
		}
		metrics.PointsWritten.WithLabelValues(p.Measurement).Inc()
	}

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("telemetry-relay: connect: %v", token.Error())
	}

	topics := map[string]byte{
		prefix + "/data/water":       1,
		prefix + "/data/light":       1,
		prefix + "/data/health":      1,
		prefix + "/data/temperature": 1,
		prefix + "/data/humidity":    1,
		prefix + "/data/moisture":    1,
	}
	if token := client.SubscribeMultiple(topics, handler); token.Wait() && token.Error() != nil {
		log.Fatalf("telemetry-relay: subscribe: %v", token.Error())
	}

	mux := http.NewServeMux()
	mux.Handle("/healthz", relay.NewHealthHandler(client, writer))
	mux.Handle("/readyz", relay.NewReadyHandler(client, writer, 30*time.Second))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: metricsAddr, Handler: mux}
	go func() {
		log.Printf("telemetry-relay: serving %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("telemetry-relay: http: %v", err)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	<-sigc
	log.Println("telemetry-relay: shutting down")
	cancel()
	client.Disconnect(250)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
}
