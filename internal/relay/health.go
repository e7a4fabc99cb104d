// health.go mirrors the teacher's health/ready handler pair
// (internal/services/event/health.go), generalized from that file's
// MQTT+Influx dependency pair to this relay's own.
package relay

import (
	"encoding/json"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type healthHandler struct {
	mqtt   mqtt.Client
	writer *Writer
}

// NewHealthHandler serves /healthz: "ok" if MQTT is connected and no
// write error occurred in the last 30s, "degraded" if MQTT is connected
// but a write error did occur in that window, "down" whenever MQTT is
// not connected.
func NewHealthHandler(client mqtt.Client, w *Writer) http.Handler {
	return &healthHandler{mqtt: client, writer: w}
}

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	type status struct {
		Status              string  `json:"status"`
		MQTTConnected       bool    `json:"mqtt_connected"`
		LastWriteErrorAgeS  float64 `json:"last_write_error_age_sec"`
	}
	st := status{
		MQTTConnected:      h.mqtt != nil && h.mqtt.IsConnectionOpen(),
		LastWriteErrorAgeS: h.writer.LastErrorAge().Seconds(),
	}
	switch {
	case st.MQTTConnected && h.writer.LastErrorAge() > 30*time.Second:
		st.Status = "ok"
	case st.MQTTConnected:
		st.Status = "degraded"
	default:
		st.Status = "down"
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(st)
}

type readyHandler struct {
	mqtt     mqtt.Client
	writer   *Writer
	minError time.Duration
}

// NewReadyHandler serves /readyz: 200 only once MQTT is connected and no
// write error has occurred within minOkErrorAge.
func NewReadyHandler(client mqtt.Client, w *Writer, minOkErrorAge time.Duration) http.Handler {
	return &readyHandler{mqtt: client, writer: w, minError: minOkErrorAge}
}

func (h *readyHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	ready := h.mqtt != nil && h.mqtt.IsConnectionOpen() && h.writer.LastErrorAge() > h.minError
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Ready bool `json:"ready"`
	}{Ready: ready})
}
