// Package codec implements the Command Codec (spec.md §4.2): decoding the
// inbound water, light, and update_config payloads into typed events (stop
// and stop_all carry no payload to decode), and formatting
// every outbound telemetry line into the fixed key=value schema the
// Publisher Fabric sends over the wire.
package codec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/openfarm-labs/garden-firmware/internal/model"
)

// rawWaterCommand mirrors the wire shape of a water command; pointer
// fields distinguish "absent" from "present and zero" so the documented
// defaults (position=-1, duration=0, zone_id="N/A", id="N/A") apply only
// when the field is missing.
type rawWaterCommand struct {
	Position *int16  `json:"position"`
	Duration *uint64 `json:"duration"`
	ZoneID   *string `json:"zone_id"`
	ID       *string `json:"id"`
}

// ParseWaterRequest decodes a water command payload (spec.md §4.2).
func ParseWaterRequest(payload []byte) (model.WaterRequest, error) {
	req := model.WaterRequest{
		Position:   model.DefaultPosition,
		DurationMs: model.DefaultDuration,
		ZoneID:     model.DefaultZoneID,
		RequestID:  model.DefaultRequestID,
	}
	if len(payload) == 0 {
		return req, nil
	}

	var raw rawWaterCommand
	if err := json.Unmarshal(payload, &raw); err != nil {
		return model.WaterRequest{}, fmt.Errorf("codec: water command: %w", err)
	}
	if raw.Position != nil {
		req.Position = *raw.Position
	}
	if raw.Duration != nil {
		req.DurationMs = *raw.Duration
	}
	if raw.ZoneID != nil {
		req.ZoneID = *raw.ZoneID
	}
	if raw.ID != nil {
		req.RequestID = *raw.ID
	}
	return req, nil
}

// rawLightCommand mirrors the wire shape of a light command.
type rawLightCommand struct {
	State *string `json:"state"`
}

// ParseLightCommand decodes a light command payload (spec.md §4.2, §4.4).
// An absent or empty state field means "toggle" and is preserved as "".
func ParseLightCommand(payload []byte) (model.LightCommand, error) {
	if len(payload) == 0 {
		return model.LightCommand{}, nil
	}
	var raw rawLightCommand
	if err := json.Unmarshal(payload, &raw); err != nil {
		return model.LightCommand{}, fmt.Errorf("codec: light command: %w", err)
	}
	cmd := model.LightCommand{}
	if raw.State != nil {
		cmd.State = *raw.State
	}
	return cmd, nil
}

// ParseConfiguration decodes a full configuration document, as delivered
// by the update_config command (spec.md §4.2, §4.5). The caller is
// responsible for handing the result to the Config Store, which validates
// and persists it.
func ParseConfiguration(payload []byte) (model.Configuration, error) {
	var cfg model.Configuration
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return model.Configuration{}, fmt.Errorf("codec: update_config: %w", err)
	}
	return cfg, nil
}

// FormatWaterStart renders the start line for a WaterEvent (spec.md §4.2).
func FormatWaterStart(evt model.WaterEvent) string {
	return fmt.Sprintf("water,status=start,zone=%d,id=%s,zone_id=%s millis=0",
		evt.Position, evt.RequestID, evt.ZoneID)
}

// FormatWaterComplete renders the completion line for a WaterEvent.
func FormatWaterComplete(evt model.WaterEvent) string {
	return fmt.Sprintf("water,status=complete,zone=%d,id=%s,zone_id=%s millis=%d",
		evt.Position, evt.RequestID, evt.ZoneID, evt.ActualDurationMs)
}

// FormatWater dispatches to FormatWaterStart or FormatWaterComplete based
// on evt.Done, matching the water emitter's single input queue.
func FormatWater(evt model.WaterEvent) string {
	if evt.Done {
		return FormatWaterComplete(evt)
	}
	return FormatWaterStart(evt)
}

// FormatLight renders the light emitter's line. state is 0 or 1.
func FormatLight(prefix string, state int) string {
	return fmt.Sprintf("light,garden=%q state=%d", prefix, state)
}

// FormatHealth renders the health emitter's line, published every 60s.
func FormatHealth(prefix string) string {
	return fmt.Sprintf("health garden=%q", prefix)
}

// FormatTemperature renders a temperature sample.
func FormatTemperature(value float64) string {
	return fmt.Sprintf("temperature value=%s", trimFloat(value))
}

// FormatHumidity renders a humidity sample.
func FormatHumidity(value float64) string {
	return fmt.Sprintf("humidity value=%s", trimFloat(value))
}

// FormatMoisture renders a per-zone moisture percentage sample.
func FormatMoisture(zone int, percent float64) string {
	return fmt.Sprintf("moisture,zone=%d value=%s", zone, trimFloat(percent))
}

// trimFloat formats a float with the shortest exact decimal
// representation, avoiding the trailing zeros %f would add.
func trimFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
