package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfarm-labs/garden-firmware/internal/model"
)

func TestParseWaterRequestAppliesDefaults(t *testing.T) {
	req, err := ParseWaterRequest([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, model.WaterRequest{
		Position:   model.DefaultPosition,
		DurationMs: model.DefaultDuration,
		ZoneID:     model.DefaultZoneID,
		RequestID:  model.DefaultRequestID,
	}, req)
}

func TestParseWaterRequestHonorsProvidedFields(t *testing.T) {
	req, err := ParseWaterRequest([]byte(`{"position":2,"duration":1500,"zone_id":"back-bed","id":"r1"}`))
	require.NoError(t, err)
	assert.Equal(t, int16(2), req.Position)
	assert.Equal(t, uint64(1500), req.DurationMs)
	assert.Equal(t, "back-bed", req.ZoneID)
	assert.Equal(t, "r1", req.RequestID)
}

func TestParseWaterRequestInvalidJSON(t *testing.T) {
	_, err := ParseWaterRequest([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseLightCommandDefaultsToToggle(t *testing.T) {
	cmd, err := ParseLightCommand([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "", cmd.State)
}

func TestParseLightCommandExplicitState(t *testing.T) {
	cmd, err := ParseLightCommand([]byte(`{"state":"on"}`))
	require.NoError(t, err)
	assert.Equal(t, "on", cmd.State)
}

func TestParseConfiguration(t *testing.T) {
	cfg, err := ParseConfiguration([]byte(`{"num_zones":2,"valve_pins":[1,2],"pump_pins":[9,9],"broker_address":"h","broker_port":1,"topic_prefix":"g"}`))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.NumZones)
	require.Len(t, cfg.Zones, 2)
	assert.Equal(t, 1, cfg.Zones[0].ValvePin)
	assert.Equal(t, 9, cfg.Zones[1].PumpPin)
}

func TestFormatWaterStart(t *testing.T) {
	line := FormatWaterStart(model.WaterEvent{Position: 0, RequestID: "a", ZoneID: "z"})
	assert.Equal(t, "water,status=start,zone=0,id=a,zone_id=z millis=0", line)
}

func TestFormatWaterComplete(t *testing.T) {
	line := FormatWaterComplete(model.WaterEvent{Position: 0, RequestID: "a", ZoneID: "z", ActualDurationMs: 5012})
	assert.Equal(t, "water,status=complete,zone=0,id=a,zone_id=z millis=5012", line)
}

func TestFormatWaterDispatchesOnDone(t *testing.T) {
	start := FormatWater(model.WaterEvent{Position: 1, RequestID: "x", ZoneID: "y", Done: false})
	assert.Contains(t, start, "status=start")

	complete := FormatWater(model.WaterEvent{Position: 1, RequestID: "x", ZoneID: "y", Done: true, ActualDurationMs: 10})
	assert.Contains(t, complete, "status=complete")
	assert.Contains(t, complete, "millis=10")
}

func TestFormatLight(t *testing.T) {
	assert.Equal(t, `light,garden="garden" state=1`, FormatLight("garden", 1))
	assert.Equal(t, `light,garden="garden" state=0`, FormatLight("garden", 0))
}

func TestFormatHealth(t *testing.T) {
	assert.Equal(t, `health garden="garden"`, FormatHealth("garden"))
}

func TestFormatTemperatureHumidity(t *testing.T) {
	assert.Equal(t, "temperature value=21.5", FormatTemperature(21.5))
	assert.Equal(t, "humidity value=55.0", FormatHumidity(55))
}

func TestFormatMoisture(t *testing.T) {
	assert.Equal(t, "moisture,zone=2 value=37.5", FormatMoisture(2, 37.5))
}
