package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUnmarshalWireDocument parses spec.md §6's literal example document
// and checks it lands in the per-zone Zones representation the rest of
// this module works with.
func TestUnmarshalWireDocument(t *testing.T) {
	raw := []byte(`{"num_zones":3,
 "valve_pins":[16,17,5],
 "pump_pins":[18,18,18],
 "light":true, "light_pin":32,
 "temp_humidity":true, "temp_humidity_pin":27, "temp_humidity_interval":5000}`)

	var cfg Configuration
	require.NoError(t, json.Unmarshal(raw, &cfg))

	assert.Equal(t, 3, cfg.NumZones)
	require.Len(t, cfg.Zones, 3)
	assert.Equal(t, Zone{Index: 0, ValvePin: 16, PumpPin: 18}, cfg.Zones[0])
	assert.Equal(t, Zone{Index: 1, ValvePin: 17, PumpPin: 18}, cfg.Zones[1])
	assert.Equal(t, Zone{Index: 2, ValvePin: 5, PumpPin: 18}, cfg.Zones[2])
	assert.True(t, cfg.Light)
	assert.Equal(t, 32, cfg.LightPin)
	assert.True(t, cfg.TempHumidity)
	assert.Equal(t, 27, cfg.TempHumidityPin)
	assert.Equal(t, 5000, cfg.TempHumidityInterval)
	assert.NoError(t, cfg.Validate())
}

// TestMarshalUnmarshalRoundTrip is the spec.md §8 "parse-then-serialize
// produces an equivalent document" property, including a zone with a
// button and a zone with a moisture channel.
func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	original := Configuration{
		NumZones: 2,
		Zones: []Zone{
			{Index: 0, ValvePin: 16, PumpPin: 18, HasButton: true, ButtonPin: 21},
			{Index: 1, ValvePin: 17, PumpPin: 18, HasMoisture: true, MoistureChan: 0},
		},
		Light:         true,
		LightPin:      32,
		BrokerAddress: "broker.local",
		BrokerPort:    1883,
		TopicPrefix:   "garden",
	}

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	var roundTripped Configuration
	require.NoError(t, json.Unmarshal(raw, &roundTripped))
	assert.Equal(t, original, roundTripped)
}

func TestMarshalOmitsButtonAndMoistureArraysWhenUnused(t *testing.T) {
	raw, err := json.Marshal(Default())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "button_pins")
	assert.NotContains(t, string(raw), "moisture_channels")
}

func TestValidateAcceptsDefault(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateRejectsZoneCountMismatch(t *testing.T) {
	cfg := Default()
	cfg.NumZones = 5
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsTooManyZones(t *testing.T) {
	cfg := Default()
	zones := make([]Zone, 13)
	for i := range zones {
		zones[i] = Zone{Index: i, ValvePin: 100 + i}
	}
	cfg.Zones = zones
	cfg.NumZones = 13
	assert.Error(t, cfg.Validate())
}

func TestValidateAllowsSharedPumpPins(t *testing.T) {
	cfg := Configuration{
		NumZones: 2,
		Zones: []Zone{
			{Index: 0, ValvePin: 1, PumpPin: 9},
			{Index: 1, ValvePin: 2, PumpPin: 9},
		},
	}
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsDuplicateValvePins(t *testing.T) {
	cfg := Configuration{
		NumZones: 2,
		Zones: []Zone{
			{Index: 0, ValvePin: 5, PumpPin: 9},
			{Index: 1, ValvePin: 5, PumpPin: 9},
		},
	}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsButtonPinCollidingWithLight(t *testing.T) {
	cfg := Configuration{
		NumZones: 1,
		Zones: []Zone{
			{Index: 0, ValvePin: 1, PumpPin: 9, HasButton: true, ButtonPin: 20},
		},
		Light:    true,
		LightPin: 20,
	}
	assert.Error(t, cfg.Validate())
}
