// Package model holds the wire and persisted types shared across the
// controller: zones, the configuration document, and the command/telemetry
// payloads the codec translates to and from.
package model

import (
	"encoding/json"
	"fmt"
)

// Zone is one logical watering output: a valve, a (possibly shared) pump,
// an optional local button, and an optional moisture channel. Immutable
// once loaded from Configuration. This is this module's internal,
// per-zone view; the wire document (see wireConfiguration below) instead
// carries one flat array per pin kind, indexed by zone position.
type Zone struct {
	Index        int
	ValvePin     int
	PumpPin      int
	HasButton    bool
	ButtonPin    int
	HasMoisture  bool
	MoistureChan int
}

// Configuration is the persisted document described in spec.md §3/§6.
// Its JSON shape is produced/consumed by MarshalJSON/UnmarshalJSON below,
// which bridge this per-zone struct to the flat `valve_pins`/`pump_pins`
// wire document real deployments of this firmware actually persist.
type Configuration struct {
	NumZones int
	Zones    []Zone

	Light    bool
	LightPin int

	TempHumidity         bool
	TempHumidityPin      int
	TempHumidityInterval int // ms

	Moisture         bool
	MoistureDryRef   int
	MoistureWetRef   int
	MoistureInterval int // ms

	DefaultWaterDurationMs uint64
	StopButtonPin          int
	HasStopButton          bool

	BrokerAddress string
	BrokerPort    int
	TopicPrefix   string

	WifiSSID     string
	WifiPassword string
}

// wireConfiguration is the on-the-wire/persisted shape from spec.md §6:
//
//	{"num_zones":3,
//	 "valve_pins":[16,17,5],
//	 "pump_pins":[18,18,18],
//	 "light":true, "light_pin":32,
//	 "temp_humidity":true, "temp_humidity_pin":27, "temp_humidity_interval":5000}
//
// confirmed against the real device's format: the C firmware's
// serializeConfig (original_source/garden-controller/src/garden_config.cpp)
// writes exactly these flat `valve_pins`/`pump_pins` arrays, and the
// control-plane server's ControllerConfigMessage
// (original_source/garden-app/pkg/controller_config.go) publishes the
// same shape. button_pins and moisture_channels extend that shape with
// one parallel array apiece for the per-zone fields spec.md §3 allows
// (an unset button pin is 0; an unset moisture channel is -1, since
// channel 0 is a valid ADC channel).
type wireConfiguration struct {
	NumZones         int   `json:"num_zones"`
	ValvePins        []int `json:"valve_pins"`
	PumpPins         []int `json:"pump_pins"`
	ButtonPins       []int `json:"button_pins,omitempty"`
	MoistureChannels []int `json:"moisture_channels,omitempty"`

	Light    bool `json:"light"`
	LightPin int  `json:"light_pin,omitempty"`

	TempHumidity         bool `json:"temp_humidity"`
	TempHumidityPin      int  `json:"temp_humidity_pin,omitempty"`
	TempHumidityInterval int  `json:"temp_humidity_interval,omitempty"` // ms

	Moisture         bool `json:"moisture,omitempty"`
	MoistureDryRef   int  `json:"moisture_dry_ref,omitempty"`
	MoistureWetRef   int  `json:"moisture_wet_ref,omitempty"`
	MoistureInterval int  `json:"moisture_interval,omitempty"` // ms

	DefaultWaterDurationMs uint64 `json:"default_water_duration_ms,omitempty"`
	StopButtonPin          int    `json:"stop_button_pin,omitempty"`
	HasStopButton          bool   `json:"has_stop_button,omitempty"`

	BrokerAddress string `json:"broker_address"`
	BrokerPort    int    `json:"broker_port"`
	TopicPrefix   string `json:"topic_prefix"`

	WifiSSID     string `json:"wifi_ssid,omitempty"`
	WifiPassword string `json:"wifi_password,omitempty"`
}

// MarshalJSON flattens Zones into the parallel pin arrays spec.md §6
// documents.
func (c Configuration) MarshalJSON() ([]byte, error) {
	w := wireConfiguration{
		NumZones:               c.NumZones,
		ValvePins:              make([]int, len(c.Zones)),
		PumpPins:               make([]int, len(c.Zones)),
		ButtonPins:             make([]int, len(c.Zones)),
		MoistureChannels:       make([]int, len(c.Zones)),
		Light:                  c.Light,
		LightPin:               c.LightPin,
		TempHumidity:           c.TempHumidity,
		TempHumidityPin:        c.TempHumidityPin,
		TempHumidityInterval:   c.TempHumidityInterval,
		Moisture:               c.Moisture,
		MoistureDryRef:         c.MoistureDryRef,
		MoistureWetRef:         c.MoistureWetRef,
		MoistureInterval:       c.MoistureInterval,
		DefaultWaterDurationMs: c.DefaultWaterDurationMs,
		StopButtonPin:          c.StopButtonPin,
		HasStopButton:          c.HasStopButton,
		BrokerAddress:          c.BrokerAddress,
		BrokerPort:             c.BrokerPort,
		TopicPrefix:            c.TopicPrefix,
		WifiSSID:               c.WifiSSID,
		WifiPassword:           c.WifiPassword,
	}

	haveButton := false
	haveMoisture := false
	for i, z := range c.Zones {
		w.ValvePins[i] = z.ValvePin
		w.PumpPins[i] = z.PumpPin
		w.MoistureChannels[i] = -1
		if z.HasButton {
			w.ButtonPins[i] = z.ButtonPin
			haveButton = true
		}
		if z.HasMoisture {
			w.MoistureChannels[i] = z.MoistureChan
			haveMoisture = true
		}
	}
	if !haveButton {
		w.ButtonPins = nil
	}
	if !haveMoisture {
		w.MoistureChannels = nil
	}

	return json.Marshal(w)
}

// UnmarshalJSON rebuilds the per-zone Zones slice from the flat pin
// arrays spec.md §6 documents. Arrays shorter than ValvePins leave the
// corresponding zone without that optional feature.
func (c *Configuration) UnmarshalJSON(data []byte) error {
	var w wireConfiguration
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*c = Configuration{
		NumZones:               w.NumZones,
		Light:                  w.Light,
		LightPin:               w.LightPin,
		TempHumidity:           w.TempHumidity,
		TempHumidityPin:        w.TempHumidityPin,
		TempHumidityInterval:   w.TempHumidityInterval,
		Moisture:               w.Moisture,
		MoistureDryRef:         w.MoistureDryRef,
		MoistureWetRef:         w.MoistureWetRef,
		MoistureInterval:       w.MoistureInterval,
		DefaultWaterDurationMs: w.DefaultWaterDurationMs,
		StopButtonPin:          w.StopButtonPin,
		HasStopButton:          w.HasStopButton,
		BrokerAddress:          w.BrokerAddress,
		BrokerPort:             w.BrokerPort,
		TopicPrefix:            w.TopicPrefix,
		WifiSSID:               w.WifiSSID,
		WifiPassword:           w.WifiPassword,
	}

	zones := make([]Zone, len(w.ValvePins))
	for i := range zones {
		z := Zone{Index: i, ValvePin: w.ValvePins[i]}
		if i < len(w.PumpPins) {
			z.PumpPin = w.PumpPins[i]
		}
		if i < len(w.ButtonPins) && w.ButtonPins[i] != 0 {
			z.HasButton = true
			z.ButtonPin = w.ButtonPins[i]
		}
		if i < len(w.MoistureChannels) && w.MoistureChannels[i] != -1 {
			z.HasMoisture = true
			z.MoistureChan = w.MoistureChannels[i]
		}
		zones[i] = z
	}
	c.Zones = zones
	return nil
}

// Validate checks the invariants spec.md §3 places on a configuration
// document: zone count matches the zone array, and pin numbers are
// distinct within {valves ∪ light ∪ button ∪ sensor} except that pump
// pins may repeat across zones.
func (c Configuration) Validate() error {
	if len(c.Zones) != c.NumZones {
		return fmt.Errorf("config: num_zones=%d but %d zones present", c.NumZones, len(c.Zones))
	}
	if c.NumZones > 12 {
		return fmt.Errorf("config: num_zones=%d exceeds maximum of 12", c.NumZones)
	}

	seen := make(map[int]string, 4*len(c.Zones))
	claim := func(pin int, owner string) error {
		if pin == 0 {
			return nil
		}
		if prev, ok := seen[pin]; ok {
			return fmt.Errorf("config: pin %d used by both %s and %s", pin, prev, owner)
		}
		seen[pin] = owner
		return nil
	}

	for _, z := range c.Zones {
		if err := claim(z.ValvePin, fmt.Sprintf("zone[%d].valve_pin", z.Index)); err != nil {
			return err
		}
		if z.HasButton {
			if err := claim(z.ButtonPin, fmt.Sprintf("zone[%d].button_pin", z.Index)); err != nil {
				return err
			}
		}
		if z.HasMoisture {
			if err := claim(z.MoistureChan, fmt.Sprintf("zone[%d].moisture_channel", z.Index)); err != nil {
				return err
			}
		}
	}
	if c.Light {
		if err := claim(c.LightPin, "light_pin"); err != nil {
			return err
		}
	}
	if c.TempHumidity {
		if err := claim(c.TempHumidityPin, "temp_humidity_pin"); err != nil {
			return err
		}
	}
	if c.HasStopButton {
		if err := claim(c.StopButtonPin, "stop_button_pin"); err != nil {
			return err
		}
	}
	// pump pins are exempt from distinctness — sharing is deliberate.
	return nil
}

// Default returns the compiled-in configuration used when no persisted
// document exists or it fails to parse (spec.md §4.5, §7).
func Default() Configuration {
	return Configuration{
		NumZones: 3,
		Zones: []Zone{
			{Index: 0, ValvePin: 16, PumpPin: 18},
			{Index: 1, ValvePin: 17, PumpPin: 18},
			{Index: 2, ValvePin: 5, PumpPin: 18},
		},
		DefaultWaterDurationMs: 5000,
		BrokerPort:             1883,
		TopicPrefix:            "garden",
	}
}
