package model

// WaterRequest is an incoming or locally-generated instruction to pulse a
// zone. Correlation tokens are owned by value — never a borrowed pointer —
// so a queued WaterRequest can be copied and released without a lifetime
// hazard (spec.md §9).
type WaterRequest struct {
	Position      int16  `json:"position"`
	DurationMs    uint64 `json:"duration_ms"`
	ZoneID        string `json:"zone_id"`
	RequestID     string `json:"request_id"`
}

// DefaultWaterRequest fields, per spec.md §4.2.
const (
	DefaultPosition  int16  = -1
	DefaultDuration  uint64 = 0
	DefaultZoneID    string = "N/A"
	DefaultRequestID string = "N/A"
)

// WaterEvent documents a pulse's start (Done=false) or completion
// (Done=true). Both emissions for a given request carry identical
// correlation tokens (spec.md §3 invariant 3).
type WaterEvent struct {
	Position          int16
	ZoneID            string
	RequestID         string
	Done              bool
	ActualDurationMs  uint64
}

// LightCommand is the decoded payload of a light command. An empty State
// means "toggle" (spec.md §4.4).
type LightCommand struct {
	State string `json:"state"`
}
