package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Phase         string     `json:"phase"`
	Lamps         LampsJSON  `json:"lamps"`
	Transitions   uint64     `json:"transitions"`
	LastChange    string     `json:"last_change,omitempty"`
	Heartbeats    uint64     `json:"heartbeats"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"phase_counts"`
	Config        ConfigJSON `json:"config"`
}

// LampsJSON is the JSON representation of the three outputs.
type LampsJSON struct {
	Red    bool `json:"red"`
	Yellow bool `json:"yellow"`
	Green  bool `json:"green"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Enabled   bool   `json:"enabled"`
	Connected bool   `json:"connected"`
	Broker    string `json:"broker,omitempty"`
}

// CountsJSON is the JSON representation of per-phase counts.
type CountsJSON struct {
	Red    int `json:"red"`
	Yellow int `json:"yellow"`
	Green  int `json:"green"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PeriodMs    int64  `json:"period_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Chip        string `json:"chip"`
	PinRed      int    `json:"pin_red"`
	PinYellow   int    `json:"pin_yellow"`
	PinGreen    int    `json:"pin_green"`
	HTTPAddr    string `json:"http_addr,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Phase: snap.LitName(),
		Lamps: LampsJSON{
			Red:    snap.Lamps.Red,
			Yellow: snap.Lamps.Yellow,
			Green:  snap.Lamps.Green,
		},
		Transitions:   snap.Transitions,
		Heartbeats:    snap.Heartbeats,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Enabled:   snap.Config.Broker != "",
			Connected: snap.MQTTConnected,
			Broker:    snap.Config.Broker,
		},
		Counts: CountsJSON{
			Red:    snap.Counts.Red,
			Yellow: snap.Counts.Yellow,
			Green:  snap.Counts.Green,
		},
		Config: ConfigJSON{
			PeriodMs:    snap.Config.PeriodMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Chip:        snap.Config.Chip,
			PinRed:      snap.Config.PinRed,
			PinYellow:   snap.Config.PinYellow,
			PinGreen:    snap.Config.PinGreen,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
	if !snap.LastChange.IsZero() {
		inner.LastChange = snap.LastChange.UTC().Format(time.RFC3339)
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
