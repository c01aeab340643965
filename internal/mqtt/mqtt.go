// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/traffic-light/internal/logic"
)

// Topic is the MQTT topic for phase transitions.
const Topic = "traffic/light/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "traffic/light/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a phase transition to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(tr logic.Transition) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "OFFLINE", "RECONNECTED"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Signal SignalPayload `json:"signal"`
}

// SignalPayload contains the transition details.
type SignalPayload struct {
	Timestamp string `json:"timestamp"`
	Phase     string `json:"phase"`
	Message   string `json:"message"`
	Sequence  uint64 `json:"sequence"`
}

// FormatPayload creates the JSON payload for a transition.
func FormatPayload(tr logic.Transition) ([]byte, error) {
	payload := Payload{
		Signal: SignalPayload{
			Timestamp: tr.Timestamp.UTC().Format(time.RFC3339),
			Phase:     tr.Phase.String(),
			Message:   tr.Phase.Message(),
			Sequence:  tr.Sequence,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
