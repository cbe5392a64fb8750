package status

import (
	"encoding/json"
	"fmt"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Board         string       `json:"board"`
	Port          int          `json:"port"`
	Mask          string       `json:"mask"`
	Buttons       []ButtonJSON `json:"buttons"`
	Ready         bool         `json:"ready"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	GPIOError     string       `json:"gpio_error,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// ButtonJSON is the state of one button.
type ButtonJSON struct {
	Name     string `json:"name"`
	Mask     string `json:"mask"`
	Pressed  bool   `json:"pressed"`
	Presses  int    `json:"presses"`
	Releases int    `json:"releases"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Backend     string `json:"backend"`
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
}

func hex32(v uint32) string {
	return fmt.Sprintf("0x%08x", v)
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Board:         snap.Config.Board,
		Port:          snap.Config.Port,
		Mask:          hex32(snap.Status),
		Buttons:       make([]ButtonJSON, 0, len(snap.Config.Buttons)),
		Ready:         snap.Baselined,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		GPIOError:     snap.GPIOError,
		Config: ConfigJSON{
			Backend:     snap.Config.Backend,
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
	for _, b := range snap.Config.Buttons {
		inner.Buttons = append(inner.Buttons, ButtonJSON{
			Name:     b.Name,
			Mask:     hex32(b.Mask),
			Pressed:  snap.Pressed(b.Name),
			Presses:  snap.Counts.Pressed[b.Name],
			Releases: snap.Counts.Released[b.Name],
		})
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
