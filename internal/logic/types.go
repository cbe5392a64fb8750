// Package logic turns raw button snapshots into press and release events.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// EventType is the kind of transition a button made.
type EventType string

const (
	EventPressed  EventType = "BUTTON_PRESSED"
	EventReleased EventType = "BUTTON_RELEASED"
)

// Button names one button and the bit it occupies in a status word.
type Button struct {
	Name string
	Mask uint32
}

// Sample is one GetStatus reading.
type Sample struct {
	Status uint32 // active-high, 1 = pressed
	Time   time.Time
}

// Event represents a button transition to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Button    string
	Status    uint32 // full status word after the transition
}

// Counts tracks presses and releases per button name since startup.
type Counts struct {
	Pressed  map[string]int
	Released map[string]int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Status    uint32
	Counts    Counts
}
