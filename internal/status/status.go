// Package status provides a thread-safe status tracker for the button monitor.
// It is read by the HTTP handlers and the MQTT lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/board-buttons/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	Board       string
	Backend     string
	Port        int
	Buttons     []logic.Button
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released. The Counts
// maps are replaced, never mutated, by Update.
type Snapshot struct {
	Status        uint32
	Baselined     bool
	Counts        logic.Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	GPIOError     string // first backend error, empty while healthy
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Pressed reports whether the named button is set in the status word.
func (s Snapshot) Pressed(name string) bool {
	for _, b := range s.Config.Buttons {
		if b.Name == name {
			return s.Status&b.Mask != 0
		}
	}
	return false
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the latest status word, baseline flag and event counts.
// Called from the poll loop on every tick.
func (t *Tracker) Update(status uint32, baselined bool, counts logic.Counts) {
	t.mu.Lock()
	t.snap.Status = status
	t.snap.Baselined = baselined
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetGPIOError records a GPIO backend failure.
func (t *Tracker) SetGPIOError(msg string) {
	t.mu.Lock()
	t.snap.GPIOError = msg
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
