package logic

import "time"

// Monitor compares consecutive samples and reports which buttons changed.
// Every difference between two raw samples is an event; there is no debouncing.
type Monitor struct {
	buttons       []Button
	baselined     bool
	status        uint32
	counts        Counts
	startTime     time.Time
	lastHeartbeat time.Time
}

// NewMonitor creates a Monitor for the given buttons.
// The startTime is used for calculating uptime in heartbeat events.
func NewMonitor(buttons []Button, startTime time.Time) *Monitor {
	return &Monitor{
		buttons:       buttons,
		startTime:     startTime,
		lastHeartbeat: startTime,
		counts: Counts{
			Pressed:  make(map[string]int),
			Released: make(map[string]int),
		},
	}
}

// Process takes a new sample and returns the transitions since the last one.
// The first sample only establishes the baseline.
func (m *Monitor) Process(s Sample) []Event {
	if !m.baselined {
		m.baselined = true
		m.status = s.Status
		return nil
	}

	changed := m.status ^ s.Status
	m.status = s.Status
	if changed == 0 {
		return nil
	}

	var events []Event
	for _, b := range m.buttons {
		if changed&b.Mask == 0 {
			continue
		}
		e := Event{Timestamp: s.Time, Button: b.Name, Status: s.Status}
		if s.Status&b.Mask != 0 {
			e.Type = EventPressed
			m.counts.Pressed[b.Name]++
		} else {
			e.Type = EventReleased
			m.counts.Released[b.Name]++
		}
		events = append(events, e)
	}
	return events
}

// IsBaselined returns whether a first sample has been seen.
func (m *Monitor) IsBaselined() bool {
	return m.baselined
}

// Status returns the last processed status word.
func (m *Monitor) Status() uint32 {
	return m.status
}

// CountsSnapshot returns a copy of the event counts.
func (m *Monitor) CountsSnapshot() Counts {
	c := Counts{
		Pressed:  make(map[string]int, len(m.counts.Pressed)),
		Released: make(map[string]int, len(m.counts.Released)),
	}
	for k, v := range m.counts.Pressed {
		c.Pressed[k] = v
	}
	for k, v := range m.counts.Released {
		c.Released[k] = v
	}
	return c
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if not yet baselined, if the
// interval has not elapsed, or if interval is <= 0 (disabled).
func (m *Monitor) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 || !m.baselined {
		return nil
	}
	if now.Sub(m.lastHeartbeat) < interval {
		return nil
	}

	m.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(m.startTime),
		Status:    m.status,
		Counts:    m.CountsSnapshot(),
	}
}
