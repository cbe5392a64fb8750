package logic

import (
	"testing"
	"time"
)

var (
	t0      = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	testBtn = []Button{
		{Name: "button1", Mask: 1 << 24},
		{Name: "button2", Mask: 1 << 21},
		{Name: "button3", Mask: 1 << 18},
	}
)

func at(d time.Duration) time.Time { return t0.Add(d) }

func TestFirstSampleIsBaseline(t *testing.T) {
	m := NewMonitor(testBtn, t0)
	if m.IsBaselined() {
		t.Fatal("baselined before any sample")
	}

	// A button held at startup is not an event.
	events := m.Process(Sample{Status: 1 << 21, Time: t0})
	if len(events) != 0 {
		t.Errorf("expected no events on baseline, got %v", events)
	}
	if !m.IsBaselined() {
		t.Error("expected baseline after first sample")
	}
	if m.Status() != 1<<21 {
		t.Errorf("Status: got %#08x", m.Status())
	}
}

func TestPressAndRelease(t *testing.T) {
	m := NewMonitor(testBtn, t0)
	m.Process(Sample{Status: 0, Time: t0})

	events := m.Process(Sample{Status: 1 << 24, Time: at(100 * time.Millisecond)})
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Type != EventPressed || e.Button != "button1" || e.Status != 1<<24 {
		t.Errorf("unexpected event: %+v", e)
	}
	if !e.Timestamp.Equal(at(100 * time.Millisecond)) {
		t.Errorf("timestamp: got %v", e.Timestamp)
	}

	// Unchanged sample emits nothing
	if events := m.Process(Sample{Status: 1 << 24, Time: at(200 * time.Millisecond)}); len(events) != 0 {
		t.Errorf("expected no events, got %v", events)
	}

	events = m.Process(Sample{Status: 0, Time: at(300 * time.Millisecond)})
	if len(events) != 1 || events[0].Type != EventReleased || events[0].Button != "button1" {
		t.Errorf("unexpected events: %+v", events)
	}
}

func TestSimultaneousChangesInButtonOrder(t *testing.T) {
	m := NewMonitor(testBtn, t0)
	m.Process(Sample{Status: 1 << 21, Time: t0})

	events := m.Process(Sample{Status: 1<<24 | 1<<18, Time: at(time.Second)})
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	want := []struct {
		typ    EventType
		button string
	}{
		{EventPressed, "button1"},
		{EventReleased, "button2"},
		{EventPressed, "button3"},
	}
	for i, w := range want {
		if events[i].Type != w.typ || events[i].Button != w.button {
			t.Errorf("event %d: got %s %s, want %s %s", i, events[i].Type, events[i].Button, w.typ, w.button)
		}
	}
}

func TestUnknownBitsIgnored(t *testing.T) {
	m := NewMonitor(testBtn, t0)
	m.Process(Sample{Status: 0, Time: t0})

	if events := m.Process(Sample{Status: 0x1, Time: at(time.Second)}); len(events) != 0 {
		t.Errorf("expected no events for non-button bit, got %v", events)
	}
}

func TestCounts(t *testing.T) {
	m := NewMonitor(testBtn, t0)
	m.Process(Sample{Status: 0, Time: t0})
	for i := 0; i < 3; i++ {
		m.Process(Sample{Status: 1 << 18, Time: at(time.Duration(2*i+1) * time.Second)})
		m.Process(Sample{Status: 0, Time: at(time.Duration(2*i+2) * time.Second)})
	}

	c := m.CountsSnapshot()
	if c.Pressed["button3"] != 3 || c.Released["button3"] != 3 {
		t.Errorf("button3 counts: %+v", c)
	}
	if c.Pressed["button1"] != 0 {
		t.Errorf("button1 pressed: %d", c.Pressed["button1"])
	}

	// Snapshot is a copy
	c.Pressed["button3"] = 99
	if m.CountsSnapshot().Pressed["button3"] != 3 {
		t.Error("CountsSnapshot shares state with Monitor")
	}
}

func TestHeartbeat(t *testing.T) {
	m := NewMonitor(testBtn, t0)

	if hb := m.CheckHeartbeat(at(time.Hour), time.Minute); hb != nil {
		t.Error("heartbeat before baseline")
	}

	m.Process(Sample{Status: 1 << 24, Time: t0})

	if hb := m.CheckHeartbeat(at(30*time.Second), time.Minute); hb != nil {
		t.Error("heartbeat before interval elapsed")
	}
	if hb := m.CheckHeartbeat(at(time.Hour), 0); hb != nil {
		t.Error("heartbeat with interval disabled")
	}

	hb := m.CheckHeartbeat(at(time.Minute), time.Minute)
	if hb == nil {
		t.Fatal("expected heartbeat")
	}
	if hb.Uptime != time.Minute {
		t.Errorf("Uptime: got %v", hb.Uptime)
	}
	if hb.Status != 1<<24 {
		t.Errorf("Status: got %#08x", hb.Status)
	}

	if hb := m.CheckHeartbeat(at(90*time.Second), time.Minute); hb != nil {
		t.Error("heartbeat repeated before next interval")
	}
	if hb := m.CheckHeartbeat(at(2*time.Minute), time.Minute); hb == nil {
		t.Error("expected second heartbeat")
	}
}
