package web

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sweeney/board-buttons/internal/logic"
)

// Metrics exports button state to Prometheus.
type Metrics struct {
	Registry *prometheus.Registry

	buttons []logic.Button
	pressed *prometheus.GaugeVec
	status  prometheus.Gauge
	polls   prometheus.Counter
	events  *prometheus.CounterVec
}

// NewMetrics creates a Metrics with its own registry.
func NewMetrics(buttons []logic.Button) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		buttons:  buttons,
		pressed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "button_pressed",
			Help: "1 while the button is held down.",
		}, []string{"button"}),
		status: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "button_status_mask",
			Help: "Last status word returned by the button controller.",
		}),
		polls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "button_polls_total",
			Help: "Number of status reads.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "button_events_total",
			Help: "Button transitions by button and event type.",
		}, []string{"button", "event"}),
	}
	m.Registry.MustRegister(m.pressed, m.status, m.polls, m.events)
	for _, b := range buttons {
		m.pressed.WithLabelValues(b.Name).Set(0)
	}
	return m
}

// Observe records one status read.
func (m *Metrics) Observe(status uint32) {
	m.polls.Inc()
	m.status.Set(float64(status))
	for _, b := range m.buttons {
		v := 0.0
		if status&b.Mask != 0 {
			v = 1
		}
		m.pressed.WithLabelValues(b.Name).Set(v)
	}
}

// ObserveEvent counts a transition.
func (m *Metrics) ObserveEvent(e logic.Event) {
	m.events.WithLabelValues(e.Button, string(e.Type)).Inc()
}
