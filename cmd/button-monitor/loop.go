package main

import (
	"os"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/board-buttons/internal/buttons"
	"github.com/sweeney/board-buttons/internal/logic"
	"github.com/sweeney/board-buttons/internal/mqtt"
	"github.com/sweeney/board-buttons/internal/status"
	"github.com/sweeney/board-buttons/internal/web"
)

// errSource is a GPIO backend that latches access errors (gpio.Cdev).
type errSource interface {
	Err() error
}

// loop polls the buttons and fans the results out.
// publisher, mqttStatus, metrics and gpioErr may be nil.
type loop struct {
	log        zerolog.Logger
	buttons    *buttons.Controller
	gpioErr    errSource
	gpioFailed bool
	monitor    *logic.Monitor
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	metrics    *web.Metrics
	heartbeat  time.Duration
	now        func() time.Time
}

func (l *loop) run(tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			l.log.Info().Str("signal", s.String()).Msg("shutting down")
			l.publishSystem("SHUTDOWN", signalName(s), true)
			return nil
		case <-tick:
			l.poll()
		}
	}
}

func (l *loop) poll() {
	t := l.now()
	s := l.buttons.GetStatus()
	l.checkGPIO()
	if l.metrics != nil {
		l.metrics.Observe(s)
	}

	for _, event := range l.monitor.Process(logic.Sample{Status: s, Time: t}) {
		l.log.Info().
			Str("event", string(event.Type)).
			Str("button", event.Button).
			Str("status", mqtt.FormatStatus(event.Status)).
			Msg("button event")
		if l.metrics != nil {
			l.metrics.ObserveEvent(event)
		}
		if l.publisher != nil {
			if err := l.publisher.Publish(event); err != nil {
				// Don't crash on publish failure
				l.log.Warn().Err(err).Msg("publish error")
			}
		}
	}

	l.updateTracker()

	if hb := l.monitor.CheckHeartbeat(t, l.heartbeat); hb != nil {
		l.log.Debug().
			Dur("uptime", hb.Uptime).
			Str("status", mqtt.FormatStatus(hb.Status)).
			Msg("heartbeat")
		l.publishSystem("HEARTBEAT", "", false)
	}
}

// checkGPIO reports a latched backend error once. Pins it could not read
// show as released from then on.
func (l *loop) checkGPIO() {
	if l.gpioErr == nil || l.gpioFailed {
		return
	}
	if err := l.gpioErr.Err(); err != nil {
		l.gpioFailed = true
		l.log.Warn().Err(err).Msg("gpio access failed, affected buttons read as released")
		l.tracker.SetGPIOError(err.Error())
	}
}

func (l *loop) updateTracker() {
	l.tracker.Update(l.monitor.Status(), l.monitor.IsBaselined(), l.monitor.CountsSnapshot())
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
	}
}

func (l *loop) publishSystem(event, reason string, retained bool) {
	if l.publisher == nil {
		return
	}
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
	}
	snap := l.tracker.Snapshot()
	err := l.publisher.PublishSystem(mqtt.SystemEvent{
		Timestamp:  l.now(),
		Event:      event,
		Reason:     reason,
		Retained:   retained,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	})
	if err != nil {
		l.log.Warn().Err(err).Str("event", event).Msg("failed to publish system event")
		return
	}
	l.log.Debug().Str("event", event).Msg("published system event")
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
