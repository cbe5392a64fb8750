package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/sweeney/board-buttons/internal/logic"
)

const bufferCapacity = 256

// RealPublisher publishes to an actual MQTT broker.
// Messages published while the connection is down are buffered and replayed
// in order on reconnect. Messages published during a replay join the buffer,
// so nothing overtakes an older message.
type RealPublisher struct {
	log    zerolog.Logger
	client paho.Client

	// mu guards buf and replaying, and is held across live publishes so
	// they are ordered against the connected check.
	mu        sync.Mutex
	buf       *ringBuffer
	replaying bool
}

func newRealPublisher(log zerolog.Logger) *RealPublisher {
	return &RealPublisher{
		log: log,
		buf: newRingBuffer(bufferCapacity, log),
	}
}

// NewRealPublisher creates a publisher for the given broker.
// The connection is retried in the background; publishing before it is up
// buffers.
func NewRealPublisher(broker, clientID string, log zerolog.Logger) *RealPublisher {
	p := newRealPublisher(log)

	will, _ := FormatSystemPayload(SystemEvent{Event: "LWT", Reason: "CONNECTION_LOST", Timestamp: time.Now()})
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warn().Err(err).Msg("mqtt connection lost")
		})

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

// onConnect replays the buffer until it is empty. Sends arriving meanwhile
// are buffered and picked up by the next round.
func (p *RealPublisher) onConnect(c paho.Client) {
	replayed := 0
	for {
		p.mu.Lock()
		pending := p.buf.drainAll()
		if len(pending) == 0 || !c.IsConnectionOpen() {
			p.requeue(pending)
			p.replaying = false
			p.mu.Unlock()
			p.log.Info().Int("replayed", replayed).Msg("mqtt connected")
			return
		}
		p.replaying = true
		p.mu.Unlock()

		for i, m := range pending {
			if !c.IsConnectionOpen() {
				p.mu.Lock()
				p.requeue(pending[i:])
				p.replaying = false
				p.mu.Unlock()
				p.log.Warn().Int("remaining", len(pending)-i).Msg("mqtt connection lost during replay")
				return
			}
			if err := waitToken(c.Publish(m.topic, m.qos, m.retained, m.payload), m.topic); err != nil {
				p.log.Warn().Err(err).Msg("replay failed")
			}
			replayed++
		}
	}
}

// requeue puts older messages back in front of anything buffered since.
// Caller must hold p.mu.
func (p *RealPublisher) requeue(older []bufferedMsg) {
	if len(older) == 0 {
		return
	}
	newer := p.buf.drainAll()
	for _, m := range older {
		p.buf.push(m)
	}
	for _, m := range newer {
		p.buf.push(m)
	}
}

func waitToken(token paho.Token, topic string) error {
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish to %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (p *RealPublisher) send(topic string, qos byte, retained bool, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.replaying || !p.client.IsConnectionOpen() {
		p.buf.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		return nil
	}
	return waitToken(p.client.Publish(topic, qos, retained, payload), topic)
}

// Publish sends a button event to the MQTT broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	// QoS 0 (at-most-once), not retained
	return p.send(Topic, 0, false, payload)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	// QoS 1 so shutdown events are not silently lost
	return p.send(TopicSystem, 1, event.Retained, payload)
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
