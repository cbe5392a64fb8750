package mqtt

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/sweeney/board-buttons/internal/logic"
)

// doneToken is an already completed paho.Token.
type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// fakeClient records publishes. The embedded interface is nil; only the
// methods RealPublisher uses are implemented.
type fakeClient struct {
	paho.Client

	mu        sync.Mutex
	open      bool
	published [][]byte

	// onCheck, if set, runs inside IsConnectionOpen.
	onCheck func()
	// onPublish, if set, runs after a message is recorded.
	onPublish func(n int)
}

func (c *fakeClient) IsConnectionOpen() bool {
	c.mu.Lock()
	open, hook := c.open, c.onCheck
	c.mu.Unlock()
	if hook != nil {
		hook()
	}
	return open
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.mu.Lock()
	c.published = append(c.published, payload.([]byte))
	n, hook := len(c.published), c.onPublish
	c.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	return doneToken{}
}

func (c *fakeClient) setOpen(open bool) {
	c.mu.Lock()
	c.open = open
	c.mu.Unlock()
}

// order returns "button/event" for every button message published.
func (c *fakeClient) order(t *testing.T) []string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, raw := range c.published {
		var p Payload
		if err := json.Unmarshal(raw, &p); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		out = append(out, p.Buttons.Button+"/"+p.Buttons.Event)
	}
	return out
}

func newTestPublisher(c *fakeClient) *RealPublisher {
	p := newRealPublisher(zerolog.Nop())
	p.client = c
	return p
}

func buttonEvent(button string, typ logic.EventType) logic.Event {
	return logic.Event{Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Type: typ, Button: button}
}

func assertOrder(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("published %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRealPublisherPublishesWhenConnected(t *testing.T) {
	c := &fakeClient{open: true}
	p := newTestPublisher(c)

	if err := p.Publish(buttonEvent("button1", logic.EventPressed)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	assertOrder(t, c.order(t), []string{"button1/BUTTON_PRESSED"})
	if p.buf.len() != 0 {
		t.Errorf("buffered %d messages while connected", p.buf.len())
	}
}

func TestRealPublisherBuffersAndReplaysInOrder(t *testing.T) {
	c := &fakeClient{}
	p := newTestPublisher(c)

	p.Publish(buttonEvent("button2", logic.EventPressed))
	p.Publish(buttonEvent("button2", logic.EventReleased))
	if len(c.order(t)) != 0 {
		t.Fatal("published while disconnected")
	}

	c.setOpen(true)
	p.onConnect(c)

	assertOrder(t, c.order(t), []string{"button2/BUTTON_PRESSED", "button2/BUTTON_RELEASED"})
	if p.buf.len() != 0 {
		t.Errorf("buffer not empty after replay: %d", p.buf.len())
	}
}

func TestRealPublisherSendDuringReplayWaitsItsTurn(t *testing.T) {
	c := &fakeClient{}
	p := newTestPublisher(c)

	p.Publish(buttonEvent("button1", logic.EventPressed))
	p.Publish(buttonEvent("button1", logic.EventReleased))

	// A live event arrives while the first buffered message is in flight.
	c.onPublish = func(n int) {
		if n == 1 {
			p.Publish(buttonEvent("button3", logic.EventPressed))
		}
	}
	c.setOpen(true)
	p.onConnect(c)

	assertOrder(t, c.order(t), []string{
		"button1/BUTTON_PRESSED",
		"button1/BUTTON_RELEASED",
		"button3/BUTTON_PRESSED",
	})
	if p.buf.len() != 0 || p.replaying {
		t.Errorf("replay left state behind: buffered=%d replaying=%v", p.buf.len(), p.replaying)
	}

	// Back to live publishing.
	c.onPublish = nil
	p.Publish(buttonEvent("button3", logic.EventReleased))
	if got := c.order(t); got[len(got)-1] != "button3/BUTTON_RELEASED" {
		t.Errorf("live publish after replay: %v", got)
	}
}

func TestRealPublisherReconnectDuringConnectedCheck(t *testing.T) {
	c := &fakeClient{}
	p := newTestPublisher(c)
	done := make(chan struct{})

	// The connection comes up right after send sees it closed.
	var once sync.Once
	c.onCheck = func() {
		once.Do(func() {
			c.mu.Lock()
			c.onCheck = nil
			c.mu.Unlock()
			go func() {
				c.setOpen(true)
				p.onConnect(c)
				close(done)
			}()
		})
	}

	p.Publish(buttonEvent("button1", logic.EventPressed))
	<-done
	p.Publish(buttonEvent("button1", logic.EventReleased))

	assertOrder(t, c.order(t), []string{"button1/BUTTON_PRESSED", "button1/BUTTON_RELEASED"})
	if p.buf.len() != 0 {
		t.Errorf("message stranded in buffer: %d", p.buf.len())
	}
}

func TestRealPublisherConnectionLostDuringReplay(t *testing.T) {
	c := &fakeClient{}
	p := newTestPublisher(c)

	p.Publish(buttonEvent("button1", logic.EventPressed))
	p.Publish(buttonEvent("button2", logic.EventPressed))
	p.Publish(buttonEvent("button3", logic.EventPressed))

	c.onPublish = func(n int) {
		if n == 1 {
			c.setOpen(false)
			p.Publish(buttonEvent("button1", logic.EventReleased))
		}
	}
	c.setOpen(true)
	p.onConnect(c)

	assertOrder(t, c.order(t), []string{"button1/BUTTON_PRESSED"})
	if p.replaying {
		t.Error("still replaying after connection loss")
	}

	c.onPublish = nil
	c.setOpen(true)
	p.onConnect(c)

	assertOrder(t, c.order(t), []string{
		"button1/BUTTON_PRESSED",
		"button2/BUTTON_PRESSED",
		"button3/BUTTON_PRESSED",
		"button1/BUTTON_RELEASED",
	})
}
