package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ginkgo-talk/gtalk-remote/internal/api"
	"github.com/ginkgo-talk/gtalk-remote/internal/history"
	"github.com/ginkgo-talk/gtalk-remote/pkg/protocol"
)

type staticCreds struct{}

func (staticCreds) Token() string             { return "tok" }
func (staticCreds) DeviceID() (string, error) { return "dev", nil }

type okPairer struct{ result bool }

func (p *okPairer) EnsurePaired(ctx context.Context) bool         { return p.result }
func (p *okPairer) SubmitCode(ctx context.Context, _ string) error { return nil }

type fakeStatus struct{ ai bool }

func (f *fakeStatus) FetchStatus(ctx context.Context) (api.Status, error) {
	return api.Status{Paired: true, AIAvailable: f.ai}, nil
}

// fakeDesktop is a WebSocket endpoint that records inbound messages and can
// push server messages or drop connections.
type fakeDesktop struct {
	t        *testing.T
	upgrader websocket.Upgrader

	mu       sync.Mutex
	conns    []*websocket.Conn
	accepted int
	inbound  chan protocol.TextMessage
	commands chan protocol.CommandMessage
}

func newFakeDesktop(t *testing.T) (*fakeDesktop, *httptest.Server) {
	d := &fakeDesktop{
		t:        t,
		inbound:  make(chan protocol.TextMessage, 16),
		commands: make(chan protocol.CommandMessage, 16),
	}
	srv := httptest.NewServer(http.HandlerFunc(d.handle))
	t.Cleanup(srv.Close)
	t.Cleanup(d.closeAll)
	return d, srv
}

func (d *fakeDesktop) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	d.mu.Lock()
	d.conns = append(d.conns, conn)
	d.accepted++
	d.mu.Unlock()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		typ, _ := protocol.ParseType(data)
		switch typ {
		case protocol.TypeText:
			var msg protocol.TextMessage
			json.Unmarshal(data, &msg)
			d.inbound <- msg
		case protocol.TypeCommand:
			var msg protocol.CommandMessage
			json.Unmarshal(data, &msg)
			d.commands <- msg
		}
	}
}

func (d *fakeDesktop) connCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.accepted
}

func (d *fakeDesktop) push(v any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		d.t.Fatal("push with no connection")
	}
	if err := d.conns[len(d.conns)-1].WriteJSON(v); err != nil {
		d.t.Errorf("push: %v", err)
	}
}

func (d *fakeDesktop) dropAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.conns {
		c.Close()
	}
	d.conns = nil
}

func (d *fakeDesktop) closeAll() { d.dropAll() }

func testOptions() Options {
	return Options{
		ConnectTimeout:   2 * time.Second,
		ReconnectDelay:   100 * time.Millisecond,
		RawSendTimeout:   200 * time.Millisecond,
		TransformTimeout: 300 * time.Millisecond,
	}
}

func startSession(t *testing.T, srvURL string, ai bool) (*Session, *history.Log) {
	t.Helper()
	log := history.NewLog(nil)
	s := New(srvURL, staticCreds{}, &okPairer{result: true}, &fakeStatus{ai: ai}, log, testOptions())
	s.Start()
	t.Cleanup(s.Close)
	return s, log
}

// waitEvent drains the event stream until match returns true or the
// deadline passes.
func waitEvent(t *testing.T, s *Session, what string, match func(Event) bool) Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case e := <-s.Events():
			if match(e) {
				return e
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
			return nil
		}
	}
}

func waitConnected(t *testing.T, s *Session) {
	t.Helper()
	s.Connect()
	waitEvent(t, s, "connected status", func(e Event) bool {
		se, ok := e.(StatusEvent)
		return ok && se.Status == StatusConnected
	})
}

func recvText(t *testing.T, d *fakeDesktop) protocol.TextMessage {
	t.Helper()
	select {
	case msg := <-d.inbound:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no text message reached the desktop")
		return protocol.TextMessage{}
	}
}

func TestConnect_SingleFlight(t *testing.T) {
	d, srv := newFakeDesktop(t)
	s, _ := startSession(t, srv.URL, false)

	waitConnected(t, s)
	s.Connect()
	s.Connect()
	time.Sleep(200 * time.Millisecond)

	if n := d.connCount(); n != 1 {
		t.Errorf("desktop accepted %d connections, want 1", n)
	}
}

func TestConnect_PairingGateAborts(t *testing.T) {
	d, srv := newFakeDesktop(t)
	log := history.NewLog(nil)
	s := New(srv.URL, staticCreds{}, &okPairer{result: false}, &fakeStatus{}, log, testOptions())
	s.Start()
	t.Cleanup(s.Close)

	s.Connect()
	// The attempt ends: the status must leave "connecting" so the UI does
	// not show a connection that is no longer being tried.
	waitEvent(t, s, "status after pairing abort", func(e Event) bool {
		se, ok := e.(StatusEvent)
		return ok && se.Status == StatusDisconnected
	})

	// Pairing failures are not auto-retried; no connection may appear.
	time.Sleep(300 * time.Millisecond)
	if n := d.connCount(); n != 0 {
		t.Errorf("desktop accepted %d connections, want 0", n)
	}
}

func TestReconnect_ExactlyOnceAfterClose(t *testing.T) {
	d, srv := newFakeDesktop(t)
	s, _ := startSession(t, srv.URL, false)
	waitConnected(t, s)

	d.dropAll()
	waitEvent(t, s, "disconnected status", func(e Event) bool {
		se, ok := e.(StatusEvent)
		return ok && se.Status == StatusDisconnected
	})
	waitEvent(t, s, "reconnected status", func(e Event) bool {
		se, ok := e.(StatusEvent)
		return ok && se.Status == StatusConnected
	})

	// One initial connection plus exactly one reconnect.
	time.Sleep(250 * time.Millisecond)
	if n := d.connCount(); n != 2 {
		t.Errorf("desktop accepted %d connections, want 2", n)
	}
}

func TestSend_EmptyNeverReachesWire(t *testing.T) {
	d, srv := newFakeDesktop(t)
	s, log := startSession(t, srv.URL, false)
	waitConnected(t, s)

	s.SendText("   ")
	s.SendText("")
	time.Sleep(150 * time.Millisecond)

	select {
	case msg := <-d.inbound:
		t.Errorf("empty send reached the wire: %+v", msg)
	default:
	}
	if log.Len() != 0 {
		t.Errorf("history has %d entries, want 0", log.Len())
	}
}

func TestSend_AckResolvesToSent(t *testing.T) {
	d, srv := newFakeDesktop(t)
	s, log := startSession(t, srv.URL, false)
	waitConnected(t, s)

	s.SendText("hello desktop")
	msg := recvText(t, d)
	if msg.Mode != protocol.ModeRaw || msg.Text != "hello desktop" {
		t.Errorf("wire message = %+v", msg)
	}
	if msg.ID == "" {
		t.Error("outbound message missing correlation id")
	}

	d.push(protocol.ServerMessage{Type: protocol.TypeAck, ID: msg.ID, Text: msg.Text, Mode: protocol.ModeRaw})
	waitEvent(t, s, "send re-enabled", func(e Event) bool {
		se, ok := e.(SendStateEvent)
		return ok && se.Enabled
	})

	e := log.Snapshot()[0]
	if e.Status != history.StatusSent {
		t.Errorf("entry status = %q, want sent", e.Status)
	}
}

func TestSend_TimeoutMarksError(t *testing.T) {
	d, srv := newFakeDesktop(t)
	s, log := startSession(t, srv.URL, false)
	waitConnected(t, s)

	s.SendText("no ack coming")
	recvText(t, d)

	// No ack: the 15s-class timer (shrunk here) must re-enable send and
	// mark the entry failed, never leave it ambiguous.
	waitEvent(t, s, "send re-enabled after timeout", func(e Event) bool {
		se, ok := e.(SendStateEvent)
		return ok && se.Enabled
	})
	e := log.Snapshot()[0]
	if e.Status != history.StatusError {
		t.Errorf("entry status after timeout = %q, want error", e.Status)
	}
}

func TestTransform_PreviewResolution(t *testing.T) {
	d, srv := newFakeDesktop(t)
	s, log := startSession(t, srv.URL, true)
	waitConnected(t, s)
	waitEvent(t, s, "ai availability", func(e Event) bool {
		ae, ok := e.(AvailabilityEvent)
		return ok && ae.AIAvailable
	})

	s.Transform("A", protocol.ModeTidy)
	msg := recvText(t, d)
	if msg.Mode != protocol.ModeTidy || msg.Text != "A" {
		t.Errorf("wire message = %+v", msg)
	}

	d.push(protocol.ServerMessage{Type: protocol.TypeAIPreview, ID: msg.ID, Text: "B", Original: "A", Mode: protocol.ModeTidy})

	ie := waitEvent(t, s, "input repopulation", func(e Event) bool {
		_, ok := e.(InputEvent)
		return ok
	}).(InputEvent)
	if ie.Text != "B" {
		t.Errorf("input repopulated with %q, want B", ie.Text)
	}

	e := log.Snapshot()[0]
	if e.Status != history.StatusPreview || e.Processed != "B" || e.Original != "A" {
		t.Errorf("entry = %+v, want preview B/A", e)
	}
}

func TestTransform_TimeoutRestoresOriginal(t *testing.T) {
	d, srv := newFakeDesktop(t)
	s, log := startSession(t, srv.URL, true)
	waitConnected(t, s)
	waitEvent(t, s, "ai availability", func(e Event) bool {
		ae, ok := e.(AvailabilityEvent)
		return ok && ae.AIAvailable
	})

	s.Transform("original words", protocol.ModeFormal)
	recvText(t, d)

	ie := waitEvent(t, s, "input restore after timeout", func(e Event) bool {
		_, ok := e.(InputEvent)
		return ok
	}).(InputEvent)
	if ie.Text != "original words" {
		t.Errorf("restored input = %q, want original words", ie.Text)
	}
	waitEvent(t, s, "transform idle", func(e Event) bool {
		te, ok := e.(TransformStateEvent)
		return ok && !te.Busy
	})
	if st := log.Snapshot()[0].Status; st != history.StatusError {
		t.Errorf("entry status = %q, want error", st)
	}
}

func TestSend_SupersedesPendingTransform(t *testing.T) {
	d, srv := newFakeDesktop(t)
	s, log := startSession(t, srv.URL, true)
	waitConnected(t, s)
	waitEvent(t, s, "ai availability", func(e Event) bool {
		ae, ok := e.(AvailabilityEvent)
		return ok && ae.AIAvailable
	})

	s.Transform("draft", protocol.ModeTidy)
	recvText(t, d)

	// The raw send displaces the in-flight transform. The transform's entry
	// must finish terminally and the busy affordance must release even though
	// no resolution for it will ever arrive.
	s.SendText("final")
	msg := recvText(t, d)
	waitEvent(t, s, "transform released after displacement", func(e Event) bool {
		te, ok := e.(TransformStateEvent)
		return ok && !te.Busy
	})

	d.push(protocol.ServerMessage{Type: protocol.TypeAck, ID: msg.ID})
	waitEvent(t, s, "ack for raw send", func(e Event) bool {
		se, ok := e.(SendStateEvent)
		return ok && se.Enabled
	})

	entries := log.Snapshot()
	if len(entries) != 2 {
		t.Fatalf("history has %d entries, want 2", len(entries))
	}
	if entries[0].Status != history.StatusSent {
		t.Errorf("raw entry status = %q, want sent", entries[0].Status)
	}
	displaced := entries[1]
	if !displaced.Terminal() {
		t.Errorf("displaced transform entry never finished: status = %q", displaced.Status)
	}
	if displaced.Status != history.StatusError {
		t.Errorf("displaced transform entry status = %q, want error", displaced.Status)
	}
}

func TestTransform_RequiresAvailability(t *testing.T) {
	d, srv := newFakeDesktop(t)
	s, _ := startSession(t, srv.URL, false) // AI not advertised
	waitConnected(t, s)

	s.Transform("text", protocol.ModeTidy)
	time.Sleep(150 * time.Millisecond)
	select {
	case msg := <-d.inbound:
		t.Errorf("transform reached the wire without availability: %+v", msg)
	default:
	}
}

func TestInbound_MalformedDropped(t *testing.T) {
	d, srv := newFakeDesktop(t)
	s, log := startSession(t, srv.URL, false)
	waitConnected(t, s)

	s.SendText("still pending")
	msg := recvText(t, d)

	// Garbage and unknown types must not kill the connection or the slot.
	d.mu.Lock()
	d.conns[len(d.conns)-1].WriteMessage(websocket.TextMessage, []byte("{not json"))
	d.mu.Unlock()
	d.push(map[string]string{"type": "mystery"})

	d.push(protocol.ServerMessage{Type: protocol.TypeAck, ID: msg.ID})
	waitEvent(t, s, "ack after garbage", func(e Event) bool {
		se, ok := e.(SendStateEvent)
		return ok && se.Enabled
	})
	if st := log.Snapshot()[0].Status; st != history.StatusSent {
		t.Errorf("entry status = %q, want sent", st)
	}
	if n := d.connCount(); n != 1 {
		t.Errorf("connection count = %d, want 1 (no reconnect)", n)
	}
}

func TestInbound_SupersededCorrelationDropped(t *testing.T) {
	d, srv := newFakeDesktop(t)
	s, log := startSession(t, srv.URL, false)
	waitConnected(t, s)

	s.SendText("first")
	first := recvText(t, d)
	s.SendText("second") // supersedes the slot
	second := recvText(t, d)

	// A late resolution for the superseded request must not resolve the
	// new slot.
	d.push(protocol.ServerMessage{Type: protocol.TypeAck, ID: first.ID})
	time.Sleep(100 * time.Millisecond)
	if st := log.Snapshot()[0].Status; st != history.StatusSending {
		t.Errorf("newest entry resolved by stale ack: status = %q", st)
	}

	d.push(protocol.ServerMessage{Type: protocol.TypeAck, ID: second.ID})
	waitEvent(t, s, "ack for current request", func(e Event) bool {
		se, ok := e.(SendStateEvent)
		return ok && se.Enabled
	})
	if st := log.Snapshot()[0].Status; st != history.StatusSent {
		t.Errorf("newest entry = %q, want sent", st)
	}
}

func TestCommand_OnlyWhenOpen(t *testing.T) {
	d, srv := newFakeDesktop(t)
	s, _ := startSession(t, srv.URL, false)

	// Not connected yet: command is dropped silently.
	s.Command(protocol.CmdEnter)
	time.Sleep(100 * time.Millisecond)
	select {
	case <-d.commands:
		t.Fatal("command reached the wire while closed")
	default:
	}

	waitConnected(t, s)
	s.Command(protocol.CmdEnter)
	select {
	case cmd := <-d.commands:
		if cmd.Text != protocol.CmdEnter {
			t.Errorf("command = %q, want enter", cmd.Text)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("command never reached the desktop")
	}
}
