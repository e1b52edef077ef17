package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ginkgo-talk/gtalk-remote/internal/api"
	"github.com/ginkgo-talk/gtalk-remote/internal/config"
	"github.com/ginkgo-talk/gtalk-remote/internal/history"
	"github.com/ginkgo-talk/gtalk-remote/pkg/protocol"
)

// intent is a message into the run loop: user intents, timer firings, and
// connection lifecycle transitions all arrive through the same channel.
type intent interface{ isIntent() }

type connectIntent struct{}

type setServerURLIntent struct{ url string }

type dialResultIntent struct {
	gen     int
	conn    *websocket.Conn
	failure ConnStatus // meaningful when conn is nil and not aborted
	aborted bool       // pairing gate failed; no retry
}

type connClosedIntent struct {
	gen int
	err error
}

type inboundIntent struct {
	gen  int
	data []byte
}

type sendIntent struct{ text string }

type transformIntent struct{ text, mode string }

type commandIntent struct{ name string }

type clearHistoryIntent struct{}

type requestTimeoutIntent struct{ id string }

type reconnectIntent struct{}

type statusResultIntent struct {
	status api.Status
	err    error
}

func (connectIntent) isIntent()        {}
func (setServerURLIntent) isIntent()   {}
func (dialResultIntent) isIntent()     {}
func (connClosedIntent) isIntent()     {}
func (inboundIntent) isIntent()        {}
func (sendIntent) isIntent()           {}
func (transformIntent) isIntent()      {}
func (commandIntent) isIntent()        {}
func (clearHistoryIntent) isIntent()   {}
func (requestTimeoutIntent) isIntent() {}
func (reconnectIntent) isIntent()      {}
func (statusResultIntent) isIntent()   {}

// pendingRequest is the single outstanding user action.
type pendingRequest struct {
	id        string // correlation token, echoed by newer desktops
	text      string // submitted text (restored on transform timeout)
	mode      string
	transform bool
	timer     *time.Timer
}

func (s *Session) run() {
	defer close(s.done)
	defer s.teardown()

	for {
		select {
		case <-s.ctx.Done():
			return
		case in := <-s.intents:
			s.handle(in)
		}
	}
}

func (s *Session) handle(in intent) {
	switch in := in.(type) {
	case connectIntent:
		s.handleConnect()
	case setServerURLIntent:
		// Takes effect on the next connect attempt.
		s.serverURL = strings.TrimRight(in.url, "/")
	case dialResultIntent:
		s.handleDialResult(in)
	case connClosedIntent:
		s.handleClosed(in)
	case inboundIntent:
		s.handleInbound(in)
	case sendIntent:
		s.handleSend(in.text)
	case transformIntent:
		s.handleTransform(in.text, in.mode)
	case commandIntent:
		s.handleCommand(in.name)
	case clearHistoryIntent:
		s.log.Clear()
		s.emit(HistoryEvent{})
	case requestTimeoutIntent:
		s.handleRequestTimeout(in.id)
	case reconnectIntent:
		s.reconnect = nil
		s.handleConnect()
	case statusResultIntent:
		s.handleStatusResult(in)
	}
}

// --- Connection manager ---

func (s *Session) handleConnect() {
	// Single-flight: never more than one live or pending connection.
	if s.state == StateConnecting || s.state == StateOpen {
		return
	}
	s.state = StateConnecting
	s.connGen++
	gen := s.connGen
	s.emit(StatusEvent{Status: StatusConnecting})

	// The URL is derived on the loop so a hot-reloaded server URL never
	// races the dial goroutine.
	wsURL, err := s.wsURL()
	if err != nil {
		slog.Error("bad server url", "error", err)
		s.state = StateIdle
		s.emit(StatusEvent{Status: StatusConnectFailed})
		return
	}

	go s.dial(gen, wsURL)
}

// dial runs off the loop: the pairing gate and the WebSocket handshake are
// both network round-trips. The result is posted back as a dialResultIntent.
func (s *Session) dial(gen int, wsURL string) {
	if !s.pairer.EnsurePaired(s.ctx) {
		// Pairing failure is surfaced through coordinator notices and is
		// not auto-retried; a fresh attempt comes from the user.
		s.post(dialResultIntent{gen: gen, aborted: true})
		return
	}

	dctx, cancel := context.WithTimeout(s.ctx, s.opts.ConnectTimeout)
	defer cancel()

	conn, resp, err := websocket.DefaultDialer.DialContext(dctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		failure := StatusConnectFailed
		if errors.Is(dctx.Err(), context.DeadlineExceeded) {
			failure = StatusConnectTimeout
		}
		slog.Warn("websocket connect failed", "error", err)
		s.post(dialResultIntent{gen: gen, failure: failure})
		return
	}
	s.post(dialResultIntent{gen: gen, conn: conn})
}

func (s *Session) handleDialResult(in dialResultIntent) {
	if in.gen != s.connGen || s.state != StateConnecting {
		// A stale attempt resolved after being superseded.
		if in.conn != nil {
			in.conn.Close()
		}
		return
	}

	switch {
	case in.aborted:
		// The pairing notices explain why; the status bar still has to stop
		// showing an attempt that is no longer running.
		s.state = StateIdle
		s.emit(StatusEvent{Status: StatusDisconnected})

	case in.conn == nil:
		s.state = StateIdle
		s.emit(StatusEvent{Status: in.failure})
		s.scheduleReconnect()

	default:
		s.state = StateOpen
		s.conn = in.conn
		s.cancelReconnect()
		s.emit(StatusEvent{Status: StatusConnected})
		go s.readLoop(in.gen, in.conn)
		go s.refreshStatus()
	}
}

// readLoop reads messages off the connection and feeds them to the loop.
// A read error of any kind means the connection is gone.
func (s *Session) readLoop(gen int, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.post(connClosedIntent{gen: gen, err: err})
			return
		}
		s.post(inboundIntent{gen: gen, data: data})
	}
}

func (s *Session) handleClosed(in connClosedIntent) {
	if in.gen != s.connGen {
		return
	}
	if in.err != nil && websocket.IsUnexpectedCloseError(in.err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
		slog.Warn("websocket read error", "error", in.err)
		s.emit(StatusEvent{Status: StatusConnectError})
	}
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.state = StateClosed
	s.emit(StatusEvent{Status: StatusDisconnected})
	s.scheduleReconnect()
}

// scheduleReconnect arms the single reconnect timer. A second request while
// one is pending is a no-op.
func (s *Session) scheduleReconnect() {
	if s.reconnect != nil {
		return
	}
	s.reconnect = time.AfterFunc(s.opts.ReconnectDelay, func() {
		s.post(reconnectIntent{})
	})
}

func (s *Session) cancelReconnect() {
	if s.reconnect != nil {
		s.reconnect.Stop()
		s.reconnect = nil
	}
}

func (s *Session) refreshStatus() {
	ctx, cancel := context.WithTimeout(s.ctx, config.HTTPTimeout)
	defer cancel()
	st, err := s.status.FetchStatus(ctx)
	s.post(statusResultIntent{status: st, err: err})
}

func (s *Session) handleStatusResult(in statusResultIntent) {
	if in.err != nil {
		slog.Debug("status refresh failed", "error", in.err)
		return
	}
	s.paired = in.status.Paired
	s.ai = in.status.AIAvailable
	s.emit(AvailabilityEvent{Paired: s.paired, AIAvailable: s.ai})
}

// send writes a message if the connection is open. Only the loop calls it.
func (s *Session) send(v any) bool {
	if s.state != StateOpen || s.conn == nil {
		return false
	}
	if err := s.conn.WriteJSON(v); err != nil {
		slog.Warn("websocket write failed", "error", err)
		return false
	}
	return true
}

// --- Request tracker ---

func (s *Session) handleSend(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		// Never reaches the wire.
		return
	}

	// Newest submission supersedes whatever was in the slot.
	s.supersedePending()

	id := uuid.NewString()
	ok := s.send(protocol.TextMessage{
		Type: protocol.TypeText,
		ID:   id,
		Text: text,
		Mode: protocol.ModeRaw,
	})
	if !ok {
		// Failed dispatch: the entry goes straight to its terminal status.
		s.log.Add(text, history.StatusError, protocol.ModeRaw)
		s.emit(HistoryEvent{})
		return
	}

	s.log.Add(text, history.StatusSending, protocol.ModeRaw)
	s.pending = &pendingRequest{
		id:   id,
		text: text,
		mode: protocol.ModeRaw,
		timer: time.AfterFunc(s.opts.RawSendTimeout, func() {
			s.post(requestTimeoutIntent{id: id})
		}),
	}
	s.emit(SendStateEvent{Enabled: false})
	s.emit(HistoryEvent{})
}

func (s *Session) handleTransform(text, mode string) {
	text = strings.TrimSpace(text)
	if text == "" || !protocol.ValidMode(mode) || mode == protocol.ModeRaw {
		return
	}
	// Transforms additionally require the capability and a free slot; the
	// affordance layer disables the controls, the tracker just refuses.
	if s.state != StateOpen || !s.ai {
		return
	}
	if s.pending != nil && s.pending.transform {
		return
	}

	s.supersedePending()

	id := uuid.NewString()
	if !s.send(protocol.TextMessage{
		Type: protocol.TypeText,
		ID:   id,
		Text: text,
		Mode: mode,
	}) {
		s.log.Add(text, history.StatusError, mode)
		s.emit(HistoryEvent{})
		return
	}

	s.log.Add(text, history.StatusProcessing, mode)
	s.pending = &pendingRequest{
		id:        id,
		text:      text,
		mode:      mode,
		transform: true,
		timer: time.AfterFunc(s.opts.TransformTimeout, func() {
			s.post(requestTimeoutIntent{id: id})
		}),
	}
	s.emit(TransformStateEvent{Busy: true})
	s.emit(HistoryEvent{})
}

func (s *Session) handleCommand(name string) {
	if !protocol.ValidCommand(name) {
		slog.Warn("unknown desktop command", "command", name)
		return
	}
	if s.state != StateOpen {
		return
	}
	if !s.cmdLimiter.Allow() {
		slog.Warn("desktop command rate limited", "command", name)
		return
	}
	s.send(protocol.CommandMessage{Type: protocol.TypeCommand, Text: name})
}

// handleRequestTimeout reclaims the slot when no resolution arrived in time.
// Stale firings (the request already resolved or was superseded) are dropped.
func (s *Session) handleRequestTimeout(id string) {
	if s.pending == nil || s.pending.id != id {
		return
	}
	p := s.pending
	s.pending = nil

	// Timeout is a terminal transition: the entry is marked failed, never
	// left ambiguous.
	s.log.UpdateLastStatus(history.StatusError, "timeout")
	if p.transform {
		// Give the user their text back to edit and retry.
		s.emit(InputEvent{Text: p.text})
		s.emit(AIResultEvent{Kind: "timeout", Mode: p.mode})
		s.emit(TransformStateEvent{Busy: false})
	} else {
		s.emit(SendStateEvent{Enabled: true})
	}
	s.emit(HistoryEvent{})
	slog.Warn("request timed out", "mode", p.mode)
}

// clearPending stops the timeout timer and frees the slot.
func (s *Session) clearPending() {
	if s.pending == nil {
		return
	}
	s.pending.timer.Stop()
	s.pending = nil
}

// supersedePending finishes a request displaced by a newer submission. No
// resolution will ever be accepted for it, so its entry gets its terminal
// status here, and a displaced transform releases the busy affordance.
func (s *Session) supersedePending() {
	if s.pending == nil {
		return
	}
	p := s.pending
	s.clearPending()
	s.log.UpdateLastStatus(history.StatusError, "superseded")
	if p.transform {
		s.emit(TransformStateEvent{Busy: false})
	}
}

func (s *Session) teardown() {
	s.cancelReconnect()
	s.clearPending()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}
