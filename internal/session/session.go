// Package session owns the persistent connection to the desktop and the
// single in-flight request slot.
//
// All mutable session state (connection handle, pending request, timers,
// availability flags) is confined to one run loop goroutine. WebSocket
// reads, timer firings, and user intents arrive as messages on a single
// internal channel, so events are processed strictly in arrival order and
// no two timers for the same purpose are ever armed at once.
package session

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/ginkgo-talk/gtalk-remote/internal/api"
	"github.com/ginkgo-talk/gtalk-remote/internal/config"
	"github.com/ginkgo-talk/gtalk-remote/internal/history"
)

// ConnState is the connection lifecycle state.
type ConnState int

const (
	StateIdle ConnState = iota
	StateConnecting
	StateOpen
	StateClosed
)

// Pairer is the slice of the pairing coordinator the session needs.
type Pairer interface {
	EnsurePaired(ctx context.Context) bool
	SubmitCode(ctx context.Context, code string) error
}

// StatusFetcher refreshes the desktop's availability flags after connect.
type StatusFetcher interface {
	FetchStatus(ctx context.Context) (api.Status, error)
}

// Credentials supplies the token and device id attached to the /ws URL.
type Credentials interface {
	Token() string
	DeviceID() (string, error)
}

// Options tunes the session timers. Zero values take the protocol defaults;
// tests shrink them.
type Options struct {
	ConnectTimeout   time.Duration
	ReconnectDelay   time.Duration
	RawSendTimeout   time.Duration
	TransformTimeout time.Duration
}

func (o *Options) fill() {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = config.ConnectTimeout
	}
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = config.ReconnectDelay
	}
	if o.RawSendTimeout <= 0 {
		o.RawSendTimeout = config.RawSendTimeout
	}
	if o.TransformTimeout <= 0 {
		o.TransformTimeout = config.TransformTimeout
	}
}

// Session is the connection manager, request tracker, and event dispatcher
// behind one run loop.
type Session struct {
	serverURL string
	creds     Credentials
	pairer    Pairer
	status    StatusFetcher
	log       *history.Log
	opts      Options

	// cmdLimiter throttles desktop key commands so a held-down key in the
	// UI cannot flood the wire.
	cmdLimiter *rate.Limiter

	intents chan intent    // user intents + internal transitions, loop input
	events  chan Event     // collaborator notifications, loop output
	done    chan struct{}  // closed when the loop exits
	ctx     context.Context
	cancel  context.CancelFunc

	// Loop-owned state. Only the run loop touches these.
	state     ConnState
	conn      *websocket.Conn
	connGen   int  // generation counter; stale dial/close events are dropped
	reconnect *time.Timer
	pending   *pendingRequest
	paired    bool
	ai        bool

	startOnce sync.Once
}

// New creates a session for the desktop at serverURL. The pairing
// coordinator's onPaired hook should call Connect on the returned session.
func New(serverURL string, creds Credentials, pairer Pairer, status StatusFetcher, log *history.Log, opts Options) *Session {
	opts.fill()
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		serverURL:  strings.TrimRight(serverURL, "/"),
		creds:      creds,
		pairer:     pairer,
		status:     status,
		log:        log,
		opts:       opts,
		cmdLimiter: rate.NewLimiter(rate.Limit(5), 10),
		intents:    make(chan intent, 64),
		events:     make(chan Event, 64),
		done:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// SetPairer installs the pairing coordinator. Must be called before Start.
// This breaks the construction cycle: the coordinator's hooks point back at
// the session (NotifyPairing, Connect).
func (s *Session) SetPairer(p Pairer) { s.pairer = p }

// Events returns the notification stream consumed by the UI. Events are
// dropped (with a warning) if the consumer falls more than a buffer behind.
func (s *Session) Events() <-chan Event { return s.events }

// Start launches the run loop. Safe to call once; subsequent calls no-op.
func (s *Session) Start() {
	s.startOnce.Do(func() { go s.run() })
}

// Close tears the session down: the connection is closed, timers stopped,
// and the run loop exits.
func (s *Session) Close() {
	s.cancel()
	<-s.done
}

// Connect requests a connection attempt. No-op while one is connecting or
// open (single-flight).
func (s *Session) Connect() { s.post(connectIntent{}) }

// SendText submits text for a raw send. Empty-after-trim text is ignored.
func (s *Session) SendText(text string) { s.post(sendIntent{text: text}) }

// Transform submits text for an AI rewrite in the given mode.
func (s *Session) Transform(text, mode string) { s.post(transformIntent{text: text, mode: mode}) }

// Command sends a desktop keyboard command (clear, enter, ...).
func (s *Session) Command(name string) { s.post(commandIntent{name: name}) }

// ClearHistory empties the history log.
func (s *Session) ClearHistory() { s.post(clearHistoryIntent{}) }

// SetServerURL points future connect attempts at a different desktop
// (config hot reload). The current connection is left alone.
func (s *Session) SetServerURL(url string) { s.post(setServerURLIntent{url: url}) }

// SubmitCode submits a pairing code. Runs the HTTP round-trip off the loop;
// the coordinator's onPaired hook triggers Connect on success.
func (s *Session) SubmitCode(code string) {
	go func() {
		if err := s.pairer.SubmitCode(s.ctx, code); err != nil {
			slog.Debug("pairing code submit failed", "error", err)
		}
	}()
}

// post delivers an intent to the run loop, dropping it if the session is
// shutting down.
func (s *Session) post(in intent) {
	select {
	case s.intents <- in:
	case <-s.ctx.Done():
	}
}

// emit pushes an event to collaborators without ever blocking the loop.
func (s *Session) emit(e Event) {
	select {
	case s.events <- e:
	default:
		slog.Warn("event buffer full, dropping event", "event", e)
	}
}

// wsURL derives this session's /ws endpoint.
func (s *Session) wsURL() (string, error) {
	return DeriveWSURL(s.serverURL, s.creds)
}

// DeriveWSURL turns a desktop base URL into the /ws endpoint, switching
// scheme for secure contexts and attaching the credentials as query
// parameters (the same scheme the HTTP API uses).
func DeriveWSURL(serverURL string, creds Credentials) (string, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"

	q := u.Query()
	if tok := creds.Token(); tok != "" {
		q.Set("token", tok)
	}
	id, err := creds.DeviceID()
	if err != nil {
		return "", err
	}
	if id != "" {
		q.Set("device_id", id)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
