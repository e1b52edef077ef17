// Package pairing drives the handshake that turns a 4-digit pairing code
// into a session token.
//
// State machine: Unauthorized → AwaitingCode → Paired, with an error edge
// from any state back to AwaitingCode when the desktop rejects the token.
package pairing

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"sync"

	"github.com/ginkgo-talk/gtalk-remote/internal/api"
)

// State is the pairing lifecycle state.
type State int

const (
	// StateUnauthorized means no token is held.
	StateUnauthorized State = iota
	// StateAwaitingCode means a code must be entered (no confirmed token).
	StateAwaitingCode
	// StatePaired means the desktop has confirmed this device.
	StatePaired
)

func (s State) String() string {
	switch s {
	case StateUnauthorized:
		return "unauthorized"
	case StateAwaitingCode:
		return "awaiting-code"
	case StatePaired:
		return "paired"
	}
	return "unknown"
}

// Notice identifies a user-facing pairing event. The UI maps these to
// localized strings; the coordinator itself carries no display text.
type Notice int

const (
	NoticeNeedCode Notice = iota
	NoticeAuthExpired
	NoticeServiceUnavailable
	NoticeServiceUnreachable
	NoticeCodeFormat
	NoticeCodeInvalid
	NoticeRequestTimeout
	NoticePaired
)

// ErrBadFormat is returned by SubmitCode for codes that are not exactly
// four decimal digits. No network call is made.
var ErrBadFormat = errors.New("pairing code must be 4 digits")

var codeRe = regexp.MustCompile(`^\d{4}$`)

// TokenStore is the slice of the identity store the coordinator needs.
type TokenStore interface {
	Token() string
	SetToken(token string) error
}

// PairAPI is the slice of the HTTP client the coordinator needs.
type PairAPI interface {
	PairStatus(ctx context.Context) (bool, error)
	SubmitPair(ctx context.Context, code string) (string, error)
}

// Coordinator owns the pairing state machine.
type Coordinator struct {
	tokens TokenStore
	api    PairAPI
	notify func(Notice)
	// onPaired fires after a successful code submission so the session can
	// open its connection immediately.
	onPaired func()

	mu         sync.Mutex
	state      State
	submitting bool
}

// New creates a coordinator. notify and onPaired may be nil.
func New(tokens TokenStore, pairAPI PairAPI, notify func(Notice), onPaired func()) *Coordinator {
	c := &Coordinator{
		tokens:   tokens,
		api:      pairAPI,
		notify:   notify,
		onPaired: onPaired,
		state:    StateUnauthorized,
	}
	if tokens.Token() != "" {
		c.state = StateAwaitingCode
	}
	return c
}

// State returns the current pairing state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// EnsurePaired checks whether this device is paired with the desktop.
// It returns true only when the desktop confirms the pairing; every false
// return has already emitted the matching notice.
func (c *Coordinator) EnsurePaired(ctx context.Context) bool {
	if c.tokens.Token() == "" {
		c.setState(StateAwaitingCode)
		c.emit(NoticeNeedCode)
		return false
	}

	paired, err := c.api.PairStatus(ctx)
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		// Stale token. Clear it and go back to code entry.
		if serr := c.tokens.SetToken(""); serr != nil {
			slog.Warn("clear stale token failed", "error", serr)
		}
		c.setState(StateAwaitingCode)
		c.emit(NoticeAuthExpired)
		return false

	case errors.Is(err, api.ErrUnavailable):
		// Desktop answered but is broken; keep whatever state we had.
		c.emit(NoticeServiceUnavailable)
		return false

	case err != nil:
		// Unreachable or timed out.
		slog.Warn("pairing check failed", "error", err)
		c.emit(NoticeServiceUnreachable)
		return false

	case !paired:
		c.setState(StateAwaitingCode)
		c.emit(NoticeNeedCode)
		return false
	}

	c.setState(StatePaired)
	return true
}

// SubmitCode submits a 4-digit pairing code to the desktop. Concurrent calls
// while one is in flight are no-ops. On success the returned token (if any)
// is stored and the onPaired hook fires.
func (c *Coordinator) SubmitCode(ctx context.Context, code string) error {
	if !codeRe.MatchString(code) {
		c.emit(NoticeCodeFormat)
		return ErrBadFormat
	}

	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return nil
	}
	c.submitting = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	token, err := c.api.SubmitPair(ctx, code)
	switch {
	case errors.Is(err, api.ErrRejected):
		c.setState(StateAwaitingCode)
		c.emit(NoticeCodeInvalid)
		return err
	case err != nil:
		slog.Warn("pairing submit failed", "error", err)
		c.setState(StateAwaitingCode)
		c.emit(NoticeRequestTimeout)
		return err
	}

	if token != "" {
		if serr := c.tokens.SetToken(token); serr != nil {
			slog.Error("store session token failed", "error", serr)
		}
	}
	c.setState(StatePaired)
	c.emit(NoticePaired)
	slog.Info("device paired")
	if c.onPaired != nil {
		c.onPaired()
	}
	return nil
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Coordinator) emit(n Notice) {
	if c.notify != nil {
		c.notify(n)
	}
}
