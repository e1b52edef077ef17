package session

import "github.com/ginkgo-talk/gtalk-remote/internal/pairing"

// ConnStatus is the user-visible connection status.
type ConnStatus int

const (
	StatusConnecting ConnStatus = iota
	StatusConnected
	StatusDisconnected
	StatusConnectFailed
	StatusConnectTimeout
	StatusConnectError
)

func (s ConnStatus) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusDisconnected:
		return "disconnected"
	case StatusConnectFailed:
		return "connect-failed"
	case StatusConnectTimeout:
		return "connect-timeout"
	case StatusConnectError:
		return "connect-error"
	}
	return "unknown"
}

// Event is a notification pushed to collaborators (the TUI, CLI verbs).
// Collaborators never see wire messages, only these.
type Event interface{ isEvent() }

// StatusEvent reports a connection status change.
type StatusEvent struct {
	Status ConnStatus
}

// PairingEvent forwards a pairing notice for display.
type PairingEvent struct {
	Notice pairing.Notice
}

// AvailabilityEvent reports the desktop's pairing/AI availability flags
// after a status refresh.
type AvailabilityEvent struct {
	Paired      bool
	AIAvailable bool
}

// HistoryEvent signals that the history log changed and should re-render.
type HistoryEvent struct{}

// SendStateEvent reports whether the send affordance should be enabled.
type SendStateEvent struct {
	Enabled bool
}

// TransformStateEvent reports whether a transform is in flight (mode
// affordances disabled while true).
type TransformStateEvent struct {
	Busy bool
}

// InputEvent asks the input surface to replace its contents, e.g. with a
// transform preview or with the original text after a transform timeout.
type InputEvent struct {
	Text string
}

// AIResultEvent reports the outcome of a transform request.
type AIResultEvent struct {
	Kind string // "done", "failed", "timeout"
	Mode string
}

func (StatusEvent) isEvent()         {}
func (PairingEvent) isEvent()        {}
func (AvailabilityEvent) isEvent()   {}
func (HistoryEvent) isEvent()        {}
func (SendStateEvent) isEvent()      {}
func (TransformStateEvent) isEvent() {}
func (InputEvent) isEvent()          {}
func (AIResultEvent) isEvent()       {}
