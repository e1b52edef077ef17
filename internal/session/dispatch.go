package session

import (
	"encoding/json"
	"log/slog"

	"github.com/ginkgo-talk/gtalk-remote/internal/history"
	"github.com/ginkgo-talk/gtalk-remote/internal/pairing"
	"github.com/ginkgo-talk/gtalk-remote/pkg/protocol"
)

// NotifyPairing forwards a pairing notice to collaborators. Wired as the
// coordinator's notify hook; safe to call from any goroutine.
func (s *Session) NotifyPairing(n pairing.Notice) {
	s.emit(PairingEvent{Notice: n})
}

// handleInbound classifies a server message and routes it. Malformed or
// unknown payloads are dropped and logged; they never terminate the
// connection or corrupt the pending slot.
func (s *Session) handleInbound(in inboundIntent) {
	if in.gen != s.connGen {
		return
	}

	var msg protocol.ServerMessage
	if err := json.Unmarshal(in.data, &msg); err != nil {
		slog.Warn("malformed server message dropped", "error", err)
		return
	}

	switch msg.Type {
	case protocol.TypeAck:
		s.resolveAck(msg)
	case protocol.TypeAIPreview:
		s.resolvePreview(msg)
	case protocol.TypeProcessing:
		// Intermediate only: status update, not a resolution.
		s.log.UpdateLastStatus(history.StatusProcessing, "")
		s.emit(HistoryEvent{})
	case protocol.TypeAIError:
		s.resolveAIError(msg)
	case protocol.TypeError:
		s.resolveError(msg)
	default:
		slog.Warn("unknown server message dropped", "type", msg.Type)
	}
}

// stale reports whether a resolution message carries a correlation token
// that does not match the outstanding slot. Messages without a token fall
// back to the FIFO rule: the next resolution belongs to the newest entry.
func (s *Session) stale(msg protocol.ServerMessage) bool {
	if msg.ID == "" || s.pending == nil {
		return false
	}
	if msg.ID != s.pending.id {
		slog.Warn("resolution for superseded request dropped", "id", msg.ID)
		return true
	}
	return false
}

func (s *Session) resolveAck(msg protocol.ServerMessage) {
	if s.stale(msg) {
		return
	}
	// A raw ack may still carry a server-side rewritten form.
	if msg.Original != "" && msg.Text != msg.Original && msg.Mode != protocol.ModeRaw {
		s.log.UpdateLast(msg.Text, msg.Original, history.StatusSent)
	} else {
		s.log.UpdateLastStatus(history.StatusSent, "")
	}
	s.clearPending()
	s.emit(SendStateEvent{Enabled: true})
	s.emit(HistoryEvent{})
}

func (s *Session) resolvePreview(msg protocol.ServerMessage) {
	if s.stale(msg) {
		return
	}
	s.log.UpdateLast(msg.Text, msg.Original, history.StatusPreview)
	s.clearPending()
	// Repopulate the input surface with the transformed text for editing.
	s.emit(InputEvent{Text: msg.Text})
	s.emit(AIResultEvent{Kind: "done", Mode: msg.Mode})
	s.emit(TransformStateEvent{Busy: false})
	s.emit(HistoryEvent{})
}

func (s *Session) resolveAIError(msg protocol.ServerMessage) {
	if s.stale(msg) {
		return
	}
	s.log.UpdateLastStatus(history.StatusAIError, msg.Error)
	s.clearPending()
	s.emit(AIResultEvent{Kind: "failed", Mode: msg.Mode})
	s.emit(TransformStateEvent{Busy: false})
	s.emit(SendStateEvent{Enabled: true})
	s.emit(HistoryEvent{})
}

func (s *Session) resolveError(msg protocol.ServerMessage) {
	if s.stale(msg) {
		return
	}
	s.log.UpdateLastStatus(history.StatusError, msg.Error)
	s.clearPending()
	s.emit(SendStateEvent{Enabled: true})
	s.emit(HistoryEvent{})
}
