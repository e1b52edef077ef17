package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ginkgo-talk/gtalk-remote/internal/pairing"
	"github.com/ginkgo-talk/gtalk-remote/internal/session"
	"github.com/ginkgo-talk/gtalk-remote/pkg/protocol"
)

// Update routes key input and session events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(msg.Width - 4)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case sessionEventMsg:
		m = m.applyEvent(msg.event)
		return m, m.waitEvent()

	case eventsClosedMsg:
		return m, tea.Quit
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.pairing {
		switch msg.Type {
		case tea.KeyEnter:
			m.sess.SubmitCode(m.pairInput.Value())
			m.pairInput.SetValue("")
			return m, nil
		default:
			var cmd tea.Cmd
			m.pairInput, cmd = m.pairInput.Update(msg)
			return m, cmd
		}
	}

	switch {
	case key(msg, keySend):
		if m.sendEnabled && !m.aiBusy {
			text := m.input.Value()
			m.sess.SendText(text)
			m.input.Reset()
			m.aiStatus = ""
		}
		return m, nil

	case key(msg, keyTidy):
		return m.startTransform(protocol.ModeTidy)
	case key(msg, keyFormal):
		return m.startTransform(protocol.ModeFormal)
	case key(msg, keyTranslate):
		return m.startTransform(protocol.ModeTranslate)

	case key(msg, keyClearDesktop):
		m.sess.Command(protocol.CmdClear)
		return m, nil
	case key(msg, keyEnterDesktop):
		m.sess.Command(protocol.CmdEnter)
		return m, nil
	case key(msg, keyNewlineDesktop):
		m.sess.Command(protocol.CmdShiftEnter)
		return m, nil
	case key(msg, keyUndoDesktop):
		m.sess.Command(protocol.CmdUndo)
		return m, nil
	case key(msg, keyTabDesktop):
		m.sess.Command(protocol.CmdTab)
		return m, nil
	case key(msg, keyPasteDesktop):
		m.sess.Command(protocol.CmdPaste)
		return m, nil
	case key(msg, keyEscapeDesktop):
		m.sess.Command(protocol.CmdEscape)
		return m, nil

	case key(msg, keyClearHistory):
		m.sess.ClearHistory()
		return m, nil

	case key(msg, keyLanguage):
		m = m.toggleLanguage()
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.pairing {
		m.pairInput, cmd = m.pairInput.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m Model) startTransform(mode string) (tea.Model, tea.Cmd) {
	if !m.aiAvailable {
		m.aiStatus = m.cat.T("ai.disabledHint")
		return m, nil
	}
	if m.aiBusy {
		return m, nil
	}
	m.sess.Transform(m.input.Value(), mode)
	m.input.Reset()
	return m, nil
}

func (m Model) toggleLanguage() Model {
	langs := i18nLanguages()
	next := langs[0]
	for i, l := range langs {
		if l == m.cat.Lang() {
			next = langs[(i+1)%len(langs)]
			break
		}
	}
	m.cat.SetLang(next)
	m.input.Placeholder = m.cat.T("input.placeholder")
	m.pairInput.Placeholder = m.cat.T("pair.inputPlaceholder")
	m.statusText = m.statusLabel(m.statusKind)
	return m
}

// applyEvent folds a session event into the model.
func (m Model) applyEvent(e session.Event) Model {
	switch e := e.(type) {
	case session.StatusEvent:
		m.statusKind = e.Status
		m.statusText = m.statusLabel(e.Status)
		if e.Status == session.StatusConnected {
			m.pairing = false
		}

	case session.PairingEvent:
		m = m.applyPairingNotice(e.Notice)

	case session.AvailabilityEvent:
		m.aiAvailable = e.AIAvailable

	case session.SendStateEvent:
		m.sendEnabled = e.Enabled

	case session.TransformStateEvent:
		m.aiBusy = e.Busy
		if e.Busy {
			m.aiStatus = m.cat.T("ai.processing")
		}

	case session.InputEvent:
		m.input.SetValue(e.Text)
		m.input.Focus()

	case session.AIResultEvent:
		switch e.Kind {
		case "done":
			m.aiStatus = m.cat.T("ai.done", map[string]string{"mode": m.cat.T("mode." + e.Mode)})
		case "failed":
			m.aiStatus = m.cat.T("ai.failed")
		case "timeout":
			m.aiStatus = m.cat.T("ai.timeout")
		}

	case session.HistoryEvent:
		// History is rendered from a snapshot in View; nothing to fold.
	}
	return m
}

func (m Model) applyPairingNotice(n pairing.Notice) Model {
	switch n {
	case pairing.NoticeNeedCode:
		m.pairing = true
		m.pairingMsg = m.cat.T("pair.msgNeedCode")
		m.pairInput.Focus()
	case pairing.NoticeAuthExpired:
		m.pairing = true
		m.pairingMsg = m.cat.T("pair.msgAuthExpiredNeedCode")
		m.pairInput.Focus()
	case pairing.NoticeServiceUnavailable:
		m.pairing = true
		m.pairingMsg = m.cat.T("pair.msgServiceUnavailable")
	case pairing.NoticeServiceUnreachable:
		m.pairing = true
		m.pairingMsg = m.cat.T("pair.msgServiceConnectFailed")
	case pairing.NoticeCodeFormat:
		m.pairingMsg = m.cat.T("pair.msgCodeInvalidFormat")
	case pairing.NoticeCodeInvalid:
		m.pairingMsg = m.cat.T("pair.msgCodeInvalid")
	case pairing.NoticeRequestTimeout:
		m.pairingMsg = m.cat.T("pair.msgRequestFailed")
	case pairing.NoticePaired:
		m.pairing = false
		m.pairingMsg = ""
		m.input.Focus()
	}
	return m
}

func (m Model) statusLabel(s session.ConnStatus) string {
	switch s {
	case session.StatusConnecting:
		return m.cat.T("status.connecting")
	case session.StatusConnected:
		return m.cat.T("status.connected")
	case session.StatusDisconnected:
		return m.cat.T("status.disconnected")
	case session.StatusConnectFailed:
		return m.cat.T("status.connectFailed")
	case session.StatusConnectTimeout:
		return m.cat.T("status.connectTimeout")
	case session.StatusConnectError:
		return m.cat.T("status.connectError")
	}
	return ""
}
