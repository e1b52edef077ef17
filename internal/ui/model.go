// Package ui is the interactive terminal front end. It is a pure consumer of
// session events and history snapshots; all protocol logic stays in the
// session package.
package ui

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ginkgo-talk/gtalk-remote/internal/history"
	"github.com/ginkgo-talk/gtalk-remote/internal/i18n"
	"github.com/ginkgo-talk/gtalk-remote/internal/session"
)

// sessionEventMsg wraps a session event for the bubbletea loop.
type sessionEventMsg struct {
	event session.Event
}

// eventsClosedMsg signals the session shut down.
type eventsClosedMsg struct{}

// Model is the bubbletea model for the remote-input screen.
type Model struct {
	sess *session.Session
	log  *history.Log
	cat  *i18n.Catalog

	input     textarea.Model
	pairInput textinput.Model

	width  int
	height int

	// Mirrors of session state, updated only via events.
	statusKind  session.ConnStatus
	statusText  string
	aiAvailable bool
	aiBusy      bool
	aiStatus    string // transient AI result line
	sendEnabled bool
	pairing     bool   // pairing card visible
	pairingMsg  string
}

// New builds the model. The session must already be started.
func New(sess *session.Session, log *history.Log, cat *i18n.Catalog) Model {
	input := textarea.New()
	input.Placeholder = cat.T("input.placeholder")
	input.ShowLineNumbers = false
	input.SetHeight(4)
	input.Focus()

	pairInput := textinput.New()
	pairInput.Placeholder = cat.T("pair.inputPlaceholder")
	pairInput.CharLimit = 4
	pairInput.Width = 12

	return Model{
		sess:        sess,
		log:         log,
		cat:         cat,
		input:       input,
		pairInput:   pairInput,
		statusKind:  session.StatusConnecting,
		statusText:  cat.T("status.connecting"),
		sendEnabled: true,
	}
}

// Init kicks off the connection and starts pumping session events.
func (m Model) Init() tea.Cmd {
	m.sess.Connect()
	return m.waitEvent()
}

// waitEvent blocks on the session's event stream.
func (m Model) waitEvent() tea.Cmd {
	return func() tea.Msg {
		e, ok := <-m.sess.Events()
		if !ok {
			return eventsClosedMsg{}
		}
		return sessionEventMsg{event: e}
	}
}
