package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ginkgo-talk/gtalk-remote/internal/i18n"
)

// Key bindings. The desktop shortcut keys mirror the web client's shortcut
// buttons; everything else drives the local input surface.
const (
	keySend      = "ctrl+s"
	keyTidy      = "ctrl+t"
	keyFormal    = "ctrl+f"
	keyTranslate = "ctrl+r"

	keyClearDesktop   = "f5"
	keyEnterDesktop   = "f6"
	keyNewlineDesktop = "f7"
	keyUndoDesktop    = "f8"
	keyTabDesktop     = "f9"
	keyPasteDesktop   = "f10"
	keyEscapeDesktop  = "f12"

	keyClearHistory = "ctrl+x"
	keyLanguage     = "ctrl+g"
)

func key(msg tea.KeyMsg, want string) bool {
	return msg.String() == want
}

func i18nLanguages() []string { return i18n.Languages() }
