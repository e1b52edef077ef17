package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ginkgo-talk/gtalk-remote/internal/history"
	"github.com/ginkgo-talk/gtalk-remote/internal/session"
	"github.com/ginkgo-talk/gtalk-remote/pkg/protocol"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))

	statusOKStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusWarnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	statusErrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(0, 2)

	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	modeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	entryDoneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	entryErrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	entryWaitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// maxHistoryRows bounds the rendered history pane.
const maxHistoryRows = 8

// View renders the whole screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.cat.T("app.title")))
	b.WriteString("  ")
	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")

	if m.pairing {
		b.WriteString(m.renderPairCard())
		b.WriteString("\n\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.aiStatus != "" {
		b.WriteString(m.aiStatus)
		b.WriteString("\n")
	}
	b.WriteString(m.renderHelp())
	b.WriteString("\n\n")
	b.WriteString(m.renderHistory())

	return b.String()
}

func (m Model) renderStatus() string {
	switch m.statusKind {
	case session.StatusConnected:
		return statusOKStyle.Render("● " + m.statusText)
	case session.StatusConnecting, session.StatusDisconnected:
		return statusWarnStyle.Render("● " + m.statusText)
	default:
		return statusErrStyle.Render("● " + m.statusText)
	}
}

func (m Model) renderPairCard() string {
	lines := []string{
		titleStyle.Render(m.cat.T("pair.title")),
		m.pairingMsg,
		m.pairInput.View(),
		dimStyle.Render(m.cat.T("pair.hintNeedCode")),
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderHelp() string {
	parts := []string{
		"^S " + m.cat.T("send.send"),
		"^T " + m.cat.T("mode.tidy"),
		"^F " + m.cat.T("mode.formal"),
		"^R " + m.cat.T("mode.translate"),
		"F5 " + m.cat.T("shortcut.clear"),
		"F6 Enter",
		"F8 " + m.cat.T("shortcut.undo"),
		"F10 " + m.cat.T("shortcut.paste"),
		"^X " + m.cat.T("history.clear"),
		"^G Lang",
	}
	if !m.aiAvailable {
		parts = append(parts, dimStyle.Render(m.cat.T("ai.disabledHint")))
	}
	return dimStyle.Render(strings.Join(parts, " · "))
}

func (m Model) renderHistory() string {
	entries := m.log.Snapshot()
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.cat.T("history.title")))
	b.WriteString("\n")

	if len(entries) == 0 {
		b.WriteString(dimStyle.Render(m.cat.T("history.empty")))
		return b.String()
	}

	for i, e := range entries {
		if i >= maxHistoryRows {
			b.WriteString(dimStyle.Render(fmt.Sprintf("… %d more", len(entries)-maxHistoryRows)))
			break
		}
		b.WriteString(m.renderEntry(e))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderEntry(e history.Entry) string {
	text := e.Text
	if e.Processed != "" && e.Processed != e.Original {
		text = e.Processed + dimStyle.Render("  ("+m.cat.T("history.original")+": "+e.Original+")")
	}

	var tag string
	switch e.Status {
	case history.StatusSent, history.StatusPreview:
		tag = entryDoneStyle.Render(m.statusTag(e.Status))
	case history.StatusError, history.StatusAIError:
		tag = entryErrStyle.Render(m.statusTag(e.Status))
	default:
		tag = entryWaitStyle.Render(m.statusTag(e.Status))
	}

	meta := dimStyle.Render(e.Time.Format("15:04:05")) + " " + tag
	if e.Mode != protocol.ModeRaw {
		meta += " " + modeStyle.Render(m.modeTag(e.Mode))
	}
	return meta + "  " + text
}

func (m Model) statusTag(status string) string {
	switch status {
	case history.StatusSent:
		return m.cat.T("history.sent")
	case history.StatusSending:
		return m.cat.T("history.sending")
	case history.StatusProcessing:
		return m.cat.T("history.processing")
	case history.StatusPreview:
		return m.cat.T("history.preview")
	case history.StatusAIError:
		return m.cat.T("history.aiError")
	case history.StatusError:
		return m.cat.T("history.error")
	}
	return status
}

func (m Model) modeTag(mode string) string {
	switch mode {
	case protocol.ModeTidy:
		return m.cat.T("history.modeTidy")
	case protocol.ModeFormal:
		return m.cat.T("history.modeFormal")
	case protocol.ModeTranslate:
		return m.cat.T("history.modeTranslate")
	}
	return m.cat.T("history.modeRaw")
}
