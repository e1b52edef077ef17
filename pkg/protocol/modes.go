package protocol

// Text modes. ModeRaw types the text verbatim; the rest are AI rewrite modes
// executed by the desktop before typing.
const (
	ModeRaw       = "raw"
	ModeTidy      = "tidy"      // dedupe, drop fillers, add punctuation
	ModeFormal    = "formal"    // speech → formal writing
	ModeTranslate = "translate" // zh ⇄ en auto translation
)

// TransformModes lists the AI rewrite modes in display order.
var TransformModes = []string{ModeTidy, ModeFormal, ModeTranslate}

// ValidMode reports whether mode is ModeRaw or a known transform mode.
func ValidMode(mode string) bool {
	if mode == ModeRaw {
		return true
	}
	for _, m := range TransformModes {
		if m == mode {
			return true
		}
	}
	return false
}

// Desktop keyboard commands accepted in CommandMessage.Text.
const (
	CmdClear      = "clear"       // Ctrl+A, Delete
	CmdEnter      = "enter"
	CmdShiftEnter = "shift_enter" // newline without submit
	CmdUndo       = "ctrl_z"
	CmdTab        = "tab"
	CmdPaste      = "ctrl_v"
	CmdEscape     = "escape"
)

// Commands lists every keyboard command the desktop understands.
var Commands = []string{CmdClear, CmdEnter, CmdShiftEnter, CmdUndo, CmdTab, CmdPaste, CmdEscape}

// ValidCommand reports whether name is a known keyboard command.
func ValidCommand(name string) bool {
	for _, c := range Commands {
		if c == name {
			return true
		}
	}
	return false
}
