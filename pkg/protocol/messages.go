// Package protocol defines the wire format spoken over the Ginkgo Talk
// desktop's /ws endpoint. Importable by other clients.
package protocol

import "encoding/json"

// Message types sent client → desktop.
const (
	TypeText    = "text"
	TypeCommand = "command"
)

// Message types pushed desktop → client.
const (
	TypeAck        = "ack"
	TypeAIPreview  = "ai_preview"
	TypeProcessing = "processing"
	TypeAIError    = "ai_error"
	TypeError      = "error"
)

// TextMessage asks the desktop to type text, either verbatim (ModeRaw) or
// after running it through the configured AI mode. ID is a client-generated
// correlation token; desktops that understand it echo it back on the
// resolution message.
type TextMessage struct {
	Type string `json:"type"` // always "text"
	ID   string `json:"id,omitempty"`
	Text string `json:"text"`
	Mode string `json:"mode"`
}

// CommandMessage asks the desktop to inject a discrete keyboard action.
type CommandMessage struct {
	Type string `json:"type"` // always "command"
	Text string `json:"text"` // command name, see Commands
}

// ServerMessage is the union of every message the desktop pushes. Fields not
// used by a given type are left at their zero value.
type ServerMessage struct {
	Type     string `json:"type"`
	ID       string `json:"id,omitempty"` // echoed correlation token, optional
	Text     string `json:"text,omitempty"`
	Original string `json:"original,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ParseType extracts the message type tag from raw JSON bytes.
func ParseType(data []byte) (string, error) {
	var raw struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", err
	}
	return raw.Type, nil
}
