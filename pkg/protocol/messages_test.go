package protocol

import "testing"

func TestParseType(t *testing.T) {
	typ, err := ParseType([]byte(`{"type":"ack","id":"abc"}`))
	if err != nil {
		t.Fatalf("ParseType: %v", err)
	}
	if typ != TypeAck {
		t.Errorf("type = %q, want %q", typ, TypeAck)
	}

	if _, err := ParseType([]byte(`{not json`)); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestValidMode(t *testing.T) {
	for _, mode := range append([]string{ModeRaw}, TransformModes...) {
		if !ValidMode(mode) {
			t.Errorf("ValidMode(%q) = false", mode)
		}
	}
	if ValidMode("shout") {
		t.Error("ValidMode accepted unknown mode")
	}
}

func TestValidCommand(t *testing.T) {
	for _, c := range Commands {
		if !ValidCommand(c) {
			t.Errorf("ValidCommand(%q) = false", c)
		}
	}
	if ValidCommand("reboot") {
		t.Error("ValidCommand accepted unknown command")
	}
}
