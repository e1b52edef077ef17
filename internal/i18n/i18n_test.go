package i18n

import (
	"testing"
)

func TestT_Lookup(t *testing.T) {
	c := New(t.TempDir())
	if err := c.SetLang("en-US"); err != nil {
		t.Fatal(err)
	}
	if got := c.T("status.connected"); got != "Connected" {
		t.Errorf("T(status.connected) = %q", got)
	}
}

func TestT_Interpolation(t *testing.T) {
	c := New(t.TempDir())
	c.SetLang("en-US")
	got := c.T("ai.done", map[string]string{"mode": "Tidy"})
	if got != "Tidy done, edit then send" {
		t.Errorf("interpolated = %q", got)
	}
}

func TestT_MissingKeyFallsBackToKey(t *testing.T) {
	c := New(t.TempDir())
	if got := c.T("no.such.key"); got != "no.such.key" {
		t.Errorf("missing key = %q, want the key itself", got)
	}
}

func TestSetLang_Persists(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	if err := c.SetLang("en-US"); err != nil {
		t.Fatal(err)
	}

	again := New(dir)
	if again.Lang() != "en-US" {
		t.Errorf("persisted lang = %q, want en-US", again.Lang())
	}
}

func TestSetLang_UnknownIgnored(t *testing.T) {
	c := New(t.TempDir())
	before := c.Lang()
	if err := c.SetLang("fr-FR"); err != nil {
		t.Fatal(err)
	}
	if c.Lang() != before {
		t.Errorf("lang changed to %q on unknown tag", c.Lang())
	}
}

func TestMatchEnv(t *testing.T) {
	cases := []struct {
		env  string
		want string
	}{
		{"zh_CN.UTF-8", "zh-CN"},
		{"en_US.UTF-8", "en-US"},
		{"en_GB", "en-US"},
		{"", "zh-CN"},
	}
	for _, tc := range cases {
		t.Setenv("LC_ALL", tc.env)
		t.Setenv("LC_MESSAGES", "")
		t.Setenv("LANG", "")
		if got := matchEnv(); got != tc.want {
			t.Errorf("matchEnv(LC_ALL=%q) = %q, want %q", tc.env, got, tc.want)
		}
	}
}
