// Package i18n provides localized UI strings (zh-CN and en-US) with a
// persisted language selection. Lookups never fail: missing keys fall back
// to zh-CN, then to the key itself.
package i18n

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
)

const langFile = "lang"

var supported = []language.Tag{
	language.MustParse("zh-CN"), // first = fallback
	language.MustParse("en-US"),
}

var matcher = language.NewMatcher(supported)

// Catalog resolves message keys for a selected language.
type Catalog struct {
	dir  string // state dir holding the persisted selection
	lang string // "zh-CN" or "en-US"
}

// New loads the persisted language from dir, or picks one from the
// environment locale (LC_ALL/LC_MESSAGES/LANG) when none is stored.
func New(dir string) *Catalog {
	c := &Catalog{dir: dir, lang: "zh-CN"}
	if data, err := os.ReadFile(filepath.Join(dir, langFile)); err == nil {
		if lang := strings.TrimSpace(string(data)); hasLang(lang) {
			c.lang = lang
			return c
		}
	}
	c.lang = matchEnv()
	return c
}

// matchEnv picks the best supported language for the process locale.
func matchEnv() string {
	for _, k := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(k)
		if v == "" {
			continue
		}
		// "zh_CN.UTF-8" → "zh-CN"
		v = strings.SplitN(v, ".", 2)[0]
		v = strings.ReplaceAll(v, "_", "-")
		tag, err := language.Parse(v)
		if err != nil {
			continue
		}
		_, idx, conf := matcher.Match(tag)
		if conf > language.No {
			return supported[idx].String()
		}
	}
	return "zh-CN"
}

func hasLang(lang string) bool {
	_, ok := messages[lang]
	return ok
}

// Lang returns the active language tag.
func (c *Catalog) Lang() string { return c.lang }

// Languages lists the supported language tags.
func Languages() []string {
	out := make([]string, len(supported))
	for i, t := range supported {
		out[i] = t.String()
	}
	return out
}

// SetLang switches and persists the language. Unknown tags are ignored.
func (c *Catalog) SetLang(lang string) error {
	if !hasLang(lang) {
		return nil
	}
	c.lang = lang
	if err := os.MkdirAll(c.dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, langFile), []byte(lang+"\n"), 0600)
}

// T resolves a dotted message key, e.g. "pair.msgNeedCode". vars replace
// {name} placeholders.
func (c *Catalog) T(key string, vars ...map[string]string) string {
	val, ok := messages[c.lang][key]
	if !ok {
		val, ok = messages["zh-CN"][key]
	}
	if !ok {
		return key
	}
	for _, m := range vars {
		for name, repl := range m {
			val = strings.ReplaceAll(val, "{"+name+"}", repl)
		}
	}
	return val
}
