package tui

import (
	"os"
	"strings"
	"sync"
)

// Some fonts render the Unicode affordances badly; PLANIFY_TUI_GLYPHS=ascii swaps them out.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

func applyGlyphPreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("PLANIFY_TUI_GLYPHS"))) {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	defer glyphsMu.RUnlock()
	return currentGlyphs
}

func pick(unicode, ascii string) string {
	if glyphs() == glyphSetASCII {
		return ascii
	}
	return unicode
}

func glyphPin() string    { return pick("⚑", "*") }
func glyphBullet() string { return pick("•", "*") }
func glyphArrow() string  { return pick("→", "->") }
func glyphHRule() string  { return pick("─", "-") }
func glyphClock() string  { return pick("⏰", "!") }
func glyphUnread() string { return pick("●", "o") }
