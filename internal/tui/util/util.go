// Package util holds small key-event helpers shared by the text-entry
// surfaces.
package util

import (
	tea "github.com/charmbracelet/bubbletea"
)

// PrintableText returns the text a key press should insert into a text
// field, and whether the key carries any. Space arrives as its own key
// type with no runes, so it is mapped explicitly; everything else that
// inserts text arrives as KeyRunes (including pasted bracketed input).
func PrintableText(keyMsg tea.KeyMsg) (string, bool) {
	if keyMsg.String() == " " {
		return " ", true
	}
	if keyMsg.Type == tea.KeyRunes && len(keyMsg.Runes) > 0 {
		return string(keyMsg.Runes), true
	}
	return "", false
}
