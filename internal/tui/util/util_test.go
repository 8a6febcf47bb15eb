package util

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestPrintableText(t *testing.T) {
	tests := []struct {
		name     string
		keyMsg   tea.KeyMsg
		expected string
		ok       bool
	}{
		{
			name:     "space key",
			keyMsg:   tea.KeyMsg{Type: tea.KeySpace},
			expected: " ",
			ok:       true,
		},
		{
			name:     "single letter",
			keyMsg:   tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}},
			expected: "a",
			ok:       true,
		},
		{
			name:     "at symbol",
			keyMsg:   tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'@'}},
			expected: "@",
			ok:       true,
		},
		{
			name:     "unicode rune",
			keyMsg:   tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'é'}},
			expected: "é",
			ok:       true,
		},
		{
			name:     "bracketed paste run",
			keyMsg:   tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hello world")},
			expected: "hello world",
			ok:       true,
		},
		{
			name:   "enter",
			keyMsg: tea.KeyMsg{Type: tea.KeyEnter},
		},
		{
			name:   "escape",
			keyMsg: tea.KeyMsg{Type: tea.KeyEsc},
		},
		{
			name:   "backspace",
			keyMsg: tea.KeyMsg{Type: tea.KeyBackspace},
		},
		{
			name:   "ctrl+c",
			keyMsg: tea.KeyMsg{Type: tea.KeyCtrlC},
		},
		{
			name:   "arrow key",
			keyMsg: tea.KeyMsg{Type: tea.KeyUp},
		},
		{
			name:   "empty runes",
			keyMsg: tea.KeyMsg{Type: tea.KeyRunes},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, ok := PrintableText(tt.keyMsg)
			if ok != tt.ok {
				t.Fatalf("PrintableText() ok = %v, expected %v for key %v", ok, tt.ok, tt.keyMsg.String())
			}
			if text != tt.expected {
				t.Errorf("PrintableText() = %q, expected %q", text, tt.expected)
			}
		})
	}
}
