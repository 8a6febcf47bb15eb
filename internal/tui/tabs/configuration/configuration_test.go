package configuration

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/forgelabs/forge-tui/internal/configuration"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	// Keep Save writes inside the test sandbox
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	config := configuration.DefaultConfig()
	config.EmbeddingModel = "nomic-embed-text:latest"
	m := NewModel(config)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestNavigationStaysInBounds(t *testing.T) {
	m := newTestModel(t)

	m, _ = m.Update(key("up"))
	if m.activeField != AdvisorModelField {
		t.Errorf("Expected first field, got %v", m.activeField)
	}

	for i := 0; i < 30; i++ {
		m, _ = m.Update(key("down"))
	}
	if m.activeField != fieldCount-1 {
		t.Errorf("Expected last field, got %v", m.activeField)
	}
}

func TestEditCommitUpdatesAndSaves(t *testing.T) {
	m := newTestModel(t)

	// Edit the advisor model field
	m, _ = m.Update(key("enter"))
	if !m.editing {
		t.Fatal("Expected edit mode after enter")
	}
	for i := 0; i < len(m.input); i++ {
		m, _ = m.Update(key("backspace"))
	}
	m, _ = m.Update(key("qwen2.5:latest"))

	m, cmd := m.Update(key("enter"))

	if m.editing {
		t.Error("Expected edit mode to end on commit")
	}
	if m.config.AdvisorModel != "qwen2.5:latest" {
		t.Errorf("Expected advisor model saved, got %q", m.config.AdvisorModel)
	}
	if cmd == nil {
		t.Fatal("Expected ConfigUpdatedMsg command after save")
	}
	if _, ok := cmd().(ConfigUpdatedMsg); !ok {
		t.Errorf("Expected ConfigUpdatedMsg, got %T", cmd())
	}
}

func TestEditEscCancels(t *testing.T) {
	m := newTestModel(t)
	original := m.config.AdvisorModel

	m, _ = m.Update(key("enter"))
	m, _ = m.Update(key("something-else"))
	m, _ = m.Update(key("esc"))

	if m.editing {
		t.Error("Expected edit mode cancelled")
	}
	if m.config.AdvisorModel != original {
		t.Errorf("Esc must not change the config, got %q", m.config.AdvisorModel)
	}
}

func TestInvalidValueIsRejected(t *testing.T) {
	m := newTestModel(t)

	// Navigate to the max documents field
	for m.activeField != MaxDocumentsField {
		m, _ = m.Update(key("down"))
	}

	m, _ = m.Update(key("enter"))
	for i := 0; i < len(m.input); i++ {
		m, _ = m.Update(key("backspace"))
	}
	m, _ = m.Update(key("not-a-number"))
	m, _ = m.Update(key("enter"))

	if !m.editing {
		t.Error("Expected edit mode to stay open on invalid input")
	}
	if m.message == "" {
		t.Error("Expected an error message")
	}
}

func TestRetrievalToggle(t *testing.T) {
	m := newTestModel(t)

	for m.activeField != RetrievalEnabledField {
		m, _ = m.Update(key("down"))
	}

	m, cmd := m.Update(key("enter"))

	if !m.config.RetrievalEnabled {
		t.Error("Expected retrieval enabled after toggle")
	}
	if cmd == nil {
		t.Error("Expected save command after toggle")
	}
}

func TestLogLevelCycles(t *testing.T) {
	m := newTestModel(t)

	for m.activeField != LogLevelField {
		m, _ = m.Update(key("down"))
	}

	seen := map[string]bool{}
	for i := 0; i < len(logLevels); i++ {
		m, _ = m.Update(key("enter"))
		seen[m.config.LogLevel] = true
	}

	for _, level := range logLevels {
		if !seen[level] {
			t.Errorf("Expected log level %q in the cycle, saw %v", level, seen)
		}
	}
}
