package tasks

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/forgelabs/forge-tui/internal/reference"
	"github.com/forgelabs/forge-tui/internal/workspace"
)

func newTestModel(t *testing.T) (Model, *workspace.Tasks, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tasks.yaml")
	tasks := workspace.NewTasks(path)
	tasks.Add(workspace.Task{Title: "Ship v1", Status: workspace.StatusTodo, Priority: "high"})
	tasks.Add(workspace.Task{Title: "Write docs", Status: workspace.StatusDoing})

	m := NewModel(tasks)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, tasks, path
}

func TestSpaceCyclesStatusAndSaves(t *testing.T) {
	m, _, path := newTestModel(t)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})

	if m.list[0].Status != workspace.StatusDoing {
		t.Errorf("Expected status doing after cycle, got %q", m.list[0].Status)
	}

	// The cycle must have been written through to disk
	reloaded := workspace.NewTasks(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("failed to reload task board: %v", err)
	}
	task, ok := reloaded.Lookup("Ship v1")
	if !ok {
		t.Fatal("Expected Ship v1 in the reloaded board")
	}
	if task.Status != workspace.StatusDoing {
		t.Errorf("Expected persisted status doing, got %q", task.Status)
	}
}

func TestAddToChatEmitsTaskEntity(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	if cmd == nil {
		t.Fatal("Expected a command from add-to-chat")
	}

	msg, ok := cmd().(AddToChatMsg)
	if !ok {
		t.Fatalf("Expected AddToChatMsg, got %T", cmd())
	}
	if msg.Entity.Kind != reference.KindTask {
		t.Errorf("Expected task entity, got %v", msg.Entity.Kind)
	}
	if msg.Entity.Name != "Write docs" {
		t.Errorf("Expected Write docs, got %q", msg.Entity.Name)
	}
}

func TestNavigationClampsAtEnds(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 0 {
		t.Errorf("Expected cursor clamped at 0, got %d", m.cursor)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 1 {
		t.Errorf("Expected cursor clamped at last entry, got %d", m.cursor)
	}
}
