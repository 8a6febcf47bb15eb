// Package tasks is the task board tab: a list of the YAML-backed tasks
// with status cycling, feeding the chat composer the same way the files
// tab does.
package tasks

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/forgelabs/forge-tui/internal/logging"
	"github.com/forgelabs/forge-tui/internal/reference"
	"github.com/forgelabs/forge-tui/internal/workspace"
)

// AddToChatMsg asks the shell to insert a task reference into the chat
// composer.
type AddToChatMsg struct {
	Entity reference.Entity
}

// Model represents the tasks tab model
type Model struct {
	tasks  *workspace.Tasks
	view   viewport.Model
	cursor int
	list   []workspace.Task
	error  string
	width  int
	height int
}

// NewModel creates a new tasks tab model
func NewModel(tasks *workspace.Tasks) Model {
	vp := viewport.New(0, 0)
	vp.YPosition = 0

	return Model{
		tasks: tasks,
		view:  vp,
		list:  tasks.List(),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Refresh re-reads the board, typically on tab activation.
func (m *Model) Refresh() {
	m.list = m.tasks.List()
	if m.cursor >= len(m.list) {
		m.cursor = 0
	}
	m.updateViewportContent()
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 5
		footerHeight := 3
		availableHeight := m.height - headerHeight - footerHeight
		if availableHeight < 1 {
			availableHeight = 1
		}

		m.view.Width = int(float64(m.width) * 0.95)
		m.view.Height = availableHeight
		m.Refresh()

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.updateViewportScroll()
				m.updateViewportContent()
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.list)-1 {
				m.cursor++
				m.updateViewportScroll()
				m.updateViewportContent()
			}
			return m, nil
		case " ":
			if len(m.list) > 0 && m.cursor < len(m.list) {
				title := m.list[m.cursor].Title
				if m.tasks.CycleStatus(title) {
					if err := m.tasks.Save(); err != nil {
						logging.WithComponent("tasks").Error("Failed to save task board",
							"error", err.Error(),
						)
						m.error = fmt.Sprintf("Save failed: %v", err)
					} else {
						m.error = ""
					}
				}
				m.Refresh()
			}
			return m, nil
		case "a", "enter":
			if len(m.list) > 0 && m.cursor < len(m.list) {
				entity := reference.Entity{
					Kind: reference.KindTask,
					Name: m.list[m.cursor].Title,
				}
				return m, func() tea.Msg {
					return AddToChatMsg{Entity: entity}
				}
			}
			return m, nil
		}
	}

	return m, nil
}

// View renders the model
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var header strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("4")).
		PaddingBottom(1)
	header.WriteString(titleStyle.Render("Task Board"))
	header.WriteString("\n\n")

	instructionsStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	header.WriteString(instructionsStyle.Render("Use ↑/↓ to navigate, Space to cycle status, A to add to chat"))
	header.WriteString("\n\n")

	var content string
	if m.error != "" {
		content = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.error)
	} else if len(m.list) == 0 {
		content = "No tasks yet. Add entries to the tasks file to see them here."
	} else {
		content = m.view.View()
	}

	var footer strings.Builder
	if len(m.list) > 0 {
		done := 0
		for _, task := range m.list {
			if task.Status == workspace.StatusDone {
				done++
			}
		}
		countStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
		footer.WriteString(countStyle.Render(fmt.Sprintf("%d tasks, %d done", len(m.list), done)))
	}

	var output strings.Builder
	output.WriteString(header.String())
	output.WriteString(content)
	if footer.Len() > 0 {
		output.WriteString("\n\n")
		output.WriteString(footer.String())
	}

	return output.String()
}

// statusGlyph maps a board column to its list marker.
func statusGlyph(status workspace.TaskStatus) string {
	switch status {
	case workspace.StatusDone:
		return "●"
	case workspace.StatusDoing:
		return "◐"
	default:
		return "○"
	}
}

// updateViewportContent updates the viewport with the current board
func (m *Model) updateViewportContent() {
	if len(m.list) == 0 {
		m.view.SetContent("")
		return
	}

	var content strings.Builder

	for i, task := range m.list {
		var line strings.Builder

		line.WriteString(statusGlyph(task.Status) + " ")

		nameStyle := lipgloss.NewStyle()
		if i == m.cursor {
			nameStyle = nameStyle.Background(lipgloss.Color("4")).
				Foreground(lipgloss.Color("15")).
				Bold(true)
		} else if task.Status == workspace.StatusDone {
			nameStyle = nameStyle.Foreground(lipgloss.Color("8"))
		}
		line.WriteString(nameStyle.Render(task.Title))

		detailStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		if i == m.cursor {
			detailStyle = detailStyle.Background(lipgloss.Color("4")).
				Foreground(lipgloss.Color("7"))
		}
		detail := fmt.Sprintf(" [%s]", task.Status)
		if task.Priority != "" {
			detail += fmt.Sprintf(" (%s)", task.Priority)
		}
		line.WriteString(detailStyle.Render(detail))

		content.WriteString(line.String())
		if i < len(m.list)-1 {
			content.WriteString("\n")
		}
	}

	m.view.SetContent(content.String())
}

// updateViewportScroll keeps the cursor line inside the viewport
func (m *Model) updateViewportScroll() {
	if len(m.list) == 0 {
		return
	}

	cursorLine := m.cursor

	top := m.view.YOffset
	bottom := top + m.view.Height - 1

	if cursorLine < top {
		m.view.YOffset = cursorLine
	} else if cursorLine > bottom {
		m.view.YOffset = cursorLine - m.view.Height + 1
	}
}
