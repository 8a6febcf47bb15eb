// Package files is the workspace file browser tab. Its main job is
// feeding the chat composer: "a" adds the highlighted file as a reference
// tag through the chat tab's external insertion path.
package files

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/forgelabs/forge-tui/internal/reference"
	"github.com/forgelabs/forge-tui/internal/workspace"
)

// AddToChatMsg asks the shell to insert a file reference into the chat
// composer.
type AddToChatMsg struct {
	Entity reference.Entity
}

// rescannedMsg reports a completed manual rescan.
type rescannedMsg struct {
	err error
}

// Model represents the files tab model
type Model struct {
	files    *workspace.Files
	viewport viewport.Model
	cursor   int
	list     []workspace.FileInfo
	scanning bool
	error    string
	width    int
	height   int
}

// NewModel creates a new files tab model
func NewModel(files *workspace.Files) Model {
	vp := viewport.New(0, 0)
	vp.YPosition = 0

	return Model{
		files:    files,
		viewport: vp,
		list:     files.List(),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Refresh re-reads the catalog, typically on tab activation so fsnotify
// updates show without a keypress.
func (m *Model) Refresh() {
	m.list = m.files.List()
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

		m.viewport.Width = int(float64(m.width) * 0.95)
		m.viewport.Height = availableHeight
		m.Refresh()

	case rescannedMsg:
		m.scanning = false
		if msg.err != nil {
			m.error = fmt.Sprintf("Scan failed: %v", msg.err)
		} else {
			m.error = ""
		}
		m.Refresh()

	case tea.KeyMsg:
		if m.scanning {
			return m, nil
		}

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
		case "a", "enter":
			if len(m.list) > 0 && m.cursor < len(m.list) {
				entity := reference.Entity{
					Kind: reference.KindFile,
					Name: m.list[m.cursor].Name,
				}
				return m, func() tea.Msg {
					return AddToChatMsg{Entity: entity}
				}
			}
			return m, nil
		case "r":
			m.scanning = true
			m.error = ""
			files := m.files
			return m, func() tea.Msg {
				return rescannedMsg{err: files.Scan()}
			}
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
	header.WriteString(titleStyle.Render("Workspace Files"))
	header.WriteString("\n\n")

	rootStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	header.WriteString(rootStyle.Render(m.files.Root()))
	header.WriteString("\n\n")

	instructionsStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	header.WriteString(instructionsStyle.Render("Use ↑/↓ to navigate, A to add to chat, R to rescan"))
	header.WriteString("\n\n")

	var content string
	if m.scanning {
		content = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Render("Scanning...")
	} else if m.error != "" {
		content = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.error)
	} else if len(m.list) == 0 {
		content = "No files found in the workspace directory."
	} else {
		content = m.viewport.View()
	}

	var footer strings.Builder
	if len(m.list) > 0 {
		countStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
		footer.WriteString(countStyle.Render(fmt.Sprintf("%d files", len(m.list))))
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

// updateViewportContent updates the viewport with the current catalog
func (m *Model) updateViewportContent() {
	if len(m.list) == 0 {
		m.viewport.SetContent("")
		return
	}

	var content strings.Builder

	for i, fi := range m.list {
		var line strings.Builder

		nameStyle := lipgloss.NewStyle()
		if i == m.cursor {
			nameStyle = nameStyle.Background(lipgloss.Color("4")).
				Foreground(lipgloss.Color("15")).
				Bold(true)
		}
		line.WriteString(nameStyle.Render(fi.Name))

		detailStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		if i == m.cursor {
			detailStyle = detailStyle.Background(lipgloss.Color("4")).
				Foreground(lipgloss.Color("7"))
		}
		line.WriteString(detailStyle.Render(fmt.Sprintf(" %s (%s)", fi.Path, formatSize(fi.Size))))

		content.WriteString(line.String())
		if i < len(m.list)-1 {
			content.WriteString("\n")
		}
	}

	m.viewport.SetContent(content.String())
}

// updateViewportScroll keeps the cursor line inside the viewport
func (m *Model) updateViewportScroll() {
	if len(m.list) == 0 {
		return
	}

	cursorLine := m.cursor

	top := m.viewport.YOffset
	bottom := top + m.viewport.Height - 1

	if cursorLine < top {
		m.viewport.YOffset = cursorLine
	} else if cursorLine > bottom {
		m.viewport.YOffset = cursorLine - m.viewport.Height + 1
	}
}

func formatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}
