package core

import (
	"context"

	"github.com/forgelabs/forge-tui/internal/configuration"
	"github.com/forgelabs/forge-tui/internal/logging"
	"github.com/forgelabs/forge-tui/internal/tui/tabs/chat"
	configTab "github.com/forgelabs/forge-tui/internal/tui/tabs/configuration"
	"github.com/forgelabs/forge-tui/internal/tui/tabs/configuration/utils/connection"
	filesTab "github.com/forgelabs/forge-tui/internal/tui/tabs/files"
	tasksTab "github.com/forgelabs/forge-tui/internal/tui/tabs/tasks"
	"github.com/forgelabs/forge-tui/internal/workspace"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Tab represents the different tabs in the application
type Tab int

const (
	ChatTab Tab = iota
	TasksTab
	FilesTab
	SettingsTab
)

// Model represents the main TUI model
type Model struct {
	ctx       context.Context
	config    *configuration.Config
	files     *workspace.Files
	tasks     *workspace.Tasks
	docs      *workspace.Documents
	activeTab Tab
	tabs      []string
	chat      chat.Model
	tasksTab  tasksTab.Model
	filesTab  filesTab.Model
	settings  configTab.Model
	width     int
	height    int
}

// NewModel creates the main TUI model and the workspace stores the tabs
// share. Scan and load failures are logged but not fatal: the application
// still runs with whatever the workspace could provide.
func NewModel(ctx context.Context, config *configuration.Config) *Model {
	logger := logging.WithComponent("tui-core")
	logger.Debug("Creating new TUI model")

	files := workspace.NewFiles(config.WorkspaceDir)
	if err := files.Scan(); err != nil {
		logger.Warn("Initial workspace scan failed", "root", config.WorkspaceDir, "error", err.Error())
	}
	if err := files.Watch(); err != nil {
		logger.Warn("Workspace watcher unavailable, falling back to manual rescans", "error", err.Error())
	}

	tasks := workspace.NewTasks(config.TasksPath())
	if err := tasks.Load(); err != nil {
		logger.Warn("Task board load failed", "path", config.TasksPath(), "error", err.Error())
	}

	docs := workspace.NewDocuments()

	model := &Model{
		ctx:       ctx,
		config:    config,
		files:     files,
		tasks:     tasks,
		docs:      docs,
		activeTab: ChatTab,
		tabs:      []string{"Chat", "Tasks", "Files", "Settings"},
		chat:      chat.NewModel(ctx, config, files, tasks, docs),
		tasksTab:  tasksTab.NewModel(tasks),
		filesTab:  filesTab.NewModel(files),
		settings:  configTab.NewModel(config),
	}

	logger.Info("TUI model created", "workspace", config.WorkspaceDir, "files", len(files.List()), "tasks", len(tasks.List()))
	return model
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.chat.Init(),
		m.tasksTab.Init(),
		m.filesTab.Init(),
		m.settings.Init(),
	)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Tab bar and footer take one line each
		childSize := tea.WindowSizeMsg{Width: m.width, Height: m.height - 2}

		m.chat, cmd = m.chat.Update(childSize)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		m.tasksTab, cmd = m.tasksTab.Update(childSize)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		m.filesTab, cmd = m.filesTab.Update(childSize)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		m.settings, cmd = m.settings.Update(childSize)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			logging.WithComponent("tui-core").Info("User requested quit")
			return m, tea.Quit
		case "tab":
			return m.switchTab((m.activeTab + 1) % Tab(len(m.tabs)))
		case "shift+tab":
			return m.switchTab((m.activeTab - 1 + Tab(len(m.tabs))) % Tab(len(m.tabs)))
		}
		cmd = m.forwardToActive(msg)

	case connection.CheckMsg:
		// Connection probes always land on the settings tab, whichever
		// tab is active when the response arrives.
		m.settings, cmd = m.settings.Update(msg)

	case configTab.ConfigUpdatedMsg:
		m.config = msg.Config
		cmd = m.chat.UpdateConfig(msg.Config)

	case filesTab.AddToChatMsg:
		m.chat.AddReference(msg.Entity)
		return m.switchTab(ChatTab)

	case tasksTab.AddToChatMsg:
		m.chat.AddReference(msg.Entity)
		return m.switchTab(ChatTab)

	default:
		cmd = m.forwardToActive(msg)
	}

	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// switchTab activates a tab, blurring or focusing the chat composer and
// refreshing list tabs so they pick up workspace changes made elsewhere.
func (m Model) switchTab(next Tab) (tea.Model, tea.Cmd) {
	if next == m.activeTab {
		return m, nil
	}

	if m.activeTab == ChatTab {
		m.chat.Blur()
	}

	m.activeTab = next
	switch next {
	case ChatTab:
		m.chat.Focus()
	case TasksTab:
		m.tasksTab.Refresh()
	case FilesTab:
		m.filesTab.Refresh()
	}

	return m, nil
}

// forwardToActive routes a message to whichever tab is active.
func (m *Model) forwardToActive(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.activeTab {
	case ChatTab:
		m.chat, cmd = m.chat.Update(msg)
	case TasksTab:
		m.tasksTab, cmd = m.tasksTab.Update(msg)
	case FilesTab:
		m.filesTab, cmd = m.filesTab.Update(msg)
	case SettingsTab:
		m.settings, cmd = m.settings.Update(msg)
	}
	return cmd
}

// Close releases resources held by the shared workspace stores.
func (m Model) Close() {
	if err := m.files.Close(); err != nil {
		logging.WithComponent("tui-core").Warn("Failed to close workspace watcher", "error", err.Error())
	}
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	tabBar := m.renderTabBar()
	footer := m.renderFooter()

	if m.height <= 2 {
		if m.height == 1 {
			return tabBar
		}
		return lipgloss.JoinVertical(lipgloss.Left, tabBar, footer)
	}

	var content string
	switch m.activeTab {
	case ChatTab:
		content = m.chat.View()
	case TasksTab:
		content = m.tasksTab.View()
	case FilesTab:
		content = m.filesTab.View()
	case SettingsTab:
		content = m.settings.View()
	}

	contentStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height - 2)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		tabBar,
		contentStyle.Render(content),
		footer,
	)
}

// renderTabBar renders the tab bar
func (m Model) renderTabBar() string {
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("#8A7FD8")) // Matches the chat border

	inactiveTabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("7")).
		Background(lipgloss.Color("0"))

	var tabs []string
	for i, tab := range m.tabs {
		tabText := " " + tab + " "
		if m.width < 30 {
			// Initials only for narrow terminals
			tabText = string([]rune(tab)[0])
		}
		if Tab(i) == m.activeTab {
			tabs = append(tabs, activeTabStyle.Render(tabText))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(tabText))
		}
	}

	tabBarStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("0")).
		Width(m.width)

	return tabBarStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

// renderFooter renders the footer with help text
func (m Model) renderFooter() string {
	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Background(lipgloss.Color("235")).
		Width(m.width)

	var helpText string
	switch {
	case m.width >= 80:
		helpText = "Tab/Shift+Tab: Switch tabs • Ctrl+C: Quit"
		switch m.activeTab {
		case ChatTab:
			helpText += " • Enter: Send • @: Reference • Ctrl+L: Clear"
		case TasksTab:
			helpText += " • Space: Cycle status • Enter: Add to chat"
		case FilesTab:
			helpText += " • Enter: Add to chat • R: Rescan"
		case SettingsTab:
			helpText += " • Enter: Edit • Esc: Cancel • T: Test connections"
		}
	case m.width >= 25:
		helpText = "Tab: Switch • Ctrl+C: Quit"
	default:
		helpText = "Tab"
	}

	return footerStyle.Render(helpText)
}
