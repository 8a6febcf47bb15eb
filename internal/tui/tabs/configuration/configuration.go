// Package configuration is the settings tab: a field-by-field form over
// the persisted configuration, saving on each committed edit and
// reconfiguring logging when the log settings change.
package configuration

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/forgelabs/forge-tui/internal/configuration"
	"github.com/forgelabs/forge-tui/internal/logging"
	"github.com/forgelabs/forge-tui/internal/tui/tabs/configuration/utils/connection"
	"github.com/forgelabs/forge-tui/internal/tui/util"
)

// ConfigUpdatedMsg is sent when the configuration has been updated and
// saved, so the other tabs can pick up the new settings.
type ConfigUpdatedMsg struct {
	Config *configuration.Config
}

// Field represents a configuration field being edited
type Field int

const (
	AdvisorModelField Field = iota
	EmbeddingModelField
	OllamaURLField
	WorkspaceDirField
	TasksFileField
	RetrievalEnabledField
	ChromaDBURLField
	ChromaDBDistanceField
	MaxDocumentsField
	LogLevelField
	FileLoggingField

	fieldCount
)

// logLevels is the cycle order for the log level field.
var logLevels = []string{"debug", "info", "warn", "error"}

// Model represents the configuration tab model
type Model struct {
	config         *configuration.Config
	editConfig     *configuration.Config
	activeField    Field
	editing        bool
	input          string
	width          int
	height         int
	message        string
	messageStyle   lipgloss.Style
	ollamaStatus   connection.Status
	chromaDBStatus connection.Status
}

// cloneConfig copies the fields the form edits.
func cloneConfig(config *configuration.Config) *configuration.Config {
	clone := *config
	clone.SelectedCollections = make(map[string]bool)
	maps.Copy(clone.SelectedCollections, config.SelectedCollections)
	clone.ToolTrustLevels = make(map[string]int)
	maps.Copy(clone.ToolTrustLevels, config.ToolTrustLevels)
	return &clone
}

// NewModel creates a new configuration model
func NewModel(config *configuration.Config) Model {
	return Model{
		config:         config,
		editConfig:     cloneConfig(config),
		activeField:    AdvisorModelField,
		ollamaStatus:   connection.StatusUnknown,
		chromaDBStatus: connection.StatusUnknown,
		messageStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true),
	}
}

// Init initializes the configuration model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		connection.OllamaStatus(m.editConfig.OllamaURL),
		connection.ChromaDBStatus(m.editConfig.ChromaDBURL),
	)
}

// Update handles messages and updates the configuration model
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case connection.CheckMsg:
		switch msg.Server {
		case "ollama":
			m.ollamaStatus = msg.Status
		case "chromadb":
			m.chromaDBStatus = msg.Status
		}
		if msg.Error != nil {
			logging.WithComponent("settings").Warn("Connection check failed",
				"server", msg.Server,
				"url", msg.FullURL,
				"error", msg.Error.Error(),
			)
		}

	case tea.KeyMsg:
		if m.editing {
			return m.handleEditingKeys(msg)
		}
		return m.handleNavigationKeys(msg)
	}

	return m, nil
}

// handleNavigationKeys handles keys when not editing a field
func (m Model) handleNavigationKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.activeField > 0 {
			m.activeField--
		}
		return m, nil

	case "down", "j":
		if m.activeField < fieldCount-1 {
			m.activeField++
		}
		return m, nil

	case "t":
		m.ollamaStatus = connection.StatusChecking
		m.chromaDBStatus = connection.StatusChecking
		return m, tea.Batch(
			connection.OllamaStatus(m.editConfig.OllamaURL),
			connection.ChromaDBStatus(m.editConfig.ChromaDBURL),
		)

	case "enter", " ":
		switch m.activeField {
		case RetrievalEnabledField:
			m.editConfig.RetrievalEnabled = !m.editConfig.RetrievalEnabled
			return m.save()
		case FileLoggingField:
			m.editConfig.EnableFileLogging = !m.editConfig.EnableFileLogging
			return m.save()
		case LogLevelField:
			m.editConfig.LogLevel = nextLogLevel(m.editConfig.LogLevel)
			return m.save()
		default:
			if msg.String() == "enter" {
				m.editing = true
				m.input = m.currentFieldValue()
			}
			return m, nil
		}
	}

	return m, nil
}

// handleEditingKeys handles keys while editing a text field
func (m Model) handleEditingKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if err := m.setCurrentFieldValue(m.input); err != nil {
			m.message = fmt.Sprintf("Error: %s", err.Error())
			m.messageStyle = m.messageStyle.Foreground(lipgloss.Color("9"))
			return m, nil
		}
		m.editing = false
		m.input = ""
		return m.save()

	case "esc":
		m.editing = false
		m.input = ""
		m.message = ""
		return m, nil

	case "backspace":
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil

	default:
		if text, ok := util.PrintableText(msg); ok {
			m.input += text
		}
		return m, nil
	}
}

// save validates the edit copy, persists it, applies it to the shared
// config, and reconfigures logging.
func (m Model) save() (Model, tea.Cmd) {
	if err := m.editConfig.Validate(); err != nil {
		m.message = fmt.Sprintf("Invalid: %s", err.Error())
		m.messageStyle = m.messageStyle.Foreground(lipgloss.Color("9"))
		return m, nil
	}

	*m.config = *cloneConfig(m.editConfig)
	if err := m.config.Save(); err != nil {
		m.message = fmt.Sprintf("Save failed: %s", err.Error())
		m.messageStyle = m.messageStyle.Foreground(lipgloss.Color("11"))
		return m, nil
	}

	logConfig := logging.DefaultConfig()
	logConfig.Level = logging.ParseLevel(m.config.LogLevel)
	logConfig.EnableFile = m.config.EnableFileLogging
	if err := logging.Reconfigure(logConfig); err != nil {
		logging.WithComponent("settings").Warn("Failed to reconfigure logging", "error", err.Error())
	}

	m.message = "Saved"
	m.messageStyle = m.messageStyle.Foreground(lipgloss.Color("10"))

	config := m.config
	return m, func() tea.Msg {
		return ConfigUpdatedMsg{Config: config}
	}
}

func nextLogLevel(current string) string {
	for i, level := range logLevels {
		if level == current {
			return logLevels[(i+1)%len(logLevels)]
		}
	}
	return logLevels[0]
}

// fieldLabel returns the display label for a field
func fieldLabel(field Field) string {
	switch field {
	case AdvisorModelField:
		return "Advisor model"
	case EmbeddingModelField:
		return "Embedding model"
	case OllamaURLField:
		return "Ollama URL"
	case WorkspaceDirField:
		return "Workspace directory"
	case TasksFileField:
		return "Tasks file"
	case RetrievalEnabledField:
		return "Document retrieval"
	case ChromaDBURLField:
		return "ChromaDB URL"
	case ChromaDBDistanceField:
		return "Retrieval distance cutoff"
	case MaxDocumentsField:
		return "Max retrieved documents"
	case LogLevelField:
		return "Log level"
	case FileLoggingField:
		return "File logging"
	default:
		return "Unknown"
	}
}

// currentFieldValue returns the edit copy's value for the active field
func (m Model) currentFieldValue() string {
	switch m.activeField {
	case AdvisorModelField:
		return m.editConfig.AdvisorModel
	case EmbeddingModelField:
		return m.editConfig.EmbeddingModel
	case OllamaURLField:
		return m.editConfig.OllamaURL
	case WorkspaceDirField:
		return m.editConfig.WorkspaceDir
	case TasksFileField:
		return m.editConfig.TasksFile
	case RetrievalEnabledField:
		return strconv.FormatBool(m.editConfig.RetrievalEnabled)
	case ChromaDBURLField:
		return m.editConfig.ChromaDBURL
	case ChromaDBDistanceField:
		return strconv.FormatFloat(m.editConfig.ChromaDBDistance, 'f', 2, 64)
	case MaxDocumentsField:
		return strconv.Itoa(m.editConfig.MaxDocuments)
	case LogLevelField:
		return m.editConfig.LogLevel
	case FileLoggingField:
		return strconv.FormatBool(m.editConfig.EnableFileLogging)
	default:
		return ""
	}
}

// setCurrentFieldValue parses and applies an edited value
func (m *Model) setCurrentFieldValue(value string) error {
	value = strings.TrimSpace(value)

	switch m.activeField {
	case AdvisorModelField:
		if value == "" {
			return fmt.Errorf("advisor model cannot be empty")
		}
		m.editConfig.AdvisorModel = value
	case EmbeddingModelField:
		if value == "" {
			return fmt.Errorf("embedding model cannot be empty")
		}
		m.editConfig.EmbeddingModel = value
	case OllamaURLField:
		if value == "" {
			return fmt.Errorf("Ollama URL cannot be empty")
		}
		m.editConfig.OllamaURL = value
	case WorkspaceDirField:
		if value == "" {
			return fmt.Errorf("workspace directory cannot be empty")
		}
		m.editConfig.WorkspaceDir = value
	case TasksFileField:
		if value == "" {
			return fmt.Errorf("tasks file cannot be empty")
		}
		m.editConfig.TasksFile = value
	case ChromaDBURLField:
		m.editConfig.ChromaDBURL = value
	case ChromaDBDistanceField:
		distance, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("distance must be a number")
		}
		if distance < 0 || distance > 2 {
			return fmt.Errorf("distance must be between 0 and 2")
		}
		m.editConfig.ChromaDBDistance = distance
	case MaxDocumentsField:
		count, err := strconv.Atoi(value)
		if err != nil || count < 1 {
			return fmt.Errorf("max documents must be a positive integer")
		}
		m.editConfig.MaxDocuments = count
	case LogLevelField:
		lowered := strings.ToLower(value)
		for _, level := range logLevels {
			if level == lowered {
				m.editConfig.LogLevel = lowered
				return nil
			}
		}
		return fmt.Errorf("log level must be one of debug, info, warn, error")
	}

	return nil
}

// statusGlyph renders a connection state
func statusGlyph(status connection.Status) string {
	switch status {
	case connection.StatusConnected:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("✓")
	case connection.StatusDisconnected:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("✗")
	case connection.StatusChecking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render("…")
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("?")
	}
}

// View renders the configuration model
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("4")).
		PaddingBottom(1)
	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")

	instructionsStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	b.WriteString(instructionsStyle.Render("Use ↑/↓ to navigate, Enter to edit or toggle, Esc to cancel, T to test connections"))
	b.WriteString("\n\n")

	labelStyle := lipgloss.NewStyle().Width(28)
	activeStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("4")).
		Foreground(lipgloss.Color("15")).
		Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	editStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("11"))

	for field := Field(0); field < fieldCount; field++ {
		label := fieldLabel(field)

		var value string
		if m.editing && field == m.activeField {
			value = editStyle.Render(m.input + "▌")
		} else {
			saved := m
			saved.activeField = field
			value = valueStyle.Render(saved.currentFieldValue())
		}

		switch field {
		case OllamaURLField:
			value += " " + statusGlyph(m.ollamaStatus)
		case ChromaDBURLField:
			value += " " + statusGlyph(m.chromaDBStatus)
		}

		line := labelStyle.Render(label) + value
		if field == m.activeField && !m.editing {
			line = activeStyle.Render("> ") + line
		} else {
			line = "  " + line
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.message != "" {
		b.WriteString("\n")
		b.WriteString(m.messageStyle.Render(m.message))
	}

	return b.String()
}
