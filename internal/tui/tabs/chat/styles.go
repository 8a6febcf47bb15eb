package chat

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds precomputed styles for the chat UI
type Styles struct {
	// Style for user message headers
	userHeader lipgloss.Style

	// Style for advisor message headers
	advisorHeader lipgloss.Style

	// Style for tool activity headers
	toolHeader lipgloss.Style

	// Style for reference chips rendered inside message content
	chip lipgloss.Style

	// Style for the message container
	messages lipgloss.Style

	// Style for the empty message state
	emptyMessages lipgloss.Style

	// Style for the status bar
	statusBar lipgloss.Style

	// Style for the tool authorization prompt
	authPrompt lipgloss.Style

	// Style for the mention picker popup
	picker lipgloss.Style

	// Style for the selected picker row
	pickerSelected lipgloss.Style

	// Style for unselected picker rows
	pickerRow lipgloss.Style
}

// DefaultStyles creates default styles for the chat UI
func DefaultStyles() Styles {
	return Styles{
		userHeader: lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true),

		advisorHeader: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true),

		toolHeader: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),

		chip: lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("110")),

		messages: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#8A7FD8")).
			Padding(0, 1),

		emptyMessages: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Align(lipgloss.Center),

		statusBar: lipgloss.NewStyle().
			Align(lipgloss.Left).
			Foreground(lipgloss.Color("240")).
			PaddingLeft(1),

		authPrompt: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true).
			PaddingLeft(1),

		picker: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("110")).
			Padding(0, 1),

		pickerSelected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("110")),

		pickerRow: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
	}
}
