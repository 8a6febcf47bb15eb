package chat

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"
	"github.com/ollama/ollama/api"

	"github.com/forgelabs/forge-tui/internal/advisor"
	"github.com/forgelabs/forge-tui/internal/logging"
	"github.com/forgelabs/forge-tui/internal/reference"
	"github.com/forgelabs/forge-tui/internal/workspace"
)

// sendPrompt sends the user's message to the advisor, resolving reference
// tags into concrete context and prepending retrieved documents when the
// retrieval service is ready.
func (m Model) sendPrompt(prompt string) tea.Cmd {
	return func() tea.Msg {
		logger := logging.WithComponent("chat")

		contextBlock := m.resolveReferences(prompt)

		var preamble string
		if m.config.RetrievalEnabled && m.retrieval != nil && m.retrieval.IsReady() {
			result, err := m.retrieval.QueryDocuments(m.ctx, prompt)
			if err != nil {
				logger.Warn("Document retrieval failed", "error", err.Error())
			} else if result != nil && len(result.Documents) > 0 {
				preamble = result.FormatDocumentsForPrompt()
			}
		}

		// The user message is already in the history; prior turns go out
		// verbatim, the final turn carries the resolved context.
		messages := m.historyAsAPIMessages(m.history[:len(m.history)-1], nil)
		messages = append(messages, api.Message{
			Role:    "user",
			Content: preamble + contextBlock + prompt,
		})

		resp, err := advisor.Send(m.ctx, m.config, messages, m.registry.APITools())
		if err != nil {
			return advisorResponseMsg{err: err}
		}
		return advisorResponseMsg{content: resp.Content, toolCalls: resp.ToolCalls}
	}
}

// continueWithTools sends tool execution results back to the advisor so it
// can produce the final answer for the turn. The follow-up call carries no
// tool definitions, which bounds each turn to one round of calls.
func (m Model) continueWithTools(calls []api.ToolCall, results []api.Message) tea.Cmd {
	return func() tea.Msg {
		messages := m.historyAsAPIMessages(m.history, calls)
		messages = append(messages, results...)

		resp, err := advisor.Send(m.ctx, m.config, messages, nil)
		if err != nil {
			return toolFollowUpMsg{err: err}
		}
		return toolFollowUpMsg{content: resp.Content}
	}
}

// systemPrompt combines the configured system prompt with the workspace
// project brief, re-read on each send so edits apply without a restart.
func (m Model) systemPrompt() string {
	prompt := m.config.DefaultSystemPrompt
	if brief, err := workspace.LoadBrief(m.files.Root()); err == nil {
		prompt += brief.SystemPromptAddition()
	}
	return prompt
}

// historyAsAPIMessages converts stored history to the wire shape. When
// calls is non-nil it is attached to the final assistant message, which is
// how a tool round is presented back to the model.
func (m Model) historyAsAPIMessages(history []Message, calls []api.ToolCall) []api.Message {
	messages := make([]api.Message, 0, len(history)+1)

	if prompt := m.systemPrompt(); prompt != "" {
		messages = append(messages, api.Message{
			Role:    "system",
			Content: prompt,
		})
	}

	for i, msg := range history {
		apiMsg := api.Message{Role: msg.Role, Content: msg.Content}
		if calls != nil && i == len(history)-1 && msg.Role == "assistant" {
			apiMsg.ToolCalls = calls
		}
		messages = append(messages, apiMsg)
	}

	return messages
}

// resolveReferences expands the reference tags in an outgoing message into
// the actual file and task content the advisor needs to see. Unresolvable
// references are logged and skipped rather than failing the send.
func (m Model) resolveReferences(value string) string {
	logger := logging.WithComponent("chat")

	var sb strings.Builder
	seen := make(map[string]bool)

	for _, seg := range reference.Decode(value) {
		if !seg.IsChip() || seen[seg.Tag] {
			continue
		}
		seen[seg.Tag] = true

		entity := seg.Entity
		switch entity.Kind {
		case reference.KindFile:
			var start, end int
			if entity.Range != nil {
				start, end = entity.Range.Start, entity.Range.End
			}
			content, err := m.files.Read(entity.Name, start, end)
			if err != nil {
				logger.Warn("Failed to resolve file reference",
					"file", entity.Name,
					"error", err.Error(),
				)
				continue
			}
			sb.WriteString(fmt.Sprintf("File %s:\n%s\n\n", entity.Label(), content))

		case reference.KindTask:
			task, ok := m.tasks.Lookup(entity.Name)
			if !ok {
				logger.Warn("Failed to resolve task reference", "task", entity.Name)
				continue
			}
			sb.WriteString(fmt.Sprintf("Task %q (status: %s", task.Title, task.Status))
			if task.Priority != "" {
				sb.WriteString(fmt.Sprintf(", priority: %s", task.Priority))
			}
			sb.WriteString(")")
			if task.Notes != "" {
				sb.WriteString("\n" + task.Notes)
			}
			sb.WriteString("\n\n")
		}
	}

	if sb.Len() == 0 {
		return ""
	}
	return "=== REFERENCED ITEMS ===\n" + sb.String() + "=== END REFERENCED ITEMS ===\n\n"
}

// calculateMessagesHeight calculates the total rendered height of the
// history at the current width.
func (m Model) calculateMessagesHeight() int {
	height := 0
	for _, msg := range m.history {
		height += len(m.formatMessage(msg, m.width-4))
	}
	return height
}

// formatMessage renders a single message as display lines: a role header,
// the wrapped content with reference chips styled inline, a line per
// executed tool call, and a trailing spacer.
func (m Model) formatMessage(msg Message, width int) []string {
	lines := make([]string, 0, 10)

	timeStr := msg.Time.Format("15:04:05")

	var header string
	switch msg.Role {
	case "user":
		header = m.styles.userHeader.Render(fmt.Sprintf("You [%s]", timeStr))
	case "tool":
		header = m.styles.toolHeader.Render(fmt.Sprintf("Tool [%s]", timeStr))
	default:
		header = m.styles.advisorHeader.Render(fmt.Sprintf("Advisor [%s]", timeStr))
	}
	lines = append(lines, header)

	lines = append(lines, m.renderContentLines(msg.Content, width)...)

	for _, record := range msg.ToolCalls {
		lines = append(lines, m.styles.toolHeader.Render("⚙ "+record.Name))
	}

	lines = append(lines, "")

	return lines
}

// renderContentLines wraps message content to the given width. Content
// without reference tags takes the plain wordwrap path; content with tags
// is wrapped segment by segment so a chip never breaks across lines.
func (m Model) renderContentLines(content string, width int) []string {
	if width <= 0 {
		return []string{content}
	}

	segments := reference.Decode(content)
	hasChip := false
	for _, seg := range segments {
		if seg.IsChip() {
			hasChip = true
			break
		}
	}
	if !hasChip {
		return strings.Split(wordwrap.String(content, width), "\n")
	}

	var lines []string
	var sb strings.Builder
	lineWidth := 0

	flush := func() {
		lines = append(lines, sb.String())
		sb.Reset()
		lineWidth = 0
	}
	place := func(rendered string, cells int) {
		if lineWidth > 0 && lineWidth+1+cells > width {
			flush()
		}
		if lineWidth > 0 {
			sb.WriteString(" ")
			lineWidth++
		}
		sb.WriteString(rendered)
		lineWidth += cells
	}

	for _, seg := range segments {
		if seg.IsChip() {
			label := seg.Entity.Label()
			place(m.styles.chip.Render(" "+label+" "), utf8.RuneCountInString(label)+2)
			continue
		}
		for i, para := range strings.Split(seg.Text, "\n") {
			if i > 0 {
				flush()
			}
			for _, word := range strings.Fields(para) {
				place(word, utf8.RuneCountInString(word))
			}
		}
	}
	if lineWidth > 0 || len(lines) == 0 {
		flush()
	}

	return lines
}
