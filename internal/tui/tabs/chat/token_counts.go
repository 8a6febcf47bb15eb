package chat

import (
	"strings"
	"unicode"
)

// updateTokenCount recalculates the estimated token count for the current
// conversation, including the system prompt and the composer draft.
func (m *Model) updateTokenCount() {
	var totalText string

	if m.config.DefaultSystemPrompt != "" {
		totalText += m.config.DefaultSystemPrompt + " "
	}

	for _, msg := range m.history {
		totalText += msg.Content + " "
	}

	if draft := m.composer.Value(); draft != "" {
		totalText += draft
	}

	m.tokenCount = estimateTokens(totalText)
}

// estimateTokens provides a rough estimate of GPT-style tokens
func estimateTokens(text string) int {
	// English text averages roughly 4 characters per token
	const avgCharsPerToken = 4

	charCount := 0
	for _, char := range text {
		if !unicode.IsSpace(char) {
			charCount++
		}
	}

	wordCount := len(strings.Fields(text))

	tokenEstimate := (charCount + wordCount) / avgCharsPerToken
	if tokenEstimate < 1 && len(strings.TrimSpace(text)) > 0 {
		return 1
	}

	return tokenEstimate
}
