package chat

import (
	"strings"
)

// MessageCache stores precomputed message renders to avoid re-decoding
// reference tags and re-wrapping content on every frame.
type MessageCache struct {
	// Rendered message lines keyed by message ID
	renderedMessages map[string][]string

	// Last window width used for rendering
	lastWidth int

	// Flag to indicate if cache needs to be invalidated
	needsRefresh bool

	// The last computed total height of all messages
	cachedTotalHeight int
}

// NewMessageCache creates a new message cache
func NewMessageCache() *MessageCache {
	return &MessageCache{
		renderedMessages: make(map[string][]string),
		needsRefresh:     true,
	}
}

// GetRenderedMessage gets a precomputed message or computes and caches it
func (c *MessageCache) GetRenderedMessage(model *Model, msg Message, width int) []string {
	// ULIDs are unique per message, so the ID alone is a stable key
	key := msg.ID

	if width != c.lastWidth {
		c.lastWidth = width
		c.needsRefresh = true
		c.renderedMessages = make(map[string][]string)
	}

	if lines, ok := c.renderedMessages[key]; ok && !c.needsRefresh {
		return lines
	}

	lines := model.formatMessage(msg, width)
	c.renderedMessages[key] = lines

	return lines
}

// InvalidateCache marks the cache for refresh
func (c *MessageCache) InvalidateCache() {
	c.needsRefresh = true
}

// GetTotalHeight gets the cached height or computes it
func (c *MessageCache) GetTotalHeight(model *Model) int {
	if !c.needsRefresh && c.cachedTotalHeight > 0 {
		return c.cachedTotalHeight
	}

	height := 0
	for _, msg := range model.history {
		renderedMsg := c.GetRenderedMessage(model, msg, model.width-4)
		height += len(renderedMsg)
	}

	c.cachedTotalHeight = height
	c.needsRefresh = false

	return height
}

// RenderAllMessages renders the visible window of the history with caching
func (c *MessageCache) RenderAllMessages(model *Model) string {
	availableHeight := model.messagesHeight()

	messageStyle := model.styles.messages.
		Width(model.width - 2).
		Height(availableHeight)

	if len(model.history) == 0 {
		emptyStyle := model.styles.emptyMessages.
			Width(model.width - 4).
			Height(availableHeight - 2)

		return messageStyle.Render(emptyStyle.Render("No messages yet. Type a message and press Enter, or @ to reference a file or task."))
	}

	var allLines []string
	for _, msg := range model.history {
		lines := c.GetRenderedMessage(model, msg, model.width-4)
		allLines = append(allLines, lines...)
	}

	totalLines := len(allLines)
	if totalLines <= availableHeight {
		model.scrollOffset = 0
	} else {
		startIdx := model.scrollOffset
		endIdx := startIdx + availableHeight

		if endIdx > totalLines {
			endIdx = totalLines
			startIdx = endIdx - availableHeight
			if startIdx < 0 {
				startIdx = 0
			}
		}

		allLines = allLines[startIdx:endIdx]
	}

	content := strings.Join(allLines, "\n")

	return messageStyle.Render(content)
}
