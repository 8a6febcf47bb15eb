// Package chat is the conversation tab: the reference-chip composer, the
// message history, the mention picker, and the advisor round-trip with
// tool authorization.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ollama/ollama/api"

	"github.com/forgelabs/forge-tui/internal/advisor"
	"github.com/forgelabs/forge-tui/internal/configuration"
	"github.com/forgelabs/forge-tui/internal/reference"
	"github.com/forgelabs/forge-tui/internal/retrieval"
	"github.com/forgelabs/forge-tui/internal/tui/tabs/chat/composer"
	"github.com/forgelabs/forge-tui/internal/workspace"
)

// Model represents the chat tab model
type Model struct {
	ctx    context.Context
	config *configuration.Config

	history      []Message
	width        int
	height       int
	scrollOffset int

	files *workspace.Files
	tasks *workspace.Tasks
	docs  *workspace.Documents

	registry  *advisor.Registry
	retrieval *retrieval.Service

	composer   *composer.Model
	picker     mentionPicker
	referenced []reference.Entity

	tokenCount  int
	contextSize int

	// Tool calls for the current turn: the full set the model made, the
	// ones still waiting on execution or authorization, and the results
	// accumulated in call order.
	turnCalls   []api.ToolCall
	toolQueue   []api.ToolCall
	toolResults []api.Message

	// Tools the user approved with "always" for this session
	sessionAllowed map[string]bool

	messageCache *MessageCache
	styles       Styles

	// View caching
	cachedMessagesView  string
	cachedStatusView    string
	messagesNeedsUpdate bool
	statusNeedsUpdate   bool
}

// NewModel creates a new chat model
func NewModel(ctx context.Context, config *configuration.Config, files *workspace.Files, tasks *workspace.Tasks, docs *workspace.Documents) Model {
	comp := composer.NewModel()
	comp.SetPlaceholder("Message the advisor; @ references a file or task")
	comp.Focus()

	return Model{
		ctx:                 ctx,
		config:              config,
		history:             []Message{},
		files:               files,
		tasks:               tasks,
		docs:                docs,
		registry:            advisor.NewRegistry(docs),
		retrieval:           retrieval.NewService(config),
		composer:            &comp,
		sessionAllowed:      make(map[string]bool),
		messageCache:        NewMessageCache(),
		styles:              DefaultStyles(),
		messagesNeedsUpdate: true,
		statusNeedsUpdate:   true,
	}
}

// advisorResponseMsg is sent when the advisor's first response of a turn
// arrives.
type advisorResponseMsg struct {
	content   string
	toolCalls []api.ToolCall
	err       error
}

// toolFollowUpMsg is sent when the advisor's post-tool answer arrives.
type toolFollowUpMsg struct {
	content string
	err     error
}

// Init initializes the chat model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		loadSession(),
		fetchContextSize(m.config),
	}

	if m.config.RetrievalEnabled {
		retrievalCmd := tea.Cmd(func() tea.Msg {
			// Failures leave the service unready and the chat degrades to
			// plain conversation.
			_ = m.retrieval.Initialize(m.ctx)
			return nil
		})
		cmds = append(cmds, retrievalCmd)
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the chat model
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if windowMsg, ok := msg.(tea.WindowSizeMsg); ok {
		prevWidth, prevHeight := m.width, m.height

		m.width = windowMsg.Width
		m.height = windowMsg.Height
		m.composer.SetSize(windowMsg.Width)

		if prevWidth != m.width || prevHeight != m.height {
			m.messagesNeedsUpdate = true
			m.statusNeedsUpdate = true
			m.messageCache.InvalidateCache()
		}

		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(keyMsg)
	}

	if mouseMsg, ok := msg.(tea.MouseMsg); ok {
		return m.handleMouse(mouseMsg)
	}

	switch msg := msg.(type) {
	case composer.ChangedMsg:
		m.picker.refresh(&m)
		m.updateTokenCount()
		m.statusNeedsUpdate = true
		return m, nil

	case composer.ChipDeletedMsg:
		m.removeReferenced(msg.Tag)
		m.statusNeedsUpdate = true
		return m, nil

	case sessionLoadedMsg:
		if len(msg.history) > 0 {
			m.history = msg.history
			rehydrate(m.registry, m.history)
			m.messagesNeedsUpdate = true
			m.messageCache.InvalidateCache()
			m.updateTokenCount()
			m.statusNeedsUpdate = true
			m.scrollToBottom()
		}
		return m, nil

	case contextSizeMsg:
		if msg.model == m.config.AdvisorModel {
			m.contextSize = msg.size
			m.statusNeedsUpdate = true
		}
		return m, nil

	case advisorResponseMsg:
		return m.handleAdvisorResponse(msg)

	case toolFollowUpMsg:
		m.composer.SetLoading(false)
		content := msg.content
		if msg.err != nil {
			content = fmt.Sprintf("Error: %s", msg.err.Error())
		}
		m.history = append(m.history, Message{
			ID:      generateULID(),
			Role:    "assistant",
			Content: content,
			Time:    time.Now(),
		})
		m.turnCalls = nil
		m.messagesNeedsUpdate = true
		m.messageCache.InvalidateCache()
		m.updateTokenCount()
		m.statusNeedsUpdate = true
		m.scrollToBottom()
		return m, saveSession(m.history)

	default:
		// Spinner ticks and other component messages
		return m, m.composer.Update(msg)
	}
}

// handleKey routes key input: tool authorization first, then the mention
// picker, then chat-level controls, and finally the composer.
func (m Model) handleKey(keyMsg tea.KeyMsg) (Model, tea.Cmd) {
	key := keyMsg.String()

	if m.composer.IsLoading() && key != "ctrl+c" && key != "ctrl+l" {
		return m, nil
	}

	if m.awaitingAuthorization() {
		return m.handleAuthorizationKey(key)
	}

	if m.picker.open {
		switch key {
		case "up":
			m.picker.moveUp()
			return m, nil
		case "down":
			m.picker.moveDown()
			return m, nil
		case "enter":
			if entity, ok := m.picker.selected(); ok {
				cmd := m.composer.InsertReference(entity)
				m.referenced = append(m.referenced, entity)
				m.picker.close()
				m.statusNeedsUpdate = true
				return m, cmd
			}
			m.picker.close()
			return m, nil
		case "esc":
			m.picker.close()
			return m, nil
		}
		// Everything else edits the composer; the resulting ChangedMsg
		// refreshes or closes the picker.
		return m, m.composer.Update(keyMsg)
	}

	switch key {
	case "enter":
		return m.sendCurrentMessage()

	case "ctrl+l":
		m.history = []Message{}
		m.referenced = nil
		m.scrollOffset = 0
		m.turnCalls = nil
		m.toolQueue = nil
		m.toolResults = nil
		m.docs.Reset()
		m.composer.SetLoading(false)
		m.messagesNeedsUpdate = true
		m.messageCache.InvalidateCache()
		m.updateTokenCount()
		m.statusNeedsUpdate = true
		return m, saveSession(m.history)

	case "up":
		if m.scrollOffset > 0 {
			m.scrollOffset--
			m.messagesNeedsUpdate = true
		}
		return m, nil

	case "down":
		messagesHeight := m.messageCache.GetTotalHeight(&m)
		availableHeight := m.messagesHeight()
		if messagesHeight > availableHeight {
			maxScroll := messagesHeight - availableHeight
			if m.scrollOffset < maxScroll {
				m.scrollOffset++
				m.messagesNeedsUpdate = true
			}
		}
		return m, nil

	case "pgup":
		pageSize := max(m.messagesHeight()-1, 1)
		m.scrollOffset -= pageSize
		if m.scrollOffset < 0 {
			m.scrollOffset = 0
		}
		m.messagesNeedsUpdate = true
		return m, nil

	case "pgdown":
		availableHeight := m.messagesHeight()
		pageSize := max(availableHeight-1, 1)
		messagesHeight := m.messageCache.GetTotalHeight(&m)
		if messagesHeight > availableHeight {
			maxScroll := messagesHeight - availableHeight
			m.scrollOffset += pageSize
			if m.scrollOffset > maxScroll {
				m.scrollOffset = maxScroll
			}
			m.messagesNeedsUpdate = true
		}
		return m, nil

	default:
		return m, m.composer.Update(keyMsg)
	}
}

// handleMouse forwards clicks landing on the composer, translating to its
// content-local coordinates.
func (m Model) handleMouse(mouseMsg tea.MouseMsg) (Model, tea.Cmd) {
	if mouseMsg.Action != tea.MouseActionPress || mouseMsg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	composerHeight := lipgloss.Height(m.composer.View())
	composerTop := m.height - composerHeight

	// Border offsets: one row and one column
	localX := mouseMsg.X - 1
	localY := mouseMsg.Y - composerTop - 1
	if localY < 0 || localY >= composerHeight-2 || localX < 0 {
		return m, nil
	}

	return m, m.composer.Click(localX, localY)
}

// sendCurrentMessage sends the composer value as a user turn.
func (m Model) sendCurrentMessage() (Model, tea.Cmd) {
	value := m.composer.Value()
	if strings.TrimSpace(value) == "" {
		return m, nil
	}

	m.history = append(m.history, Message{
		ID:      generateULID(),
		Role:    "user",
		Content: value,
		Time:    time.Now(),
	})

	m.composer.Clear()
	m.composer.SetLoading(true)
	m.picker.close()
	m.referenced = nil

	m.messagesNeedsUpdate = true
	m.messageCache.InvalidateCache()
	m.updateTokenCount()
	m.statusNeedsUpdate = true
	m.scrollToBottom()

	return m, tea.Batch(m.sendPrompt(value), m.composer.Tick())
}

// handleAdvisorResponse appends the assistant turn and starts the tool
// queue if the model made tool calls.
func (m Model) handleAdvisorResponse(msg advisorResponseMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		m.composer.SetLoading(false)
		m.history = append(m.history, Message{
			ID:      generateULID(),
			Role:    "assistant",
			Content: fmt.Sprintf("Error: %s", msg.err.Error()),
			Time:    time.Now(),
		})
		m.messagesNeedsUpdate = true
		m.messageCache.InvalidateCache()
		m.updateTokenCount()
		m.statusNeedsUpdate = true
		m.scrollToBottom()
		return m, saveSession(m.history)
	}

	m.history = append(m.history, Message{
		ID:      generateULID(),
		Role:    "assistant",
		Content: msg.content,
		Time:    time.Now(),
	})
	m.messagesNeedsUpdate = true
	m.messageCache.InvalidateCache()
	m.updateTokenCount()
	m.scrollToBottom()

	if len(msg.toolCalls) == 0 {
		m.composer.SetLoading(false)
		m.statusNeedsUpdate = true
		return m, saveSession(m.history)
	}

	m.turnCalls = msg.toolCalls
	m.toolQueue = msg.toolCalls
	m.toolResults = nil
	cmd := m.advanceToolQueue()
	m.statusNeedsUpdate = true
	return m, cmd
}

// awaitingAuthorization reports whether a tool call is waiting on the
// user. advanceToolQueue only leaves the queue non-empty at an ask-level
// call.
func (m Model) awaitingAuthorization() bool {
	return len(m.toolQueue) > 0
}

// handleAuthorizationKey resolves the pending tool call at the queue head.
func (m Model) handleAuthorizationKey(key string) (Model, tea.Cmd) {
	call := m.toolQueue[0]
	name := call.Function.Name

	switch key {
	case "y", "Y":
		m.toolQueue = m.toolQueue[1:]
		m.executeToolCall(call)
	case "a", "A":
		m.sessionAllowed[name] = true
		m.toolQueue = m.toolQueue[1:]
		m.executeToolCall(call)
	case "n", "N", "esc":
		m.toolQueue = m.toolQueue[1:]
		m.toolResults = append(m.toolResults, api.Message{
			Role:    "tool",
			Content: fmt.Sprintf("The user declined the %s call.", name),
		})
	default:
		return m, nil
	}

	cmd := m.advanceToolQueue()
	m.statusNeedsUpdate = true
	m.messagesNeedsUpdate = true
	m.messageCache.InvalidateCache()
	return m, cmd
}

// advanceToolQueue executes queued calls until one needs authorization or
// the queue drains. A drained queue with results sends them back to the
// advisor; a drained queue without results ends the turn.
func (m *Model) advanceToolQueue() tea.Cmd {
	for len(m.toolQueue) > 0 {
		call := m.toolQueue[0]
		name := call.Function.Name

		trustLevel := m.config.GetToolTrustLevel(name)
		if m.sessionAllowed[name] {
			trustLevel = configuration.ToolTrustAlways
		}

		switch trustLevel {
		case configuration.ToolTrustNone:
			m.toolQueue = m.toolQueue[1:]
			m.toolResults = append(m.toolResults, api.Message{
				Role:    "tool",
				Content: fmt.Sprintf("The %s tool is blocked by configuration.", name),
			})
		case configuration.ToolTrustAlways:
			m.toolQueue = m.toolQueue[1:]
			m.executeToolCall(call)
		default:
			// Waiting on the user; the status bar shows the prompt
			return nil
		}
	}

	if len(m.toolResults) > 0 {
		calls, results := m.turnCalls, m.toolResults
		m.toolResults = nil
		return m.continueWithTools(calls, results)
	}

	m.composer.SetLoading(false)
	return saveSession(m.history)
}

// executeToolCall runs one tool call, appends its result for the
// follow-up, and records it on the assistant message for rehydration.
func (m *Model) executeToolCall(call api.ToolCall) {
	record := advisor.RecordToolCall(call)

	tool, exists := m.registry.Get(record.Name)
	if !exists {
		m.toolResults = append(m.toolResults, api.Message{
			Role:    "tool",
			Content: fmt.Sprintf("Unknown tool: %s", record.Name),
		})
		return
	}

	result, err := tool.Execute(record.Args)
	if err != nil {
		m.toolResults = append(m.toolResults, api.Message{
			Role:    "tool",
			Content: fmt.Sprintf("Error: %s", err.Error()),
		})
		return
	}

	m.toolResults = append(m.toolResults, api.Message{
		Role:    "tool",
		Content: fmt.Sprint(result),
	})

	// Only executed calls are recorded; replay must not repeat denials
	if len(m.history) > 0 && m.history[len(m.history)-1].Role == "assistant" {
		last := &m.history[len(m.history)-1]
		last.ToolCalls = append(last.ToolCalls, record)
	}
}

// removeReferenced drops the first referenced entity whose tag matches.
func (m *Model) removeReferenced(tag string) {
	for i, entity := range m.referenced {
		if reference.Encode(entity) == tag {
			m.referenced = append(m.referenced[:i], m.referenced[i+1:]...)
			return
		}
	}
}

// AddReference appends a reference tag through the external update path.
// Called by the files and tasks tabs; the composer is blurred there, so
// the reconciler takes the full-replace branch.
func (m *Model) AddReference(entity reference.Entity) {
	value := m.composer.Value()
	if value != "" && !strings.HasSuffix(value, " ") {
		value += " "
	}
	value += reference.Encode(entity) + " "

	m.composer.SetValue(value)
	m.referenced = append(m.referenced, entity)
	m.updateTokenCount()
	m.statusNeedsUpdate = true
}

// Focus gives the composer keyboard focus when the tab becomes active.
func (m *Model) Focus() {
	m.composer.Focus()
}

// Blur releases composer focus when the user switches tabs, so external
// insertions from other tabs replace the surface.
func (m *Model) Blur() {
	m.composer.Blur()
	m.picker.close()
}

// Retrieval exposes the retrieval service for the settings tab.
func (m Model) Retrieval() *retrieval.Service {
	return m.retrieval
}

// UpdateConfig applies a saved configuration to the running chat tab.
func (m *Model) UpdateConfig(config *configuration.Config) tea.Cmd {
	m.config = config
	m.retrieval.UpdateConfig(config)
	m.contextSize = 0
	m.statusNeedsUpdate = true
	return fetchContextSize(config)
}

// messagesHeight is the height available to the history viewport.
func (m *Model) messagesHeight() int {
	h := m.height - 6
	if m.picker.open {
		h -= len(m.picker.entries) + 2
	}
	if h < 3 {
		h = 3
	}
	return h
}

// scrollToBottom scrolls to the bottom of the messages
func (m *Model) scrollToBottom() {
	messagesHeight := m.calculateMessagesHeight()
	availableHeight := m.messagesHeight()
	if messagesHeight > availableHeight {
		m.scrollOffset = messagesHeight - availableHeight
	} else {
		m.scrollOffset = 0
	}
}

// View renders the chat tab
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var components []string

	var messagesView string
	if m.messagesNeedsUpdate || m.cachedMessagesView == "" {
		messagesView = m.messageCache.RenderAllMessages(&m)
		m.cachedMessagesView = messagesView
		m.messagesNeedsUpdate = false
	} else {
		messagesView = m.cachedMessagesView
	}
	components = append(components, messagesView)

	if m.picker.open {
		components = append(components, m.picker.view(&m))
	}

	var statusView string
	if m.statusNeedsUpdate || m.cachedStatusView == "" {
		statusView = m.renderStatusBar()
		m.cachedStatusView = statusView
		m.statusNeedsUpdate = false
	} else {
		statusView = m.cachedStatusView
	}
	components = append(components, statusView)

	components = append(components, m.composer.View())

	return lipgloss.JoinVertical(
		lipgloss.Left,
		components...,
	)
}

// renderStatusBar renders the status line, or the authorization prompt
// while a tool call waits on the user.
func (m *Model) renderStatusBar() string {
	if m.awaitingAuthorization() {
		name := m.toolQueue[0].Function.Name
		prompt := fmt.Sprintf("Advisor wants to run %s. [y] allow  [a] always this session  [n] deny", name)
		return m.styles.authPrompt.Width(m.width - 2).Render(prompt)
	}

	statusStyle := m.styles.statusBar.Width(m.width - 2)

	contextSize := m.contextSize
	if contextSize == 0 {
		contextSize = fallbackContextSize(m.config.AdvisorModel)
	}

	percentUsed := 0
	if contextSize > 0 {
		percentUsed = (m.tokenCount * 100) / contextSize
		if percentUsed > 100 {
			percentUsed = 100
		}
	}

	status := fmt.Sprintf("Model: %s | Context: %d | Tokens: ~%d (%d%%) | Refs: %d",
		m.config.AdvisorModel, contextSize, m.tokenCount, percentUsed, len(m.referenced))

	return statusStyle.Render(status)
}
