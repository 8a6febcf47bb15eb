package chat

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/oklog/ulid/v2"

	"github.com/forgelabs/forge-tui/internal/advisor"
	"github.com/forgelabs/forge-tui/internal/configuration"
	"github.com/forgelabs/forge-tui/internal/logging"
)

// Message is one chat history entry. ToolCalls holds the recorded tool
// invocations an assistant turn performed, so reloading the session can
// replay them into the documents store.
type Message struct {
	ID        string                   `json:"id"`
	Role      string                   `json:"role"` // "user", "assistant", or "tool"
	Content   string                   `json:"content"`
	ToolCalls []advisor.ToolCallRecord `json:"tool_calls,omitempty"`
	Time      time.Time                `json:"time"`
}

// generateULID returns a new message identifier.
func generateULID() string {
	return ulid.Make().String()
}

// sessionLoadedMsg carries a restored session into Update.
type sessionLoadedMsg struct {
	history []Message
}

// sessionFile is the on-disk shape of a persisted session.
type sessionFile struct {
	Messages []Message `json:"messages"`
}

// loadSession restores the previous session from disk. A missing or
// unreadable session file starts a fresh conversation.
func loadSession() tea.Cmd {
	return func() tea.Msg {
		logger := logging.WithComponent("chat")

		sessionPath, err := configuration.SessionPath()
		if err != nil {
			return sessionLoadedMsg{}
		}

		data, err := os.ReadFile(sessionPath)
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("Failed to read session file", "error", err.Error())
			}
			return sessionLoadedMsg{}
		}

		var session sessionFile
		if err := json.Unmarshal(data, &session); err != nil {
			logger.Warn("Failed to parse session file", "error", err.Error())
			return sessionLoadedMsg{}
		}

		return sessionLoadedMsg{history: session.Messages}
	}
}

// saveSession persists the history after a completed turn.
func saveSession(history []Message) tea.Cmd {
	snapshot := make([]Message, len(history))
	copy(snapshot, history)

	return func() tea.Msg {
		logger := logging.WithComponent("chat")

		sessionPath, err := configuration.SessionPath()
		if err != nil {
			logger.Warn("Failed to resolve session path", "error", err.Error())
			return nil
		}

		data, err := json.MarshalIndent(sessionFile{Messages: snapshot}, "", "  ")
		if err != nil {
			logger.Warn("Failed to encode session", "error", err.Error())
			return nil
		}

		if err := os.MkdirAll(filepath.Dir(sessionPath), 0755); err != nil {
			logger.Warn("Failed to create session directory", "error", err.Error())
			return nil
		}
		if err := os.WriteFile(sessionPath, data, 0644); err != nil {
			logger.Warn("Failed to write session file", "error", err.Error())
		}
		return nil
	}
}

// rehydrate replays the tool call records of a restored history into the
// documents store, rebuilding the advisor's side effects.
func rehydrate(registry *advisor.Registry, history []Message) int {
	var records []advisor.ToolCallRecord
	for _, msg := range history {
		records = append(records, msg.ToolCalls...)
	}
	if len(records) == 0 {
		return 0
	}
	return advisor.Replay(registry, records)
}
