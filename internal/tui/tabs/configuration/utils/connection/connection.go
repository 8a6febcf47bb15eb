// Package connection probes the backing services the settings tab points
// at, so the form can show live reachability next to the URLs.
package connection

import (
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Status represents the status of a server connection
type Status int

const (
	StatusUnknown Status = iota
	StatusConnected
	StatusDisconnected
	StatusChecking
)

// CheckMsg represents the result of a connection check
type CheckMsg struct {
	Server  string
	FullURL string
	Status  Status
	Error   error
}

func check(server, fullURL string) tea.Cmd {
	return tea.Cmd(func() tea.Msg {
		client := &http.Client{Timeout: 5 * time.Second}
		resp, err := client.Get(fullURL)
		if err != nil {
			return CheckMsg{
				Server:  server,
				FullURL: fullURL,
				Status:  StatusDisconnected,
				Error:   err,
			}
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			return CheckMsg{
				Server:  server,
				FullURL: fullURL,
				Status:  StatusConnected,
			}
		}

		return CheckMsg{
			Server:  server,
			FullURL: fullURL,
			Status:  StatusDisconnected,
			Error:   fmt.Errorf("HTTP %d", resp.StatusCode),
		}
	})
}

// OllamaStatus checks if the Ollama server is reachable
func OllamaStatus(url string) tea.Cmd {
	return check("ollama", url+"/api/tags")
}

// ChromaDBStatus checks if the ChromaDB server is reachable
func ChromaDBStatus(url string) tea.Cmd {
	return check("chromadb", url+"/api/v2")
}
