package advisor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/forgelabs/forge-tui/internal/configuration"
	"github.com/forgelabs/forge-tui/internal/logging"
)

// Response is the advisor's reply to one chat turn: the assistant text
// plus any tool calls the model requested.
type Response struct {
	Content   string
	ToolCalls []api.ToolCall
}

// Send performs one chat call against the configured Ollama endpoint,
// streaming the assistant text into a single response. Tool definitions
// are offered on every call; whether a requested call actually executes is
// the caller's decision (trust levels gate it).
func Send(ctx context.Context, config *configuration.Config, messages []api.Message, tools []api.Tool) (*Response, error) {
	logger := logging.WithComponent("advisor")

	client, err := newClient(config)
	if err != nil {
		return nil, err
	}

	stream := true
	chatRequest := &api.ChatRequest{
		Model:    config.AdvisorModel,
		Messages: messages,
		Stream:   &stream,
		Tools:    tools,
		Options: map[string]any{
			"temperature":    0.7,
			"repeat_last_n":  2,
			"repeat_penalty": 1.1,
		},
	}

	var fullResponse strings.Builder
	var toolCalls []api.ToolCall

	err = client.Chat(ctx, chatRequest, func(response api.ChatResponse) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fullResponse.WriteString(response.Message.Content)
		if len(response.Message.ToolCalls) > 0 {
			toolCalls = append(toolCalls, response.Message.ToolCalls...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}

	logger.Debug("Advisor response received",
		"model", config.AdvisorModel,
		"content_bytes", fullResponse.Len(),
		"tool_calls", len(toolCalls),
	)

	return &Response{Content: fullResponse.String(), ToolCalls: toolCalls}, nil
}

// ContextSize asks Ollama for the model's context window, falling back to
// zero when the show call fails or reports nothing.
func ContextSize(ctx context.Context, config *configuration.Config, model string) int {
	client, err := newClient(config)
	if err != nil {
		return 0
	}

	resp, err := client.Show(ctx, &api.ShowRequest{Model: model})
	if err != nil || resp == nil {
		return 0
	}

	// The context length lives in model_info under an
	// architecture-prefixed key, e.g. "llama.context_length".
	for key, value := range resp.ModelInfo {
		if strings.HasSuffix(key, ".context_length") {
			if size, ok := value.(float64); ok {
				return int(size)
			}
		}
	}
	return 0
}

// newClient builds an Ollama API client pointed at the configured URL.
func newClient(config *configuration.Config) (*api.Client, error) {
	if _, err := api.ClientFromEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	baseURL, err := url.Parse(config.OllamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL %s: %w", config.OllamaURL, err)
	}
	return api.NewClient(baseURL, &http.Client{Timeout: 120 * time.Second}), nil
}
