package chat

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/forgelabs/forge-tui/internal/advisor"
	"github.com/forgelabs/forge-tui/internal/configuration"
)

// fallbackContextSizes maps model family names to approximate context
// window sizes, used when the show API is unreachable.
var fallbackContextSizes = map[string]int{
	"llama3.1":  8192,
	"llama3.2":  32768,
	"llama3.3":  128000,
	"llama3":    4096,
	"llama2":    4096,
	"mistral":   8192,
	"mixtral":   32768,
	"gemma":     8192,
	"codegemma": 32768,
	"phi3":      4096,
	"codellama": 16384,
	"qwen2.5":   32768,
}

// contextSizeMsg carries a resolved context window size back to Update.
type contextSizeMsg struct {
	model string
	size  int
}

// fallbackContextSize returns a best-effort context size for a model name.
func fallbackContextSize(modelName string) int {
	if size, ok := fallbackContextSizes[modelName]; ok {
		return size
	}

	// Strip the tag and match on the family prefix.
	baseName := strings.Split(modelName, ":")[0]
	for family, size := range fallbackContextSizes {
		if strings.HasPrefix(baseName, family) {
			return size
		}
	}

	return 8192
}

// fetchContextSize resolves the model's context window in the background:
// cache first, then the show API, then the fallback table. The result is
// cached so renders never trigger network calls.
func fetchContextSize(config *configuration.Config) tea.Cmd {
	modelName := config.AdvisorModel
	cacheKey := modelName + "@" + config.OllamaURL

	return func() tea.Msg {
		if size, found := sizeCache.Get(cacheKey); found {
			return contextSizeMsg{model: modelName, size: size}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		size := advisor.ContextSize(ctx, config, modelName)
		if size <= 0 {
			size = fallbackContextSize(modelName)
		}
		sizeCache.Set(cacheKey, size)

		return contextSizeMsg{model: modelName, size: size}
	}
}
