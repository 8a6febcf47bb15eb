package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forgelabs/forge-tui/internal/logging"
)

// Brief is a project brief file found in the workspace root. Its content
// is appended to the advisor's system prompt so project-specific
// instructions travel with the workspace instead of the settings file.
type Brief struct {
	Path    string
	Content string
}

// briefFileName is matched case-insensitively against workspace entries.
const briefFileName = "FORGE.md"

// LoadBrief looks for a project brief in the given directory. A missing
// brief is not an error; an unreadable one is.
func LoadBrief(dir string) (*Brief, error) {
	logger := logging.WithComponent("workspace")

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Debug("Failed to read workspace directory for brief", "directory", dir, "error", err.Error())
		return nil, nil
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(entry.Name(), briefFileName) {
			continue
		}

		// Directory-scan match preserves the on-disk casing on
		// case-sensitive filesystems.
		path := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read project brief %s: %w", path, err)
		}

		logger.Debug("Loaded project brief", "path", path, "bytes", len(content))
		return &Brief{Path: path, Content: string(content)}, nil
	}

	return nil, nil
}

// SystemPromptAddition formats the brief for appending to the system
// prompt. Returns the empty string for a nil brief.
func (b *Brief) SystemPromptAddition() string {
	if b == nil || strings.TrimSpace(b.Content) == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n\n--- PROJECT BRIEF ---\n")
	sb.WriteString(strings.TrimSpace(b.Content))
	sb.WriteString("\n--- END PROJECT BRIEF ---")
	return sb.String()
}

// Summary is a short human-readable description for display.
func (b *Brief) Summary() string {
	if b == nil {
		return "No project brief"
	}

	preview := ""
	for _, line := range strings.Split(b.Content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if len(trimmed) > 50 {
			preview = trimmed[:47] + "..."
		} else {
			preview = trimmed
		}
		break
	}
	if preview == "" {
		return fmt.Sprintf("Project brief: %s", b.Path)
	}
	return fmt.Sprintf("Project brief: %s — %s", b.Path, preview)
}
