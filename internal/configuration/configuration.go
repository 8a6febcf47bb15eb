// Package configuration owns the persisted application settings: a JSON
// file under the platform config directory, created with defaults on first
// run and filled in field by field when older files miss newer keys.
package configuration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Config represents the application configuration
type Config struct {
	AdvisorModel        string          `json:"advisorModel"`        // Ollama model backing the project advisor
	EmbeddingModel      string          `json:"embeddingModel"`      // Embedding model for document retrieval
	OllamaURL           string          `json:"ollamaURL"`
	WorkspaceDir        string          `json:"workspaceDir"` // Project root whose files are referencable in chat
	TasksFile           string          `json:"tasksFile"`    // YAML task board, relative to WorkspaceDir when not absolute
	RetrievalEnabled    bool            `json:"retrievalEnabled"`
	ChromaDBURL         string          `json:"chromaDBURL"`
	ChromaDBDistance    float64         `json:"chromaDBDistance"` // Cosine distance cutoff, 0-2
	MaxDocuments        int             `json:"maxDocuments"`     // Retrieval result cap per query
	SelectedCollections map[string]bool `json:"selectedCollections"`
	DefaultSystemPrompt string          `json:"defaultSystemPrompt"`
	ToolTrustLevels     map[string]int  `json:"toolTrustLevels"` // Tool name → 0=block, 1=ask, 2=allow for the session
	LogLevel            string          `json:"logLevel"`        // debug, info, warn, error
	EnableFileLogging   bool            `json:"enableFileLogging"`
}

// Tool trust levels gate advisor tool execution.
const (
	ToolTrustNone   = 0 // never execute
	ToolTrustAsk    = 1 // prompt before each call
	ToolTrustAlways = 2 // execute without prompting
)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		AdvisorModel:        "llama3.3:latest",
		EmbeddingModel:      "",
		OllamaURL:           "http://localhost:11434",
		WorkspaceDir:        ".",
		TasksFile:           "tasks.yaml",
		RetrievalEnabled:    false,
		ChromaDBURL:         "http://localhost:8000",
		ChromaDBDistance:    1.0,
		MaxDocuments:        5,
		SelectedCollections: make(map[string]bool),
		ToolTrustLevels:     make(map[string]int),
		LogLevel:            "info",
		EnableFileLogging:   true,
		DefaultSystemPrompt: "You are Forge, an AI project advisor. You help plan and track software projects. When the user references project files or tasks inline, treat their contents as authoritative context. You may create and update project documents through the tools provided; describe the change you are making before calling a tool. Keep answers direct and practical.",
	}
}

// dir returns the appropriate config directory based on OS
func dir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir = os.Getenv("APPDATA")
			if configDir == "" {
				return "", fmt.Errorf("LOCALAPPDATA or APPDATA environment variable not set")
			}
		}
	default: // Linux, macOS, and other Unix-like systems
		configDir = os.Getenv("XDG_DATA_HOME")
		if configDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get user home directory: %w", err)
			}
			configDir = filepath.Join(homeDir, ".local", "share")
		}
	}

	return filepath.Join(configDir, "forge-tui", "settings"), nil
}

// path returns the full path to the configuration file
func path() (string, error) {
	configDir, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "settings.json"), nil
}

// SessionPath returns the full path to the persisted chat session file,
// which lives next to the settings file.
func SessionPath() (string, error) {
	configDir, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "session.json"), nil
}

// Load reads the configuration from the settings file, creating it with
// defaults when it does not exist yet.
func Load() (*Config, error) {
	configPath, err := path()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if saveErr := config.Save(); saveErr != nil {
			// The application can still run with in-memory defaults even
			// when the config directory is not writable.
			return config, fmt.Errorf("failed to save default configuration: %w", saveErr)
		}
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaultsIfMissing(&config)

	return &config, nil
}

// applyDefaultsIfMissing backfills fields a settings file from an older
// release may not carry.
func applyDefaultsIfMissing(c *Config) {
	defaults := DefaultConfig()

	if c.DefaultSystemPrompt == "" {
		c.DefaultSystemPrompt = defaults.DefaultSystemPrompt
	}
	if c.AdvisorModel == "" {
		c.AdvisorModel = defaults.AdvisorModel
	}
	if c.WorkspaceDir == "" {
		c.WorkspaceDir = defaults.WorkspaceDir
	}
	if c.TasksFile == "" {
		c.TasksFile = defaults.TasksFile
	}
	if c.ToolTrustLevels == nil {
		c.ToolTrustLevels = make(map[string]int)
	}
	if c.SelectedCollections == nil {
		c.SelectedCollections = make(map[string]bool)
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
		c.EnableFileLogging = defaults.EnableFileLogging
	}
}

// Save writes the configuration to the settings file
func (c *Config) Save() error {
	configDir, err := dir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath, err := path()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.OllamaURL == "" {
		return fmt.Errorf("ollamaURL cannot be empty")
	}
	if c.AdvisorModel == "" {
		return fmt.Errorf("advisorModel cannot be empty")
	}
	if c.WorkspaceDir == "" {
		return fmt.Errorf("workspaceDir cannot be empty")
	}
	if c.EmbeddingModel == "" && c.RetrievalEnabled {
		return fmt.Errorf("embeddingModel cannot be empty when retrieval is enabled")
	}
	if c.ChromaDBURL == "" && c.RetrievalEnabled {
		return fmt.Errorf("chromaDBURL cannot be empty when retrieval is enabled")
	}
	if c.ChromaDBDistance < 0 || c.ChromaDBDistance > 2 {
		return fmt.Errorf("chromaDBDistance must be between 0 and 2 (cosine similarity range)")
	}
	if c.MaxDocuments <= 0 && c.RetrievalEnabled {
		return fmt.Errorf("maxDocuments must be greater than 0 when retrieval is enabled")
	}
	return nil
}

// TasksPath resolves the task board location against the workspace root.
func (c *Config) TasksPath() string {
	if filepath.IsAbs(c.TasksFile) {
		return c.TasksFile
	}
	return filepath.Join(c.WorkspaceDir, c.TasksFile)
}

// GetToolTrustLevel returns the trust level for a tool, defaulting to ask
// for permission when unset.
func (c *Config) GetToolTrustLevel(toolName string) int {
	if c.ToolTrustLevels == nil {
		return ToolTrustAsk
	}
	trustLevel, exists := c.ToolTrustLevels[toolName]
	if !exists {
		return ToolTrustAsk
	}
	return trustLevel
}

// SetToolTrustLevel sets the trust level for a tool and saves the configuration
func (c *Config) SetToolTrustLevel(toolName string, trustLevel int) error {
	if c.ToolTrustLevels == nil {
		c.ToolTrustLevels = make(map[string]int)
	}
	c.ToolTrustLevels[toolName] = trustLevel
	return c.Save()
}

// GetLogLevel returns the log level as an integer for the logging package:
// 0=Debug, 1=Info, 2=Warn, 3=Error.
func (c *Config) GetLogLevel() int {
	switch c.LogLevel {
	case "debug":
		return 0
	case "info":
		return 1
	case "warn":
		return 2
	case "error":
		return 3
	default:
		return 1
	}
}
