package configuration

import (
	"path/filepath"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid configuration with retrieval disabled",
			config: Config{
				AdvisorModel:     "llama3.3:latest",
				OllamaURL:        "http://localhost:11434",
				WorkspaceDir:     ".",
				RetrievalEnabled: false,
				ChromaDBDistance: 1.0,
			},
			wantErr: false,
		},
		{
			name: "valid configuration with retrieval enabled",
			config: Config{
				AdvisorModel:     "llama3.3:latest",
				EmbeddingModel:   "nomic-embed-text:latest",
				OllamaURL:        "http://localhost:11434",
				WorkspaceDir:     ".",
				RetrievalEnabled: true,
				ChromaDBURL:      "http://localhost:8000",
				ChromaDBDistance: 1.0,
				MaxDocuments:     5,
			},
			wantErr: false,
		},
		{
			name: "empty ollama URL",
			config: Config{
				AdvisorModel: "llama3.3:latest",
				WorkspaceDir: ".",
			},
			wantErr: true,
		},
		{
			name: "empty advisor model",
			config: Config{
				OllamaURL:    "http://localhost:11434",
				WorkspaceDir: ".",
			},
			wantErr: true,
		},
		{
			name: "empty workspace dir",
			config: Config{
				AdvisorModel: "llama3.3:latest",
				OllamaURL:    "http://localhost:11434",
			},
			wantErr: true,
		},
		{
			name: "retrieval enabled without embedding model",
			config: Config{
				AdvisorModel:     "llama3.3:latest",
				OllamaURL:        "http://localhost:11434",
				WorkspaceDir:     ".",
				RetrievalEnabled: true,
				ChromaDBURL:      "http://localhost:8000",
				ChromaDBDistance: 1.0,
				MaxDocuments:     5,
			},
			wantErr: true,
		},
		{
			name: "retrieval enabled without chromadb URL",
			config: Config{
				AdvisorModel:     "llama3.3:latest",
				EmbeddingModel:   "nomic-embed-text:latest",
				OllamaURL:        "http://localhost:11434",
				WorkspaceDir:     ".",
				RetrievalEnabled: true,
				ChromaDBDistance: 1.0,
				MaxDocuments:     5,
			},
			wantErr: true,
		},
		{
			name: "distance out of range",
			config: Config{
				AdvisorModel:     "llama3.3:latest",
				OllamaURL:        "http://localhost:11434",
				WorkspaceDir:     ".",
				ChromaDBDistance: 2.5,
			},
			wantErr: true,
		},
		{
			name: "retrieval enabled with zero max documents",
			config: Config{
				AdvisorModel:     "llama3.3:latest",
				EmbeddingModel:   "nomic-embed-text:latest",
				OllamaURL:        "http://localhost:11434",
				WorkspaceDir:     ".",
				RetrievalEnabled: true,
				ChromaDBURL:      "http://localhost:8000",
				ChromaDBDistance: 1.0,
				MaxDocuments:     0,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"AdvisorModel", config.AdvisorModel, "llama3.3:latest"},
		{"OllamaURL", config.OllamaURL, "http://localhost:11434"},
		{"WorkspaceDir", config.WorkspaceDir, "."},
		{"TasksFile", config.TasksFile, "tasks.yaml"},
		{"RetrievalEnabled", config.RetrievalEnabled, false},
		{"ChromaDBURL", config.ChromaDBURL, "http://localhost:8000"},
		{"MaxDocuments", config.MaxDocuments, 5},
		{"LogLevel", config.LogLevel, "info"},
		{"EnableFileLogging", config.EnableFileLogging, true},
	}

	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("DefaultConfig() %s = %v, want %v", c.name, c.got, c.want)
		}
	}

	if config.DefaultSystemPrompt == "" {
		t.Error("DefaultConfig() DefaultSystemPrompt is empty")
	}
	if config.ToolTrustLevels == nil {
		t.Error("DefaultConfig() ToolTrustLevels is nil")
	}
	if err := config.Validate(); err != nil {
		t.Errorf("DefaultConfig() does not validate: %v", err)
	}
}

func TestApplyDefaultsIfMissing(t *testing.T) {
	config := &Config{
		OllamaURL: "http://localhost:11434",
	}

	applyDefaultsIfMissing(config)

	if config.AdvisorModel == "" {
		t.Error("AdvisorModel not backfilled")
	}
	if config.WorkspaceDir != "." {
		t.Errorf("WorkspaceDir = %q, want %q", config.WorkspaceDir, ".")
	}
	if config.TasksFile != "tasks.yaml" {
		t.Errorf("TasksFile = %q, want %q", config.TasksFile, "tasks.yaml")
	}
	if config.ToolTrustLevels == nil {
		t.Error("ToolTrustLevels not initialized")
	}
	if config.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", config.LogLevel, "info")
	}
}

func TestTasksPath(t *testing.T) {
	relative := &Config{WorkspaceDir: "/projects/demo", TasksFile: "tasks.yaml"}
	if got := relative.TasksPath(); got != filepath.Join("/projects/demo", "tasks.yaml") {
		t.Errorf("TasksPath() = %q", got)
	}

	absolute := &Config{WorkspaceDir: "/projects/demo", TasksFile: "/elsewhere/tasks.yaml"}
	if got := absolute.TasksPath(); got != "/elsewhere/tasks.yaml" {
		t.Errorf("TasksPath() = %q", got)
	}
}

func TestGetToolTrustLevel(t *testing.T) {
	config := &Config{ToolTrustLevels: map[string]int{"create_document": 2}}

	if got := config.GetToolTrustLevel("create_document"); got != 2 {
		t.Errorf("GetToolTrustLevel(create_document) = %d, want 2", got)
	}
	if got := config.GetToolTrustLevel("unknown_tool"); got != 1 {
		t.Errorf("GetToolTrustLevel(unknown_tool) = %d, want 1 (ask)", got)
	}

	var nilMap Config
	if got := nilMap.GetToolTrustLevel("anything"); got != 1 {
		t.Errorf("GetToolTrustLevel with nil map = %d, want 1", got)
	}
}

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  int
	}{
		{"debug", 0},
		{"info", 1},
		{"warn", 2},
		{"error", 3},
		{"bogus", 1},
		{"", 1},
	}

	for _, tt := range tests {
		config := &Config{LogLevel: tt.level}
		if got := config.GetLogLevel(); got != tt.want {
			t.Errorf("GetLogLevel(%q) = %d, want %d", tt.level, got, tt.want)
		}
	}
}
