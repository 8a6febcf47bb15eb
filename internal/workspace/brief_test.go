package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadBriefMissing(t *testing.T) {
	brief, err := LoadBrief(t.TempDir())
	if err != nil {
		t.Fatalf("LoadBrief() error = %v", err)
	}
	if brief != nil {
		t.Errorf("Expected nil brief for empty workspace, got %+v", brief)
	}
}

func TestLoadBriefReadsContent(t *testing.T) {
	dir := t.TempDir()
	content := "# Forge\n\nAlways answer in English.\n"
	if err := os.WriteFile(filepath.Join(dir, "FORGE.md"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	brief, err := LoadBrief(dir)
	if err != nil {
		t.Fatalf("LoadBrief() error = %v", err)
	}
	if brief == nil {
		t.Fatal("Expected brief, got nil")
	}
	if brief.Content != content {
		t.Errorf("Content = %q, expected %q", brief.Content, content)
	}
}

func TestLoadBriefCaseInsensitiveName(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "forge.md"), []byte("notes"), 0644); err != nil {
		t.Fatal(err)
	}

	brief, err := LoadBrief(dir)
	if err != nil {
		t.Fatalf("LoadBrief() error = %v", err)
	}
	if brief == nil {
		t.Fatal("Expected brief matched case-insensitively, got nil")
	}
	if filepath.Base(brief.Path) != "forge.md" {
		t.Errorf("Expected on-disk casing preserved, got %s", brief.Path)
	}
}

func TestSystemPromptAddition(t *testing.T) {
	tests := []struct {
		name     string
		brief    *Brief
		contains string
		empty    bool
	}{
		{
			name:  "nil brief",
			brief: nil,
			empty: true,
		},
		{
			name:  "whitespace only content",
			brief: &Brief{Content: "  \n\t\n"},
			empty: true,
		},
		{
			name:     "real content is fenced",
			brief:    &Brief{Content: "Prefer small tasks."},
			contains: "--- PROJECT BRIEF ---\nPrefer small tasks.\n--- END PROJECT BRIEF ---",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.brief.SystemPromptAddition()
			if tt.empty {
				if got != "" {
					t.Errorf("Expected empty addition, got %q", got)
				}
				return
			}
			if !strings.Contains(got, tt.contains) {
				t.Errorf("Addition %q missing %q", got, tt.contains)
			}
		})
	}
}

func TestBriefSummary(t *testing.T) {
	brief := &Brief{
		Path:    "/ws/FORGE.md",
		Content: "# Heading\n\nShip the composer first.\n",
	}
	summary := brief.Summary()
	if !strings.Contains(summary, "Ship the composer first.") {
		t.Errorf("Summary %q missing first content line", summary)
	}

	var nilBrief *Brief
	if nilBrief.Summary() != "No project brief" {
		t.Errorf("Nil brief summary = %q", nilBrief.Summary())
	}
}
