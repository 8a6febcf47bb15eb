package chat

import (
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		expectedMin int
		expectedMax int
	}{
		{
			name:        "empty string",
			text:        "",
			expectedMin: 0,
			expectedMax: 0,
		},
		{
			name:        "single word",
			text:        "hello",
			expectedMin: 1,
			expectedMax: 2,
		},
		{
			name:        "simple sentence",
			text:        "Hello world",
			expectedMin: 2,
			expectedMax: 4,
		},
		{
			name:        "whitespace only",
			text:        "   \n\t  ",
			expectedMin: 0,
			expectedMax: 0,
		},
		{
			name:        "longer text",
			text:        "This is a very long text that contains many words and should result in a proportionally higher token count when estimated using the approximation algorithm.",
			expectedMin: 30,
			expectedMax: 45,
		},
		{
			name:        "text with reference tags",
			text:        "please summarize @[File: Plan.md:1-40] for the team",
			expectedMin: 8,
			expectedMax: 16,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := estimateTokens(tt.text)
			if got < tt.expectedMin || got > tt.expectedMax {
				t.Errorf("estimateTokens(%q) = %d, want between %d and %d",
					tt.text, got, tt.expectedMin, tt.expectedMax)
			}
		})
	}
}

func TestUpdateTokenCountIncludesDraft(t *testing.T) {
	m := newTestModel(t)
	m.config.DefaultSystemPrompt = ""

	m.updateTokenCount()
	if m.tokenCount != 0 {
		t.Errorf("Expected zero tokens for empty conversation, got %d", m.tokenCount)
	}

	m = typeInto(t, m, "a draft message sitting in the composer")
	m.updateTokenCount()
	if m.tokenCount == 0 {
		t.Error("Expected draft text to count toward the token estimate")
	}
}
