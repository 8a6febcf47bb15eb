// Package advisor wires the chat feature to the Ollama model behind it:
// the chat call itself, the built-in document tools the model may invoke,
// and the replay path that reconstructs tool side effects from stored chat
// history.
package advisor

import (
	"fmt"

	"github.com/ollama/ollama/api"

	"github.com/forgelabs/forge-tui/internal/workspace"
)

// Tool is a built-in advisor tool.
type Tool interface {
	Name() string
	Description() string
	GetAPITool() *api.Tool
	Execute(args map[string]any) (any, error)
}

// Registry holds the advisor's tools.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry creates a registry with the document tools bound to the
// given store.
func NewRegistry(docs *workspace.Documents) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	r.Register(&CreateDocumentTool{docs: docs})
	r.Register(&UpdateDocumentTool{docs: docs})
	return r
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Tool) {
	if _, exists := r.tools[tool.Name()]; !exists {
		r.order = append(r.order, tool.Name())
	}
	r.tools[tool.Name()] = tool
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	tool, exists := r.tools[name]
	return tool, exists
}

// APITools returns the Ollama tool definitions in registration order.
func (r *Registry) APITools() []api.Tool {
	out := make([]api.Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.tools[name].GetAPITool())
	}
	return out
}

// CreateDocumentTool creates a new project document.
type CreateDocumentTool struct {
	docs *workspace.Documents
}

func (t *CreateDocumentTool) Name() string {
	return "create_document"
}

func (t *CreateDocumentTool) Description() string {
	return "Create a new project document with the given name and content"
}

func (t *CreateDocumentTool) GetAPITool() *api.Tool {
	return &api.Tool{
		Type: "function",
		Function: api.ToolFunction{
			Name:        "create_document",
			Description: "Create a new project document with the given name and content",
			Parameters: api.ToolFunctionParameters{
				Type: "object",
				Properties: map[string]api.ToolProperty{
					"name": {
						Type:        api.PropertyType{"string"},
						Description: "Document name, including extension (for example roadmap.md)",
					},
					"content": {
						Type:        api.PropertyType{"string"},
						Description: "Full document content",
					},
				},
				Required: []string{"name", "content"},
			},
		},
	}
}

func (t *CreateDocumentTool) Execute(args map[string]any) (any, error) {
	name, ok := args["name"].(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("name parameter required and must be a string")
	}
	content, ok := args["content"].(string)
	if !ok {
		return nil, fmt.Errorf("content parameter required and must be a string")
	}

	if err := t.docs.Create(name, content); err != nil {
		return nil, err
	}
	return map[string]any{
		"name":    name,
		"created": true,
		"bytes":   len(content),
	}, nil
}

// UpdateDocumentTool replaces or appends to an existing document.
type UpdateDocumentTool struct {
	docs *workspace.Documents
}

func (t *UpdateDocumentTool) Name() string {
	return "update_document"
}

func (t *UpdateDocumentTool) Description() string {
	return "Update an existing project document, replacing its content or appending to it"
}

func (t *UpdateDocumentTool) GetAPITool() *api.Tool {
	return &api.Tool{
		Type: "function",
		Function: api.ToolFunction{
			Name:        "update_document",
			Description: "Update an existing project document, replacing its content or appending to it",
			Parameters: api.ToolFunctionParameters{
				Type: "object",
				Properties: map[string]api.ToolProperty{
					"name": {
						Type:        api.PropertyType{"string"},
						Description: "Name of the document to update",
					},
					"content": {
						Type:        api.PropertyType{"string"},
						Description: "New content, or content to append",
					},
					"mode": {
						Type:        api.PropertyType{"string"},
						Description: "How to apply the content: 'replace' (default) or 'append'",
						Enum:        []any{"replace", "append"},
					},
				},
				Required: []string{"name", "content"},
			},
		},
	}
}

func (t *UpdateDocumentTool) Execute(args map[string]any) (any, error) {
	name, ok := args["name"].(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("name parameter required and must be a string")
	}
	content, ok := args["content"].(string)
	if !ok {
		return nil, fmt.Errorf("content parameter required and must be a string")
	}
	mode, _ := args["mode"].(string)
	if mode != "" && mode != "replace" && mode != "append" {
		return nil, fmt.Errorf("mode must be 'replace' or 'append', got %q", mode)
	}

	if err := t.docs.Update(name, content, mode == "append"); err != nil {
		return nil, err
	}
	return map[string]any{
		"name":    name,
		"updated": true,
		"mode":    modeOrDefault(mode),
	}, nil
}

func modeOrDefault(mode string) string {
	if mode == "" {
		return "replace"
	}
	return mode
}
