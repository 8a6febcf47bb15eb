package workspace

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Document is a project document created or edited by the advisor's tools.
// Documents live in memory for the session; reopening a conversation
// rebuilds them by replaying the tool calls recorded in chat history.
type Document struct {
	Name    string
	Content string
	Created time.Time
	Updated time.Time
}

// Documents stores advisor-authored documents by name.
type Documents struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocuments creates an empty document store.
func NewDocuments() *Documents {
	return &Documents{docs: make(map[string]*Document)}
}

// Create adds a new document. Creating an existing name is an error; the
// advisor is expected to call update for edits.
func (d *Documents) Create(name, content string) error {
	if name == "" {
		return fmt.Errorf("document name cannot be empty")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.docs[name]; exists {
		return fmt.Errorf("document %q already exists", name)
	}
	now := time.Now()
	d.docs[name] = &Document{Name: name, Content: content, Created: now, Updated: now}
	return nil
}

// Update replaces a document's content, or appends when append is true.
func (d *Documents) Update(name, content string, appendContent bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	doc, exists := d.docs[name]
	if !exists {
		return fmt.Errorf("document %q not found", name)
	}
	if appendContent {
		doc.Content += content
	} else {
		doc.Content = content
	}
	doc.Updated = time.Now()
	return nil
}

// Get returns a copy of the named document.
func (d *Documents) Get(name string) (Document, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	doc, exists := d.docs[name]
	if !exists {
		return Document{}, false
	}
	return *doc, true
}

// List returns all documents sorted by name.
func (d *Documents) List() []Document {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Document, 0, len(d.docs))
	for _, doc := range d.docs {
		out = append(out, *doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Reset drops every document. Used before replaying a conversation's tool
// calls so rehydration starts from a clean store.
func (d *Documents) Reset() {
	d.mu.Lock()
	d.docs = make(map[string]*Document)
	d.mu.Unlock()
}
