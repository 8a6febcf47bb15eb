package chat

import (
	"strings"

	"github.com/forgelabs/forge-tui/internal/reference"
)

// maxPickerEntries caps the popup height.
const maxPickerEntries = 8

// mentionPicker is the popup that opens while the composer holds an open
// @-mention. It lists matching workspace files first, then tasks.
type mentionPicker struct {
	open    bool
	term    string
	entries []reference.Entity
	index   int
}

// refresh rebuilds the entry list for the current mention term, opening or
// closing the popup as the term appears and disappears.
func (p *mentionPicker) refresh(m *Model) {
	term, ok := m.composer.MentionQuery()
	if !ok {
		p.close()
		return
	}

	p.term = term
	p.entries = p.entries[:0]
	p.index = 0

	for _, fi := range m.files.Match(term) {
		if len(p.entries) >= maxPickerEntries {
			break
		}
		p.entries = append(p.entries, reference.Entity{
			Kind: reference.KindFile,
			Name: fi.Name,
		})
	}
	for _, task := range m.tasks.Match(term) {
		if len(p.entries) >= maxPickerEntries {
			break
		}
		p.entries = append(p.entries, reference.Entity{
			Kind: reference.KindTask,
			Name: task.Title,
		})
	}

	p.open = len(p.entries) > 0
}

func (p *mentionPicker) close() {
	p.open = false
	p.term = ""
	p.entries = p.entries[:0]
	p.index = 0
}

func (p *mentionPicker) moveUp() {
	if p.index > 0 {
		p.index--
	}
}

func (p *mentionPicker) moveDown() {
	if p.index < len(p.entries)-1 {
		p.index++
	}
}

// selected returns the highlighted entity, if any.
func (p *mentionPicker) selected() (reference.Entity, bool) {
	if !p.open || p.index >= len(p.entries) {
		return reference.Entity{}, false
	}
	return p.entries[p.index], true
}

// view renders the popup above the composer.
func (p *mentionPicker) view(m *Model) string {
	if !p.open {
		return ""
	}

	rows := make([]string, 0, len(p.entries))
	for i, entity := range p.entries {
		prefix := "file "
		if entity.Kind == reference.KindTask {
			prefix = "task "
		}
		row := prefix + entity.Name
		if i == p.index {
			rows = append(rows, m.styles.pickerSelected.Render("> "+row))
		} else {
			rows = append(rows, m.styles.pickerRow.Render("  "+row))
		}
	}

	return m.styles.picker.Width(m.width - 4).Render(strings.Join(rows, "\n"))
}
