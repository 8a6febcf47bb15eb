// Package composer implements the chat input surface with inline reference
// chips. The canonical tag-embedded string (see the reference package) is
// the value callers read and write; the editable node surface the user
// types into is derived presentation owned by this component. Callers must
// never reach into the surface directly — they interact through SetValue,
// the exposed methods, and the Changed/ChipDeleted messages.
package composer

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/forgelabs/forge-tui/internal/reference"
	"github.com/forgelabs/forge-tui/internal/tui/util"
)

// ChangedMsg reports the reconstructed canonical value after a user edit.
// Reconstruction happens synchronously in the same Update call that
// mutated the surface, so the value is never stale relative to what the
// user sees.
type ChangedMsg struct {
	Value string
}

// ChipDeletedMsg reports the verbatim tag text of a chip the user removed,
// distinct from ordinary text deletion, so callers can prune their
// referenced-items list.
type ChipDeletedMsg struct {
	Tag string
}

// deleteGlyph is the chip's embedded delete affordance.
const deleteGlyph = "✕"

// Model is the reference-chip composer. All mutators have pointer
// receivers; hold it behind a pointer.
type Model struct {
	nodes   []node
	cursor  int // cell index, 0..cellCount
	focused bool

	width       int
	prompt      string
	placeholder string
	disabled    bool
	loading     bool
	spin        spinner.Model

	styles Styles

	// layout built during View for mouse hit testing; column → cell maps
	// per rendered content line.
	layout []layoutLine
}

type layoutLine struct {
	// chipAt[x] is the cell index of the chip covering column x, or -1.
	chipAt []int
	// deleteAt[x] marks the chip's delete affordance column.
	deleteAt []bool
}

// Styles holds the lipgloss styles for the composer box.
type Styles struct {
	Box         lipgloss.Style
	Chip        lipgloss.Style
	ChipDelete  lipgloss.Style
	Placeholder lipgloss.Style
}

// DefaultStyles creates the composer's default appearance.
func DefaultStyles() Styles {
	return Styles{
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		Chip: lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("110")),
		ChipDelete: lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Background(lipgloss.Color("110")),
		Placeholder: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}
}

// NewModel creates an empty composer.
func NewModel() Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		prompt:      "> ",
		placeholder: "Message the advisor... (@ to reference files and tasks)",
		styles:      DefaultStyles(),
		spin:        sp,
		width:       80,
	}
}

// SetSize updates the available width.
func (m *Model) SetSize(width int) {
	if width > 2 {
		m.width = width
		m.styles.Box = m.styles.Box.Width(width - 2)
	}
}

// SetPlaceholder overrides the empty-state hint text.
func (m *Model) SetPlaceholder(s string) {
	m.placeholder = s
}

// SetDisabled toggles whether the composer accepts input.
func (m *Model) SetDisabled(disabled bool) {
	m.disabled = disabled
}

// SetLoading toggles the in-flight advisor indicator.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// IsLoading reports whether the composer shows the in-flight indicator.
func (m Model) IsLoading() bool {
	return m.loading
}

// Focus gives the surface input focus without moving the cursor.
func (m *Model) Focus() {
	m.focused = true
}

// Blur drops input focus. Deferred external writes apply on the next
// SetValue once the surface is blurred.
func (m *Model) Blur() {
	m.focused = false
}

// Focused reports whether the surface holds input focus.
func (m Model) Focused() bool {
	return m.focused
}

// FocusEnd gives the surface focus and places the cursor after the last
// cell. Callers use it after programmatic insertions.
func (m *Model) FocusEnd() {
	m.focused = true
	m.cursor = cellCount(m.nodes)
}

// Value reconstructs the canonical value from the current surface.
func (m Model) Value() string {
	return extract(m.nodes)
}

// SetValue applies an externally supplied canonical value through the
// reconciler. While the surface has focus and holds different content the
// write is deferred rather than clobbering in-progress edits; a reset to
// "" clears even a focused surface.
func (m *Model) SetValue(value string) {
	switch reconcile(m.focused, m.Value(), value) {
	case replaceSurface:
		m.setContent(value)
	case clearSurface:
		m.nodes = nil
		m.cursor = 0
	}
}

// Clear resets the surface unconditionally.
func (m *Model) Clear() {
	m.nodes = nil
	m.cursor = 0
}

func (m *Model) setContent(value string) {
	m.nodes = renderNodes(value)
	m.cursor = cellCount(m.nodes)
}

// MentionQuery exposes the open mention trigger term, if any, computed
// from the trailing substring of the canonical value.
func (m Model) MentionQuery() (string, bool) {
	return reference.MentionQuery(m.Value())
}

// InsertReference encodes the entity and splices its tag into the value,
// replacing a trailing "@<partial>" when the mention trigger is open and
// appending otherwise. A trailing space follows the tag, and the cursor
// lands at the end with focus restored.
func (m *Model) InsertReference(e reference.Entity) tea.Cmd {
	v := m.Value()
	if term, open := reference.MentionQuery(v); open {
		v = v[:len(v)-len(term)-1]
	}
	v += reference.Encode(e) + " "
	m.setContent(v)
	m.FocusEnd()
	return changed(v)
}

// Update handles input events. Printable characters, cursor movement,
// deletion, and paste are handled here; the parent tab sees every key
// first and owns Enter-to-send and other caller-level bindings.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.disabled || m.loading {
			return nil
		}
		return m.handleKey(msg)
	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return cmd
		}
	}
	return nil
}

// Tick starts the loading spinner.
func (m Model) Tick() tea.Cmd {
	return m.spin.Tick
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "backspace":
		if m.cursor == 0 {
			return nil
		}
		nodes, tag, wasChip := deleteCell(m.nodes, m.cursor)
		m.nodes = nodes
		m.cursor--
		if wasChip {
			return tea.Batch(changed(m.Value()), chipDeleted(tag))
		}
		return changed(m.Value())

	case "left":
		if m.cursor > 0 {
			m.cursor--
		}

	case "right":
		if m.cursor < cellCount(m.nodes) {
			m.cursor++
		}

	case "home", "ctrl+a":
		m.cursor = 0

	case "end", "ctrl+e":
		m.cursor = cellCount(m.nodes)

	case "alt+enter", "ctrl+j":
		m.nodes, _ = insertRunes(m.nodes, m.cursor, "\n")
		m.cursor++
		return changed(m.Value())

	case "ctrl+v":
		return m.paste()

	default:
		// Printable character input. Typed text is always plain text;
		// chips only ever come from programmatic insertion.
		if text, ok := util.PrintableText(msg); ok {
			var added int
			m.nodes, added = insertRunes(m.nodes, m.cursor, text)
			m.cursor += added
			return changed(m.Value())
		}
	}
	return nil
}

// paste inserts clipboard text as plain text at the cursor. Non-text
// clipboard content (an image copied from a screenshot tool) makes the
// read fail; nothing is inserted then, leaving image hand-off to the
// caller's upload pipeline instead of corrupting the value.
func (m *Model) paste() tea.Cmd {
	text, err := clipboard.ReadAll()
	if err != nil || text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var added int
	m.nodes, added = insertRunes(m.nodes, m.cursor, text)
	m.cursor += added
	return changed(m.Value())
}

// Click handles a mouse press at content-relative coordinates (column x on
// rendered line y, excluding the box border and padding). A press on a
// chip's delete affordance removes the chip; a press elsewhere on a chip
// snaps the cursor to the chip's leading edge, never into its body.
func (m *Model) Click(x, y int) tea.Cmd {
	if m.disabled || y < 0 || y >= len(m.layout) {
		return nil
	}
	line := m.layout[y]
	if x < 0 || x >= len(line.chipAt) {
		return nil
	}
	cell := line.chipAt[x]
	if cell < 0 {
		return nil
	}
	if line.deleteAt[x] {
		nodes, tag, ok := removeChip(m.nodes, cell)
		if !ok {
			return nil
		}
		m.nodes = nodes
		if m.cursor > cell {
			m.cursor--
		}
		return tea.Batch(changed(m.Value()), chipDeleted(tag))
	}
	m.focused = true
	m.cursor = cell
	return nil
}

func changed(value string) tea.Cmd {
	return func() tea.Msg { return ChangedMsg{Value: value} }
}

func chipDeleted(tag string) tea.Cmd {
	return func() tea.Msg { return ChipDeletedMsg{Tag: tag} }
}

// View renders the composer box and records the chip layout for mouse hit
// testing.
func (m *Model) View() string {
	if len(m.nodes) == 0 && !m.loading {
		m.layout = nil
		hint := m.styles.Placeholder.Render(m.placeholder)
		if m.focused {
			return m.styles.Box.Render(m.prompt + "█" + hint)
		}
		return m.styles.Box.Render(m.prompt + hint)
	}

	lines, layout := m.renderLines()
	m.layout = layout

	content := strings.Join(lines, "\n")
	if m.loading {
		content += " " + m.spin.View() + "thinking"
	}
	return m.styles.Box.Render(content)
}

// renderLines walks the node list cell by cell, emitting styled content
// lines and the per-column chip map. The cursor block is inserted at its
// cell position when the surface is focused.
func (m *Model) renderLines() ([]string, []layoutLine) {
	var lines []string
	var layout []layoutLine

	var b strings.Builder
	b.WriteString(m.prompt)
	col := len(m.prompt)
	cur := layoutLine{}
	pad := func(upTo int) {
		for len(cur.chipAt) < upTo {
			cur.chipAt = append(cur.chipAt, -1)
			cur.deleteAt = append(cur.deleteAt, false)
		}
	}
	endLine := func() {
		pad(col)
		lines = append(lines, b.String())
		layout = append(layout, cur)
		b.Reset()
		col = 0
		cur = layoutLine{}
	}

	cell := 0
	writeCursor := func() {
		if m.focused && cell == m.cursor {
			b.WriteString("█")
			pad(col)
			cur.chipAt = append(cur.chipAt, -1)
			cur.deleteAt = append(cur.deleteAt, false)
			col++
		}
	}

	for _, n := range m.nodes {
		switch n.kind {
		case textNode:
			for _, r := range n.text {
				writeCursor()
				b.WriteRune(r)
				pad(col)
				cur.chipAt = append(cur.chipAt, -1)
				cur.deleteAt = append(cur.deleteAt, false)
				col++
				cell++
			}
		case chipNode:
			writeCursor()
			label := " " + n.entity.Label() + " "
			b.WriteString(m.styles.Chip.Render(label))
			b.WriteString(m.styles.ChipDelete.Render(deleteGlyph + " "))
			pad(col)
			chipCell := cell
			width := len([]rune(label)) + 2
			for i := 0; i < width; i++ {
				cur.chipAt = append(cur.chipAt, chipCell)
				cur.deleteAt = append(cur.deleteAt, i == width-2)
			}
			col += width
			cell++
		case breakNode:
			writeCursor()
			endLine()
			cell++
		}
	}
	writeCursor()
	endLine()

	return lines, layout
}
