package composer

import (
	"strings"

	"github.com/forgelabs/forge-tui/internal/reference"
)

// The editable surface is an owned, flat node list: plain text runs,
// atomic reference chips, and line breaks. The cursor addresses cells, one
// per text rune, one per chip, one per break. A chip is always a single
// cell, so the cursor can never rest inside one.

type nodeKind int

const (
	textNode nodeKind = iota
	chipNode
	breakNode
)

type node struct {
	kind   nodeKind
	text   []rune           // textNode only
	entity reference.Entity // chipNode only
	tag    string           // chipNode: verbatim tag the chip was decoded from
}

func (n node) cells() int {
	if n.kind == textNode {
		return len(n.text)
	}
	return 1
}

// renderNodes builds the surface node list for a canonical value. Newlines
// inside text runs become explicit break nodes so they stay addressable as
// single cells.
func renderNodes(value string) []node {
	var nodes []node
	for _, seg := range reference.Decode(value) {
		if seg.IsChip() {
			nodes = append(nodes, node{kind: chipNode, entity: *seg.Entity, tag: seg.Tag})
			continue
		}
		nodes = append(nodes, renderPlain(seg.Text)...)
	}
	return nodes
}

// extract reconstructs the canonical value from the surface: text runs
// contribute their literal text, chips their stored original tag, breaks a
// single newline. The node list is flat, so the nesting artifacts a
// structured document tree can produce never arise here and the
// reconstruction is exact.
func extract(nodes []node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n.kind {
		case textNode:
			b.WriteString(string(n.text))
		case chipNode:
			b.WriteString(n.tag)
		case breakNode:
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func cellCount(nodes []node) int {
	total := 0
	for _, n := range nodes {
		total += n.cells()
	}
	return total
}

// locate maps a cell index to the node containing it and the rune offset
// within that node. A cell index equal to cellCount maps to one past the
// last node.
func locate(nodes []node, cell int) (int, int) {
	for i, n := range nodes {
		c := n.cells()
		if cell < c {
			return i, cell
		}
		cell -= c
	}
	return len(nodes), 0
}

// normalize merges adjacent text nodes and drops empty ones so node
// boundaries never drift apart from cell arithmetic.
func normalize(nodes []node) []node {
	out := nodes[:0]
	for _, n := range nodes {
		if n.kind == textNode && len(n.text) == 0 {
			continue
		}
		if n.kind == textNode && len(out) > 0 && out[len(out)-1].kind == textNode {
			out[len(out)-1].text = append(out[len(out)-1].text, n.text...)
			continue
		}
		out = append(out, n)
	}
	return out
}

// insertRunes splices plain text into the surface at the given cell,
// splitting a text node when the cell falls inside one. Newlines in the
// inserted text become break nodes. It returns the updated node list and
// the number of cells inserted.
func insertRunes(nodes []node, cell int, text string) ([]node, int) {
	insert := renderPlain(text)
	if len(insert) == 0 {
		return nodes, 0
	}
	added := cellCount(insert)

	idx, offset := locate(nodes, cell)

	var out []node
	switch {
	case idx == len(nodes):
		out = append(append(out, nodes...), insert...)
	case offset == 0:
		out = append(out, nodes[:idx]...)
		out = append(out, insert...)
		out = append(out, nodes[idx:]...)
	default:
		// Splitting a text node in two around the insertion point.
		target := nodes[idx]
		left := node{kind: textNode, text: append([]rune{}, target.text[:offset]...)}
		right := node{kind: textNode, text: append([]rune{}, target.text[offset:]...)}
		out = append(out, nodes[:idx]...)
		out = append(out, left)
		out = append(out, insert...)
		out = append(out, right)
		out = append(out, nodes[idx+1:]...)
	}

	return normalize(out), added
}

// renderPlain builds text/break nodes from raw text without tag decoding.
// Pasted and typed text is never auto-converted into chips.
func renderPlain(text string) []node {
	var nodes []node
	rest := text
	for {
		nl := strings.IndexByte(rest, '\n')
		if nl < 0 {
			break
		}
		if nl > 0 {
			nodes = append(nodes, node{kind: textNode, text: []rune(rest[:nl])})
		}
		nodes = append(nodes, node{kind: breakNode})
		rest = rest[nl+1:]
	}
	if rest != "" {
		nodes = append(nodes, node{kind: textNode, text: []rune(rest)})
	}
	return nodes
}

// deleteCell removes the cell immediately before the given cursor
// position. When that cell is a chip, the whole chip node is removed and
// its original tag is returned so the caller can emit the chip-deletion
// event. Deleting a text rune or a break never reports a tag.
func deleteCell(nodes []node, cursor int) ([]node, string, bool) {
	if cursor <= 0 {
		return nodes, "", false
	}
	idx, offset := locate(nodes, cursor-1)
	if idx >= len(nodes) {
		return nodes, "", false
	}

	target := nodes[idx]
	switch target.kind {
	case chipNode:
		out := append([]node{}, nodes[:idx]...)
		out = append(out, nodes[idx+1:]...)
		return normalize(out), target.tag, true
	case breakNode:
		out := append([]node{}, nodes[:idx]...)
		out = append(out, nodes[idx+1:]...)
		return normalize(out), "", false
	default:
		text := target.text
		nodes[idx].text = append(append([]rune{}, text[:offset]...), text[offset+1:]...)
		return normalize(nodes), "", false
	}
}

// removeChip removes the chip occupying the given cell, if any, returning
// its tag. Used by the mouse delete affordance.
func removeChip(nodes []node, cell int) ([]node, string, bool) {
	idx, _ := locate(nodes, cell)
	if idx >= len(nodes) || nodes[idx].kind != chipNode {
		return nodes, "", false
	}
	tag := nodes[idx].tag
	out := append([]node{}, nodes[:idx]...)
	out = append(out, nodes[idx+1:]...)
	return normalize(out), tag, true
}
