package composer

import (
	"testing"
)

func TestRenderNodesSplitsLines(t *testing.T) {
	nodes := renderNodes("one\ntwo @[Task: x]\nthree")

	kinds := []nodeKind{}
	for _, n := range nodes {
		kinds = append(kinds, n.kind)
	}
	want := []nodeKind{textNode, breakNode, textNode, chipNode, breakNode, textNode}
	if len(kinds) != len(want) {
		t.Fatalf("got %d nodes %v, want %d", len(kinds), kinds, len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("node %d kind = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestExtractRoundTrip(t *testing.T) {
	values := []string{
		"",
		"a\n\nb",
		"\nleading and trailing\n",
		"tags @[File: a.md:1-3] and\nbreaks",
	}

	for _, v := range values {
		if got := extract(renderNodes(v)); got != v {
			t.Errorf("extract(renderNodes(%q)) = %q", v, got)
		}
	}
}

func TestNormalizeMergesAdjacentText(t *testing.T) {
	nodes := []node{
		{kind: textNode, text: []rune("ab")},
		{kind: textNode, text: []rune("")},
		{kind: textNode, text: []rune("cd")},
	}

	got := normalize(nodes)
	if len(got) != 1 {
		t.Fatalf("normalize() returned %d nodes, want 1", len(got))
	}
	if string(got[0].text) != "abcd" {
		t.Errorf("merged text = %q, want %q", string(got[0].text), "abcd")
	}
}

func TestInsertRunesSplitsTextNode(t *testing.T) {
	nodes := renderNodes("ad")

	nodes, added := insertRunes(nodes, 1, "bc")
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}
	if got := extract(nodes); got != "abcd" {
		t.Errorf("extract() = %q, want %q", got, "abcd")
	}
}

func TestDeleteCellOnBreak(t *testing.T) {
	nodes := renderNodes("a\nb")

	nodes, tag, wasChip := deleteCell(nodes, 2)
	if wasChip || tag != "" {
		t.Errorf("break deletion reported a chip (%q)", tag)
	}
	if got := extract(nodes); got != "ab" {
		t.Errorf("extract() = %q, want %q", got, "ab")
	}
}
