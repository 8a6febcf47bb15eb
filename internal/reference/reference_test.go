package reference

import (
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name   string
		entity Entity
		want   string
	}{
		{
			name:   "file reference",
			entity: Entity{Kind: KindFile, Name: "Plan.md"},
			want:   "@[File: Plan.md]",
		},
		{
			name:   "file reference with line range",
			entity: Entity{Kind: KindFile, Name: "Spec.md", Range: &LineRange{Start: 10, End: 20}},
			want:   "@[File: Spec.md:10-20]",
		},
		{
			name:   "task reference",
			entity: Entity{Kind: KindTask, Name: "Ship v1"},
			want:   "@[Task: Ship v1]",
		},
		{
			name:   "file name with spaces and dots",
			entity: Entity{Kind: KindFile, Name: "release notes.v2.md"},
			want:   "@[File: release notes.v2.md]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.entity); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeEmptyValue(t *testing.T) {
	if segments := Decode(""); len(segments) != 0 {
		t.Errorf("Decode(\"\") returned %d segments, want 0", len(segments))
	}
}

func TestDecodeSegments(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []Segment
	}{
		{
			name:  "plain text only",
			value: "no references here",
			want:  []Segment{{Text: "no references here"}},
		},
		{
			name:  "file tag between text runs",
			value: "Check @[File: Plan.md] please",
			want: []Segment{
				{Text: "Check "},
				{Entity: &Entity{Kind: KindFile, Name: "Plan.md"}, Tag: "@[File: Plan.md]"},
				{Text: " please"},
			},
		},
		{
			name:  "file tag with line range",
			value: "See @[File: Spec.md:10-20]",
			want: []Segment{
				{Text: "See "},
				{
					Entity: &Entity{Kind: KindFile, Name: "Spec.md", Range: &LineRange{Start: 10, End: 20}},
					Tag:    "@[File: Spec.md:10-20]",
				},
			},
		},
		{
			name:  "task tag",
			value: "Done @[Task: Ship v1]",
			want: []Segment{
				{Text: "Done "},
				{Entity: &Entity{Kind: KindTask, Name: "Ship v1"}, Tag: "@[Task: Ship v1]"},
			},
		},
		{
			name:  "adjacent tags",
			value: "@[File: a.md]@[Task: b]",
			want: []Segment{
				{Entity: &Entity{Kind: KindFile, Name: "a.md"}, Tag: "@[File: a.md]"},
				{Entity: &Entity{Kind: KindTask, Name: "b"}, Tag: "@[Task: b]"},
			},
		},
		{
			name:  "unterminated tag degrades to text",
			value: "broken @[File: Plan.md",
			want:  []Segment{{Text: "broken @[File: Plan.md"}},
		},
		{
			name:  "unknown keyword degrades to text",
			value: "weird @[Link: example]",
			want:  []Segment{{Text: "weird @[Link: example]"}},
		},
		{
			name:  "empty body degrades to text",
			value: "empty @[File: ] tag",
			want:  []Segment{{Text: "empty @[File: ] tag"}},
		},
		{
			name:  "bare at sign stays text",
			value: "email me @ home",
			want:  []Segment{{Text: "email me @ home"}},
		},
		{
			// The first ']' terminates the earliest candidate, so a stray
			// opener swallows a later tag into its body.
			name:  "earliest candidate wins on overlap",
			value: "@[File: bad then @[Task: good]",
			want: []Segment{
				{
					Entity: &Entity{Kind: KindFile, Name: "bad then @[Task: good"},
					Tag:    "@[File: bad then @[Task: good]",
				},
			},
		},
		{
			name:  "colon in file name without valid range",
			value: "@[File: notes:final.md]",
			want: []Segment{
				{Entity: &Entity{Kind: KindFile, Name: "notes:final.md"}, Tag: "@[File: notes:final.md]"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.value)

			if len(got) != len(tt.want) {
				t.Fatalf("Decode() returned %d segments, want %d: %#v", len(got), len(tt.want), got)
			}

			for i := range got {
				assertSegmentEqual(t, i, got[i], tt.want[i])
			}
		})
	}
}

func assertSegmentEqual(t *testing.T, i int, got, want Segment) {
	t.Helper()

	if got.Text != want.Text {
		t.Errorf("segment %d text = %q, want %q", i, got.Text, want.Text)
	}
	if got.Tag != want.Tag {
		t.Errorf("segment %d tag = %q, want %q", i, got.Tag, want.Tag)
	}
	if (got.Entity == nil) != (want.Entity == nil) {
		t.Fatalf("segment %d entity presence = %v, want %v", i, got.Entity != nil, want.Entity != nil)
	}
	if got.Entity == nil {
		return
	}
	if got.Entity.Kind != want.Entity.Kind {
		t.Errorf("segment %d kind = %v, want %v", i, got.Entity.Kind, want.Entity.Kind)
	}
	if got.Entity.Name != want.Entity.Name {
		t.Errorf("segment %d name = %q, want %q", i, got.Entity.Name, want.Entity.Name)
	}
	if (got.Entity.Range == nil) != (want.Entity.Range == nil) {
		t.Fatalf("segment %d range presence = %v, want %v", i, got.Entity.Range != nil, want.Entity.Range != nil)
	}
	if got.Entity.Range != nil && *got.Entity.Range != *want.Entity.Range {
		t.Errorf("segment %d range = %+v, want %+v", i, *got.Entity.Range, *want.Entity.Range)
	}
}

func TestFlattenRoundTrip(t *testing.T) {
	values := []string{
		"",
		"plain text with no tags",
		"Check @[File: Plan.md] please",
		"See @[File: Spec.md:10-20]",
		"Done @[Task: Ship v1]",
		"@[File: a.md]@[Task: b]@[File: c.md:1-2]",
		"broken @[File: nope",
		"weird @[Other: thing] and @ loose",
		"line one\n@[Task: Review]\nline three",
		"@[File: notes:final.md] has a colon",
	}

	for _, v := range values {
		if got := Flatten(Decode(v)); got != v {
			t.Errorf("Flatten(Decode(%q)) = %q, round trip broken", v, got)
		}
	}
}

func TestEncodeDecodeDeterminism(t *testing.T) {
	entities := []Entity{
		{Kind: KindFile, Name: "Plan.md"},
		{Kind: KindFile, Name: "Spec.md", Range: &LineRange{Start: 10, End: 20}},
		{Kind: KindTask, Name: "Ship v1"},
	}

	for _, e := range entities {
		first := Encode(e)
		segments := Decode(first)
		if len(segments) != 1 || !segments[0].IsChip() {
			t.Fatalf("Decode(%q) did not yield a single chip", first)
		}
		second := Encode(*segments[0].Entity)
		if second != first {
			t.Errorf("encode/decode/encode = %q, want %q", second, first)
		}
	}
}

func TestLabel(t *testing.T) {
	withRange := Entity{Kind: KindFile, Name: "Spec.md", Range: &LineRange{Start: 3, End: 9}}
	if got := withRange.Label(); got != "Spec.md:3-9" {
		t.Errorf("Label() = %q, want %q", got, "Spec.md:3-9")
	}

	task := Entity{Kind: KindTask, Name: "Ship v1"}
	if got := task.Label(); got != "Ship v1" {
		t.Errorf("Label() = %q, want %q", got, "Ship v1")
	}
}

func TestMentionQuery(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		wantTerm string
		wantOpen bool
	}{
		{name: "empty value", value: "", wantOpen: false},
		{name: "bare trigger", value: "hello @", wantTerm: "", wantOpen: true},
		{name: "partial term", value: "check @Pl", wantTerm: "Pl", wantOpen: true},
		{name: "term with dot and hyphen", value: "@my-notes.md", wantTerm: "my-notes.md", wantOpen: true},
		{name: "term with space", value: "@Ship v1", wantTerm: "Ship v1", wantOpen: true},
		{name: "no trigger", value: "plain text", wantOpen: false},
		{name: "punctuation breaks trigger", value: "@Plan!", wantOpen: false},
		{name: "completed tag is not a trigger", value: "done @[File: Plan.md]", wantOpen: false},
		{name: "tag open bracket is not a trigger", value: "typing @[", wantOpen: false},
		{name: "trigger after completed tag", value: "@[File: a.md] and @b", wantTerm: "b", wantOpen: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, open := MentionQuery(tt.value)
			if open != tt.wantOpen {
				t.Fatalf("MentionQuery(%q) open = %v, want %v", tt.value, open, tt.wantOpen)
			}
			if open && term != tt.wantTerm {
				t.Errorf("MentionQuery(%q) term = %q, want %q", tt.value, term, tt.wantTerm)
			}
		})
	}
}
