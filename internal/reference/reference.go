// Package reference implements the canonical inline tag grammar used by the
// chat feature to mention workspace files and tasks:
//
//	@[File: <name>]
//	@[File: <name>:<startLine>-<endLine>]
//	@[Task: <title>]
//
// The tagged plain-text form is the wire and storage format for composed
// chat input; chips shown in the composer and in message history are derived
// presentation. References are identified by display name, not by a stable
// ID, so a renamed file or a duplicate name can leave a tag ambiguous or
// orphaned. The grammar round-trips through stored chat history, so it must
// stay stable.
package reference

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the two referencable entity types.
type Kind int

const (
	KindFile Kind = iota
	KindTask
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "File"
	case KindTask:
		return "Task"
	default:
		return "Unknown"
	}
}

// LineRange is an optional 1-based line span on a file reference.
type LineRange struct {
	Start int
	End   int
}

// Entity is a single referencable item. Name holds the file name or the
// task title. Range is only meaningful for files and may be nil.
type Entity struct {
	Kind  Kind
	Name  string
	Range *LineRange
}

// Segment is one run of decoded output: either a plain-text run
// (Entity == nil) or a chip carrying the parsed entity plus the verbatim
// tag text it was parsed from. Keeping the original tag text lets callers
// remove exactly the matched substring later.
type Segment struct {
	Text   string
	Entity *Entity
	Tag    string
}

// IsChip reports whether the segment is a reference chip.
func (s Segment) IsChip() bool {
	return s.Entity != nil
}

// Literal returns the segment's contribution to the canonical value: the
// raw text for text runs, the original tag for chips.
func (s Segment) Literal() string {
	if s.Entity != nil {
		return s.Tag
	}
	return s.Text
}

// Encode produces the canonical tag string for an entity. Encode is pure
// and total for valid input. Names containing the tag terminator ']' are
// not representable; callers are expected to reject or rename such entities
// before encoding.
func Encode(e Entity) string {
	switch e.Kind {
	case KindTask:
		return fmt.Sprintf("@[Task: %s]", e.Name)
	default:
		if e.Range != nil {
			return fmt.Sprintf("@[File: %s:%d-%d]", e.Name, e.Range.Start, e.Range.End)
		}
		return fmt.Sprintf("@[File: %s]", e.Name)
	}
}

// Label returns the short display form rendered inside a chip.
func (e Entity) Label() string {
	if e.Kind == KindFile && e.Range != nil {
		return fmt.Sprintf("%s:%d-%d", e.Name, e.Range.Start, e.Range.End)
	}
	return e.Name
}

const (
	tagOpen       = "@["
	filePrefix    = "@[File: "
	taskPrefix    = "@[Task: "
	tagTerminator = ']'
)

// Decode scans a canonical value into segments in a single left-to-right
// pass. Malformed candidates (an unterminated "@[", an unknown keyword, an
// empty body) are emitted as plain text rather than an error. Concatenating
// the literals of the returned segments reproduces the input exactly.
func Decode(value string) []Segment {
	if value == "" {
		return nil
	}

	var segments []Segment
	var plain strings.Builder

	flush := func() {
		if plain.Len() > 0 {
			segments = append(segments, Segment{Text: plain.String()})
			plain.Reset()
		}
	}

	i := 0
	for i < len(value) {
		open := strings.Index(value[i:], tagOpen)
		if open < 0 {
			plain.WriteString(value[i:])
			break
		}
		open += i

		// Everything before the candidate is plain text.
		plain.WriteString(value[i:open])

		entity, tagLen := scanTag(value[open:])
		if entity == nil {
			// Not a well-formed tag; keep the "@[" literal and move on.
			plain.WriteString(tagOpen)
			i = open + len(tagOpen)
			continue
		}

		flush()
		tag := value[open : open+tagLen]
		segments = append(segments, Segment{Entity: entity, Tag: tag})
		i = open + tagLen
	}
	flush()

	return segments
}

// scanTag attempts to parse one tag at the start of s. It returns the
// parsed entity and the tag's byte length, or (nil, 0) if s does not begin
// with a well-formed tag.
func scanTag(s string) (*Entity, int) {
	var kind Kind
	var bodyStart int

	switch {
	case strings.HasPrefix(s, filePrefix):
		kind = KindFile
		bodyStart = len(filePrefix)
	case strings.HasPrefix(s, taskPrefix):
		kind = KindTask
		bodyStart = len(taskPrefix)
	default:
		return nil, 0
	}

	end := strings.IndexByte(s[bodyStart:], tagTerminator)
	if end < 0 {
		return nil, 0
	}
	body := s[bodyStart : bodyStart+end]
	if body == "" {
		return nil, 0
	}

	entity := &Entity{Kind: kind, Name: body}
	if kind == KindFile {
		if name, r, ok := splitLineRange(body); ok {
			entity.Name = name
			entity.Range = r
		}
	}

	return entity, bodyStart + end + 1
}

// splitLineRange peels a trailing ":<start>-<end>" off a file tag body.
// Both bounds must be positive integers; anything else leaves the body
// untouched so names that merely contain colons still decode.
func splitLineRange(body string) (string, *LineRange, bool) {
	colon := strings.LastIndexByte(body, ':')
	if colon <= 0 || colon == len(body)-1 {
		return body, nil, false
	}
	span := body[colon+1:]
	dash := strings.IndexByte(span, '-')
	if dash <= 0 || dash == len(span)-1 {
		return body, nil, false
	}
	start, err := strconv.Atoi(span[:dash])
	if err != nil || start <= 0 {
		return body, nil, false
	}
	end, err := strconv.Atoi(span[dash+1:])
	if err != nil || end <= 0 {
		return body, nil, false
	}
	return body[:colon], &LineRange{Start: start, End: end}, true
}

// Flatten reassembles a canonical value from decoded segments. For any
// input v, Flatten(Decode(v)) == v.
func Flatten(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.Literal())
	}
	return b.String()
}

// MentionQuery inspects the tail of a canonical value for an open mention
// trigger: a '@' followed only by word, space, dot, and hyphen characters
// through end of string. It returns the accumulated search term (the text
// after the '@', possibly empty) and whether the trigger is open. A tail
// that breaks the pattern, or a '@' that is already part of a completed
// tag, closes the trigger.
func MentionQuery(value string) (string, bool) {
	at := -1
	for i := len(value) - 1; i >= 0; i-- {
		c := value[i]
		if c == '@' {
			at = i
			break
		}
		if !isMentionRune(c) {
			return "", false
		}
	}
	if at < 0 {
		return "", false
	}
	// "@[" is tag syntax, not a mention in progress.
	if at+1 < len(value) && value[at+1] == '[' {
		return "", false
	}
	return value[at+1:], true
}

func isMentionRune(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_', c == ' ', c == '.', c == '-':
		return true
	}
	return false
}
