// value.go defines the value nodes. Each keeps its source text so an
// unedited value renders back byte for byte.
package tomledit

import (
	"strings"
)

// Node is anything reachable by key from a table: a Value, a *Table or an
// *ArrayOfTables.
type Node interface {
	tomlNode()
}

// Value is a node that can appear on the right-hand side of "key = ".
// Implementations are *String, *Bool, *Scalar, *Array and *InlineTable.
type Value interface {
	Node
	writeTo(b *strings.Builder)
}

// String is a TOML string in any of its four spellings. The raw text is
// kept so an untouched string renders exactly as it was written.
type String struct {
	raw   string
	value string
}

// NewString creates a basic (double-quoted) string value.
func NewString(s string) *String {
	return &String{raw: quoteBasic(s), value: s}
}

// Value returns the decoded string content.
func (s *String) Value() string { return s.value }

// Raw returns the string as written in the document, quotes included.
func (s *String) Raw() string { return s.raw }

func (s *String) tomlNode()                  {}
func (s *String) writeTo(b *strings.Builder) { b.WriteString(s.raw) }

// Bool is a TOML boolean.
type Bool struct {
	raw   string
	value bool
}

// NewBool creates a boolean value.
func NewBool(v bool) *Bool {
	if v {
		return &Bool{raw: "true", value: true}
	}
	return &Bool{raw: "false", value: false}
}

// Value returns the boolean.
func (v *Bool) Value() bool { return v.value }

func (v *Bool) tomlNode()                  {}
func (v *Bool) writeTo(b *strings.Builder) { b.WriteString(v.raw) }

// Scalar holds integers, floats and date-times. They are never interpreted
// by this package, only carried through verbatim.
type Scalar struct {
	raw string
}

// Raw returns the scalar as written in the document.
func (v *Scalar) Raw() string { return v.raw }

func (v *Scalar) tomlNode()                  {}
func (v *Scalar) writeTo(b *strings.Builder) { b.WriteString(v.raw) }

type arrayElem struct {
	prefix  string // whitespace, comments and newlines before the value
	value   Value
	suffix  string // whitespace, comments and newlines before the comma
	lineEnd string // comment after the comma, up to and including the line break
}

// Array is a TOML array. Whitespace and comments between elements are kept
// with the elements they precede or follow. A comment on the same line as
// an element's comma belongs to that element.
type Array struct {
	elems         []*arrayElem
	trailingComma bool
	trailing      string // trivia between the last comma and ']'
}

// NewArray creates an empty array.
func NewArray() *Array {
	return &Array{}
}

func (a *Array) tomlNode() {}

func (a *Array) writeTo(b *strings.Builder) {
	b.WriteByte('[')
	for i, e := range a.elems {
		b.WriteString(e.prefix)
		e.value.writeTo(b)
		b.WriteString(e.suffix)
		if i < len(a.elems)-1 || a.trailingComma {
			b.WriteByte(',')
			b.WriteString(e.lineEnd)
		}
	}
	b.WriteString(a.trailing)
	b.WriteByte(']')
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.elems) }

// At returns the element at index i.
func (a *Array) At(i int) Value { return a.elems[i].value }

// Strings returns the decoded content of every string element, skipping
// elements of other types.
func (a *Array) Strings() []string {
	out := make([]string, 0, len(a.elems))
	for _, e := range a.elems {
		if s, ok := e.value.(*String); ok {
			out = append(out, s.value)
		}
	}
	return out
}

// IndexString returns the index of the first string element equal to s,
// or -1.
func (a *Array) IndexString(s string) int {
	for i, e := range a.elems {
		if str, ok := e.value.(*String); ok && str.value == s {
			return i
		}
	}
	return -1
}

// Multiline reports whether the array spans more than one line.
func (a *Array) Multiline() bool {
	if strings.Contains(a.trailing, "\n") {
		return true
	}
	for _, e := range a.elems {
		if strings.Contains(e.prefix, "\n") || strings.Contains(e.suffix, "\n") || e.lineEnd != "" {
			return true
		}
	}
	return false
}

// Push appends v. In a multi-line array the new element copies the layout
// of the previous last element; single-line arrays are left for Fmt.
func (a *Array) Push(v Value) {
	elem := &arrayElem{value: v}
	if n := len(a.elems); n > 0 {
		last := a.elems[n-1]
		switch {
		case !a.Multiline():
			elem.prefix = " "
		case last.lineEnd != "":
			elem.prefix = lastIndent(last.prefix)
			elem.lineEnd = lineBreak(last.lineEnd)
		case isBlank(last.suffix):
			elem.prefix = last.prefix
			elem.suffix = last.suffix
			last.suffix = ""
		default:
			comment, rest := sameLineComment(last.suffix)
			if comment == "" {
				elem.prefix = last.prefix
				break
			}
			// The comment stays on its line, after the new comma.
			last.suffix = ""
			last.lineEnd = comment
			elem.prefix = lastIndent(last.prefix)
			elem.suffix = lineBreak(comment) + rest
		}
	}
	a.elems = append(a.elems, elem)
}

// Remove deletes the element at index i, preserving the order of the rest.
// Comments written on the removed element's lines go with it.
func (a *Array) Remove(i int) {
	removed := a.elems[i]
	a.elems = append(a.elems[:i], a.elems[i+1:]...)

	n := len(a.elems)
	if n == 0 {
		a.trailingComma = false
		if !strings.Contains(a.trailing, "\n") {
			a.trailing = ""
		}
		return
	}

	if i < n {
		// The next element takes over the line break the removed one
		// started with.
		next := a.elems[i]
		if startsWithBreak(removed.prefix) && !startsWithBreak(next.prefix) {
			p := removed.prefix
			next.prefix = p[:strings.Index(p, "\n")+1] + next.prefix
		}
		return
	}
	if !a.trailingComma {
		closeWith(a.elems[n-1], removed.suffix)
	}
}

// closeWith gives the new last element of an array without trailing comma
// the closing layout of the removed last element.
func closeWith(last *arrayElem, suffix string) {
	comment, rest := sameLineComment(suffix)
	closing := rest
	if comment == "" {
		if nl := strings.Index(suffix, "\n"); nl >= 0 {
			closing = suffix[nl+1:]
		}
	}

	switch {
	case last.lineEnd != "":
		// No comma follows any more; the comment now precedes ']'.
		last.suffix += last.lineEnd + closing
		last.lineEnd = ""
	case comment != "":
		last.suffix += lineBreak(comment) + rest
	case isBlank(last.suffix):
		last.suffix = suffix
	}
}

// Fmt normalizes the spacing of a single-line array to `["a", "b"]`.
// Multi-line arrays keep their layout.
func (a *Array) Fmt() {
	if a.Multiline() {
		return
	}
	for i, e := range a.elems {
		if i == 0 {
			e.prefix = ""
		} else {
			e.prefix = " "
		}
		e.suffix = ""
	}
	a.trailingComma = false
	a.trailing = ""
}

// sameLineComment splits trivia that opens with a comment on the current
// line into that comment, including its line break, and the rest.
func sameLineComment(s string) (string, string) {
	if !strings.HasPrefix(strings.TrimLeft(s, " \t"), "#") {
		return "", s
	}
	nl := strings.Index(s, "\n")
	if nl < 0 {
		return s, ""
	}
	return s[:nl+1], s[nl+1:]
}

func lineBreak(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// lastIndent returns what follows the last line break of s.
func lastIndent(s string) string {
	return s[strings.LastIndex(s, "\n")+1:]
}

func startsWithBreak(s string) bool {
	s = strings.TrimLeft(s, " \t")
	return strings.HasPrefix(s, "\n") || strings.HasPrefix(s, "\r\n")
}

type inlineEntry struct {
	prefix string   // whitespace before the key
	keyRaw string   // key as written, possibly dotted
	path   []string // decoded key segments
	sep    string   // " = " as written
	value  Value
	suffix string // whitespace before the following ',' or '}'
}

// InlineTable is a TOML inline table `{ k = v, ... }`.
//
// Dotted keys inside inline tables are preserved and counted by Len, but
// only single-segment keys can be read or edited.
type InlineTable struct {
	entries  []*inlineEntry
	trailing string // whitespace before '}'
}

// NewInlineTable creates an empty inline table.
func NewInlineTable() *InlineTable {
	return &InlineTable{}
}

func (t *InlineTable) tomlNode() {}

func (t *InlineTable) writeTo(b *strings.Builder) {
	b.WriteByte('{')
	for i, e := range t.entries {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(e.prefix)
		b.WriteString(e.keyRaw)
		b.WriteString(e.sep)
		e.value.writeTo(b)
		b.WriteString(e.suffix)
	}
	b.WriteString(t.trailing)
	b.WriteByte('}')
}

// Len returns the number of distinct top-level keys.
func (t *InlineTable) Len() int {
	return len(t.Keys())
}

// Keys returns the distinct top-level keys in document order.
func (t *InlineTable) Keys() []string {
	seen := make(map[string]bool, len(t.entries))
	keys := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		if !seen[e.path[0]] {
			seen[e.path[0]] = true
			keys = append(keys, e.path[0])
		}
	}
	return keys
}

func (t *InlineTable) find(key string) int {
	for i, e := range t.entries {
		if len(e.path) == 1 && e.path[0] == key {
			return i
		}
	}
	return -1
}

// Get returns the value stored under key.
func (t *InlineTable) Get(key string) (Node, bool) {
	if i := t.find(key); i >= 0 {
		return t.entries[i].value, true
	}
	return nil, false
}

// Set replaces the value under key in place, or appends a new `key = v`
// entry at the end of the table.
func (t *InlineTable) Set(key string, v Value) error {
	if i := t.find(key); i >= 0 {
		t.entries[i].value = v
		return nil
	}
	entry := &inlineEntry{
		prefix: " ",
		keyRaw: formatKey(key),
		path:   []string{key},
		sep:    " = ",
		value:  v,
	}
	if len(t.entries) == 0 && t.trailing == "" {
		t.trailing = " "
	}
	t.entries = append(t.entries, entry)
	return nil
}

// Remove deletes key and reports whether it was present.
func (t *InlineTable) Remove(key string) bool {
	i := t.find(key)
	if i < 0 {
		return false
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	return true
}

// Fmt normalizes spacing to `{ a = 1, b = 2 }`, or `{}` when empty.
func (t *InlineTable) Fmt() {
	for _, e := range t.entries {
		e.prefix = " "
		e.sep = " = "
		e.suffix = ""
	}
	if len(t.entries) == 0 {
		t.trailing = ""
	} else {
		t.trailing = " "
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
