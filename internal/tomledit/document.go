// document.go holds the section list a Document is made of and the
// operations that insert or remove whole lines.
package tomledit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ParseError reports an invalid document. Line and Column are zero when
// the position is unknown.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// section is a run of the document introduced by a table header, or the
// header-less run at the top of the file (the root section).
type section struct {
	decor       string   // blank lines and comments before the header
	header      string   // "[a.b]" or "[[a]]" as written; empty for the root
	headerTrail string   // whitespace, comment and newline after the header
	path        []string // decoded header key
	array       bool
	body        *body
}

// body holds the key-value lines of a section in document order.
type body struct {
	entries []*keyValue
	trailer string // trivia after the last line of the document
}

func (b *body) index(kv *keyValue) int {
	for i, e := range b.entries {
		if e == kv {
			return i
		}
	}
	return -1
}

func (b *body) remove(kv *keyValue) {
	if i := b.index(kv); i >= 0 {
		b.entries = append(b.entries[:i], b.entries[i+1:]...)
	}
}

// keyValue is one `key = value` line.
type keyValue struct {
	decor  string   // blank lines, comments and indentation before the key
	keyRaw string   // key as written, possibly dotted
	path   []string // decoded key segments
	sep    string   // " = " as written
	value  Value
	trail  string // whitespace, comment and newline after the value
	body   *body
}

func (kv *keyValue) writeTo(b *strings.Builder) {
	b.WriteString(kv.decor)
	b.WriteString(kv.keyRaw)
	b.WriteString(kv.sep)
	kv.value.writeTo(b)
	b.WriteString(kv.trail)
}

// Document is a parsed TOML document that renders back to its source text
// byte for byte, except where it was edited.
type Document struct {
	sections []*section
	root     *Table
	newline  string
}

// Parse parses src. The input is first checked by go-toml so syntax errors
// carry the same positions and messages any TOML tool would report.
func Parse(src []byte) (*Document, error) {
	if err := validate(src); err != nil {
		return nil, err
	}

	p := &parser{src: string(src)}
	sections, err := p.parseDocument()
	if err != nil {
		return nil, err
	}

	d := &Document{sections: sections, newline: "\n"}
	if strings.Contains(p.src, "\r\n") {
		d.newline = "\r\n"
	}
	if err := d.build(); err != nil {
		return nil, err
	}
	return d, nil
}

// Root returns the top-level table.
func (d *Document) Root() *Table {
	return d.root
}

// String renders the document.
func (d *Document) String() string {
	var b strings.Builder
	for _, s := range d.sections {
		if s.header != "" {
			b.WriteString(s.decor)
			b.WriteString(s.header)
			b.WriteString(s.headerTrail)
		}
		for _, kv := range s.body.entries {
			kv.writeTo(&b)
		}
		b.WriteString(s.body.trailer)
	}
	return b.String()
}

// Bytes renders the document.
func (d *Document) Bytes() []byte {
	return []byte(d.String())
}

// Validate checks that the rendered document is still valid TOML.
func (d *Document) Validate() error {
	return validate(d.Bytes())
}

func validate(src []byte) error {
	var v map[string]interface{}
	if err := toml.Unmarshal(src, &v); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return &ParseError{Line: row, Column: col, Message: derr.Error()}
		}
		// Semantic errors such as duplicate keys carry no position.
		return &ParseError{Message: err.Error()}
	}
	return nil
}

// build links sections and key-values into the logical table tree.
func (d *Document) build() error {
	rootSection := d.sections[0]
	d.root = &Table{doc: d, kind: tableRoot, section: rootSection, body: rootSection.body}
	if err := d.root.bindBody(); err != nil {
		return err
	}

	for _, s := range d.sections[1:] {
		parent := d.root
		for _, key := range s.path[:len(s.path)-1] {
			next, err := parent.descend(key)
			if err != nil {
				return fmt.Errorf("table %s: %w", s.header, err)
			}
			parent = next
		}

		last := s.path[len(s.path)-1]
		t := &Table{doc: d, kind: tableHeader, section: s, body: s.body}
		e := parent.entry(last)
		switch {
		case s.array:
			if e == nil {
				e = &tableEntry{key: last, array: &ArrayOfTables{}}
				parent.entries = append(parent.entries, e)
			} else if e.array == nil {
				return fmt.Errorf("table %s: key %q is already defined", s.header, last)
			}
			e.array.tables = append(e.array.tables, t)
		case e == nil:
			parent.entries = append(parent.entries, &tableEntry{key: last, table: t})
		case e.table != nil && e.table.kind == tableImplicit:
			e.table.kind = tableHeader
			e.table.section = s
			e.table.body = s.body
			t = e.table
		default:
			return fmt.Errorf("table %s: key %q is already defined", s.header, last)
		}

		if err := t.bindBody(); err != nil {
			return err
		}
	}
	return nil
}

// insertKeyValue adds a `path = v` line to the body of s at index at
// (len(entries) appends). Indentation is copied from a neighbouring line.
func (d *Document) insertKeyValue(s *section, path []string, v Value, at int) *keyValue {
	b := s.body
	if at < 0 || at > len(b.entries) {
		at = len(b.entries)
	}

	trail := d.newline
	var prev *string
	if at > 0 {
		prev = &b.entries[at-1].trail
	} else if s.header != "" {
		prev = &s.headerTrail
	}
	if prev != nil && !strings.HasSuffix(*prev, "\n") {
		*prev += d.newline
		if at == len(b.entries) {
			// Keep a document that ended without a newline that way.
			trail = ""
		}
	}

	kv := &keyValue{
		decor:  indentAt(b, at),
		keyRaw: formatKeyPath(path),
		path:   path,
		sep:    " = ",
		value:  v,
		trail:  trail,
		body:   b,
	}
	b.entries = append(b.entries, nil)
	copy(b.entries[at+1:], b.entries[at:])
	b.entries[at] = kv
	return kv
}

func indentAt(b *body, at int) string {
	var ref *keyValue
	switch {
	case at > 0:
		ref = b.entries[at-1]
	case len(b.entries) > 0:
		ref = b.entries[0]
	default:
		return ""
	}
	indent := ref.decor[strings.LastIndex(ref.decor, "\n")+1:]
	if strings.TrimLeft(indent, " \t") != "" {
		return ""
	}
	return indent
}

// removeSection drops s from the document. Trivia at the end of the
// document stays at the end, and a document never starts with the blank
// lines that separated s from the next section.
func (d *Document) removeSection(s *section) {
	for i, e := range d.sections {
		if e != s || i == 0 {
			continue
		}
		d.sections = append(d.sections[:i], d.sections[i+1:]...)
		d.sections[i-1].body.trailer += s.body.trailer
		if i < len(d.sections) && d.blankBefore(i) {
			d.sections[i].decor = trimLeadingBlankLines(d.sections[i].decor)
		}
		return
	}
}

// blankBefore reports whether the sections before index i render nothing.
func (d *Document) blankBefore(i int) bool {
	for _, s := range d.sections[:i] {
		if s.header != "" || len(s.body.entries) > 0 || s.body.trailer != "" {
			return false
		}
	}
	return true
}

func trimLeadingBlankLines(s string) string {
	for {
		nl := strings.Index(s, "\n")
		if nl < 0 || strings.TrimSpace(s[:nl]) != "" {
			return s
		}
		s = s[nl+1:]
	}
}

// removeTree deletes every line that defines t or anything below it.
func (d *Document) removeTree(t *Table) {
	if t.kind == tableHeader {
		d.removeSection(t.section)
	}
	for _, e := range t.entries {
		switch {
		case e.kv != nil:
			if t.kind == tableDotted {
				e.kv.body.remove(e.kv)
			}
		case e.table != nil:
			d.removeTree(e.table)
		case e.array != nil:
			for _, at := range e.array.tables {
				d.removeTree(at)
			}
		}
	}
}
