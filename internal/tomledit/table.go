// table.go implements the logical table tree on top of the sections.
//
// A Table may be spread over several places in the document: its own
// header section, dotted keys in a parent's body, or nothing at all when
// only a longer header implies it. Edits go to the lines that already
// define the table.
package tomledit

import (
	"errors"
	"fmt"
)

// ErrNoBody is returned when a key cannot be inserted into a table because
// the table has no lines of its own, e.g. `target` in
// [target.'cfg(unix)'.dependencies].
var ErrNoBody = errors.New("table has no body to hold new keys")

// TableLike is implemented by every node that maps keys to nodes:
// *Table (root, [header], implicit and dotted-key tables) and *InlineTable.
type TableLike interface {
	Node
	Len() int
	Keys() []string
	Get(key string) (Node, bool)
	Set(key string, v Value) error
	Remove(key string) bool
}

type tableKind int

const (
	tableRoot     tableKind = iota
	tableHeader             // [a.b] or an element of [[a]]
	tableImplicit           // a prefix of a header that has no header of its own
	tableDotted             // defined by dotted keys: a.b = 1
)

// Table is a table that is not written inline: the root table, a table
// with its own header, a table only implied by a longer header, or a table
// built from dotted keys.
type Table struct {
	doc     *Document
	kind    tableKind
	section *section // section whose body holds this table's lines
	body    *body
	prefix  []string // dotted tables: key path from the body's own table
	entries []*tableEntry
}

type tableEntry struct {
	key   string
	kv    *keyValue
	table *Table
	array *ArrayOfTables
}

func (e *tableEntry) node() Node {
	switch {
	case e.kv != nil:
		return e.kv.value
	case e.table != nil:
		return e.table
	default:
		return e.array
	}
}

// ArrayOfTables is a [[header]] array.
type ArrayOfTables struct {
	tables []*Table
}

func (a *ArrayOfTables) tomlNode() {}

// Len returns the number of tables in the array.
func (a *ArrayOfTables) Len() int { return len(a.tables) }

// At returns the i-th table.
func (a *ArrayOfTables) At(i int) *Table { return a.tables[i] }

func (t *Table) tomlNode() {}

// IsImplicit reports whether the table only exists because a longer header
// names it.
func (t *Table) IsImplicit() bool { return t.kind == tableImplicit }

// IsDotted reports whether the table is defined by dotted keys.
func (t *Table) IsDotted() bool { return t.kind == tableDotted }

// Len returns the number of keys.
func (t *Table) Len() int { return len(t.entries) }

// Keys returns the keys in the order they were defined.
func (t *Table) Keys() []string {
	keys := make([]string, len(t.entries))
	for i, e := range t.entries {
		keys[i] = e.key
	}
	return keys
}

func (t *Table) entry(key string) *tableEntry {
	for _, e := range t.entries {
		if e.key == key {
			return e
		}
	}
	return nil
}

// Get returns the node stored under key.
func (t *Table) Get(key string) (Node, bool) {
	if e := t.entry(key); e != nil {
		return e.node(), true
	}
	return nil, false
}

// Set stores v under key. An existing value is replaced in place, keeping
// the surrounding formatting. An existing sub-table is replaced by a
// `key = v` line in this table, removing the sub-table's lines. A missing
// key is appended after the table's last line.
func (t *Table) Set(key string, v Value) error {
	e := t.entry(key)
	if e == nil {
		kv, err := t.insert(key, v)
		if err != nil {
			return err
		}
		t.entries = append(t.entries, &tableEntry{key: key, kv: kv})
		return nil
	}

	switch {
	case e.kv != nil:
		e.kv.value = v
		return nil
	case e.table != nil:
		return t.replaceTable(e, v)
	default:
		return fmt.Errorf("key %q holds an array of tables", key)
	}
}

// Remove deletes key, including every line of a sub-table stored under
// it, and reports whether it was present.
func (t *Table) Remove(key string) bool {
	for i, e := range t.entries {
		if e.key != key {
			continue
		}
		switch {
		case e.kv != nil:
			e.kv.body.remove(e.kv)
		case e.table != nil:
			t.doc.removeTree(e.table)
		case e.array != nil:
			for _, at := range e.array.tables {
				t.doc.removeTree(at)
			}
		}
		t.entries = append(t.entries[:i], t.entries[i+1:]...)
		return true
	}
	return false
}

func (t *Table) insert(key string, v Value) (*keyValue, error) {
	switch t.kind {
	case tableRoot, tableHeader:
		return t.doc.insertKeyValue(t.section, []string{key}, v, len(t.body.entries)), nil
	case tableDotted:
		path := make([]string, 0, len(t.prefix)+1)
		path = append(path, t.prefix...)
		path = append(path, key)
		return t.doc.insertKeyValue(t.section, path, v, t.lastLine()+1), nil
	default:
		return nil, fmt.Errorf("insert %q: %w", key, ErrNoBody)
	}
}

// owns reports whether a line of the body belongs to this dotted table.
func (t *Table) owns(kv *keyValue) bool {
	if len(kv.path) <= len(t.prefix) {
		return false
	}
	for i, p := range t.prefix {
		if kv.path[i] != p {
			return false
		}
	}
	return true
}

// lastLine returns the body index of the dotted table's last line.
func (t *Table) lastLine() int {
	last := -1
	for i, kv := range t.body.entries {
		if t.owns(kv) {
			last = i
		}
	}
	return last
}

func (t *Table) replaceTable(e *tableEntry, v Value) error {
	child := e.table

	if child.kind == tableDotted {
		// The first line of the dotted table becomes `key = v`.
		var first *keyValue
		for _, kv := range append([]*keyValue(nil), child.body.entries...) {
			if !child.owns(kv) {
				continue
			}
			if first == nil {
				first = kv
				continue
			}
			kv.body.remove(kv)
		}
		if first == nil {
			return fmt.Errorf("replace %q: dotted table has no lines", e.key)
		}
		first.path = append([]string(nil), child.prefix...)
		first.keyRaw = formatKeyPath(first.path)
		first.value = v
		e.table, e.kv = nil, first
		return nil
	}

	kv, err := t.insert(e.key, v)
	if err != nil {
		return err
	}
	if child.kind == tableHeader {
		// Comments above the removed header now introduce the new line.
		kv.decor = trimLeadingBlankLines(child.section.decor) + kv.decor
	}
	t.doc.removeTree(child)
	e.table, e.kv = nil, kv
	return nil
}

func (t *Table) bindBody() error {
	for _, kv := range t.body.entries {
		if err := t.bind(kv); err != nil {
			return err
		}
	}
	return nil
}

// bind attaches one line to the table, creating dotted sub-tables for the
// leading segments of a dotted key.
func (t *Table) bind(kv *keyValue) error {
	cur := t
	for i, key := range kv.path[:len(kv.path)-1] {
		e := cur.entry(key)
		if e == nil {
			child := &Table{
				doc:     t.doc,
				kind:    tableDotted,
				section: t.section,
				body:    t.body,
				prefix:  append([]string(nil), kv.path[:i+1]...),
			}
			cur.entries = append(cur.entries, &tableEntry{key: key, table: child})
			cur = child
			continue
		}
		if e.table == nil || e.table.kind != tableDotted {
			return fmt.Errorf("key %s: %q is already defined", kv.keyRaw, key)
		}
		cur = e.table
	}

	last := kv.path[len(kv.path)-1]
	if cur.entry(last) != nil {
		return fmt.Errorf("key %s is already defined", kv.keyRaw)
	}
	cur.entries = append(cur.entries, &tableEntry{key: last, kv: kv})
	return nil
}

// descend returns the sub-table under key, creating an implicit one when
// the key is not defined yet. Inside an array of tables the last element
// is used.
func (t *Table) descend(key string) (*Table, error) {
	e := t.entry(key)
	switch {
	case e == nil:
		child := &Table{doc: t.doc, kind: tableImplicit}
		t.entries = append(t.entries, &tableEntry{key: key, table: child})
		return child, nil
	case e.table != nil:
		return e.table, nil
	case e.array != nil && len(e.array.tables) > 0:
		return e.array.tables[len(e.array.tables)-1], nil
	default:
		return nil, fmt.Errorf("key %q is not a table", key)
	}
}
