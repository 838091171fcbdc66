// parser.go splits the source into sections, lines and values.
package tomledit

import (
	"fmt"
	"strings"
)

// parser is a hand-written scanner that keeps every byte of the input.
// Whitespace, comments and blank lines are attached to the key-value or
// header that follows them, so rendering the parsed pieces in order
// reproduces the source exactly.
type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) errorf(format string, args ...interface{}) error {
	if p.pos > len(p.src) {
		p.pos = len(p.src)
	}
	line := strings.Count(p.src[:p.pos], "\n") + 1
	col := p.pos - strings.LastIndex(p.src[:p.pos], "\n")
	return &ParseError{Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}

// whitespace consumes spaces and tabs.
func (p *parser) whitespace() string {
	start := p.pos
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
	return p.src[start:p.pos]
}

// newline consumes "\n" or "\r\n" and reports whether one was found.
func (p *parser) newline() bool {
	if strings.HasPrefix(p.src[p.pos:], "\r\n") {
		p.pos += 2
		return true
	}
	if p.peek() == '\n' {
		p.pos++
		return true
	}
	return false
}

// comment consumes a '#' comment up to, not including, the line break.
func (p *parser) comment() {
	for !p.eof() && p.src[p.pos] != '\n' && !strings.HasPrefix(p.src[p.pos:], "\r\n") {
		p.pos++
	}
}

// trail consumes what may follow an expression on its line: whitespace,
// an optional comment and the line break (or the end of input).
func (p *parser) trail() (string, error) {
	start := p.pos
	p.whitespace()
	if p.peek() == '#' {
		p.comment()
	}
	if !p.newline() && !p.eof() {
		return "", p.errorf("expected newline, found %q", p.peek())
	}
	return p.src[start:p.pos], nil
}

// trivia consumes whitespace, comments and newlines, as allowed between
// array elements.
func (p *parser) trivia() string {
	start := p.pos
	for !p.eof() {
		p.whitespace()
		if p.peek() == '#' {
			p.comment()
		}
		if !p.newline() {
			break
		}
	}
	return p.src[start:p.pos]
}

// lineComment consumes a comment that follows on the current line,
// together with the whitespace before it and the line break after it.
// Without a comment nothing is consumed.
func (p *parser) lineComment() string {
	start := p.pos
	p.whitespace()
	if p.peek() != '#' {
		p.pos = start
		return ""
	}
	p.comment()
	p.newline()
	return p.src[start:p.pos]
}

// parseDocument splits the source into sections.
func (p *parser) parseDocument() ([]*section, error) {
	root := &section{body: &body{}}
	sections := []*section{root}
	current := root
	pendingStart := p.pos

	for !p.eof() {
		p.whitespace()
		switch {
		case p.eof():
			continue
		case p.newline():
			continue
		case p.peek() == '#':
			p.comment()
			p.newline()
			continue
		}

		decor := p.src[pendingStart:p.pos]

		if p.peek() == '[' {
			s, err := p.parseHeader()
			if err != nil {
				return nil, err
			}
			s.decor = decor
			sections = append(sections, s)
			current = s
		} else {
			kv, err := p.parseKeyValue()
			if err != nil {
				return nil, err
			}
			kv.decor = decor
			if kv.trail, err = p.trail(); err != nil {
				return nil, err
			}
			kv.body = current.body
			current.body.entries = append(current.body.entries, kv)
		}
		pendingStart = p.pos
	}

	current.body.trailer = p.src[pendingStart:]
	return sections, nil
}

func (p *parser) parseHeader() (*section, error) {
	start := p.pos
	s := &section{body: &body{}}
	closing := "]"
	if strings.HasPrefix(p.src[p.pos:], "[[") {
		s.array = true
		closing = "]]"
		p.pos += 2
	} else {
		p.pos++
	}
	p.whitespace()
	_, path, err := p.parseKey()
	if err != nil {
		return nil, err
	}
	p.whitespace()
	if !strings.HasPrefix(p.src[p.pos:], closing) {
		return nil, p.errorf("expected %q to close table header", closing)
	}
	p.pos += len(closing)
	s.header = p.src[start:p.pos]
	s.path = path
	if s.headerTrail, err = p.trail(); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *parser) parseKeyValue() (*keyValue, error) {
	raw, path, err := p.parseKey()
	if err != nil {
		return nil, err
	}
	sepStart := p.pos
	p.whitespace()
	if p.peek() != '=' {
		return nil, p.errorf("expected '=' after key %s", raw)
	}
	p.pos++
	p.whitespace()
	sep := p.src[sepStart:p.pos]
	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &keyValue{keyRaw: raw, path: path, sep: sep, value: value}, nil
}

// parseKey reads a possibly dotted key. Whitespace around the dots belongs
// to the key; whitespace after the last segment does not.
func (p *parser) parseKey() (string, []string, error) {
	start := p.pos
	var path []string
	for {
		part, err := p.parseSimpleKey()
		if err != nil {
			return "", nil, err
		}
		path = append(path, part)
		end := p.pos
		p.whitespace()
		if p.peek() != '.' {
			p.pos = end
			return p.src[start:end], path, nil
		}
		p.pos++
		p.whitespace()
	}
}

func (p *parser) parseSimpleKey() (string, error) {
	switch p.peek() {
	case '"':
		raw, err := p.scanBasicString()
		if err != nil {
			return "", err
		}
		return decodeString(raw)
	case '\'':
		raw, err := p.scanLiteralString()
		if err != nil {
			return "", err
		}
		return raw[1 : len(raw)-1], nil
	}
	start := p.pos
	for !p.eof() && isBareKeyChar(p.src[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return "", p.errorf("expected key, found %q", p.peek())
	}
	return p.src[start:p.pos], nil
}

func (p *parser) parseValue() (Value, error) {
	if p.eof() {
		return nil, p.errorf("expected value, found end of input")
	}
	switch p.peek() {
	case '"', '\'':
		return p.parseString()
	case '[':
		return p.parseArray()
	case '{':
		return p.parseInlineTable()
	}
	return p.parseScalar()
}

func (p *parser) parseString() (*String, error) {
	var (
		raw string
		err error
	)
	switch {
	case strings.HasPrefix(p.src[p.pos:], `"""`):
		raw, err = p.scanMultiline(`"""`, true)
	case strings.HasPrefix(p.src[p.pos:], `'''`):
		raw, err = p.scanMultiline(`'''`, false)
	case p.peek() == '"':
		raw, err = p.scanBasicString()
	default:
		raw, err = p.scanLiteralString()
	}
	if err != nil {
		return nil, err
	}
	value, err := decodeString(raw)
	if err != nil {
		return nil, p.errorf("%v", err)
	}
	return &String{raw: raw, value: value}, nil
}

func (p *parser) scanBasicString() (string, error) {
	start := p.pos
	p.pos++
	for !p.eof() {
		switch p.src[p.pos] {
		case '\\':
			p.pos += 2
			continue
		case '"':
			p.pos++
			return p.src[start:p.pos], nil
		case '\n':
			return "", p.errorf("unterminated string")
		}
		p.pos++
	}
	return "", p.errorf("unterminated string")
}

func (p *parser) scanLiteralString() (string, error) {
	start := p.pos
	end := strings.IndexAny(p.src[p.pos+1:], "'\n")
	if end < 0 || p.src[p.pos+1+end] != '\'' {
		return "", p.errorf("unterminated literal string")
	}
	p.pos += end + 2
	return p.src[start:p.pos], nil
}

// scanMultiline reads a multi-line string. Up to two extra quote
// characters directly before the closing delimiter are part of the content.
func (p *parser) scanMultiline(delim string, escapes bool) (string, error) {
	start := p.pos
	p.pos += 3
	for !p.eof() {
		if escapes && p.src[p.pos] == '\\' {
			p.pos += 2
			continue
		}
		if strings.HasPrefix(p.src[p.pos:], delim) {
			p.pos += 3
			for extra := 0; extra < 2 && p.peek() == delim[0]; extra++ {
				p.pos++
			}
			return p.src[start:p.pos], nil
		}
		p.pos++
	}
	return "", p.errorf("unterminated multi-line string")
}

func isScalarChar(c byte) bool {
	return isBareKeyChar(c) || c == '+' || c == '.' || c == ':'
}

// parseScalar reads booleans, numbers and date-times. A date followed by a
// space and a time is a single value.
func (p *parser) parseScalar() (Value, error) {
	start := p.pos
	for !p.eof() && isScalarChar(p.src[p.pos]) {
		p.pos++
	}
	token := p.src[start:p.pos]
	if isDate(token) && p.pos+1 < len(p.src) && p.src[p.pos] == ' ' && isDigit(p.src[p.pos+1]) {
		p.pos++
		for !p.eof() && isScalarChar(p.src[p.pos]) {
			p.pos++
		}
		token = p.src[start:p.pos]
	}
	switch token {
	case "":
		return nil, p.errorf("expected value, found %q", p.peek())
	case "true":
		return &Bool{raw: token, value: true}, nil
	case "false":
		return &Bool{raw: token, value: false}, nil
	}
	return &Scalar{raw: token}, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isDate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for _, i := range []int{0, 1, 2, 3, 5, 6, 8, 9} {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func (p *parser) parseArray() (*Array, error) {
	p.pos++ // '['
	arr := &Array{}
	for {
		pre := p.trivia()
		if p.eof() {
			return nil, p.errorf("unterminated array")
		}
		if p.peek() == ']' {
			p.pos++
			arr.trailing = pre
			return arr, nil
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		elem := &arrayElem{prefix: pre, value: value, suffix: p.trivia()}
		arr.elems = append(arr.elems, elem)
		arr.trailingComma = false
		switch p.peek() {
		case ',':
			p.pos++
			arr.trailingComma = true
			elem.lineEnd = p.lineComment()
		case ']':
			p.pos++
			return arr, nil
		default:
			return nil, p.errorf("expected ',' or ']' in array, found %q", p.peek())
		}
	}
}

func (p *parser) parseInlineTable() (*InlineTable, error) {
	p.pos++ // '{'
	table := &InlineTable{}
	for {
		pre := p.whitespace()
		if p.peek() == '}' {
			p.pos++
			table.trailing = pre
			return table, nil
		}
		kv, err := p.parseKeyValue()
		if err != nil {
			return nil, err
		}
		entry := &inlineEntry{
			prefix: pre,
			keyRaw: kv.keyRaw,
			path:   kv.path,
			sep:    kv.sep,
			value:  kv.value,
		}
		post := p.whitespace()
		table.entries = append(table.entries, entry)
		switch p.peek() {
		case ',':
			entry.suffix = post
			p.pos++
		case '}':
			p.pos++
			table.trailing = post
			return table, nil
		default:
			return nil, p.errorf("expected ',' or '}' in inline table, found %q", p.peek())
		}
	}
}
