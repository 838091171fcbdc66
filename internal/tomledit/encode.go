// encode.go converts between decoded strings and keys and their TOML
// spelling.
package tomledit

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// decodeString turns a quoted TOML string (basic, literal, or either
// multi-line form) into its content. go-toml does the unescaping so the
// result follows the TOML rules exactly.
func decodeString(raw string) (string, error) {
	var holder struct {
		V string `toml:"v"`
	}
	if err := toml.Unmarshal([]byte("v = "+raw), &holder); err != nil {
		return "", fmt.Errorf("decode string %s: %w", raw, err)
	}
	return holder.V, nil
}

// quoteBasic renders s as a single-line basic string.
//
// go-toml's encoder prefers literal strings ('...'), while manifests
// conventionally use double quotes, so basic strings are written here.
func quoteBasic(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

func isBareKeyChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-'
}

// formatKey renders a single key segment, quoting it only when needed.
func formatKey(key string) string {
	if key == "" {
		return `""`
	}
	for i := 0; i < len(key); i++ {
		if !isBareKeyChar(key[i]) {
			return quoteBasic(key)
		}
	}
	return key
}

// formatKeyPath renders a dotted key.
func formatKeyPath(path []string) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = formatKey(p)
	}
	return strings.Join(parts, ".")
}
