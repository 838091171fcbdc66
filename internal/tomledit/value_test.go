package tomledit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(v Value) string {
	var b strings.Builder
	v.writeTo(&b)
	return b.String()
}

// parseValue parses the right-hand side of `v = <src>`.
func parseValue(t *testing.T, src string) Value {
	t.Helper()
	doc, err := Parse([]byte("v = " + src))
	require.NoError(t, err)
	node, ok := doc.Root().Get("v")
	require.True(t, ok)
	return node.(Value)
}

// TestArray_Push verifies the layout of appended elements.
func TestArray_Push(t *testing.T) {
	tests := []struct {
		name string
		src  string
		push string
		want string
	}{
		{
			name: "empty array",
			src:  `[]`,
			push: "a",
			want: `["a"]`,
		},
		{
			name: "single line",
			src:  `["a"]`,
			push: "b",
			want: `["a", "b"]`,
		},
		{
			name: "multi-line with trailing comma",
			src:  "[\n    \"a\",\n    \"b\",\n]",
			push: "c",
			want: "[\n    \"a\",\n    \"b\",\n    \"c\",\n]",
		},
		{
			name: "multi-line without trailing comma",
			src:  "[\n    \"a\",\n    \"b\"\n]",
			push: "c",
			want: "[\n    \"a\",\n    \"b\",\n    \"c\"\n]",
		},
		{
			name: "last element comment without trailing comma",
			src:  "[\n  \"std\" # keep\n]",
			push: "derive",
			want: "[\n  \"std\", # keep\n  \"derive\"\n]",
		},
		{
			name: "last element comment after trailing comma",
			src:  "[\n  \"std\", # keep\n]",
			push: "derive",
			want: "[\n  \"std\", # keep\n  \"derive\",\n]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arr := parseValue(t, tt.src).(*Array)
			arr.Push(NewString(tt.push))
			arr.Fmt()
			assert.Equal(t, tt.want, render(arr))
		})
	}
}

// TestArray_Remove verifies the layout left after removing an element.
func TestArray_Remove(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		remove string
		want   string
	}{
		{
			name:   "only element",
			src:    `["bar"]`,
			remove: "bar",
			want:   `[]`,
		},
		{
			name:   "first of two",
			src:    `["bar", "foo"]`,
			remove: "bar",
			want:   `["foo"]`,
		},
		{
			name:   "last of multi-line without trailing comma",
			src:    "[\n    \"a\",\n    \"b\"\n]",
			remove: "b",
			want:   "[\n    \"a\"\n]",
		},
		{
			name:   "middle of multi-line",
			src:    "[\n    \"a\",\n    \"b\",\n    \"c\",\n]",
			remove: "b",
			want:   "[\n    \"a\",\n    \"c\",\n]",
		},
		{
			name:   "comments stay with their elements",
			src:    "[\n  \"std\", # about std\n  \"rc\", # about rc\n]",
			remove: "rc",
			want:   "[\n  \"std\", # about std\n]",
		},
		{
			name:   "first commented element",
			src:    "[\n  \"std\", # about std\n  \"rc\", # about rc\n]",
			remove: "std",
			want:   "[\n  \"rc\", # about rc\n]",
		},
		{
			name:   "middle commented element",
			src:    "[\n  \"a\",\n  \"b\", # about b\n  \"c\",\n]",
			remove: "b",
			want:   "[\n  \"a\",\n  \"c\",\n]",
		},
		{
			name:   "last element without trailing comma",
			src:    "[\n  \"std\", # about std\n  \"rc\" # about rc\n]",
			remove: "rc",
			want:   "[\n  \"std\" # about std\n]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arr := parseValue(t, tt.src).(*Array)
			i := arr.IndexString(tt.remove)
			require.GreaterOrEqual(t, i, 0)

			arr.Remove(i)
			arr.Fmt()

			assert.Equal(t, tt.want, render(arr))
			assert.Equal(t, -1, arr.IndexString(tt.remove))
		})
	}
}

// TestArray_CommentsRoundTrip checks that comments after commas render back
// unchanged.
func TestArray_CommentsRoundTrip(t *testing.T) {
	src := "[\n  \"std\", # about std\n  \"rc\" # about rc\n  # closing\n]"

	arr := parseValue(t, src).(*Array)

	assert.Equal(t, src, render(arr))
	assert.True(t, arr.Multiline())
	assert.Equal(t, []string{"std", "rc"}, arr.Strings())
}

// TestArray_StringsSkipsOtherTypes verifies that non-string elements are ignored.
func TestArray_StringsSkipsOtherTypes(t *testing.T) {
	arr := parseValue(t, `["a", 1, 'b', true]`).(*Array)

	assert.Equal(t, 4, arr.Len())
	assert.Equal(t, []string{"a", "b"}, arr.Strings())
	assert.Equal(t, 2, arr.IndexString("b"))
}

// TestInlineTable_Edit verifies set and remove on inline tables.
func TestInlineTable_Edit(t *testing.T) {
	table := parseValue(t, `{ path = "../test-lib", features = ["bar"] }`).(*InlineTable)

	assert.True(t, table.Remove("features"))
	assert.False(t, table.Remove("features"))
	assert.Equal(t, `{ path = "../test-lib" }`, render(table))

	features := NewArray()
	features.Push(NewString("foo"))
	require.NoError(t, table.Set("features", features))
	require.NoError(t, table.Set("default-features", NewBool(false)))
	assert.Equal(t, `{ path = "../test-lib", features = ["foo"], default-features = false }`, render(table))

	require.NoError(t, table.Set("default-features", NewBool(true)))
	assert.Equal(t, `{ path = "../test-lib", features = ["foo"], default-features = true }`, render(table))
}

// TestInlineTable_Fmt verifies inline table spacing.
func TestInlineTable_Fmt(t *testing.T) {
	table := parseValue(t, `{path="x",version  =  "1"}`).(*InlineTable)
	table.Fmt()
	assert.Equal(t, `{ path = "x", version = "1" }`, render(table))

	assert.True(t, table.Remove("path"))
	assert.True(t, table.Remove("version"))
	table.Fmt()
	assert.Equal(t, `{}`, render(table))
	assert.Equal(t, 0, table.Len())
}

// TestInlineTable_DottedKeys verifies that dotted keys count once per top-level key.
func TestInlineTable_DottedKeys(t *testing.T) {
	table := parseValue(t, `{ a.b = 1, a.c = 2, d = 3 }`).(*InlineTable)

	assert.Equal(t, []string{"a", "d"}, table.Keys())
	assert.Equal(t, 2, table.Len())
	_, ok := table.Get("a")
	assert.False(t, ok)
	_, ok = table.Get("d")
	assert.True(t, ok)
}

// TestNewString_Quoting verifies escaping of new strings.
func TestNewString_Quoting(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "foo", want: `"foo"`},
		{in: `say "hi"`, want: `"say \"hi\""`},
		{in: `C:\path`, want: `"C:\\path"`},
		{in: "tab\there", want: `"tab\there"`},
		{in: "bell\x07", want: `"bell\u0007"`},
		{in: "日本", want: `"日本"`},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			s := NewString(tt.in)
			assert.Equal(t, tt.want, s.Raw())

			decoded, err := decodeString(s.Raw())
			require.NoError(t, err)
			assert.Equal(t, tt.in, decoded)
		})
	}
}

// TestFormatKey verifies when keys need quotes.
func TestFormatKey(t *testing.T) {
	assert.Equal(t, "test-lib", formatKey("test-lib"))
	assert.Equal(t, "default_features", formatKey("default_features"))
	assert.Equal(t, `"cfg(unix)"`, formatKey("cfg(unix)"))
	assert.Equal(t, `""`, formatKey(""))
	assert.Equal(t, `a."b c"`, formatKeyPath([]string{"a", "b c"}))
}
