// Package tomledit is a format-preserving TOML document model.
//
// A Document renders back to its source byte for byte. Comments, blank
// lines, indentation, key order and quoting style survive every edit that
// does not touch them. Edits are expressed on a logical tree:
//
//   - TableLike nodes (*Table, *InlineTable) offer ordered lookup, in-place
//     replacement, insertion and removal of keys.
//   - Values are *String, *Bool, *Scalar, *Array and *InlineTable.
//   - *Array supports push/remove that follows the array's existing layout.
//
// Parsing delegates syntax checking and string unescaping to
// github.com/pelletier/go-toml/v2, so the documents accepted and the
// string contents produced match any other TOML tool.
package tomledit
