package utils

import (
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set"
)

// Indent returns the tree prefix for depth: one '-' per level.
func Indent(depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat("-", depth)
}

// DottedPath joins the enclosing member names and name with dots. The
// root member has no prefix.
func DottedPath(prefix []string, name string) string {
	if len(prefix) == 0 {
		return name
	}
	if name == "" {
		return strings.Join(prefix, ".")
	}
	return strings.Join(prefix, ".") + "." + name
}

// CString quotes s as a C string literal.
func CString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		default:
			if r < 0x20 || r == 0x7f {
				b.WriteString(`\x`)
				b.WriteString(strconv.FormatInt(int64(r), 16))
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// NewTagSet builds a set of DWARF tags or any other comparable keys.
func NewTagSet(keys ...interface{}) mapset.Set {
	return mapset.NewSetFromSlice(keys)
}
