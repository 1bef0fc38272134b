package dwarfhelper

import (
	"debug/dwarf"
	"fmt"
)

// Describe returns a one-line C-like description of the type entry e:
// the declared name when it has one, otherwise a description built from
// the entry's shape.
func Describe(e Entry, limit int) string {
	if limit <= 0 {
		limit = DefaultAliasLimit
	}
	return describe(e, limit)
}

func describe(e Entry, depth int) string {
	if !e.Valid() {
		return "void"
	}
	if depth <= 0 {
		return "..."
	}
	switch t := Classify(e).(type) {
	case BaseType:
		if name, err := t.Name(); err == nil {
			return name
		}
		return "void"
	case Typedef:
		if name, err := t.Name(); err == nil {
			return name
		}
		return describe(typeOrInvalid(t.Entry), depth-1)
	case EnumType:
		if name, ok := t.Name(); ok {
			return "enum " + name
		}
		return "enum " + AnonymousName
	case StructureType:
		return t.Kind() + " " + t.TagName()
	case PointerType:
		suffix := "*"
		switch t.Tag {
		case dwarf.TagReferenceType:
			suffix = "&"
		case dwarf.TagRvalueReferenceType:
			suffix = "&&"
		}
		pointee, ok, err := t.Pointee()
		if err != nil {
			return "?" + suffix
		}
		if !ok {
			return "void" + suffix
		}
		return describe(pointee, depth-1) + suffix
	case QualifiedType:
		inner, ok, err := t.Type()
		if err != nil {
			return t.Qualifier() + " ?"
		}
		if !ok {
			return t.Qualifier() + " void"
		}
		return t.Qualifier() + " " + describe(inner, depth-1)
	case ArrayType:
		elem := "?"
		if et, err := t.ElementType(); err == nil {
			elem = describe(et, depth-1)
		}
		if n, err := t.Length(); err == nil {
			return fmt.Sprintf("array of %s length %d", elem, n)
		}
		return fmt.Sprintf("array of %s length ?", elem)
	}
	if e.Tag == dwarf.TagUnionType {
		name, ok := e.Name()
		if !ok || name == "" {
			name = AnonymousName
		}
		return "union " + name
	}
	if name, ok := e.Name(); ok && name != "" {
		return name
	}
	return tagName(e.Tag)
}

func typeOrInvalid(e Entry) Entry {
	t, err := TypeOf(e)
	if err != nil {
		return Entry{}
	}
	return t
}

// ByteSize returns the size of a value of type e, following typedefs and
// qualifiers. ok is false when the size is unknown.
func ByteSize(e Entry, limit int) (uint64, bool) {
	if limit <= 0 {
		limit = DefaultAliasLimit
	}
	return byteSize(e, limit, limit)
}

func byteSize(e Entry, limit, depth int) (uint64, bool) {
	if depth <= 0 {
		return 0, false
	}
	r, err := ResolveLayout(e, limit)
	if err != nil || !r.Valid() {
		return 0, false
	}
	if sz, ok := attrUint(r, dwarf.AttrByteSize); ok {
		return sz, true
	}
	a, err := NewArrayType(r)
	if err != nil {
		return 0, false
	}
	n, err := a.ElementCount()
	if err != nil {
		return 0, false
	}
	elem, err := a.ElementType()
	if err != nil {
		return 0, false
	}
	esz, ok := byteSize(elem, limit, depth-1)
	if !ok {
		return 0, false
	}
	return n * esz, true
}
