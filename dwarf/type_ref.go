package dwarfhelper

import (
	"debug/dwarf"
	"fmt"

	mapset "github.com/deckarep/golang-set"
)

// DefaultAliasLimit is the longest typedef/qualifier chain followed before
// the chain is reported as non-terminating.
const DefaultAliasLimit = 64

// TypeOf returns the entry referenced by the DW_AT_type attribute of e.
func TypeOf(e Entry) (Entry, error) {
	if !e.Valid() {
		return Entry{}, fmt.Errorf("type of invalid entry")
	}
	switch ref := e.Val(dwarf.AttrType).(type) {
	case dwarf.Offset:
		if e.Unit == nil {
			return Entry{}, fmt.Errorf("%s: entry has no owning unit", e)
		}
		t, err := e.Unit.Resolve(ref)
		if err != nil {
			return Entry{}, &UnsupportedError{Offset: e.Offset, Tag: e.Tag, What: fmt.Sprintf("type reference to %#x (%v)", ref, err)}
		}
		return t, nil
	case uint64:
		// DW_FORM_ref_sig8 points into a type unit, which debug/dwarf does
		// not expose as an entry tree.
		return Entry{}, &UnsupportedError{Offset: e.Offset, Tag: e.Tag, What: fmt.Sprintf("type unit reference %#x", ref)}
	case nil:
		return Entry{}, &MissingAttributeError{Offset: e.Offset, Tag: e.Tag, Attr: dwarf.AttrType}
	default:
		return Entry{}, &UnsupportedError{Offset: e.Offset, Tag: e.Tag, What: fmt.Sprintf("type attribute of class %T", ref)}
	}
}

// ResolveAlias follows typedefs starting at e and returns the first entry
// that is not a typedef.
func ResolveAlias(e Entry, limit int) (Entry, error) {
	return follow(e, limit, isTypedef)
}

// ResolveLayout is ResolveAlias that also looks through const, volatile,
// restrict and atomic qualifiers. The result determines how a value of
// type e is laid out.
func ResolveLayout(e Entry, limit int) (Entry, error) {
	return follow(e, limit, func(tag dwarf.Tag) bool {
		return isTypedef(tag) || isQualifier(tag)
	})
}

// AliasChain returns the names of the typedefs starting at e, in traversal
// order, and the entry the chain resolves to.
func AliasChain(e Entry, limit int) ([]string, Entry, error) {
	names := []string{}
	resolved, err := walkChain(e, limit, isTypedef, func(cur Entry) {
		name, _ := cur.Name()
		names = append(names, name)
	})
	return names, resolved, err
}

func follow(e Entry, limit int, through func(dwarf.Tag) bool) (Entry, error) {
	return walkChain(e, limit, through, nil)
}

func walkChain(e Entry, limit int, through func(dwarf.Tag) bool, visit func(Entry)) (Entry, error) {
	if limit <= 0 {
		limit = DefaultAliasLimit
	}
	visited := mapset.NewThreadUnsafeSet()
	cur := e
	for cur.Valid() && through(cur.Tag) {
		if !visited.Add(cur.Offset) || visited.Cardinality() > limit {
			return Entry{}, &AliasCycleError{Offset: e.Offset, Length: visited.Cardinality()}
		}
		if visit != nil {
			visit(cur)
		}
		next, err := TypeOf(cur)
		if err != nil {
			return Entry{}, err
		}
		cur = next
	}
	return cur, nil
}

func isTypedef(tag dwarf.Tag) bool {
	return tag == dwarf.TagTypedef
}

func isQualifier(tag dwarf.Tag) bool {
	switch tag {
	case dwarf.TagConstType, dwarf.TagVolatileType, dwarf.TagRestrictType, dwarf.TagAtomicType:
		return true
	}
	return false
}
