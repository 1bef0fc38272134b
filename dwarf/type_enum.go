package dwarfhelper

import (
	"debug/dwarf"
)

// EnumType is a DW_TAG_enumeration_type entry. Only its size matters for
// layout.
type EnumType struct {
	view
}

func (t EnumType) Name() (string, bool) {
	name, ok := attrString(t.Entry, dwarf.AttrName)
	return name, ok && name != ""
}

func (t EnumType) ByteSize() (uint64, error) {
	return requireUint(t.Entry, dwarf.AttrByteSize)
}

// PointerType covers pointers, C++ references and pointers to members.
type PointerType struct {
	view
}

func (p PointerType) ByteSize() (uint64, error) {
	return requireUint(p.Entry, dwarf.AttrByteSize)
}

// Pointee returns the referenced type; ok is false for void pointers.
func (p PointerType) Pointee() (Entry, bool, error) {
	if p.Val(dwarf.AttrType) == nil {
		return Entry{}, false, nil
	}
	t, err := TypeOf(p.Entry)
	return t, err == nil, err
}

// QualifiedType is a const, volatile, restrict or atomic wrapper.
type QualifiedType struct {
	view
}

func (q QualifiedType) Qualifier() string {
	switch q.Tag {
	case dwarf.TagConstType:
		return "const"
	case dwarf.TagVolatileType:
		return "volatile"
	case dwarf.TagRestrictType:
		return "restrict"
	case dwarf.TagAtomicType:
		return "_Atomic"
	}
	return ""
}

// Type returns the qualified type; ok is false for a qualified void.
func (q QualifiedType) Type() (Entry, bool, error) {
	if q.Val(dwarf.AttrType) == nil {
		return Entry{}, false, nil
	}
	t, err := TypeOf(q.Entry)
	return t, err == nil, err
}
