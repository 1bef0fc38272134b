package dwarfhelper

import (
	"debug/dwarf"
)

// BaseType is a DW_TAG_base_type entry.
type BaseType struct {
	view
}

func NewBaseType(e Entry) (BaseType, error) {
	if err := checkTag(e, dwarf.TagBaseType, dwarf.TagUnspecifiedType); err != nil {
		return BaseType{}, err
	}
	return BaseType{view{e}}, nil
}

func (b BaseType) Name() (string, error) {
	return requireString(b.Entry, dwarf.AttrName)
}

// ByteSize returns DW_AT_byte_size. DW_TAG_unspecified_type (void) has size 0.
func (b BaseType) ByteSize() (uint64, error) {
	if b.Tag == dwarf.TagUnspecifiedType {
		sz, _ := attrUint(b.Entry, dwarf.AttrByteSize)
		return sz, nil
	}
	return requireUint(b.Entry, dwarf.AttrByteSize)
}

// Encoding returns DW_AT_encoding (DW_ATE_signed, DW_ATE_float, ...).
func (b BaseType) Encoding() (uint64, bool) {
	return attrUint(b.Entry, dwarf.AttrEncoding)
}

// Typedef is a DW_TAG_typedef entry.
type Typedef struct {
	view
}

func NewTypedef(e Entry) (Typedef, error) {
	if err := checkTag(e, dwarf.TagTypedef); err != nil {
		return Typedef{}, err
	}
	return Typedef{view{e}}, nil
}

func (t Typedef) Name() (string, error) {
	return requireString(t.Entry, dwarf.AttrName)
}

func (t Typedef) Type() (Entry, error) {
	return TypeOf(t.Entry)
}
