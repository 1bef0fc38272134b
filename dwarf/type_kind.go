package dwarfhelper

import (
	"debug/dwarf"
)

// Type is the closed set of entry views produced by Classify.
type Type interface {
	Die() Entry
	isType()
}

type view struct {
	Entry
}

func (v view) Die() Entry { return v.Entry }

func (view) isType() {}

// Unsupported wraps an entry the layout engine cannot describe.
type Unsupported struct {
	view
	Err error
}

// Classify returns the view matching the tag of e. Entries whose tag has no
// layout meaning come back as Unsupported.
func Classify(e Entry) Type {
	if !e.Valid() {
		return Unsupported{view{e}, &UnsupportedError{What: "invalid entry"}}
	}
	switch e.Tag {
	case dwarf.TagBaseType, dwarf.TagUnspecifiedType:
		return BaseType{view{e}}
	case dwarf.TagTypedef:
		return Typedef{view{e}}
	case dwarf.TagStructType, dwarf.TagClassType:
		return StructureType{view{e}}
	case dwarf.TagMember, dwarf.TagInheritance:
		return Member{view{e}}
	case dwarf.TagArrayType:
		return ArrayType{view{e}}
	case dwarf.TagPointerType, dwarf.TagReferenceType, dwarf.TagRvalueReferenceType, dwarf.TagPtrToMemberType:
		return PointerType{view{e}}
	case dwarf.TagEnumerationType:
		return EnumType{view{e}}
	case dwarf.TagConstType, dwarf.TagVolatileType, dwarf.TagRestrictType, dwarf.TagAtomicType:
		return QualifiedType{view{e}}
	case dwarf.TagUnionType:
		return Unsupported{view{e}, &UnsupportedError{Offset: e.Offset, Tag: e.Tag, What: "union layout"}}
	case 0:
		return Unsupported{view{e}, &UnsupportedError{Offset: e.Offset, Tag: e.Tag, What: "null entry"}}
	}
	return Unsupported{view{e}, &UnsupportedError{Offset: e.Offset, Tag: e.Tag, What: "tag"}}
}

// IsStructure reports whether e is a structure or class type.
func IsStructure(e Entry) bool {
	_, ok := Classify(e).(StructureType)
	return ok
}
