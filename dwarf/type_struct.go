package dwarfhelper

import (
	"debug/dwarf"
)

// AnonymousName is reported for structures without a tag name; they are
// usually only reachable through a typedef.
const AnonymousName = "(anonymous)"

// StructureType is a DW_TAG_structure_type or DW_TAG_class_type entry.
type StructureType struct {
	view
}

func NewStructureType(e Entry) (StructureType, error) {
	if err := checkTag(e, dwarf.TagStructType, dwarf.TagClassType); err != nil {
		return StructureType{}, err
	}
	return StructureType{view{e}}, nil
}

func (s StructureType) TagName() string {
	name, ok := attrString(s.Entry, dwarf.AttrName)
	if !ok || name == "" {
		return AnonymousName
	}
	return name
}

// Kind returns "struct" or "class".
func (s StructureType) Kind() string {
	if s.Tag == dwarf.TagClassType {
		return "class"
	}
	return "struct"
}

func (s StructureType) ByteSize() (uint64, error) {
	return requireUint(s.Entry, dwarf.AttrByteSize)
}

// Incomplete reports whether s is only a declaration.
func (s StructureType) Incomplete() bool {
	return s.Val(dwarf.AttrDeclaration) != nil
}

// Members returns the DW_TAG_member and DW_TAG_inheritance children of s
// in declaration order.
func (s StructureType) Members() []Member {
	var r []Member
	for _, c := range s.Children() {
		if c.Tag == dwarf.TagMember || c.Tag == dwarf.TagInheritance {
			r = append(r, Member{view{c}})
		}
	}
	return r
}
