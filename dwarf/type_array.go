package dwarfhelper

import (
	"debug/dwarf"
)

// ArrayType is a DW_TAG_array_type entry.
type ArrayType struct {
	view
}

func NewArrayType(e Entry) (ArrayType, error) {
	if err := checkTag(e, dwarf.TagArrayType); err != nil {
		return ArrayType{}, err
	}
	return ArrayType{view{e}}, nil
}

// ElementType returns the declared element type. Arrays carry no name of
// their own.
func (a ArrayType) ElementType() (Entry, error) {
	return TypeOf(a.Entry)
}

// Length returns the element count of the first dimension: DW_AT_count
// when present, otherwise DW_AT_upper_bound + 1.
func (a ArrayType) Length() (uint64, error) {
	for _, kid := range a.Children() {
		if isDimension(kid) {
			return dimensionLength(kid)
		}
	}
	return 0, &MissingArrayBoundError{Offset: a.Entry.Offset}
}

// ElementCount returns the product of the lengths of every dimension.
func (a ArrayType) ElementCount() (uint64, error) {
	n, dims := uint64(1), 0
	for _, kid := range a.Children() {
		if !isDimension(kid) {
			continue
		}
		l, err := dimensionLength(kid)
		if err != nil {
			return 0, err
		}
		n *= l
		dims++
	}
	if dims == 0 {
		return 0, &MissingArrayBoundError{Offset: a.Entry.Offset}
	}
	return n, nil
}

func isDimension(kid Entry) bool {
	return kid.Tag == dwarf.TagSubrangeType || kid.Tag == dwarf.TagEnumerationType
}

func dimensionLength(kid Entry) (uint64, error) {
	if kid.Tag == dwarf.TagEnumerationType {
		return 0, &UnsupportedError{Offset: kid.Offset, Tag: kid.Tag, What: "enumeration-indexed array"}
	}
	if count, ok := attrUint(kid, dwarf.AttrCount); ok {
		return count, nil
	}
	if ub, ok := kid.Val(dwarf.AttrUpperBound).(int64); ok && ub == -1 {
		// Zero-length (flexible) array.
		return 0, nil
	}
	ub, ok := attrUint(kid, dwarf.AttrUpperBound)
	if !ok {
		if kid.Val(dwarf.AttrUpperBound) != nil || kid.Val(dwarf.AttrCount) != nil {
			return 0, &UnsupportedError{Offset: kid.Offset, Tag: kid.Tag, What: "non-constant array bound"}
		}
		// x[] has a subrange without bound.
		return 0, &MissingAttributeError{Offset: kid.Offset, Tag: kid.Tag, Attr: dwarf.AttrUpperBound}
	}
	return ub + 1, nil
}

// Dimensions returns the number of dimension-defining children.
func (a ArrayType) Dimensions() int {
	n := 0
	for _, kid := range a.Children() {
		if isDimension(kid) {
			n++
		}
	}
	return n
}

// ByteSize returns DW_AT_byte_size when the producer emitted it.
func (a ArrayType) ByteSize() (uint64, bool) {
	return attrUint(a.Entry, dwarf.AttrByteSize)
}
