package dwarfhelper

import (
	"debug/dwarf"
)

func attrString(e Entry, attr dwarf.Attr) (string, bool) {
	s, ok := e.Val(attr).(string)
	return s, ok
}

// attrUint reads an unsigned constant. debug/dwarf decodes data forms as
// int64 and udata as uint64, negative values are rejected.
func attrUint(e Entry, attr dwarf.Attr) (uint64, bool) {
	switch v := e.Val(attr).(type) {
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case uint64:
		return v, true
	}
	return 0, false
}

func requireString(e Entry, attr dwarf.Attr) (string, error) {
	s, ok := attrString(e, attr)
	if !ok {
		return "", &MissingAttributeError{Offset: e.Offset, Tag: e.Tag, Attr: attr}
	}
	return s, nil
}

func requireUint(e Entry, attr dwarf.Attr) (uint64, error) {
	v, ok := attrUint(e, attr)
	if !ok {
		return 0, &MissingAttributeError{Offset: e.Offset, Tag: e.Tag, Attr: attr}
	}
	return v, nil
}

func hasBitOffset(e Entry) bool {
	return e.Val(dwarf.AttrDataBitOffset) != nil || e.Val(dwarf.AttrBitOffset) != nil
}

func checkTag(e Entry, want ...dwarf.Tag) error {
	if e.Tree == nil {
		return &TagMismatchError{Want: want[0]}
	}
	for _, t := range want {
		if e.Tag == t {
			return nil
		}
	}
	return &TagMismatchError{Offset: e.Offset, Want: want[0], Got: e.Tag}
}
