package dwarfhelper

import (
	"bytes"
	"debug/dwarf"
	"fmt"

	"github.com/go-delve/delve/pkg/dwarf/leb128"
	"github.com/go-delve/delve/pkg/dwarf/op"
)

// Member is a DW_TAG_member entry. A DW_TAG_inheritance entry is treated as
// an anonymous member holding the base class.
type Member struct {
	view
}

func NewMember(e Entry) (Member, error) {
	if err := checkTag(e, dwarf.TagMember, dwarf.TagInheritance); err != nil {
		return Member{}, err
	}
	return Member{view{e}}, nil
}

// Name returns the member name. Anonymous members (unnamed unions and
// structs, base classes) have none.
func (m Member) Name() (string, bool) {
	if m.Tag == dwarf.TagInheritance {
		return "", false
	}
	name, ok := attrString(m.Entry, dwarf.AttrName)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

func (m Member) Type() (Entry, error) {
	return TypeOf(m.Entry)
}

// IsBase reports whether m describes a base class subobject.
func (m Member) IsBase() bool {
	return m.Tag == dwarf.TagInheritance
}

// Offset returns the byte offset of the member inside its parent, the
// value offsetof() would produce.
func (m Member) Offset() (uint64, error) {
	if m.Val(dwarf.AttrBitSize) != nil || hasBitOffset(m.Entry) {
		return 0, &UnsupportedError{Offset: m.Entry.Offset, Tag: m.Tag, What: "bit-field member location"}
	}
	switch loc := m.Val(dwarf.AttrDataMemberLoc).(type) {
	case int64:
		if loc < 0 {
			return 0, &UnsupportedError{Offset: m.Entry.Offset, Tag: m.Tag, What: fmt.Sprintf("negative member offset %d", loc)}
		}
		return uint64(loc), nil
	case uint64:
		return loc, nil
	case []byte:
		return decodeMemberLocation(m.Entry, loc)
	case nil:
		return 0, &MissingAttributeError{Offset: m.Entry.Offset, Tag: m.Tag, Attr: dwarf.AttrDataMemberLoc}
	default:
		return 0, &UnsupportedError{Offset: m.Entry.Offset, Tag: m.Tag, What: fmt.Sprintf("member location of class %T", loc)}
	}
}

// decodeMemberLocation evaluates the location expressions compilers emit
// for member offsets: [DW_OP_plus_uconst n] and [DW_OP_consts|constu n DW_OP_plus].
func decodeMemberLocation(e Entry, loc []byte) (uint64, error) {
	if len(loc) == 0 {
		return 0, nil
	}
	unsupported := func() error {
		return &UnsupportedError{Offset: e.Offset, Tag: e.Tag, What: fmt.Sprintf("member location expression % x", loc)}
	}
	buf := bytes.NewBuffer(loc[1:])
	var off uint64
	switch op.Opcode(loc[0]) {
	case op.DW_OP_plus_uconst:
		off, _ = leb128.DecodeUnsigned(buf)
	case op.DW_OP_constu:
		off, _ = leb128.DecodeUnsigned(buf)
		if b, err := buf.ReadByte(); err != nil || op.Opcode(b) != op.DW_OP_plus {
			return 0, unsupported()
		}
	case op.DW_OP_consts:
		soff, _ := leb128.DecodeSigned(buf)
		if b, err := buf.ReadByte(); err != nil || op.Opcode(b) != op.DW_OP_plus || soff < 0 {
			return 0, unsupported()
		}
		off = uint64(soff)
	default:
		return 0, unsupported()
	}
	if buf.Len() != 0 {
		return 0, unsupported()
	}
	return off, nil
}
