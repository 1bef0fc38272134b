package dwarfhelper

import (
	"debug/dwarf"
	"testing"

	"github.com/go-delve/delve/pkg/dwarf/dwarfbuilder"
	"github.com/go-delve/delve/pkg/dwarf/op"
	"github.com/stretchr/testify/require"
)

func memberLoc(off uint) []byte {
	return dwarfbuilder.LocationBlock(op.DW_OP_plus_uconst, off)
}

func globalLoc() []byte {
	return []byte{byte(op.DW_OP_addr), 0, 0x10, 0, 0, 0, 0, 0, 0}
}

func buildInfo(t *testing.T, dwb *dwarfbuilder.Builder) *DwarfInfo {
	abbrev, aranges, frame, info, line, pubnames, ranges, str, _, err := dwb.Build()
	require.NoError(t, err)
	data, err := dwarf.New(abbrev, aranges, frame, info, line, pubnames, ranges, str)
	require.NoError(t, err)
	di, err := NewDwarfInfo(data)
	require.NoError(t, err)
	return di
}

func resolve(t *testing.T, di *DwarfInfo, off dwarf.Offset) Entry {
	require.NotEmpty(t, di.Units())
	e, err := di.Units()[0].Resolve(off)
	require.NoError(t, err)
	return e
}

func addPoint(dwb *dwarfbuilder.Builder) (i32, point dwarf.Offset) {
	i32 = dwb.AddBaseType("int32", dwarfbuilder.DW_ATE_signed, 4)
	point = dwb.AddStructType("Point", 8)
	dwb.AddMember("x", i32, memberLoc(0))
	dwb.AddMember("y", i32, memberLoc(4))
	dwb.TagClose()
	return i32, point
}

func addTypedef(dwb *dwarfbuilder.Builder, name string, typ dwarf.Offset) dwarf.Offset {
	off := dwb.TagOpen(dwarf.TagTypedef, name)
	dwb.Attr(dwarf.AttrType, typ)
	dwb.TagClose()
	return off
}
