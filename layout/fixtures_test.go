package layout

import (
	"bytes"
	"debug/dwarf"
	"io"
	"testing"

	"github.com/go-delve/delve/pkg/dwarf/dwarfbuilder"
	"github.com/go-delve/delve/pkg/dwarf/op"
	"github.com/stretchr/testify/require"

	dwarfhelper "dwarf2layout/dwarf"
)

func memberLoc(off uint) []byte {
	return dwarfbuilder.LocationBlock(op.DW_OP_plus_uconst, off)
}

func globalLoc() []byte {
	return []byte{byte(op.DW_OP_addr), 0, 0x10, 0, 0, 0, 0, 0, 0}
}

func buildInfo(t *testing.T, dwb *dwarfbuilder.Builder) *dwarfhelper.DwarfInfo {
	abbrev, aranges, frame, info, line, pubnames, ranges, str, _, err := dwb.Build()
	require.NoError(t, err)
	data, err := dwarf.New(abbrev, aranges, frame, info, line, pubnames, ranges, str)
	require.NoError(t, err)
	di, err := dwarfhelper.NewDwarfInfo(data)
	require.NoError(t, err)
	return di
}

// addPoint adds int32 and struct Point { int32 x; int32 y; }.
func addPoint(dwb *dwarfbuilder.Builder) (i32, point dwarf.Offset) {
	i32 = dwb.AddBaseType("int32", dwarfbuilder.DW_ATE_signed, 4)
	point = dwb.AddStructType("Point", 8)
	dwb.AddMember("x", i32, memberLoc(0))
	dwb.AddMember("y", i32, memberLoc(4))
	dwb.TagClose()
	return i32, point
}

// addLine adds struct Line { Point start; Point end; } on top of addPoint.
func addLine(dwb *dwarfbuilder.Builder) (i32, point, line dwarf.Offset) {
	i32, point = addPoint(dwb)
	line = dwb.AddStructType("Line", 16)
	dwb.AddMember("start", point, memberLoc(0))
	dwb.AddMember("end", point, memberLoc(8))
	dwb.TagClose()
	return i32, point, line
}

func addTypedef(dwb *dwarfbuilder.Builder, name string, typ dwarf.Offset) dwarf.Offset {
	off := dwb.TagOpen(dwarf.TagTypedef, name)
	dwb.Attr(dwarf.AttrType, typ)
	dwb.TagClose()
	return off
}

func addArray(dwb *dwarfbuilder.Builder, elem dwarf.Offset, upperBound uint8) dwarf.Offset {
	off := dwb.TagOpen(dwarf.TagArrayType, "")
	dwb.Attr(dwarf.AttrType, elem)
	dwb.TagOpen(dwarf.TagSubrangeType, "")
	dwb.Attr(dwarf.AttrUpperBound, upperBound)
	dwb.TagClose()
	dwb.TagClose()
	return off
}

func findVariable(t *testing.T, di *dwarfhelper.DwarfInfo, name string) dwarfhelper.Entry {
	v, ok, err := di.FindVariable(name)
	require.NoError(t, err)
	require.True(t, ok, "variable %s", name)
	return v
}

func render(t *testing.T, di *dwarfhelper.DwarfInfo, name string, opts Options, newRenderer func(io.Writer) Renderer) (string, *Result, error) {
	var buf bytes.Buffer
	res, err := NewWalker(newRenderer(&buf), opts).WalkVariable(findVariable(t, di, name))
	return buf.String(), res, err
}

func flat(w io.Writer) Renderer { return NewFlatRenderer(w) }
func tree(w io.Writer) Renderer { return NewTreeRenderer(w) }
func cpp(w io.Writer) Renderer { return NewCppTableRenderer(w) }

// recorder keeps every member record.
type recorder struct {
	nopHooks
	members []MemberRecord
}

func (r *recorder) Member(_ Frame, m MemberRecord) {
	r.members = append(r.members, m)
}

func (r *recorder) End() error { return nil }
