package main

import (
	"bytes"
	"debug/dwarf"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-delve/delve/pkg/dwarf/dwarfbuilder"
	"github.com/go-delve/delve/pkg/dwarf/op"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	dwarfhelper "dwarf2layout/dwarf"
	"dwarf2layout/logflags"
)

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Cleanup(func() { logflags.SetOutput(nil) })
	var stdout, stderr bytes.Buffer
	app := newApp(&stdout, &stderr)
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"dwarf2layout"}, args...))
	return stdout.String(), stderr.String(), err
}

func exitCode(err error) int {
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}

func TestUsage(t *testing.T) {
	for _, args := range [][]string{nil, {"a.out"}, {"a.out", "v", "extra"}} {
		stdout, _, err := runApp(t, args...)
		assert.Equal(t, 1, exitCode(err), "%v", args)
		assert.Equal(t, usageLine+"\n", stdout)
	}
}

func TestInputErrorExitCode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notabinary")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	stdout, _, err := runApp(t, path, "gState")
	assert.Equal(t, 1, exitCode(err))
	assert.Empty(t, stdout)
	assert.Contains(t, err.Error(), "unrecognized binary format")
}

func TestLogOutputRequiresLog(t *testing.T) {
	_, _, err := runApp(t, "--log-output", "walker", "a.out", "v")
	assert.Equal(t, 1, exitCode(err))
}

func testObject(t *testing.T, member bool) *dwarfhelper.Object {
	dwb := dwarfbuilder.New()
	i32 := dwb.AddBaseType("int32", dwarfbuilder.DW_ATE_signed, 4)
	point := dwb.AddStructType("Point", 8)
	dwb.AddMember("x", i32, dwarfbuilder.LocationBlock(op.DW_OP_plus_uconst, uint(0)))
	dwb.AddMember("y", i32, dwarfbuilder.LocationBlock(op.DW_OP_plus_uconst, uint(4)))
	dwb.TagClose()
	loc := []byte{byte(op.DW_OP_addr), 0, 0x10, 0, 0, 0, 0, 0, 0}
	dwb.AddVariable("origin", point, loc)
	dwb.AddVariable("count", i32, loc)
	abbrev, aranges, frame, info, line, pubnames, ranges, str, _, err := dwb.Build()
	require.NoError(t, err)
	data, err := dwarf.New(abbrev, aranges, frame, info, line, pubnames, ranges, str)
	require.NoError(t, err)
	return &dwarfhelper.Object{Name: "libgeo.a(point.o)", Member: member, Data: data}
}

func TestDumpObject(t *testing.T) {
	var out, errOut bytes.Buffer
	ok, err := dumpObject(testObject(t, true), "origin", LayoutOptions{Format: formatTable}, &out, &errOut)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "// libgeo.a(point.o)\nx: int32 offset 0 size 4\ny: int32 offset 4 size 4\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestDumpObjectFormats(t *testing.T) {
	var out bytes.Buffer
	_, err := dumpObject(testObject(t, false), "origin", LayoutOptions{Format: formatTree}, &out, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "type of origin is struct Point\nstruct Point size 8\n"+
		"-member x type int32 offset 0\n--base type int32 size 4\n"+
		"-member y type int32 offset 4\n--base type int32 size 4\n", out.String())

	out.Reset()
	_, err = dumpObject(testObject(t, false), "origin", LayoutOptions{Format: formatCpp}, &out, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "    {\"y\", 4, 4},\n};}\n")
}

func TestDumpObjectErrors(t *testing.T) {
	var out bytes.Buffer
	ok, err := dumpObject(testObject(t, false), "missing", LayoutOptions{}, &out, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = dumpObject(testObject(t, false), "count", LayoutOptions{}, &out, &bytes.Buffer{})
	var mismatch *dwarfhelper.TypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, dwarf.TagBaseType, mismatch.Tag)
	assert.Empty(t, out.String())
}

const bigTable = "id: int offset 0 size 4\n" +
	"name: array of char length 8 offset 4 size 8\n" +
	"origin.x: int offset 12 size 4\n" +
	"origin.y: int offset 16 size 4\n" +
	"next: const struct Line* offset 24 size 8\n" +
	"color: enum color offset 32 size 4\n" +
	"grid: array of int length 2 offset 36 size 24\n" +
	"weight: double offset 64 size 8\n"

func TestLayoutFromObjects(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		stdout string
	}{
		{
			name: "point tree",
			args: []string{"testdata/layout.o", "gPoint"},
			stdout: "type of gPoint is struct Point\nstruct Point size 8\n" +
				"-member x type int offset 0\n--base type int size 4\n" +
				"-member y type int offset 4\n--base type int size 4\n",
		},
		{
			name: "line table",
			args: []string{"-t", "testdata/layout.o", "gLine"},
			stdout: "start.x: int offset 0 size 4\nstart.y: int offset 4 size 4\n" +
				"end.x: int offset 8 size 4\nend.y: int offset 12 size 4\n",
		},
		{
			name:   "big table",
			args:   []string{"-t", "testdata/layout.o", "gBig"},
			stdout: bigTable,
		},
		{
			name:   "dwarf 5",
			args:   []string{"-t", "testdata/layout-dwarf5.o", "gBig"},
			stdout: bigTable,
		},
		{
			name: "archive",
			args: []string{"-t", "testdata/liblayout.a", "gPoint"},
			stdout: "// testdata/liblayout.a(layout.o)\nx: int offset 0 size 4\ny: int offset 4 size 4\n" +
				"// testdata/liblayout.a(a_rather_long_member_name.o)\nx: int offset 0 size 4\ny: int offset 4 size 4\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stdout, _, err := runApp(t, tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.stdout, stdout)
		})
	}
}

func TestBigLayoutWarnings(t *testing.T) {
	stdout, stderr, err := runApp(t, "--cpp", "testdata/layout.o", "gBig")
	require.NoError(t, err)
	assert.Contains(t, stdout, "    {\"grid\", 36, 24},\n")
	assert.Contains(t, stdout, "    {\"weight\", 64, 8},\n")
	assert.NotContains(t, stdout, "bits")
	assert.Contains(t, stderr, "bits: ")
	assert.Contains(t, stderr, "more: ")
	assert.Contains(t, stderr, "testdata/layout.o: 3 warnings, layout of gBig is incomplete")

	stdout, _, err = runApp(t, "--strict", "testdata/layout.o", "gBig")
	assert.Equal(t, 1, exitCode(err))
	assert.Empty(t, stdout)
}

func TestLayoutErrors(t *testing.T) {
	stdout, _, err := runApp(t, "testdata/layout.o", "gMissing")
	assert.Equal(t, 1, exitCode(err))
	assert.Empty(t, stdout)
	assert.Contains(t, err.Error(), "variable gMissing not found")

	stdout, _, err = runApp(t, "testdata/liblayout.a", "gMissing")
	assert.Equal(t, 1, exitCode(err))
	assert.Empty(t, stdout)

	// gOther is a long, declared only by the second member.
	stdout, _, err = runApp(t, "testdata/liblayout.a", "gOther")
	assert.Equal(t, 1, exitCode(err))
	assert.Empty(t, stdout)

	stdout, _, err = runApp(t, "testdata/layout.o", "gCount")
	assert.Equal(t, 1, exitCode(err))
	assert.Empty(t, stdout)
}
