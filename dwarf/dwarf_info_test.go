package dwarfhelper

import (
	"debug/dwarf"
	"testing"

	"github.com/go-delve/delve/pkg/dwarf/dwarfbuilder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindVariable(t *testing.T) {
	dwb := dwarfbuilder.New()
	i32, point := addPoint(dwb)
	// A type sharing the variable's name must not match.
	dwb.AddStructType("p", 0)
	dwb.TagClose()
	first := dwb.AddVariable("p", point, globalLoc())
	dwb.AddVariable("p", i32, globalLoc())
	dwb.AddSubprogram("main", 0x1000, 0x1100)
	dwb.AddVariable("local", i32, globalLoc())
	dwb.TagClose()
	di := buildInfo(t, dwb)

	require.Len(t, di.Units(), 1)
	assert.Equal(t, "go", di.Units()[0].Name)

	v, ok, err := di.FindVariable("p")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first, v.Offset)
	assert.Equal(t, dwarf.TagVariable, v.Tag)

	_, ok, err = di.FindVariable("local")
	require.NoError(t, err)
	assert.False(t, ok, "variables inside functions are not globals")

	_, ok, err = di.FindVariable("P")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolveLoadsChildren(t *testing.T) {
	dwb := dwarfbuilder.New()
	_, point := addPoint(dwb)
	di := buildInfo(t, dwb)

	e := resolve(t, di, point)
	require.True(t, e.Valid())
	kids := e.Children()
	require.Len(t, kids, 2)
	name, ok := kids[1].Name()
	assert.True(t, ok)
	assert.Equal(t, "y", name)
	assert.Equal(t, di.Units()[0], kids[1].Unit)

	// Second lookup is served from the cache.
	again := resolve(t, di, point)
	assert.Same(t, e.Tree, again.Tree)

	_, err := di.Units()[0].Resolve(point + 1)
	assert.Error(t, err)
}

func TestEntryString(t *testing.T) {
	dwb := dwarfbuilder.New()
	_, point := addPoint(dwb)
	di := buildInfo(t, dwb)

	assert.Equal(t, "<invalid>", Entry{}.String())
	assert.Contains(t, resolve(t, di, point).String(), "StructType Point at ")
}
