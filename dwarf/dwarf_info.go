package dwarfhelper

import (
	"debug/dwarf"
	"fmt"
	"sort"

	"github.com/go-delve/delve/pkg/dwarf/godwarf"
	lru "github.com/hashicorp/golang-lru"

	"dwarf2layout/logflags"
)

const (
	entryCacheSize = 512
	// MaxTreeDepth bounds how deeply nested a loaded subtree may be.
	MaxTreeDepth = 256
)

// DwarfInfo is the debug-info context of a single object file.
type DwarfInfo struct {
	data  *dwarf.Data
	units []*Unit
	cache *lru.Cache
}

// Unit is a compilation unit. Entries inside it are resolved by offset
// through Resolve.
type Unit struct {
	Offset dwarf.Offset
	Name   string

	info  *DwarfInfo
	index int
}

// Entry is a read-only handle to a debug info entry and its children. The
// zero Entry is invalid.
type Entry struct {
	*godwarf.Tree
	Unit *Unit
}

// NewDwarfInfo indexes the compilation units of data.
func NewDwarfInfo(data *dwarf.Data) (*DwarfInfo, error) {
	cache, err := lru.New(entryCacheSize)
	if err != nil {
		return nil, err
	}
	info := &DwarfInfo{data: data, cache: cache}
	info.units, err = scanUnits(data)
	if err != nil {
		return nil, err
	}
	for _, u := range info.units {
		u.info = info
	}
	logflags.LoaderLogger().Debugf("indexed %d compilation units", len(info.units))
	return info, nil
}

// Units returns the compilation units in section order.
func (info *DwarfInfo) Units() []*Unit {
	return info.units
}

// FindVariable returns the first variable named name declared directly
// under a compilation unit. Units are searched in section order.
func (info *DwarfInfo) FindVariable(name string) (Entry, bool, error) {
	for _, u := range info.units {
		var found dwarf.Offset
		ok := false
		err := eachUnitChild(info.data, u, func(e *dwarf.Entry) bool {
			if variableNameMatch(e, name) {
				found, ok = e.Offset, true
				return false
			}
			return true
		})
		if err != nil {
			return Entry{}, false, err
		}
		if ok {
			v, err := u.Resolve(found)
			if err != nil {
				return Entry{}, false, err
			}
			logflags.LoaderLogger().Debugf("found %s at %#x in unit %q", name, found, u.Name)
			return v, true, nil
		}
	}
	return Entry{}, false, nil
}

func variableNameMatch(e *dwarf.Entry, name string) bool {
	if e.Tag != dwarf.TagVariable {
		return false
	}
	// Some variables have no name.
	actual, ok := e.Val(dwarf.AttrName).(string)
	return ok && actual == name
}

// Resolve returns the entry at off. Offsets are section relative, so an
// entry referenced from u may belong to a later unit.
func (u *Unit) Resolve(off dwarf.Offset) (Entry, error) {
	t, err := u.info.getEntryByOffset(off)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Tree: t, Unit: u.info.unitFor(off)}, nil
}

func (info *DwarfInfo) getEntryByOffset(off dwarf.Offset) (*godwarf.Tree, error) {
	if t, ok := info.cache.Get(off); ok {
		return t.(*godwarf.Tree), nil
	}
	t, err := readSubtree(info.data.Reader(), off, MaxTreeDepth)
	if err != nil {
		return nil, fmt.Errorf("offset %#x: %w", off, err)
	}
	info.cache.Add(off, t)
	return t, nil
}

func (info *DwarfInfo) unitFor(off dwarf.Offset) *Unit {
	i := sort.Search(len(info.units), func(i int) bool {
		return info.units[i].Offset > off
	})
	if i == 0 {
		return nil
	}
	return info.units[i-1]
}

// Valid reports whether e refers to an entry.
func (e Entry) Valid() bool {
	return e.Tree != nil
}

// Children returns the immediate children of e in declaration order.
func (e Entry) Children() []Entry {
	if e.Tree == nil {
		return nil
	}
	r := make([]Entry, 0, len(e.Tree.Children))
	for _, c := range e.Tree.Children {
		r = append(r, Entry{Tree: c, Unit: e.Unit})
	}
	return r
}

// Name returns the DW_AT_name of e.
func (e Entry) Name() (string, bool) {
	if e.Tree == nil {
		return "", false
	}
	return attrString(e, dwarf.AttrName)
}

func (e Entry) String() string {
	if e.Tree == nil {
		return "<invalid>"
	}
	if name, ok := e.Name(); ok && name != "" {
		return fmt.Sprintf("%s %s at %#x", tagName(e.Tag), name, e.Offset)
	}
	return fmt.Sprintf("%s at %#x", tagName(e.Tag), e.Offset)
}
