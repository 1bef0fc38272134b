package dwarfhelper

import (
	"debug/dwarf"
	"fmt"

	"github.com/go-delve/delve/pkg/dwarf/godwarf"
	"github.com/go-delve/delve/pkg/dwarf/reader"
)

// readSubtree loads the entry at off together with all of its descendants.
func readSubtree(rdr *dwarf.Reader, off dwarf.Offset, maxDepth int) (*godwarf.Tree, error) {
	rdr.Seek(off)
	e, err := rdr.Next()
	if err != nil {
		return nil, err
	}
	if e == nil || e.Offset != off {
		return nil, fmt.Errorf("no entry at offset %#x", off)
	}
	t := newTree(e)
	t.Children, err = readChildren(e, rdr, 1, maxDepth)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// newTree wraps a single entry. Unlike godwarf.EntryToTree it accepts
// entries with children; readChildren fills them in.
func newTree(e *dwarf.Entry) *godwarf.Tree {
	return &godwarf.Tree{Entry: e, Offset: e.Offset, Tag: e.Tag}
}

func readChildren(e *dwarf.Entry, rdr *dwarf.Reader, depth, maxDepth int) ([]*godwarf.Tree, error) {
	if !e.Children {
		return nil, nil
	}
	if depth > maxDepth {
		return nil, fmt.Errorf("entry at %#x nested deeper than %d levels", e.Offset, maxDepth)
	}
	children := []*godwarf.Tree{}
	for {
		kid, err := rdr.Next()
		if err != nil {
			return nil, err
		}
		if kid == nil || kid.Tag == 0 {
			break
		}
		child := newTree(kid)
		child.Children, err = readChildren(kid, rdr, depth+1, maxDepth)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

// scanUnits lists every compilation unit without loading their children.
func scanUnits(data *dwarf.Data) ([]*Unit, error) {
	rdr := reader.New(data)
	units := []*Unit{}
	for {
		entry, err := rdr.NextCompileUnit()
		if err != nil {
			return nil, err
		}
		if entry == nil {
			break
		}
		u := &Unit{Offset: entry.Offset, index: len(units)}
		u.Name, _ = entry.Val(dwarf.AttrName).(string)
		units = append(units, u)
		rdr.SkipChildren()
	}
	return units, nil
}

// eachUnitChild calls fn for each immediate child of the unit rooted at u,
// stopping early when fn returns false.
func eachUnitChild(data *dwarf.Data, u *Unit, fn func(*dwarf.Entry) bool) error {
	rdr := data.Reader()
	rdr.Seek(u.Offset)
	root, err := rdr.Next()
	if err != nil {
		return err
	}
	if root == nil || !root.Children {
		return nil
	}

	next := func() (*dwarf.Entry, error) {
		kid, err := rdr.Next()
		if err != nil || kid == nil || kid.Tag == 0 {
			return nil, err
		}
		// Only direct children are candidates.
		if kid.Children {
			rdr.SkipChildren()
		}
		return kid, nil
	}

	for {
		kid, err := next()
		if err != nil {
			return err
		}
		if kid == nil {
			return nil
		}
		if !fn(kid) {
			return nil
		}
	}
}
