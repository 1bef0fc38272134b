package layout

import (
	"debug/dwarf"
	"fmt"
)

// Diagnostic records a part of the type graph that was skipped.
type Diagnostic struct {
	// Offset is the debug info offset of the offending entry.
	Offset dwarf.Offset
	// Path is the dotted member path where the problem was found, empty at
	// the root.
	Path string
	Err  error
}

func (d Diagnostic) String() string {
	if d.Path == "" {
		return fmt.Sprintf("<root>: %v", d.Err)
	}
	return fmt.Sprintf("%s: %v", d.Path, d.Err)
}

// BoundsError reports a member extending past the end of the root type.
type BoundsError struct {
	Path   string
	Offset uint64
	Size   uint64
	Limit  uint64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("member %s at offset %d size %d ends past %d", e.Path, e.Offset, e.Size, e.Limit)
}
