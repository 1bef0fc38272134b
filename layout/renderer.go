// Package layout walks the type graph of a variable and reports its memory
// layout through a Renderer.
package layout

import (
	"debug/dwarf"
	"fmt"
	"io"
)

// Frame is the context the walker threads through recursion.
type Frame struct {
	// Depth is the recursion depth, used for indentation.
	Depth int
	// Offset is the absolute byte offset from the start of the root type.
	Offset uint64
	// Path holds the names of the enclosing members.
	Path []string
}

func (f Frame) nested() Frame {
	return Frame{Depth: f.Depth + 1, Offset: f.Offset, Path: f.Path}
}

func (f Frame) enter(name string, offset uint64) Frame {
	path := f.Path
	if name != "" {
		path = make([]string, len(f.Path), len(f.Path)+1)
		copy(path, f.Path)
		path = append(path, name)
	}
	return Frame{Depth: f.Depth + 1, Offset: offset, Path: path}
}

type VariableRecord struct {
	Name string
	// TypeName is the name of the declared type, empty when unnamed.
	TypeName string
}

type StructRecord struct {
	Kind    string
	Name    string
	Size    uint64
	HasSize bool
}

type MemberRecord struct {
	// Name is empty for anonymous members and base classes.
	Name string
	Base bool
	// Path is the dotted path from the root, used by flat output.
	Path        string
	Type        string
	LocalOffset uint64
	Offset      uint64
	Size        uint64
	HasSize     bool
	// Leaf is set when the member is not descended through: its type
	// resolves to a base type, array, pointer or enum.
	Leaf bool
}

type TypedefRecord struct {
	Chain []string
}

type BaseRecord struct {
	Name string
	Size uint64
}

type ArrayRecord struct {
	Element string
	Length  uint64
}

type ScalarRecord struct {
	Kind    string
	Name    string
	Size    uint64
	HasSize bool
}

type UnknownRecord struct {
	Tag         dwarf.Tag
	Description string
	Err         error
}

// Renderer consumes the records emitted by the Walker. Hooks are called in
// traversal order.
type Renderer interface {
	Begin(v VariableRecord)
	Struct(f Frame, r StructRecord)
	Member(f Frame, r MemberRecord)
	Typedef(f Frame, r TypedefRecord)
	Base(f Frame, r BaseRecord)
	Array(f Frame, r ArrayRecord)
	Scalar(f Frame, r ScalarRecord)
	Unknown(f Frame, r UnknownRecord)
	// End flushes the output and reports the first write error.
	End() error
}

// textWriter remembers the first write error so hooks need not return one.
type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) printf(format string, args ...interface{}) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

// nopHooks implements every hook as a no-op.
type nopHooks struct{}

func (nopHooks) Begin(VariableRecord) {}
func (nopHooks) Struct(Frame, StructRecord) {}
func (nopHooks) Member(Frame, MemberRecord) {}
func (nopHooks) Typedef(Frame, TypedefRecord) {}
func (nopHooks) Base(Frame, BaseRecord) {}
func (nopHooks) Array(Frame, ArrayRecord) {}
func (nopHooks) Scalar(Frame, ScalarRecord) {}
func (nopHooks) Unknown(Frame, UnknownRecord) {}
