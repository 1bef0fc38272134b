package dwarfhelper

import (
	"debug/dwarf"
	"errors"
	"fmt"
)

// InputError is returned when the input file cannot be opened or is not a
// recognized binary or archive.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// LookupError is returned when no unit declares the requested variable.
type LookupError struct {
	Name string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("variable %s not found", e.Name)
}

// TypeMismatchError is returned when a variable's resolved type is not a
// structure.
type TypeMismatchError struct {
	Name string
	Tag  dwarf.Tag
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("variable %s: type is %s, not a struct", e.Name, tagName(e.Tag))
}

// MissingAttributeError reports a required attribute absent on an entry.
type MissingAttributeError struct {
	Offset dwarf.Offset
	Tag    dwarf.Tag
	Attr   dwarf.Attr
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("%s at %#x: missing %s", tagName(e.Tag), e.Offset, e.Attr)
}

// MissingArrayBoundError is returned by ArrayType.Length when the array
// has no subrange child.
type MissingArrayBoundError struct {
	Offset dwarf.Offset
}

func (e *MissingArrayBoundError) Error() string {
	return fmt.Sprintf("array at %#x: no subrange bound", e.Offset)
}

// UnsupportedError marks constructs the layout engine does not model:
// unions, enumeration-indexed arrays, bit-field-only members and type unit
// references.
type UnsupportedError struct {
	Offset dwarf.Offset
	Tag    dwarf.Tag
	What   string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s at %#x: unsupported %s", tagName(e.Tag), e.Offset, e.What)
}

// TagMismatchError is returned when an accessor is built over an entry with
// the wrong tag.
type TagMismatchError struct {
	Offset dwarf.Offset
	Want   dwarf.Tag
	Got    dwarf.Tag
}

func (e *TagMismatchError) Error() string {
	return fmt.Sprintf("entry at %#x: want %s, got %s", e.Offset, tagName(e.Want), tagName(e.Got))
}

// AliasCycleError is returned when a typedef chain loops or exceeds the
// configured length.
type AliasCycleError struct {
	Offset dwarf.Offset
	Length int
}

func (e *AliasCycleError) Error() string {
	return fmt.Sprintf("typedef chain at %#x does not terminate after %d links", e.Offset, e.Length)
}

// IsRecoverable reports whether err only affects the subtree it was found in.
func IsRecoverable(err error) bool {
	var (
		missing  *MissingAttributeError
		bound    *MissingArrayBoundError
		unsup    *UnsupportedError
		cycle    *AliasCycleError
		mismatch *TagMismatchError
	)
	return errors.As(err, &missing) ||
		errors.As(err, &bound) ||
		errors.As(err, &unsup) ||
		errors.As(err, &cycle) ||
		errors.As(err, &mismatch)
}

func tagName(tag dwarf.Tag) string {
	if tag == 0 {
		return "TagNull"
	}
	return tag.String()
}
