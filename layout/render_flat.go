package layout

import (
	"io"

	"dwarf2layout/utils"
)

// FlatRenderer prints one line per leaf member: its dotted path, type,
// absolute offset and size.
type FlatRenderer struct {
	nopHooks
	out textWriter
}

func NewFlatRenderer(w io.Writer) *FlatRenderer {
	return &FlatRenderer{out: textWriter{w: w}}
}

func (r *FlatRenderer) Member(_ Frame, m MemberRecord) {
	if !m.Leaf {
		return
	}
	if !m.HasSize {
		r.out.printf("%s: %s offset %d\n", m.Path, m.Type, m.Offset)
		return
	}
	r.out.printf("%s: %s offset %d size %d\n", m.Path, m.Type, m.Offset, m.Size)
}

func (r *FlatRenderer) End() error {
	return r.out.err
}

const (
	cppTableHeader = "std::vector<ParamConfig> CreateParamConfig(){return std::vector<ParamConfig>{\n"
	cppTableFooter = "};}\n"
)

// CppTableRenderer prints the leaf members as a C++ initializer of
// {path, offset, size} rows.
type CppTableRenderer struct {
	nopHooks
	out textWriter
}

func NewCppTableRenderer(w io.Writer) *CppTableRenderer {
	return &CppTableRenderer{out: textWriter{w: w}}
}

func (r *CppTableRenderer) Begin(VariableRecord) {
	r.out.printf(cppTableHeader)
}

func (r *CppTableRenderer) Member(_ Frame, m MemberRecord) {
	if !m.Leaf {
		return
	}
	r.out.printf("    {%s, %d, %d},\n", utils.CString(m.Path), m.Offset, m.Size)
}

func (r *CppTableRenderer) End() error {
	r.out.printf(cppTableFooter)
	return r.out.err
}
