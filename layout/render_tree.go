package layout

import (
	"io"
	"strings"

	dwarfhelper "dwarf2layout/dwarf"
	"dwarf2layout/utils"
)

// TreeRenderer prints every visited node on its own line, indented by
// recursion depth.
type TreeRenderer struct {
	out textWriter
}

func NewTreeRenderer(w io.Writer) *TreeRenderer {
	return &TreeRenderer{out: textWriter{w: w}}
}

func (t *TreeRenderer) line(f Frame, format string, args ...interface{}) {
	t.out.printf(utils.Indent(f.Depth)+format+"\n", args...)
}

func (t *TreeRenderer) Begin(v VariableRecord) {
	if v.TypeName != "" {
		t.out.printf("type of %s is %s\n", v.Name, v.TypeName)
	}
}

func (t *TreeRenderer) Struct(f Frame, r StructRecord) {
	if !r.HasSize {
		t.line(f, "%s %s size ?", r.Kind, r.Name)
		return
	}
	t.line(f, "%s %s size %d", r.Kind, r.Name, r.Size)
}

func (t *TreeRenderer) Member(f Frame, r MemberRecord) {
	switch {
	case r.Base:
		t.line(f, "base class %s offset %d", r.Type, r.LocalOffset)
	case r.Name == "":
		t.line(f, "member %s type %s offset %d", dwarfhelper.AnonymousName, r.Type, r.LocalOffset)
	default:
		t.line(f, "member %s type %s offset %d", r.Name, r.Type, r.LocalOffset)
	}
}

func (t *TreeRenderer) Typedef(f Frame, r TypedefRecord) {
	t.line(f, "typedef: %s", strings.Join(r.Chain, " -> "))
}

func (t *TreeRenderer) Base(f Frame, r BaseRecord) {
	t.line(f, "base type %s size %d", r.Name, r.Size)
}

func (t *TreeRenderer) Array(f Frame, r ArrayRecord) {
	t.line(f, "array of %s length %d", r.Element, r.Length)
}

func (t *TreeRenderer) Scalar(f Frame, r ScalarRecord) {
	if !r.HasSize {
		t.line(f, "%s %s size ?", r.Kind, r.Name)
		return
	}
	t.line(f, "%s %s size %d", r.Kind, r.Name, r.Size)
}

func (t *TreeRenderer) Unknown(f Frame, r UnknownRecord) {
	if r.Tag == 0 {
		t.line(f, "tag null")
		return
	}
	t.line(f, "unknown tag %s (%s)", r.Tag, r.Description)
}

func (t *TreeRenderer) End() error {
	return t.out.err
}
