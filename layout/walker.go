package layout

import (
	"debug/dwarf"
	"fmt"

	mapset "github.com/deckarep/golang-set"
	"github.com/sirupsen/logrus"

	dwarfhelper "dwarf2layout/dwarf"
	"dwarf2layout/logflags"
	"dwarf2layout/utils"
)

// DefaultMaxDepth bounds the nesting of the walk.
const DefaultMaxDepth = 64

// Options control a Walker.
type Options struct {
	// MaxDepth is the deepest recursion level visited. Zero means
	// DefaultMaxDepth.
	MaxDepth int
	// AliasLimit is the longest typedef/qualifier chain followed. Zero
	// means dwarfhelper.DefaultAliasLimit.
	AliasLimit int
	// Strict stops the walk at the first malformed or unsupported entry
	// instead of recording a diagnostic and skipping it.
	Strict bool
}

// Result is the outcome of a successful walk.
type Result struct {
	Diagnostics []Diagnostic
}

// Incomplete reports whether some part of the type was skipped.
func (r *Result) Incomplete() bool {
	return len(r.Diagnostics) > 0
}

// Children of a structure that carry no layout.
var skippedChildren = utils.NewTagSet(
	dwarf.TagSubprogram,
	dwarf.TagTemplateTypeParameter,
	dwarf.TagTemplateValueParameter,
	dwarf.TagTypedef,
	dwarf.TagStructType,
	dwarf.TagClassType,
	dwarf.TagUnionType,
	dwarf.TagEnumerationType,
	dwarf.TagVariable,
	dwarf.TagImportedDeclaration,
	dwarf.TagFriend,
	dwarf.TagAccessDeclaration,
)

// Walker visits the type graph rooted at a variable's type and feeds the
// Renderer in depth-first order.
type Walker struct {
	r    Renderer
	opts Options
	log  *logrus.Entry

	rootSize  uint64
	rootSized bool
	onPath    mapset.Set
	diags     []Diagnostic
}

func NewWalker(r Renderer, opts Options) *Walker {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.AliasLimit <= 0 {
		opts.AliasLimit = dwarfhelper.DefaultAliasLimit
	}
	return &Walker{r: r, opts: opts, log: logflags.WalkerLogger()}
}

// WalkVariable renders the type of the variable entry v.
func (w *Walker) WalkVariable(v dwarfhelper.Entry) (*Result, error) {
	if v.Tag != dwarf.TagVariable {
		name, _ := v.Name()
		return nil, &dwarfhelper.TypeMismatchError{Name: name, Tag: v.Tag}
	}
	name, _ := v.Name()
	t, err := dwarfhelper.TypeOf(v)
	if err != nil {
		return nil, err
	}
	return w.Walk(VariableRecord{Name: name, TypeName: dwarfhelper.Describe(t, w.opts.AliasLimit)}, t)
}

// Walk renders the type entry root. v is passed to the renderer's Begin
// hook.
func (w *Walker) Walk(v VariableRecord, root dwarfhelper.Entry) (*Result, error) {
	w.diags = nil
	w.onPath = mapset.NewThreadUnsafeSet()
	w.rootSize, w.rootSized = dwarfhelper.ByteSize(root, w.opts.AliasLimit)

	w.r.Begin(v)
	if err := w.walk(root, Frame{}); err != nil {
		return nil, err
	}
	if err := w.r.End(); err != nil {
		return nil, err
	}
	return &Result{Diagnostics: w.diags}, nil
}

func (w *Walker) walk(e dwarfhelper.Entry, f Frame) error {
	if !e.Valid() {
		return w.fail(f, e, &dwarfhelper.UnsupportedError{What: "invalid entry"})
	}
	if f.Depth > w.opts.MaxDepth {
		return w.fail(f, e, &dwarfhelper.UnsupportedError{
			Offset: e.Offset, Tag: e.Tag,
			What: fmt.Sprintf("nesting deeper than %d levels", w.opts.MaxDepth),
		})
	}
	if logflags.Walker() {
		w.log.Debugf("%s%s at +%d", utils.Indent(f.Depth), e, f.Offset)
	}

	switch t := dwarfhelper.Classify(e).(type) {
	case dwarfhelper.StructureType:
		return w.walkStruct(t, f)
	case dwarfhelper.Member:
		return w.walkMember(t, f)
	case dwarfhelper.Typedef:
		return w.walkTypedef(t, f)
	case dwarfhelper.QualifiedType:
		inner, ok, err := t.Type()
		if err != nil {
			return w.fail(f, e, err)
		}
		if !ok {
			w.r.Base(f, BaseRecord{Name: t.Qualifier() + " void"})
			return nil
		}
		return w.walk(inner, f)
	case dwarfhelper.BaseType:
		return w.walkBase(t, f)
	case dwarfhelper.ArrayType:
		return w.walkArray(t, f)
	case dwarfhelper.PointerType:
		size, err := t.ByteSize()
		w.r.Scalar(f, ScalarRecord{
			Kind: "pointer", Name: dwarfhelper.Describe(e, w.opts.AliasLimit),
			Size: size, HasSize: err == nil,
		})
		return nil
	case dwarfhelper.EnumType:
		name, ok := t.Name()
		if !ok {
			name = dwarfhelper.AnonymousName
		}
		size, err := t.ByteSize()
		w.r.Scalar(f, ScalarRecord{Kind: "enum", Name: name, Size: size, HasSize: err == nil})
		return nil
	case dwarfhelper.Unsupported:
		w.r.Unknown(f, UnknownRecord{Tag: e.Tag, Description: dwarfhelper.Describe(e, w.opts.AliasLimit), Err: t.Err})
		w.note(f, e, t.Err)
		return nil
	}
	return nil
}

func (w *Walker) walkStruct(s dwarfhelper.StructureType, f Frame) error {
	off := s.Entry.Offset
	if !w.onPath.Add(off) {
		return w.fail(f, s.Entry, &dwarfhelper.UnsupportedError{
			Offset: off, Tag: s.Tag, What: "structure containing itself",
		})
	}
	defer w.onPath.Remove(off)

	size, err := s.ByteSize()
	w.r.Struct(f, StructRecord{Kind: s.Kind(), Name: s.TagName(), Size: size, HasSize: err == nil})
	if s.Incomplete() {
		return w.fail(f, s.Entry, &dwarfhelper.UnsupportedError{
			Offset: off, Tag: s.Tag, What: "declaration without definition",
		})
	}
	if err != nil {
		if err := w.fail(f, s.Entry, err); err != nil {
			return err
		}
	}

	for _, c := range s.Children() {
		if skippedChildren.Contains(c.Tag) {
			continue
		}
		if err := w.walk(c, f.nested()); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) walkMember(m dwarfhelper.Member, f Frame) error {
	name, named := m.Name()
	// Failures are reported against the member's own path.
	at := f
	if named {
		at = f.enter(name, f.Offset)
	}
	local, err := m.Offset()
	if err != nil {
		return w.fail(at, m.Entry, err)
	}
	declared, err := m.Type()
	if err != nil {
		return w.fail(at, m.Entry, err)
	}
	resolved, err := dwarfhelper.ResolveLayout(declared, w.opts.AliasLimit)
	if err != nil {
		return w.fail(at, m.Entry, err)
	}

	leaf := isLeaf(resolved)
	if a, ok := dwarfhelper.Classify(resolved).(dwarfhelper.ArrayType); ok {
		if _, err := a.Length(); err != nil {
			return w.fail(at, m.Entry, err)
		}
	}

	abs := f.Offset + local
	rec := MemberRecord{
		Base:        m.IsBase(),
		Type:        dwarfhelper.Describe(declared, w.opts.AliasLimit),
		LocalOffset: local,
		Offset:      abs,
		Leaf:        leaf,
	}
	if named {
		rec.Name = name
	}
	switch {
	case named:
		rec.Path = utils.DottedPath(f.Path, name)
	case leaf:
		rec.Path = utils.DottedPath(f.Path, dwarfhelper.AnonymousName)
	default:
		rec.Path = utils.DottedPath(f.Path, "")
	}
	rec.Size, rec.HasSize = dwarfhelper.ByteSize(declared, w.opts.AliasLimit)

	if leaf && rec.HasSize && w.rootSized && abs+rec.Size > w.rootSize {
		w.note(at, m.Entry, &BoundsError{Path: rec.Path, Offset: abs, Size: rec.Size, Limit: w.rootSize})
	}
	w.r.Member(f, rec)

	next := f.enter("", abs)
	if named {
		next = f.enter(name, abs)
	}
	return w.walk(declared, next)
}

func (w *Walker) walkTypedef(t dwarfhelper.Typedef, f Frame) error {
	chain, resolved, err := dwarfhelper.AliasChain(t.Entry, w.opts.AliasLimit)
	if err != nil {
		return w.fail(f, t.Entry, err)
	}
	w.r.Typedef(f, TypedefRecord{Chain: chain})
	return w.walk(resolved, f.nested())
}

func (w *Walker) walkBase(b dwarfhelper.BaseType, f Frame) error {
	name, err := b.Name()
	if err != nil {
		return w.fail(f, b.Entry, err)
	}
	size, err := b.ByteSize()
	if err != nil {
		return w.fail(f, b.Entry, err)
	}
	w.r.Base(f, BaseRecord{Name: name, Size: size})
	return nil
}

func (w *Walker) walkArray(a dwarfhelper.ArrayType, f Frame) error {
	n, err := a.Length()
	if err != nil {
		return w.fail(f, a.Entry, err)
	}
	elem, err := a.ElementType()
	if err != nil {
		return w.fail(f, a.Entry, err)
	}
	if a.Dimensions() > 1 {
		w.note(f, a.Entry, &dwarfhelper.UnsupportedError{
			Offset: a.Entry.Offset, Tag: a.Tag, What: "dimensions after the first",
		})
	}
	w.r.Array(f, ArrayRecord{Element: dwarfhelper.Describe(elem, w.opts.AliasLimit), Length: n})
	return nil
}

// fail reports err for entry e. Recoverable errors are recorded and
// skipped unless the walker is strict.
func (w *Walker) fail(f Frame, e dwarfhelper.Entry, err error) error {
	if w.opts.Strict || !dwarfhelper.IsRecoverable(err) {
		return err
	}
	w.note(f, e, err)
	return nil
}

func (w *Walker) note(f Frame, e dwarfhelper.Entry, err error) {
	d := Diagnostic{Path: utils.DottedPath(f.Path, ""), Err: err}
	if e.Valid() {
		d.Offset = e.Offset
	}
	w.diags = append(w.diags, d)
	w.log.Warn(d.String())
}

// isLeaf reports whether a member of type t is reported without descending
// into it.
func isLeaf(t dwarfhelper.Entry) bool {
	switch dwarfhelper.Classify(t).(type) {
	case dwarfhelper.BaseType, dwarfhelper.ArrayType, dwarfhelper.PointerType, dwarfhelper.EnumType:
		return true
	}
	return false
}
