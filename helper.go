package main

import (
	"bytes"
	"fmt"
	"io"

	dwarfhelper "dwarf2layout/dwarf"
	"dwarf2layout/layout"
	"dwarf2layout/logflags"
	"dwarf2layout/symtab"
)

const (
	formatTree  = "tree"
	formatTable = "table"
	formatCpp   = "cpp"
)

type LayoutOptions struct {
	Format string
	Walk   layout.Options
}

func newRenderer(format string, w io.Writer) layout.Renderer {
	switch format {
	case formatTable:
		return layout.NewFlatRenderer(w)
	case formatCpp:
		return layout.NewCppTableRenderer(w)
	}
	return layout.NewTreeRenderer(w)
}

// LayoutHelper prints the layout of variable for every object in ipath.
// Nothing is written to out unless every object succeeded.
func LayoutHelper(ipath, variable string, opts LayoutOptions, out, errOut io.Writer) error {
	objs, err := dwarfhelper.OpenObjects(ipath)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	found, loaded := false, false
	var firstErr error
	for _, obj := range objs {
		if obj.Err != nil {
			logflags.LoaderLogger().Warnf("skipping %s: %v", obj.Name, obj.Err)
			if firstErr == nil {
				firstErr = obj.Err
			}
			continue
		}
		loaded = true
		ok, err := dumpObject(obj, variable, opts, &buf, errOut)
		if err != nil {
			return err
		}
		found = found || ok
	}
	if !loaded && firstErr != nil {
		return &dwarfhelper.InputError{Path: ipath, Err: firstErr}
	}
	if !found {
		return &dwarfhelper.LookupError{Name: variable}
	}
	_, err = out.Write(buf.Bytes())
	return err
}

// dumpObject renders variable from a single object into w. It reports
// false when the object does not declare the variable.
func dumpObject(obj *dwarfhelper.Object, variable string, opts LayoutOptions, w, errOut io.Writer) (bool, error) {
	info, err := dwarfhelper.NewDwarfInfo(obj.Data)
	if err != nil {
		return false, &dwarfhelper.InputError{Path: obj.Name, Err: err}
	}
	v, ok, err := info.FindVariable(variable)
	if err != nil {
		return false, &dwarfhelper.InputError{Path: obj.Name, Err: err}
	}
	if !ok {
		logflags.LoaderLogger().Debugf("%s: no variable %s", obj.Name, variable)
		return false, nil
	}

	typ, err := dwarfhelper.TypeOf(v)
	if err != nil {
		return false, err
	}
	resolved, err := dwarfhelper.ResolveLayout(typ, opts.Walk.AliasLimit)
	if err != nil {
		return false, err
	}
	if !dwarfhelper.IsStructure(resolved) {
		return false, &dwarfhelper.TypeMismatchError{Name: variable, Tag: resolved.Tag}
	}
	if obj.Elf != nil {
		checkSymbol(obj, variable, resolved, opts.Walk.AliasLimit)
	}

	var objOut bytes.Buffer
	if obj.Member {
		fmt.Fprintf(&objOut, "// %s\n", obj.Name)
	}
	res, err := layout.NewWalker(newRenderer(opts.Format, &objOut), opts.Walk).WalkVariable(v)
	if err != nil {
		return false, err
	}
	if res.Incomplete() {
		fmt.Fprintf(errOut, "%s: %d warnings, layout of %s is incomplete\n", obj.Name, len(res.Diagnostics), variable)
	}
	_, err = w.Write(objOut.Bytes())
	return true, err
}

func checkSymbol(obj *dwarfhelper.Object, variable string, typ dwarfhelper.Entry, aliasLimit int) {
	log := logflags.SymtabLogger()
	sym, ok, err := symtab.Lookup(obj.Elf, variable)
	if err != nil {
		log.Warnf("%s: reading symbols: %v", obj.Name, err)
		return
	}
	if !ok {
		return
	}
	size, sized := dwarfhelper.ByteSize(typ, aliasLimit)
	if sized && !symtab.CheckSize(sym, size) {
		log.Warnf("%s: symbol %s has size %d, its type has size %d", obj.Name, variable, sym.Size, size)
	}
}
