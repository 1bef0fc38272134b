package symtab

import (
	"debug/elf"
	"errors"

	"dwarf2layout/logflags"
)

// Symbol is the symbol table entry of a data object.
type Symbol struct {
	Name    string
	Address uint64
	Size    uint64
	Section string
}

// Lookup reads the symbol table of file and returns the data object named
// name. Stripped files report ok == false without an error.
func Lookup(file *elf.File, name string) (Symbol, bool, error) {
	symbols, err := file.Symbols()
	if errors.Is(err, elf.ErrNoSymbols) {
		logflags.SymtabLogger().Debugf("no symbol table")
		return Symbol{}, false, nil
	}
	if err != nil {
		return Symbol{}, false, err
	}
	for _, symbol := range symbols {
		if symbol.Name != name || elf.ST_TYPE(symbol.Info) != elf.STT_OBJECT {
			continue
		}
		sym := Symbol{Name: symbol.Name, Address: symbol.Value, Size: symbol.Size}
		if int(symbol.Section) < len(file.Sections) && symbol.Section != elf.SHN_UNDEF {
			sym.Section = file.Sections[symbol.Section].Name
		}
		logflags.SymtabLogger().Debugf("%s at %#x size %d in %s", sym.Name, sym.Address, sym.Size, sym.Section)
		return sym, true, nil
	}
	return Symbol{}, false, nil
}

// CheckSize compares the symbol size with the size of the variable's type.
// Symbols with size 0 (common or hand-written assembly) are not checked.
func CheckSize(sym Symbol, typeSize uint64) bool {
	return sym.Size == 0 || sym.Size == typeSize
}
