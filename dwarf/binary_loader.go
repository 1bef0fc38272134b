package dwarfhelper

import (
	"bytes"
	"compress/zlib"
	"debug/dwarf"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/blakesmith/ar"
	"github.com/pkg/errors"

	"dwarf2layout/logflags"
)

// Object is one object file of the input: the input itself, or an archive
// member, or one architecture of a universal Mach-O binary.
type Object struct {
	Name string
	// Member is set for objects extracted from a container.
	Member bool
	Data   *dwarf.Data
	// Elf is set for ELF objects and used for symbol lookups.
	Elf *elf.File
	// Err is set when a member could not be loaded; siblings are unaffected.
	Err error
}

const archiveMagic = "!<arch>\n"

// OpenObjects reads path ("-" for standard input) and returns the objects
// it contains.
func OpenObjects(path string) ([]*Object, error) {
	buf, err := readInput(path)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}
	objs, err := loadBuffer(path, buf)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}
	return objs, nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		buf, err := io.ReadAll(os.Stdin)
		return buf, errors.Wrap(err, "read standard input")
	}
	buf, err := os.ReadFile(path)
	return buf, errors.Wrap(err, "read")
}

func loadBuffer(name string, buf []byte) ([]*Object, error) {
	switch {
	case bytes.HasPrefix(buf, []byte(elf.ELFMAG)):
		f, err := elf.NewFile(bytes.NewReader(buf))
		if err != nil {
			return nil, errors.Wrap(err, "parse ELF")
		}
		data, err := elfDWARF(f)
		if err != nil {
			return nil, errors.Wrap(err, "load DWARF")
		}
		return []*Object{{Name: name, Data: data, Elf: f}}, nil
	case bytes.HasPrefix(buf, []byte(archiveMagic)):
		return loadArchive(name, buf)
	case isFatMachO(buf):
		return loadFatMachO(name, buf)
	case isMachO(buf):
		f, err := macho.NewFile(bytes.NewReader(buf))
		if err != nil {
			return nil, errors.Wrap(err, "parse Mach-O")
		}
		data, err := f.DWARF()
		if err != nil {
			return nil, errors.Wrap(err, "load DWARF")
		}
		return []*Object{{Name: name, Data: data}}, nil
	case bytes.HasPrefix(buf, []byte("MZ")):
		f, err := pe.NewFile(bytes.NewReader(buf))
		if err != nil {
			return nil, errors.Wrap(err, "parse PE")
		}
		data, err := f.DWARF()
		if err != nil {
			return nil, errors.Wrap(err, "load DWARF")
		}
		return []*Object{{Name: name, Data: data}}, nil
	}
	return nil, errors.New("unrecognized binary format")
}

func isMachO(buf []byte) bool {
	if len(buf) < 4 {
		return false
	}
	switch binary.LittleEndian.Uint32(buf) {
	case macho.Magic32, macho.Magic64:
		return true
	}
	switch binary.BigEndian.Uint32(buf) {
	case macho.Magic32, macho.Magic64:
		return true
	}
	return false
}

func isFatMachO(buf []byte) bool {
	return len(buf) >= 4 && binary.BigEndian.Uint32(buf) == macho.MagicFat
}

func loadFatMachO(name string, buf []byte) ([]*Object, error) {
	ff, err := macho.NewFatFile(bytes.NewReader(buf))
	if err != nil {
		return nil, errors.Wrap(err, "parse universal Mach-O")
	}
	objs := make([]*Object, 0, len(ff.Arches))
	for _, arch := range ff.Arches {
		obj := &Object{Name: fmt.Sprintf("%s(%s)", name, arch.Cpu), Member: true}
		obj.Data, obj.Err = arch.DWARF()
		objs = append(objs, obj)
	}
	return objs, nil
}

// loadArchive expands a System V / GNU or BSD ar archive. Every member is
// loaded on its own; a broken member only sets that Object's Err.
func loadArchive(name string, buf []byte) ([]*Object, error) {
	if err := checkArchiveHeaders(buf); err != nil {
		return nil, err
	}
	rdr := ar.NewReader(bytes.NewReader(buf))
	var longNames []byte
	objs := []*Object{}
	for {
		hdr, err := rdr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read archive member %d", len(objs))
		}
		body, err := io.ReadAll(rdr)
		if err != nil {
			return nil, errors.Wrapf(err, "read archive member %q", hdr.Name)
		}
		memberName := strings.TrimRight(hdr.Name, " ")
		switch {
		case memberName == "/" || memberName == "/SYM64/" || strings.HasPrefix(memberName, "__.SYMDEF"):
			// Symbol index.
			continue
		case memberName == "//":
			longNames = body
			continue
		case strings.HasPrefix(memberName, "#1/"):
			// BSD: the name is stored in front of the member data.
			n, err := strconv.Atoi(memberName[3:])
			if err != nil || n > len(body) {
				return nil, errors.Errorf("bad BSD member name %q", memberName)
			}
			memberName = strings.TrimRight(string(body[:n]), "\x00")
			body = body[n:]
			if strings.HasPrefix(memberName, "__.SYMDEF") {
				continue
			}
		case strings.HasPrefix(memberName, "/"):
			memberName = longName(longNames, memberName)
		default:
			memberName = strings.TrimSuffix(memberName, "/")
		}

		full := fmt.Sprintf("%s(%s)", name, memberName)
		loaded, err := loadBuffer(full, body)
		if err != nil {
			logflags.LoaderLogger().Debugf("%s: %v", full, err)
			objs = append(objs, &Object{Name: full, Member: true, Err: err})
			continue
		}
		for _, obj := range loaded {
			obj.Member = true
			objs = append(objs, obj)
		}
	}
	return objs, nil
}

const arHeaderSize = 60

// checkArchiveHeaders validates every member header in buf. ar.Reader
// expects "100644" style modes and panics on the "0" GNU ar writes for the
// symbol index, so short mode fields are widened in place.
func checkArchiveHeaders(buf []byte) error {
	off := len(archiveMagic)
	for off < len(buf) {
		if len(buf)-off < arHeaderSize {
			return errors.Errorf("truncated archive member header at offset %d", off)
		}
		hdr := buf[off : off+arHeaderSize]
		if string(hdr[58:]) != "`\n" {
			return errors.Errorf("bad archive member header at offset %d", off)
		}
		size, err := strconv.ParseInt(strings.TrimRight(string(hdr[48:58]), " "), 10, 64)
		if err != nil || size < 0 || size > int64(len(buf)-off-arHeaderSize) {
			return errors.Errorf("bad archive member size %q at offset %d", hdr[48:58], off)
		}
		mode := hdr[40:48]
		if m := strings.TrimRight(string(mode), " "); len(m) < 3 {
			copy(mode, fmt.Sprintf("%-8s", "000"+m))
		}
		off += arHeaderSize + int(size) + int(size%2)
	}
	return nil
}

// longName resolves a GNU "/<offset>" member name against the "//" table.
func longName(table []byte, ref string) string {
	off, err := strconv.Atoi(ref[1:])
	if err != nil || off < 0 || off >= len(table) {
		return ref
	}
	name := table[off:]
	if i := bytes.IndexByte(name, '\n'); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSuffix(string(name), "/")
}

// elfDWARF loads the DWARF data of f. debug/elf refuses objects whose debug
// relocations it cannot apply; for those the raw sections are used instead.
func elfDWARF(f *elf.File) (*dwarf.Data, error) {
	d, err := f.DWARF()
	if err == nil {
		return d, nil
	}
	logflags.LoaderLogger().Debugf("debug/elf: %v, loading sections without relocations", err)
	d, err2 := dwarfWithoutRelocations(f)
	if err2 != nil {
		return nil, err
	}
	if f.Type == elf.ET_REL {
		logflags.LoaderLogger().Warnf("relocations not applied for %s object, references across sections may be wrong", f.Machine)
	}
	return d, nil
}

// maxInflatedSection bounds the length a .zdebug section header may claim.
const maxInflatedSection = 1 << 30

// extraDebugSections are added to the fallback data when present.
var extraDebugSections = []string{"addr", "line_str", "str_offsets", "rnglists", "loclists"}

func dwarfWithoutRelocations(f *elf.File) (*dwarf.Data, error) {
	sections := map[string][]byte{}
	for _, s := range f.Sections {
		name := debugSectionName(s.Name)
		if name == "" {
			continue
		}
		b, err := rawSectionData(s)
		if err != nil {
			return nil, errors.Wrapf(err, "section %s", s.Name)
		}
		sections[name] = b
	}
	if sections["info"] == nil {
		return nil, errors.New("no .debug_info section")
	}

	d, err := dwarf.New(sections["abbrev"], nil, nil, sections["info"], sections["line"], nil, sections["ranges"], sections["str"])
	if err != nil {
		return nil, err
	}
	for _, name := range extraDebugSections {
		if b, ok := sections[name]; ok {
			if err := d.AddSection(".debug_"+name, b); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

// debugSectionName maps ".debug_info" and ".zdebug_info" to "info".
func debugSectionName(name string) string {
	switch {
	case strings.HasPrefix(name, ".debug_"):
		return name[len(".debug_"):]
	case strings.HasPrefix(name, ".zdebug_"):
		return name[len(".zdebug_"):]
	}
	return ""
}

// rawSectionData returns the contents of s, inflating .zdebug sections.
func rawSectionData(s *elf.Section) ([]byte, error) {
	b, err := s.Data()
	if err != nil {
		return nil, err
	}
	return inflateSection(b)
}

// inflateSection decodes the GNU "ZLIB" section format: the magic, a
// big-endian 64-bit uncompressed length, then a zlib stream. Other data is
// returned unchanged.
func inflateSection(b []byte) ([]byte, error) {
	if len(b) < 12 || string(b[:4]) != "ZLIB" {
		return b, nil
	}
	dlen := binary.BigEndian.Uint64(b[4:12])
	if dlen > maxInflatedSection {
		return nil, errors.Errorf("compressed section claims %d bytes", dlen)
	}
	r, err := zlib.NewReader(bytes.NewReader(b[12:]))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out, err := io.ReadAll(io.LimitReader(r, int64(dlen)))
	if err != nil {
		return nil, err
	}
	if uint64(len(out)) != dlen {
		return nil, errors.Errorf("compressed section inflates to %d bytes, header says %d", len(out), dlen)
	}
	return out, nil
}
