// Package wasm reads the type and import sections of a wasm object
// file, enough to recover the declared type of every imported
// function by name.
package wasm

import (
	"encoding/binary"
	"fmt"
	"os"

	"fortio.org/safecast"

	"wasmsig/internal/sig"
)

const (
	sectionType   = 1
	sectionImport = 2
)

// Import kinds.
const (
	kindFunc   = 0x00
	kindTable  = 0x01
	kindMemory = 0x02
	kindGlobal = 0x03
	kindTag    = 0x04
)

const funcTypeForm = 0x60

// Module holds the decoded type table and the function-import index of
// one wasm artifact.
type Module struct {
	types       []sig.FuncType
	importTypes map[string]uint32 // import field name -> type index
}

// MissingSymbolError reports a symbol that was requested but absent
// from the artifact's import table. This means the stub emission or
// filtering step let through a symbol the compiler resolved internally.
type MissingSymbolError struct {
	Symbol string
}

func (e *MissingSymbolError) Error() string {
	return fmt.Sprintf("symbol %s not found in import table", e.Symbol)
}

// ReadModule parses the wasm binary at path.
func ReadModule(path string) (*Module, error) {
	// #nosec G304 -- path is a compiler artifact under our temp dir
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mod, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mod, nil
}

// Parse decodes a wasm module from memory, keeping only the type and
// import sections.
func Parse(data []byte) (*Module, error) {
	if len(data) < 8 || string(data[:4]) != "\x00asm" {
		return nil, fmt.Errorf("not a wasm module")
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != 1 {
		return nil, fmt.Errorf("unsupported wasm version %d", version)
	}

	mod := &Module{importTypes: make(map[string]uint32)}
	d := &decoder{data: data, off: 8}
	for d.remaining() > 0 {
		id, err := d.byte()
		if err != nil {
			return nil, err
		}
		size, err := d.count()
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", id, err)
		}
		payload, err := d.bytes(size)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", id, err)
		}
		switch id {
		case sectionType:
			if err := mod.parseTypes(payload); err != nil {
				return nil, fmt.Errorf("type section: %w", err)
			}
		case sectionImport:
			if err := mod.parseImports(payload); err != nil {
				return nil, fmt.Errorf("import section: %w", err)
			}
		}
	}
	return mod, nil
}

func (m *Module) parseTypes(payload []byte) error {
	d := &decoder{data: payload}
	n, err := d.count()
	if err != nil {
		return err
	}
	m.types = make([]sig.FuncType, 0, n)
	for i := 0; i < n; i++ {
		form, err := d.byte()
		if err != nil {
			return err
		}
		if form != funcTypeForm {
			return fmt.Errorf("type %d: unexpected form 0x%02x", i, form)
		}
		params, err := readValueTypes(d)
		if err != nil {
			return fmt.Errorf("type %d params: %w", i, err)
		}
		results, err := readValueTypes(d)
		if err != nil {
			return fmt.Errorf("type %d results: %w", i, err)
		}
		m.types = append(m.types, sig.FuncType{Params: params, Results: results})
	}
	return nil
}

func readValueTypes(d *decoder) ([]sig.ValueType, error) {
	n, err := d.count()
	if err != nil {
		return nil, err
	}
	types := make([]sig.ValueType, 0, n)
	for i := 0; i < n; i++ {
		b, err := d.byte()
		if err != nil {
			return nil, err
		}
		vt := sig.ValueType(b)
		if !vt.Valid() {
			return nil, fmt.Errorf("unsupported value type 0x%02x", b)
		}
		types = append(types, vt)
	}
	return types, nil
}

func (m *Module) parseImports(payload []byte) error {
	d := &decoder{data: payload}
	n, err := d.count()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if _, err := d.name(); err != nil { // module name, unused
			return err
		}
		field, err := d.name()
		if err != nil {
			return err
		}
		kind, err := d.byte()
		if err != nil {
			return err
		}
		switch kind {
		case kindFunc:
			idx, err := d.uleb()
			if err != nil {
				return err
			}
			typeIdx, err := safecast.Conv[uint32](idx)
			if err != nil {
				return fmt.Errorf("import %s: type index %d: %w", field, idx, err)
			}
			m.importTypes[field] = typeIdx
		case kindTable:
			if _, err := d.byte(); err != nil { // reference type
				return err
			}
			if err := skipLimits(d); err != nil {
				return err
			}
		case kindMemory:
			if err := skipLimits(d); err != nil {
				return err
			}
		case kindGlobal:
			if _, err := d.byte(); err != nil { // value type
				return err
			}
			if _, err := d.byte(); err != nil { // mutability
				return err
			}
		case kindTag:
			if _, err := d.byte(); err != nil { // attribute
				return err
			}
			if _, err := d.uleb(); err != nil { // type index
				return err
			}
		default:
			return fmt.Errorf("import %s: unknown kind 0x%02x", field, kind)
		}
	}
	return nil
}

func skipLimits(d *decoder) error {
	flags, err := d.byte()
	if err != nil {
		return err
	}
	if _, err := d.uleb(); err != nil { // min
		return err
	}
	if flags&0x01 != 0 {
		if _, err := d.uleb(); err != nil { // max
			return err
		}
	}
	return nil
}

// ImportType returns the declared function type for an imported field
// name.
func (m *Module) ImportType(field string) (sig.FuncType, error) {
	idx, ok := m.importTypes[field]
	if !ok {
		return sig.FuncType{}, &MissingSymbolError{Symbol: field}
	}
	i, err := safecast.Conv[int](idx)
	if err != nil || i >= len(m.types) {
		return sig.FuncType{}, fmt.Errorf("import %s: type index %d out of range (%d types)", field, idx, len(m.types))
	}
	return m.types[i], nil
}

// ReadImportTypes parses the artifact at path and resolves the declared
// type of every requested symbol. Every symbol must be present.
func ReadImportTypes(path string, symbols []string) (map[string]sig.FuncType, error) {
	mod, err := ReadModule(path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]sig.FuncType, len(symbols))
	for _, sym := range symbols {
		ft, err := mod.ImportType(sym)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out[sym] = ft
	}
	return out, nil
}
