package sig

import (
	"fmt"
	"sort"
)

// Mapping accumulates symbol -> signature entries across preset passes.
type Mapping map[string]string

// ContradictionError reports a symbol whose signature differs between
// two preset passes. A symbol has exactly one native type no matter
// which optional features were enabled while its stub was compiled, so
// this always means a logic or environment defect.
type ContradictionError struct {
	Symbol   string
	Existing string
	Incoming string
}

func (e *ContradictionError) Error() string {
	return fmt.Sprintf("signature contradiction for %s: %q (recorded) vs %q (incoming)", e.Symbol, e.Existing, e.Incoming)
}

// Insert records a signature for sym. Re-recording the same signature
// is a no-op; a different signature is a fatal contradiction.
func (m Mapping) Insert(sym, signature string) error {
	if existing, ok := m[sym]; ok && existing != signature {
		return &ContradictionError{Symbol: sym, Existing: existing, Incoming: signature}
	}
	m[sym] = signature
	return nil
}

// Symbols returns the mapped symbol names sorted by name.
func (m Mapping) Symbols() []string {
	syms := make([]string, 0, len(m))
	for sym := range m {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	return syms
}
