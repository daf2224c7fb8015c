package syncdecl

import (
	"os"
	"path/filepath"
	"strings"

	"wasmsig/internal/sig"
)

// Library renders the consolidated declarations file: one annotation
// line per symbol, sorted by name, inside fixed framing. Output is a
// pure function of the mapping, so repeated writes are byte-identical.
func Library(sigs sig.Mapping) string {
	lines := []string{
		"/* Auto-generated by wasmsig. DO NOT EDIT. */",
		"",
		"sigs = {",
	}
	for _, sym := range sigs.Symbols() {
		lines = append(lines, "  "+sym+"__sig: '"+sigs[sym]+"',")
	}
	lines = append(lines,
		"}",
		"",
		"// We have to merge with `allowMissing` since this file contains signatures",
		"// for functions that might not exist in all build configurations.",
		"addToLibrary(sigs, {allowMissing: true});",
	)
	return strings.Join(lines, "\n") + "\n"
}

// WriteLibrary overwrites the consolidated file at path wholesale.
func WriteLibrary(path string, sigs sig.Mapping) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(Library(sigs)), 0o644)
}
