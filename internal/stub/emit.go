// Package stub synthesizes the translation unit whose compilation
// forces the toolchain to resolve and import every candidate symbol.
// Taking each symbol's address is enough; nothing is ever called, so
// no argument values are needed.
package stub

import "strings"

// Lang selects the stub language, which decides both the compiler
// frontend and the header boilerplate.
type Lang int

const (
	// C emits a .c unit compiled with emcc.
	C Lang = iota
	// CXX emits a .cpp unit compiled with em++.
	CXX
)

// Ext returns the source file extension for the language.
func (l Lang) Ext() string {
	if l == CXX {
		return ".cpp"
	}
	return ".c"
}

// wasiSymbols are declared under the __wasi_ prefix in wasi/api.h, so
// the stub must reference them through that name.
var wasiSymbols = map[string]struct{}{
	"proc_exit":         {},
	"environ_sizes_get": {},
	"environ_get":       {},
	"clock_time_get":    {},
	"clock_res_get":     {},
	"fd_write":          {},
	"fd_pwrite":         {},
	"fd_read":           {},
	"fd_pread":          {},
	"fd_close":          {},
	"fd_seek":           {},
	"fd_sync":           {},
	"fd_fdstat_get":     {},
	"args_get":          {},
	"args_sizes_get":    {},
	"random_get":        {},
}

// Emit produces the stub translation unit text for the given symbols.
// Symbols must already be filtered and duplicate-free.
func Emit(symbols []string, lang Lang) string {
	var b strings.Builder
	if lang == CXX {
		b.WriteString(cxxHeader)
	} else {
		b.WriteString(cHeader)
	}
	b.WriteString("\nvoid* symbol_list[] = {\n")
	for _, sym := range symbols {
		b.WriteString("  (void*)&")
		if _, wasi := wasiSymbols[sym]; wasi {
			b.WriteString("__wasi_")
		}
		b.WriteString(sym)
		b.WriteString(",\n")
	}
	b.WriteString(footer)
	return b.String()
}

const footer = `};

int main(int argc, char* argv[]) {
  return argc + (intptr_t)symbol_list;
}
`
