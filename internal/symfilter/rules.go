// Package symfilter decides which discovered library symbols are
// eligible for stub compilation. Anything not pre-declared in a C/C++
// header, or whose signature is inherited from another symbol, must be
// dropped before the stub is emitted or the stub will not compile.
package symfilter

import "strings"

// Rule is a named exclusion predicate. Rules are pure and combined
// with OR: a symbol matching any rule is dropped.
type Rule struct {
	Name    string
	Matches func(name string) bool
}

// Reserved linker-internal and legacy-alias names. None of these are
// callable from native code.
var reservedSymbols = map[string]struct{}{
	"__stack_base":           {},
	"__memory_base":          {},
	"__table_base":           {},
	"__global_base":          {},
	"__heap_base":            {},
	"__stack_pointer":        {},
	"__stack_high":           {},
	"__stack_low":            {},
	"_load_secondary_module": {},
	"__asyncify_state":       {},
	"__asyncify_data":        {},
	"stackSave":              {},
	"stackRestore":           {},
	"stackAlloc":             {},
	"getTempRet0":            {},
	"setTempRet0":            {},
}

// glExtensionSuffixes marks vendor-extension GL entry points. Their
// signatures are inherited from the base entry point.
var glExtensionSuffixes = []string{"NV", "EXT", "WEBGL", "ARB", "ANGLE"}

func baseRules() []Rule {
	return []Rule{
		{
			Name: "js-internal",
			Matches: func(name string) bool {
				return strings.HasPrefix(name, "$")
			},
		},
		{
			Name: "undeclared",
			Matches: func(name string) bool {
				return name == "SDL_GetKeyState"
			},
		},
		{
			// emscripten_gl* and emscripten_alc* are auto-generated
			// wrappers around GL and OpenAL symbols and inherit their
			// signatures.
			Name: "wrapper-family",
			Matches: func(name string) bool {
				return strings.HasPrefix(name, "emscripten_gl") || strings.HasPrefix(name, "emscripten_alc")
			},
		},
		{
			Name: "gl-extension",
			Matches: func(name string) bool {
				if !strings.HasPrefix(name, "gl") {
					return false
				}
				for _, suffix := range glExtensionSuffixes {
					if strings.HasSuffix(name, suffix) {
						return true
					}
				}
				return false
			},
		},
		{
			Name: "reserved",
			Matches: func(name string) bool {
				_, ok := reservedSymbols[name]
				return ok
			},
		},
	}
}

func cxxRules() []Rule {
	return []Rule{
		{
			Name: "cxx-asctime",
			Matches: func(name string) bool {
				return name == "__asctime_r"
			},
		},
		{
			Name: "cxx-unwind-internal",
			Matches: func(name string) bool {
				return strings.HasPrefix(name, "__cxa_find_matching_catch")
			},
		},
	}
}

// Rules returns the ordered exclusion rule list for the given stub
// language. cxx enables the C++-linkage exceptions.
func Rules(cxx bool) []Rule {
	rules := baseRules()
	if cxx {
		rules = append(rules, cxxRules()...)
	}
	return rules
}

// Excluded reports whether name matches an exclusion rule and, if so,
// which one.
func Excluded(name string, cxx bool) (string, bool) {
	for _, rule := range Rules(cxx) {
		if rule.Matches(name) {
			return rule.Name, true
		}
	}
	return "", false
}

// Filter drops excluded symbols, preserving input order.
func Filter(symbols []string, cxx bool) []string {
	rules := Rules(cxx)
	kept := make([]string, 0, len(symbols))
outer:
	for _, sym := range symbols {
		for _, rule := range rules {
			if rule.Matches(sym) {
				continue outer
			}
		}
		kept = append(kept, sym)
	}
	return kept
}
