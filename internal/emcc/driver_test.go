package emcc

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"wasmsig/internal/preset"
)

func testToolchain() *Toolchain {
	return &Toolchain{
		emcc: "/em/emcc",
		emxx: "/em/em++",
		node: "/usr/bin/node",
		root: "/em",
	}
}

func TestCompileArgsWidthSwitch(t *testing.T) {
	tc := testToolchain()
	p := preset.Preset{Name: "standalone"}

	narrow := tc.compileArgs("stub.c", p, Wasm32, "out32.o")
	wide := tc.compileArgs("stub.c", p, Wasm64, "out64.o")

	if slices.Contains(narrow, "-sMEMORY64") {
		t.Error("narrow compile must not set -sMEMORY64")
	}
	if !slices.Contains(wide, "-sMEMORY64") || !slices.Contains(wide, "-Wno-experimental") {
		t.Errorf("wide compile args missing width switch: %v", wide)
	}

	// Apart from the width switch and output path, the commands are
	// identical: same source, same settings.
	trimmed := append([]string(nil), wide[:len(wide)-2]...)
	for i, arg := range trimmed {
		if arg == "out64.o" {
			trimmed[i] = "out32.o"
		}
	}
	if !slices.Equal(trimmed, narrow) {
		t.Errorf("commands differ beyond the width switch:\n%v\n%v", narrow, wide)
	}
}

func TestCompileArgsCIncludes(t *testing.T) {
	tc := testToolchain()
	cArgs := tc.compileArgs("stub.c", preset.Preset{Name: "glfw3", ExtraCFlags: []string{"-DGLFW3"}}, Wasm32, "out.o")
	if !slices.Contains(cArgs, "-I"+filepath.Join("/em", "system/lib/gl")) {
		t.Errorf("C compile should add the gl include dir: %v", cArgs)
	}
	if !slices.Contains(cArgs, "-DGLFW3") {
		t.Errorf("preset cflags missing: %v", cArgs)
	}

	cxxArgs := tc.compileArgs("stub.cpp", preset.Preset{Name: "embind", CXX: true}, Wasm32, "out.o")
	for _, arg := range cxxArgs {
		if strings.Contains(arg, "system/lib/gl") {
			t.Errorf("C++ compile must not add C-only include dirs: %v", cxxArgs)
		}
	}
}

func TestSettingsJSONResolvesLibraries(t *testing.T) {
	tc := testToolchain()
	p := preset.Preset{
		Name: "wasm-workers",
		Settings: map[string]any{
			"WASM_WORKERS": int64(1),
			"JS_LIBRARIES": []any{"libwasm_worker.js"},
		},
	}
	out, err := tc.settingsJSON(p)
	if err != nil {
		t.Fatalf("settingsJSON: %v", err)
	}
	want := filepath.Join("/em", "src", "lib", "libwasm_worker.js")
	if !strings.Contains(string(out), want) {
		t.Fatalf("settings JSON %s missing resolved library path %s", out, want)
	}
}

func TestWidthString(t *testing.T) {
	if Wasm32.String() != "wasm32" || Wasm64.String() != "wasm64" {
		t.Fatalf("Width strings: %s %s", Wasm32, Wasm64)
	}
}
