// Package emcc drives the external Emscripten toolchain: symbol
// discovery through the JS compiler tool and dual-width stub
// compilation with emcc/em++.
package emcc

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"wasmsig/internal/preset"
)

// Width selects the pointer-width target of one stub compilation.
type Width int

const (
	// Wasm32 is the narrow target: pointers and size_t are 32-bit.
	Wasm32 Width = 32
	// Wasm64 is the wide target (-sMEMORY64).
	Wasm64 Width = 64
)

func (w Width) String() string {
	return fmt.Sprintf("wasm%d", int(w))
}

// Driver is the collaborator contract the pipeline depends on. The
// real implementation shells out to the toolchain; tests substitute
// fakes.
type Driver interface {
	// DiscoverSymbols returns the JS library symbols reachable under
	// the preset's settings.
	DiscoverSymbols(ctx context.Context, p preset.Preset) ([]string, error)
	// CompileStub compiles the stub unit at stubPath into a wasm
	// object file at outPath for the given width. A compiler failure
	// is fatal for the whole run.
	CompileStub(ctx context.Context, stubPath string, p preset.Preset, w Width, outPath string) error
	// Fingerprint identifies the toolchain build, for cache keying.
	Fingerprint() string
}

// Toolchain is the real Driver backed by an Emscripten checkout.
type Toolchain struct {
	emcc          string
	emxx          string
	node          string
	root          string
	version       string
	printCommands bool
}

// NewToolchain locates emcc, em++ and node on PATH, resolves the
// Emscripten root from the emcc location, and verifies the toolchain
// version.
func NewToolchain(printCommands bool) (*Toolchain, error) {
	emccPath, err := exec.LookPath("emcc")
	if err != nil {
		return nil, fmt.Errorf("emcc not found on PATH; activate an emsdk environment first")
	}
	emxxPath, err := exec.LookPath("em++")
	if err != nil {
		return nil, fmt.Errorf("em++ not found on PATH: %w", err)
	}
	nodePath, err := exec.LookPath("node")
	if err != nil {
		return nil, fmt.Errorf("node not found on PATH (required for symbol discovery): %w", err)
	}

	root, err := resolveRoot(emccPath)
	if err != nil {
		return nil, err
	}
	tc := &Toolchain{
		emcc:          emccPath,
		emxx:          emxxPath,
		node:          nodePath,
		root:          root,
		printCommands: printCommands,
	}
	version, err := tc.checkVersion()
	if err != nil {
		return nil, err
	}
	tc.version = version
	return tc, nil
}

// resolveRoot finds the Emscripten checkout containing the given emcc.
func resolveRoot(emccPath string) (string, error) {
	resolved, err := filepath.EvalSymlinks(emccPath)
	if err != nil {
		resolved = emccPath
	}
	root := filepath.Dir(resolved)
	marker := filepath.Join(root, "tools", "compiler.mjs")
	if _, err := os.Stat(marker); err != nil {
		return "", fmt.Errorf("%s does not look like an Emscripten root (missing tools/compiler.mjs)", root)
	}
	return root, nil
}

// Fingerprint returns the toolchain version string.
func (t *Toolchain) Fingerprint() string {
	return t.version
}

// Root returns the Emscripten checkout directory.
func (t *Toolchain) Root() string {
	return t.root
}

// CompileStub builds the stub once for the requested width. The
// command matches a plain object compile; preset settings only affect
// symbol discovery, while extra cflags (feature macros, -std=) do
// change what the stub sees.
func (t *Toolchain) CompileStub(ctx context.Context, stubPath string, p preset.Preset, w Width, outPath string) error {
	compiler := t.emcc
	if p.CXX {
		compiler = t.emxx
	}
	args := t.compileArgs(stubPath, p, w, outPath)
	if err := t.run(ctx, compiler, args...); err != nil {
		return fmt.Errorf("%s compile (%s, preset %s): %w", w, filepath.Base(compiler), p.Name, err)
	}
	return nil
}

func (t *Toolchain) compileArgs(stubPath string, p preset.Preset, w Width, outPath string) []string {
	args := []string{
		stubPath, "-c", "-pthread",
		"--tracing",
		"-Wno-deprecated-declarations",
		"-I" + filepath.Join(t.root, "system/lib/libc"),
		"-I" + filepath.Join(t.root, "system/lib/wasmfs"),
		"-o", outPath,
	}
	if !p.CXX {
		args = append(args,
			"-I"+filepath.Join(t.root, "system/lib/pthread"),
			"-I"+filepath.Join(t.root, "system/lib/libc/musl/src/include"),
			"-I"+filepath.Join(t.root, "system/lib/libc/musl/src/internal"),
			"-I"+filepath.Join(t.root, "system/lib/gl"),
			"-I"+filepath.Join(t.root, "system/lib/libcxxabi/include"),
		)
	}
	args = append(args, p.ExtraCFlags...)
	if w == Wasm64 {
		args = append(args, "-sMEMORY64", "-Wno-experimental")
	}
	return args
}

func (t *Toolchain) run(ctx context.Context, name string, args ...string) error {
	if t.printCommands {
		fmt.Fprintf(os.Stdout, "%s %s\n", name, strings.Join(args, " "))
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return err
		}
		return fmt.Errorf("%s: %s", filepath.Base(name), msg)
	}
	return nil
}
