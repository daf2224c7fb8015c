package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wasmsig/internal/emcc"
	"wasmsig/internal/pipeline"
	"wasmsig/internal/preset"
	"wasmsig/internal/sig"
)

// fakeDriver serves canned symbols per preset and touches output
// files instead of compiling.
type fakeDriver struct {
	symbols  map[string][]string
	compiles []string
}

func (d *fakeDriver) DiscoverSymbols(_ context.Context, p preset.Preset) ([]string, error) {
	syms, ok := d.symbols[p.Name]
	if !ok {
		return nil, errors.New("unknown preset")
	}
	return syms, nil
}

func (d *fakeDriver) CompileStub(_ context.Context, stubPath string, p preset.Preset, w emcc.Width, outPath string) error {
	if _, err := os.Stat(stubPath); err != nil {
		return err
	}
	d.compiles = append(d.compiles, p.Name+"/"+w.String())
	return os.WriteFile(outPath, []byte("obj"), 0o600)
}

func (d *fakeDriver) Fingerprint() string { return "test-toolchain" }

// fakeTypes builds a reader that answers from per-width type tables.
func fakeTypes(narrow, wide map[string]sig.FuncType) pipeline.ReadImportTypesFunc {
	return func(path string, symbols []string) (map[string]sig.FuncType, error) {
		table := narrow
		if strings.Contains(filepath.Base(path), "64") {
			table = wide
		}
		out := make(map[string]sig.FuncType, len(symbols))
		for _, sym := range symbols {
			ft, ok := table[sym]
			if !ok {
				continue
			}
			out[sym] = ft
		}
		return out, nil
	}
}

type sinkRecorder struct {
	events []pipeline.Event
}

func (s *sinkRecorder) OnEvent(evt pipeline.Event) {
	s.events = append(s.events, evt)
}

func voidInt() (sig.FuncType, sig.FuncType) {
	ft := sig.FuncType{Params: []sig.ValueType{sig.I32}}
	return ft, ft
}

func TestRunAccumulatesAcrossPresets(t *testing.T) {
	narrowBar, wideBar := voidInt()
	narrow := map[string]sig.FuncType{
		"bar":    narrowBar,
		"malloc": {Params: []sig.ValueType{sig.I32}, Results: []sig.ValueType{sig.I32}},
	}
	wide := map[string]sig.FuncType{
		"bar":    wideBar,
		"malloc": {Params: []sig.ValueType{sig.I64}, Results: []sig.ValueType{sig.I64}},
	}
	driver := &fakeDriver{symbols: map[string][]string{
		"first":  {"bar", "malloc", "$internal", "glTexImage2DNV"},
		"second": {"bar"},
	}}
	sink := &sinkRecorder{}
	res, err := pipeline.Run(context.Background(), &pipeline.Request{
		Presets:         []preset.Preset{{Name: "first"}, {Name: "second"}},
		Driver:          driver,
		ReadImportTypes: fakeTypes(narrow, wide),
		Progress:        sink,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := res.Sigs["bar"]; got != "vi" {
		t.Errorf("bar = %q, want vi", got)
	}
	if got := res.Sigs["malloc"]; got != "pp" {
		t.Errorf("malloc = %q, want pp", got)
	}
	if _, ok := res.Sigs["$internal"]; ok {
		t.Error("filtered symbol leaked into the mapping")
	}

	// Both widths compiled for both presets, in order.
	want := []string{"first/wasm32", "first/wasm64", "second/wasm32", "second/wasm64"}
	if len(driver.compiles) != len(want) {
		t.Fatalf("compiles = %v", driver.compiles)
	}
	for i := range want {
		if driver.compiles[i] != want[i] {
			t.Fatalf("compiles = %v, want %v", driver.compiles, want)
		}
	}

	var doneCount int
	for _, evt := range sink.events {
		if evt.Status == pipeline.StatusDone {
			doneCount++
		}
		if evt.Status == pipeline.StatusError {
			t.Errorf("unexpected error event: %+v", evt)
		}
	}
	if doneCount != 2 {
		t.Errorf("done events = %d, want 2", doneCount)
	}
}

func TestRunContradictionAborts(t *testing.T) {
	narrow := map[string]sig.FuncType{"bar": {Params: []sig.ValueType{sig.I32}}}
	wideSame := map[string]sig.FuncType{"bar": {Params: []sig.ValueType{sig.I32}}}
	wideDiffers := map[string]sig.FuncType{"bar": {Params: []sig.ValueType{sig.I64}}}

	driver := &fakeDriver{symbols: map[string][]string{
		"first": {"bar"},
		"third": {"bar"},
	}}
	reader := func(path string, symbols []string) (map[string]sig.FuncType, error) {
		if !strings.Contains(filepath.Base(path), "64") {
			return fakeTypes(narrow, nil)(path, symbols)
		}
		if strings.Contains(path, "third") {
			return fakeTypes(nil, wideDiffers)(path, symbols)
		}
		return fakeTypes(nil, wideSame)(path, symbols)
	}

	_, err := pipeline.Run(context.Background(), &pipeline.Request{
		Presets:         []preset.Preset{{Name: "first"}, {Name: "third"}},
		Driver:          driver,
		ReadImportTypes: reader,
	})
	if err == nil {
		t.Fatal("expected contradiction error")
	}
	var contradiction *sig.ContradictionError
	if !errors.As(err, &contradiction) {
		t.Fatalf("expected ContradictionError, got: %v", err)
	}
	if contradiction.Symbol != "bar" || contradiction.Existing != "vi" || contradiction.Incoming != "vp" {
		t.Fatalf("contradiction = %+v", contradiction)
	}
}

func TestRunMissingSymbolIsFatal(t *testing.T) {
	driver := &fakeDriver{symbols: map[string][]string{"only": {"bar", "gone"}}}
	reader := fakeTypes(
		map[string]sig.FuncType{"bar": {}},
		map[string]sig.FuncType{"bar": {}},
	)
	_, err := pipeline.Run(context.Background(), &pipeline.Request{
		Presets:         []preset.Preset{{Name: "only"}},
		Driver:          driver,
		ReadImportTypes: reader,
	})
	if err == nil || !strings.Contains(err.Error(), "gone") {
		t.Fatalf("expected missing-symbol error naming the symbol, got: %v", err)
	}
}

func TestRunCompileFailureAborts(t *testing.T) {
	driver := &failingDriver{}
	_, err := pipeline.Run(context.Background(), &pipeline.Request{
		Presets:         []preset.Preset{{Name: "broken"}, {Name: "never-reached"}},
		Driver:          driver,
		ReadImportTypes: fakeTypes(nil, nil),
	})
	if err == nil || !strings.Contains(err.Error(), "compiler exploded") {
		t.Fatalf("expected compile failure, got: %v", err)
	}
	if driver.discoveries != 1 {
		t.Fatalf("later presets must not run after a fatal failure (discoveries=%d)", driver.discoveries)
	}
}

type failingDriver struct {
	discoveries int
}

func (d *failingDriver) DiscoverSymbols(context.Context, preset.Preset) ([]string, error) {
	d.discoveries++
	return []string{"bar"}, nil
}

func (d *failingDriver) CompileStub(context.Context, string, preset.Preset, emcc.Width, string) error {
	return errors.New("compiler exploded")
}

func (d *failingDriver) Fingerprint() string { return "test" }
