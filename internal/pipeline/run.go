package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wasmsig/internal/emcc"
	"wasmsig/internal/preset"
	"wasmsig/internal/sig"
	"wasmsig/internal/stub"
	"wasmsig/internal/symfilter"
	"wasmsig/internal/wasm"
)

// ReadImportTypesFunc recovers the declared type of every requested
// symbol from a wasm artifact. Production code uses wasm.ReadImportTypes;
// tests substitute fakes.
type ReadImportTypesFunc func(path string, symbols []string) (map[string]sig.FuncType, error)

// Request configures a full inference run.
type Request struct {
	Presets         []preset.Preset
	Driver          emcc.Driver
	ReadImportTypes ReadImportTypesFunc
	TmpDir          string // compilation workspace; a fresh temp dir when empty
	KeepTmp         bool
	Cache           *DiskCache // nil disables caching
	Progress        ProgressSink
}

// Result carries the accumulated signature mapping and run metadata.
type Result struct {
	Sigs    sig.Mapping
	Timings Timings
	TmpDir  string // set only when the workspace was kept
}

// Run processes every preset sequentially, threading one accumulator
// through all merge steps. Presets must not run concurrently: the
// cross-preset contradiction check needs full visibility of prior
// results before accepting a new one.
func Run(ctx context.Context, req *Request) (Result, error) {
	result := Result{Sigs: sig.Mapping{}}
	if req == nil {
		return result, fmt.Errorf("missing run request")
	}
	reqCopy := *req
	req = &reqCopy
	if req.Driver == nil {
		return result, fmt.Errorf("missing toolchain driver")
	}
	if req.ReadImportTypes == nil {
		req.ReadImportTypes = wasm.ReadImportTypes
	}
	if len(req.Presets) == 0 {
		return result, fmt.Errorf("no presets to process")
	}

	tmpDir := req.TmpDir
	if tmpDir == "" {
		var err error
		tmpDir, err = os.MkdirTemp("", "wasmsig-")
		if err != nil {
			return result, fmt.Errorf("failed to create workspace: %w", err)
		}
		if req.KeepTmp {
			result.TmpDir = tmpDir
		} else {
			defer func() {
				_ = os.RemoveAll(tmpDir)
			}()
		}
	} else {
		result.TmpDir = tmpDir
	}

	for _, p := range req.Presets {
		emit(req.Progress, Event{Preset: p.Name, Status: StatusQueued})
	}
	for _, p := range req.Presets {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		start := time.Now()
		if err := runPreset(ctx, req, p, tmpDir, result.Sigs, &result.Timings); err != nil {
			emit(req.Progress, Event{Preset: p.Name, Status: StatusError, Err: err, Elapsed: time.Since(start)})
			return result, err
		}
		emit(req.Progress, Event{Preset: p.Name, Status: StatusDone, Elapsed: time.Since(start)})
	}
	return result, nil
}

func runPreset(ctx context.Context, req *Request, p preset.Preset, tmpDir string, acc sig.Mapping, timings *Timings) error {
	stageStart := time.Now()
	emit(req.Progress, Event{Preset: p.Name, Stage: StageDiscover, Status: StatusWorking})
	discovered, err := req.Driver.DiscoverSymbols(ctx, p)
	if err != nil {
		return err
	}
	symbols := symfilter.Filter(discovered, p.CXX)
	timings.Add(StageDiscover, time.Since(stageStart))

	stageStart = time.Now()
	emit(req.Progress, Event{Preset: p.Name, Stage: StageEmit, Status: StatusWorking, Symbols: len(symbols)})
	lang := stub.C
	if p.CXX {
		lang = stub.CXX
	}
	unit := stub.Emit(symbols, lang)
	dir := filepath.Join(tmpDir, p.Name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("preset %s: %w", p.Name, err)
	}
	stubPath := filepath.Join(dir, "stub"+lang.Ext())
	if err := os.WriteFile(stubPath, []byte(unit), 0o600); err != nil {
		return fmt.Errorf("preset %s: %w", p.Name, err)
	}
	timings.Add(StageEmit, time.Since(stageStart))

	key, err := cacheKey(unit, p, req.Driver.Fingerprint())
	if err != nil {
		return fmt.Errorf("preset %s: %w", p.Name, err)
	}
	narrow, wide, cached, err := req.Cache.Get(key)
	if err != nil {
		// A corrupt cache entry is a miss, not a failure.
		cached = false
	}

	if !cached {
		narrowPath := filepath.Join(dir, "out32.o")
		widePath := filepath.Join(dir, "out64.o")

		stageStart = time.Now()
		emit(req.Progress, Event{Preset: p.Name, Stage: StageCompile32, Status: StatusWorking, Symbols: len(symbols)})
		if err := req.Driver.CompileStub(ctx, stubPath, p, emcc.Wasm32, narrowPath); err != nil {
			return err
		}
		timings.Add(StageCompile32, time.Since(stageStart))

		stageStart = time.Now()
		emit(req.Progress, Event{Preset: p.Name, Stage: StageCompile64, Status: StatusWorking, Symbols: len(symbols)})
		if err := req.Driver.CompileStub(ctx, stubPath, p, emcc.Wasm64, widePath); err != nil {
			return err
		}
		timings.Add(StageCompile64, time.Since(stageStart))

		stageStart = time.Now()
		emit(req.Progress, Event{Preset: p.Name, Stage: StageRead, Status: StatusWorking, Symbols: len(symbols)})
		narrow, err = req.ReadImportTypes(narrowPath, symbols)
		if err != nil {
			return fmt.Errorf("preset %s (%s): %w", p.Name, emcc.Wasm32, err)
		}
		wide, err = req.ReadImportTypes(widePath, symbols)
		if err != nil {
			return fmt.Errorf("preset %s (%s): %w", p.Name, emcc.Wasm64, err)
		}
		timings.Add(StageRead, time.Since(stageStart))

		if err := req.Cache.Put(key, narrow, wide); err != nil {
			return fmt.Errorf("preset %s: cache write: %w", p.Name, err)
		}
	}

	stageStart = time.Now()
	emit(req.Progress, Event{Preset: p.Name, Stage: StageMerge, Status: StatusWorking, Symbols: len(symbols)})
	for _, sym := range symbols {
		narrowType, ok := narrow[sym]
		if !ok {
			return fmt.Errorf("preset %s: %s missing from %s artifact", p.Name, sym, emcc.Wasm32)
		}
		wideType, ok := wide[sym]
		if !ok {
			return fmt.Errorf("preset %s: %s missing from %s artifact", p.Name, sym, emcc.Wasm64)
		}
		signature, err := sig.Reconcile(narrowType, wideType)
		if err != nil {
			return fmt.Errorf("preset %s: %s: %w", p.Name, sym, err)
		}
		if err := acc.Insert(sym, signature); err != nil {
			return fmt.Errorf("preset %s: %w", p.Name, err)
		}
	}
	timings.Add(StageMerge, time.Since(stageStart))
	return nil
}

// cacheKey fingerprints everything that determines a preset's raw
// import types: the stub text, the merged settings, the cflags, the
// frontend, and the toolchain build.
func cacheKey(unit string, p preset.Preset, fingerprint string) (Digest, error) {
	settings, err := json.Marshal(p.Settings)
	if err != nil {
		return Digest{}, err
	}
	h := sha256.New()
	for _, part := range []string{fingerprint, unit, string(settings), strings.Join(p.ExtraCFlags, "\x00")} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	if p.CXX {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	var key Digest
	copy(key[:], h.Sum(nil))
	return key, nil
}
