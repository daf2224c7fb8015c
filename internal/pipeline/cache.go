package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"wasmsig/internal/sig"
)

// Bump when the payload layout changes so stale entries self-invalidate.
const cacheSchemaVersion uint16 = 1

// Digest is a sha256 cache key over stub text, preset settings and
// toolchain fingerprint.
type Digest [sha256.Size]byte

// DiskCache stores per-preset raw import types so unchanged presets
// skip both compiler invocations on re-runs.
type DiskCache struct {
	mu  sync.Mutex
	dir string
}

type widthEntry struct {
	Symbol  string
	Params  []byte
	Results []byte
}

type cachePayload struct {
	Schema uint16
	Narrow []widthEntry
	Wide   []widthEntry
}

// OpenDiskCache initializes a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "presets", hex.EncodeToString(key[:])+".mp")
}

// Put serializes both widths' import types under key, atomically.
func (c *DiskCache) Put(key Digest, narrow, wide map[string]sig.FuncType) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := cachePayload{
		Schema: cacheSchemaVersion,
		Narrow: toEntries(narrow),
		Wide:   toEntries(wide),
	}
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()
	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get deserializes a cached entry. A missing or stale entry reports
// ok=false without error.
func (c *DiskCache) Get(key Digest) (narrow, wide map[string]sig.FuncType, ok bool, err error) {
	if c == nil {
		return nil, nil, false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// #nosec G304 -- path is derived from the cache dir and a hex key
	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, false, nil
		}
		return nil, nil, false, err
	}
	defer func() {
		_ = f.Close()
	}()

	var payload cachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, nil, false, err
	}
	if payload.Schema != cacheSchemaVersion {
		return nil, nil, false, nil
	}
	return fromEntries(payload.Narrow), fromEntries(payload.Wide), true, nil
}

func toEntries(types map[string]sig.FuncType) []widthEntry {
	entries := make([]widthEntry, 0, len(types))
	for sym, ft := range types {
		entry := widthEntry{Symbol: sym}
		for _, p := range ft.Params {
			entry.Params = append(entry.Params, byte(p))
		}
		for _, r := range ft.Results {
			entry.Results = append(entry.Results, byte(r))
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Symbol < entries[j].Symbol })
	return entries
}

func fromEntries(entries []widthEntry) map[string]sig.FuncType {
	types := make(map[string]sig.FuncType, len(entries))
	for _, entry := range entries {
		var ft sig.FuncType
		for _, p := range entry.Params {
			ft.Params = append(ft.Params, sig.ValueType(p))
		}
		for _, r := range entry.Results {
			ft.Results = append(ft.Results, sig.ValueType(r))
		}
		types[entry.Symbol] = ft
	}
	return types
}
