package emcc

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"wasmsig/internal/preset"
)

// DiscoverSymbols asks the JS compiler tool which library symbols are
// reachable under the preset's settings. The tool takes its settings
// as a JSON file and reports dependencies on stdout.
func (t *Toolchain) DiscoverSymbols(ctx context.Context, p preset.Preset) ([]string, error) {
	settings, err := t.settingsJSON(p)
	if err != nil {
		return nil, err
	}
	settingsFile, err := os.CreateTemp("", "wasmsig-settings-*.json")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = os.Remove(settingsFile.Name())
	}()
	if _, err := settingsFile.Write(settings); err != nil {
		_ = settingsFile.Close()
		return nil, err
	}
	if err := settingsFile.Close(); err != nil {
		return nil, err
	}

	tool := filepath.Join(t.root, "tools", "compiler.mjs")
	args := []string{tool, "--symbols-only", settingsFile.Name()}
	if t.printCommands {
		fmt.Fprintf(os.Stdout, "%s %s\n", t.node, strings.Join(args, " "))
	}
	cmd := exec.CommandContext(ctx, t.node, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("symbol discovery (preset %s): %s", p.Name, msg)
	}

	var report struct {
		Deps map[string]json.RawMessage `json:"deps"`
	}
	if err := json.Unmarshal(out, &report); err != nil {
		return nil, fmt.Errorf("symbol discovery (preset %s): bad tool output: %w", p.Name, err)
	}
	symbols := make([]string, 0, len(report.Deps))
	for sym := range report.Deps {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols, nil
}

// settingsJSON serializes the preset settings for the compiler tool,
// resolving JS library names against the checkout's src/lib directory.
func (t *Toolchain) settingsJSON(p preset.Preset) ([]byte, error) {
	settings := make(map[string]any, len(p.Settings))
	for k, v := range p.Settings {
		settings[k] = v
	}
	if libs, ok := settings["JS_LIBRARIES"].([]any); ok {
		resolved := make([]string, 0, len(libs))
		for _, lib := range libs {
			name, ok := lib.(string)
			if !ok {
				return nil, fmt.Errorf("preset %s: JS_LIBRARIES entry %v is not a string", p.Name, lib)
			}
			resolved = append(resolved, filepath.Join(t.root, "src", "lib", name))
		}
		settings["JS_LIBRARIES"] = resolved
	}
	out, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", p.Name, err)
	}
	return out, nil
}
