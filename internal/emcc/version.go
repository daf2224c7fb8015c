package emcc

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Older toolchains predate -sMEMORY64 object compilation and cannot
// serve the wide pass.
var minVersion = semver.MustParse("3.1.0")

var versionPattern = regexp.MustCompile(`\d+\.\d+\.\d+`)

func (t *Toolchain) checkVersion() (string, error) {
	out, err := exec.Command(t.emcc, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("emcc --version: %w", err)
	}
	firstLine, _, _ := strings.Cut(string(out), "\n")
	raw := versionPattern.FindString(firstLine)
	if raw == "" {
		return "", fmt.Errorf("could not parse emcc version from %q", strings.TrimSpace(firstLine))
	}
	version, err := semver.NewVersion(raw)
	if err != nil {
		return "", fmt.Errorf("emcc version %q: %w", raw, err)
	}
	if version.LessThan(minVersion) {
		return "", fmt.Errorf("emcc %s is too old (need >= %s)", version, minVersion)
	}
	return version.String(), nil
}
