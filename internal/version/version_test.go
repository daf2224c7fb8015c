package version

import (
	"strings"
	"testing"
)

func TestVersionContainsRelease(t *testing.T) {
	// The string carries color escapes; the digits must survive them.
	for _, part := range []string{"0", "1"} {
		if !strings.Contains(Version, part) {
			t.Errorf("Version %q missing component %q", Version, part)
		}
	}
}

func TestBuildMetadataOverridable(t *testing.T) {
	origCommit, origDate := GitCommit, BuildDate
	defer func() {
		GitCommit, BuildDate = origCommit, origDate
	}()

	GitCommit = "abc123def456"
	BuildDate = "2026-08-31T00:00:00Z"
	if GitCommit != "abc123def456" || BuildDate != "2026-08-31T00:00:00Z" {
		t.Errorf("ldflags-style override failed: %q %q", GitCommit, BuildDate)
	}
}
