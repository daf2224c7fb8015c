package symfilter_test

import (
	"testing"

	"wasmsig/internal/symfilter"
)

func TestFilterDropsKnownFamilies(t *testing.T) {
	in := []string{"__stack_base", "malloc", "emscripten_glClear", "glTexImage2DNV"}
	got := symfilter.Filter(in, false)
	if len(got) != 1 || got[0] != "malloc" {
		t.Fatalf("Filter(%v) = %v, want [malloc]", in, got)
	}
}

func TestExcludedRuleNames(t *testing.T) {
	cases := []struct {
		name string
		cxx  bool
		rule string
	}{
		{"$withStackSave", false, "js-internal"},
		{"SDL_GetKeyState", false, "undeclared"},
		{"emscripten_glClear", false, "wrapper-family"},
		{"emscripten_alcGetStringiSOFT", false, "wrapper-family"},
		{"glTexImage2DNV", false, "gl-extension"},
		{"glDrawBuffersWEBGL", false, "gl-extension"},
		{"__stack_pointer", false, "reserved"},
		{"stackSave", false, "reserved"},
		{"__asctime_r", true, "cxx-asctime"},
		{"__cxa_find_matching_catch_3", true, "cxx-unwind-internal"},
	}
	for _, tc := range cases {
		rule, excluded := symfilter.Excluded(tc.name, tc.cxx)
		if !excluded {
			t.Errorf("Excluded(%q, cxx=%v) = false, want rule %q", tc.name, tc.cxx, tc.rule)
			continue
		}
		if rule != tc.rule {
			t.Errorf("Excluded(%q, cxx=%v) matched %q, want %q", tc.name, tc.cxx, rule, tc.rule)
		}
	}
}

func TestCXXRulesOnlyApplyToCXX(t *testing.T) {
	for _, name := range []string{"__asctime_r", "__cxa_find_matching_catch_2"} {
		if _, excluded := symfilter.Excluded(name, false); excluded {
			t.Errorf("Excluded(%q, cxx=false) = true, want false", name)
		}
		if _, excluded := symfilter.Excluded(name, true); !excluded {
			t.Errorf("Excluded(%q, cxx=true) = false, want true", name)
		}
	}
}

func TestFilterKeepsOrder(t *testing.T) {
	in := []string{"c", "a", "stackAlloc", "b"}
	got := symfilter.Filter(in, false)
	want := []string{"c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("Filter = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Filter = %v, want %v", got, want)
		}
	}
}

func TestGLPrefixWithoutSuffixKept(t *testing.T) {
	if _, excluded := symfilter.Excluded("glTexImage2D", false); excluded {
		t.Fatal("glTexImage2D should not be excluded")
	}
	// Suffix without the gl prefix is also kept.
	if _, excluded := symfilter.Excluded("alSpeedOfSoundEXT", false); excluded {
		t.Fatal("non-gl symbol with extension suffix should not be excluded")
	}
}
