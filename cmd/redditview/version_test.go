package main

import (
	"runtime/debug"
	"testing"
)

// TestResolveVersion documents version precedence:
// - an ldflags version always wins
// - "dev" falls back to the module version so go install builds report their tag
// - "(devel)", empty or missing build info stay "dev"
func TestResolveVersion(t *testing.T) {
	testCases := []struct {
		name    string
		version string
		info    *debug.BuildInfo
		want    string
	}{
		{"prefer ldflags", "v1.2.3", &debug.BuildInfo{Main: debug.Module{Version: "v0.0.0"}}, "v1.2.3"},
		{"fallback to build info", "dev", &debug.BuildInfo{Main: debug.Module{Version: "v1.2.3"}}, "v1.2.3"},
		{"ignore devel", "dev", &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, "dev"},
		{"empty build info", "dev", &debug.BuildInfo{}, "dev"},
		{"nil build info", "dev", nil, "dev"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveVersion(tc.version, tc.info); got != tc.want {
				t.Errorf("resolveVersion(%q) = %q, want %q", tc.version, got, tc.want)
			}
		})
	}
}
