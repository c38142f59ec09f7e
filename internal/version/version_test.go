package version_test

import (
	"runtime"
	"strings"
	"testing"

	"github.com/edumarques81/stellar-media-library/internal/version"
)

func TestGetInfo(t *testing.T) {
	info := version.GetInfo()

	if info.Name != version.Name {
		t.Errorf("Expected name '%s', got '%s'", version.Name, info.Name)
	}
	if info.Version != version.Version || info.Version == "" {
		t.Errorf("Expected version '%s', got '%s'", version.Version, info.Version)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("Expected go version %s, got %s", runtime.Version(), info.GoVersion)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		info version.Info
		want string
	}{
		{"plain", version.Info{Name: "Stellar Library", Version: "1.2.3"}, "Stellar Library v1.2.3"},
		{"short commit", version.Info{Name: "S", Version: "1", GitCommit: "abc"}, "S v1 (abc)"},
		{"long commit truncated", version.Info{Name: "S", Version: "1", GitCommit: "0123456789abcdef"}, "S v1 (0123456)"},
		{"build time", version.Info{Name: "S", Version: "1", BuildTime: "2026-01-01"}, "S v1 built 2026-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.String(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestStringContainsName(t *testing.T) {
	if s := version.GetInfo().String(); !strings.HasPrefix(s, version.Name+" v") {
		t.Errorf("Unexpected version string: %s", s)
	}
}
