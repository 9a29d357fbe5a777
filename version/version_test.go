package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	info := Info{Version: "0.0.0", Branch: "unknown", Revision: "unknown", BuiltAt: "unknown"}
	fromBuildInfo(&info, &debug.BuildInfo{
		Main: debug.Module{Version: "v1.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2024-05-01T10:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	})

	if info.Version != "v1.4.0" {
		t.Errorf("Expected module version, got %q", info.Version)
	}
	if info.Revision != "0123456" {
		t.Errorf("Expected short revision, got %q", info.Revision)
	}
	if info.BuiltAt != "2024-05-01T10:00:00Z" || !info.Modified {
		t.Errorf("Unexpected build metadata %+v", info)
	}
}

func TestFromBuildInfo_KeepsLdflags(t *testing.T) {
	info := Info{Version: "2.0.0", Revision: "abc"}
	fromBuildInfo(&info, &debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "fffffffffff"}},
	})
	if info.Version != "2.0.0" || info.Revision != "abc" {
		t.Errorf("Expected injected values to win, got %+v", info)
	}
}

func TestInfoJSON(t *testing.T) {
	s, err := Info{Version: "1.0.0"}.JSON()
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	if !strings.Contains(s, `"version": "1.0.0"`) {
		t.Errorf("Unexpected JSON %s", s)
	}
}
