package version

import (
	"strings"
	"testing"
)

func TestLongShortensCommit(t *testing.T) {
	info := Info{Version: "1.2.0", GitCommit: "0123456789abcdef", BuildDate: "2026-01-02", GoVersion: "go1.24.0", Platform: "linux/arm64"}
	got := info.Long()
	want := "stripd 1.2.0 (0123456, built 2026-01-02, go1.24.0 linux/arm64)"
	if got != want {
		t.Errorf("Long() = %q, want %q", got, want)
	}
}

func TestGetReportsRuntime(t *testing.T) {
	info := Get()
	if info.Version != Version || !strings.Contains(info.Platform, "/") {
		t.Errorf("Get() = %+v", info)
	}
}
