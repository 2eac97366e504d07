package buildinfo

import (
	"testing"

	"keyball/firmware/layout"
)

func TestShort(t *testing.T) {
	defer func(v, c string) { Version, Commit = v, c }(Version, Commit)

	tests := []struct {
		version, commit string
		want            string
	}{
		{"v1.2.0", "0123456789", "v1.2.0"},
		{"dev", "0123456789", "0123456"},
		{"dev", "abc", "abc"},
		{"dev", "unknown", "dev"},
	}
	for _, tt := range tests {
		Version, Commit = tt.version, tt.commit
		if got := Short(); got != tt.want {
			t.Fatalf("Short() with %q/%q = %q, want %q", tt.version, tt.commit, got, tt.want)
		}
	}
}

func TestBanner(t *testing.T) {
	defer func(v, d string) { Version, Date = v, d }(Version, Date)
	Version, Date = "v0.3.1", "2026-10-01"
	want := "keyball61 v0.3.1 (2026-10-01) right half"
	if got := Banner(layout.Right); got != want {
		t.Fatalf("Banner() = %q, want %q", got, want)
	}
}
