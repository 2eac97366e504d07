// Package buildinfo carries the version stamped into the image.
package buildinfo

import "fmt"

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Date is set at build time via -ldflags.
var Date = "unknown"

// Short returns a compact build identifier for the OLED and window title.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		if len(Commit) > 7 {
			return Commit[:7]
		}
		return Commit
	}
	return "dev"
}

// Banner is the first log line of a boot.
func Banner(hand fmt.Stringer) string {
	return fmt.Sprintf("keyball61 %s (%s) %v half", Short(), Date, hand)
}
