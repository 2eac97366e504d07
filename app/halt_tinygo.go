//go:build tinygo

package app

// halt parks the dying task for good.
func halt() { select {} }
