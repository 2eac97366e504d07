//go:build tinygo && rp2040

package main

import (
	"context"

	"keyball/app"
	"keyball/firmware/config"
	"keyball/hal"
)

func main() {
	h := hal.New()
	if err := app.Run(context.Background(), h, app.Options{Config: config.Default()}); err != nil {
		h.Logger().WriteLineString(err.Error())
	}
	select {}
}
