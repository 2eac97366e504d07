//go:build !tinygo && cgo

package hal

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/sync/errgroup"

	"keyball/firmware/layout"
	"keyball/internal/buildinfo"
)

const (
	oledWidth  = 128
	oledHeight = 32
	oledGap    = 8
	infoHeight = 16
	windowZoom = 3
)

// RunWindow runs both halves behind a desktop window showing their OLEDs.
// PC keys close switches, dragging with the left button rolls the ball and
// F1 toggles host suspend.
// It blocks until the window closes.
func RunWindow(fw Firmware, cfg SimConfig) error {
	sim, err := NewSim(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sim.Run(gctx) })
	for _, hand := range []layout.Hand{layout.Left, layout.Right} {
		hand := hand
		h := sim.Half(hand)
		g.Go(func() error {
			if err := fw(gctx, h); err != nil && gctx.Err() == nil {
				return fmt.Errorf("%v half: %w", hand, err)
			}
			return nil
		})
	}

	game := &hostGame{sim: sim, done: gctx.Done(), usb: cfg.USB}
	w, h := game.Layout(0, 0)
	ebiten.SetWindowTitle("keyball61 (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(w*windowZoom, h*windowZoom)
	ebiten.SetTPS(60)
	runErr := ebiten.RunGame(game)
	if errors.Is(runErr, errFirmwareStopped) {
		runErr = nil
	}

	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return runErr
}

// errFirmwareStopped closes the window once either half has returned.
var errFirmwareStopped = errors.New("firmware stopped")

type hostGame struct {
	sim  *Sim
	done <-chan struct{}
	usb  layout.Hand
	drag pointerDrag

	pix  [2][]bool
	img  [2]*image.RGBA
	oled [2]*ebiten.Image
}

func (g *hostGame) Update() error {
	select {
	case <-g.done:
		return errFirmwareStopped
	default:
	}
	pollKeys(g.sim)
	g.drag.poll(g.sim)
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.sim.Suspend(!g.sim.halves[g.usb].hid.Suspended())
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	for i, hand := range []layout.Hand{layout.Left, layout.Right} {
		if g.oled[i] == nil {
			g.pix[i] = make([]bool, oledWidth*oledHeight)
			g.img[i] = image.NewRGBA(image.Rect(0, 0, oledWidth, oledHeight))
			g.oled[i] = ebiten.NewImage(oledWidth, oledHeight)
		}
		g.sim.Display(hand).Snapshot(g.pix[i])
		dst := g.img[i].Pix
		for p, on := range g.pix[i] {
			var v byte
			if on {
				v = 0xFF
			}
			dst[p*4+0], dst[p*4+1], dst[p*4+2], dst[p*4+3] = v, v, v, 0xFF
		}
		g.oled[i].WritePixels(dst)

		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(i*(oledWidth+oledGap)), 0)
		screen.DrawImage(g.oled[i], op)
	}

	reports := g.sim.Reports(g.usb)
	info := fmt.Sprintf("usb %v  reports %d", g.usb, len(reports))
	if n := len(reports); n > 0 {
		info += "  " + reports[n-1].String()
	}
	ebitenutil.DebugPrintAt(screen, info, 0, oledHeight)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return 2*oledWidth + oledGap, oledHeight + infoHeight
}
