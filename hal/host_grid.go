//go:build !tinygo

package hal

import (
	"fmt"
	"sync"

	"keyball/firmware/layout"
)

// switchGrid is the electrical model of one half's key matrix: switches with
// diodes between row pins and column pins.
type switchGrid struct {
	hand   layout.Hand
	mu     sync.Mutex
	closed [layout.Rows][layout.Cols]bool
	rows   [layout.Rows]*gridPin
	cols   [ScanCols]*gridPin
}

func newSwitchGrid(hand layout.Hand) *switchGrid {
	g := &switchGrid{hand: hand}
	for i := range g.rows {
		g.rows[i] = &gridPin{virtualPin: newVirtualPin(fmt.Sprintf("ROW%d", i)), grid: g, index: i}
	}
	for j := range g.cols {
		g.cols[j] = &gridPin{virtualPin: newVirtualPin(fmt.Sprintf("COL%d", j)), grid: g, col: true, index: j}
	}
	if hand == layout.Left {
		g.closed[layout.JumperKey.Row][layout.JumperKey.Col] = true
	}
	return g
}

// set closes or opens the switch at half-local c. The left jumper is fixed.
func (g *switchGrid) set(c layout.Coord, closed bool) {
	if c.Row >= layout.Rows || c.Col >= layout.Cols || (g.hand == layout.Left && c == layout.JumperKey) {
		return
	}
	g.mu.Lock()
	g.closed[c.Row][c.Col] = closed
	g.mu.Unlock()
}

func (g *switchGrid) pins() (rows, cols []GPIOPin) {
	for _, p := range g.rows {
		rows = append(rows, p)
	}
	for _, p := range g.cols {
		cols = append(cols, p)
	}
	return rows, cols
}

// gridPin is a matrix line. As an input it reads high when a closed switch
// connects it, through a forward diode, to a line driven high.
type gridPin struct {
	*virtualPin
	grid  *switchGrid
	col   bool
	index int
}

func (p *gridPin) Read() (bool, error) {
	mode, pull, level := p.state()
	if mode == GPIOModeOutput {
		return level, nil
	}
	if p.driven() {
		return true, nil
	}
	return pull == GPIOPullUp, nil
}

func (p *gridPin) driven() bool {
	g := p.grid
	g.mu.Lock()
	closed := g.closed
	g.mu.Unlock()

	if p.col {
		// Row -> col diodes sit on matrix columns colToRow and up.
		c := p.index + colToRow
		if c >= layout.Cols {
			return false
		}
		for i, row := range g.rows {
			if closed[i][c] && high(row) {
				return true
			}
		}
		return false
	}
	for j := 0; j < colToRow; j++ {
		if closed[p.index][j] && high(g.cols[j]) {
			return true
		}
	}
	return false
}

func high(p *gridPin) bool {
	mode, _, level := p.state()
	return mode == GPIOModeOutput && level
}
