// Package layout describes the physical key grid shared by both halves.
package layout

import "fmt"

const (
	// Rows is the number of key rows on one half.
	Rows = 5
	// Cols is the number of key columns on one half.
	Cols = 7
	// TotalCols is the merged column count: left half 0..Cols-1, right half Cols..2*Cols-1.
	TotalCols = Cols * 2
	// LayerNum is the number of keymap layers.
	LayerNum = 4
)

// JumperKey is the hand-detect jumper cell. It reads closed on the left half.
var JumperKey = Coord{Row: 2, Col: 6}

// Hand identifies which electrical half the firmware runs on.
type Hand uint8

const (
	Left Hand = iota
	Right
)

func (h Hand) String() string {
	switch h {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Hand(%d)", uint8(h))
	}
}

// Other returns the opposite hand.
func (h Hand) Other() Hand {
	if h == Left {
		return Right
	}
	return Left
}

// Coord is one key position. Before merging Col is local to a half; after
// merging it spans TotalCols.
type Coord struct {
	Row uint8
	Col uint8
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.Row, c.Col) }

// Valid reports whether c lies in the merged grid.
func (c Coord) Valid() bool {
	return c.Row < Rows && c.Col < TotalCols
}

// MirrorCol maps a right-half local column into the merged grid. The right
// half is wired as the electrical mirror of the left, so its column order is
// reversed and placed after the left half's columns:
// (Cols-1-col)+Cols. The mapping is its own inverse.
func MirrorCol(col uint8) uint8 {
	return (Cols - 1 - col) + Cols
}

// Merge converts a local coordinate of hand h into the merged grid.
func Merge(h Hand, c Coord) Coord {
	if h == Right {
		c.Col = MirrorCol(c.Col)
	}
	return c
}
