package hal

import (
	"errors"
	"fmt"

	"keyball/firmware/layout"
)

// ScanCols is the number of column lines on one half.
const ScanCols = 4

// colToRow is the number of column lines scanned col->row. Matrix columns
// 0..colToRow-1 are read that way; the rest are read row->col at column
// offset colToRow.
const colToRow = 3

var ErrPinCount = errors.New("matrix: wrong pin count")

// DuplexScanner scans a duplex matrix: every switch sits behind a diode in
// one of two directions, so both the rows and the column lines take turns
// driving.
type DuplexScanner struct {
	rows [layout.Rows]GPIOPin
	cols [ScanCols]GPIOPin
	hand layout.Hand
	down [layout.Rows][layout.Cols]bool
}

// NewDuplexScanner detects the hand and returns a scanner over rows and cols.
func NewDuplexScanner(rows, cols []GPIOPin) (*DuplexScanner, error) {
	if len(rows) != layout.Rows || len(cols) != ScanCols {
		return nil, fmt.Errorf("%w: %d rows, %d cols", ErrPinCount, len(rows), len(cols))
	}
	s := &DuplexScanner{}
	copy(s.rows[:], rows)
	copy(s.cols[:], cols)
	for _, p := range append(s.rows[:], s.cols[:]...) {
		if err := p.Configure(GPIOModeInput, GPIOPullDown); err != nil {
			return nil, fmt.Errorf("matrix: %w", err)
		}
	}
	hand, err := DetectHand(s.rows[:], s.cols[:])
	if err != nil {
		return nil, err
	}
	s.hand = hand
	return s, nil
}

// DetectHand reads the hand-detect jumper: its row is driven high and its
// column line read with a pull-down. The jumper is only fitted on the left.
func DetectHand(rows, cols []GPIOPin) (layout.Hand, error) {
	if len(rows) != layout.Rows || len(cols) != ScanCols {
		return layout.Left, ErrPinCount
	}
	row := rows[layout.JumperKey.Row]
	col := cols[layout.JumperKey.Col-colToRow]
	if err := col.Configure(GPIOModeInput, GPIOPullDown); err != nil {
		return layout.Left, fmt.Errorf("hand detect: %w", err)
	}
	if err := row.Configure(GPIOModeOutput, GPIOPullNone); err != nil {
		return layout.Left, fmt.Errorf("hand detect: %w", err)
	}
	defer release(row)
	if err := row.Write(true); err != nil {
		return layout.Left, fmt.Errorf("hand detect: %w", err)
	}
	high, err := col.Read()
	if err != nil {
		return layout.Left, fmt.Errorf("hand detect: %w", err)
	}
	if high {
		return layout.Left, nil
	}
	return layout.Right, nil
}

// Hand returns the hand found at construction.
func (s *DuplexScanner) Hand() layout.Hand { return s.hand }

// Scan runs one col->row pass and one row->col pass and appends the changes.
func (s *DuplexScanner) Scan(dst []KeyEvent) []KeyEvent {
	for j := 0; j < colToRow; j++ {
		col := s.cols[j]
		if !drive(col) {
			continue
		}
		for i, row := range s.rows {
			if high, err := row.Read(); err == nil {
				dst = s.set(dst, i, j, high)
			}
		}
		release(col)
	}

	for i, row := range s.rows {
		if !drive(row) {
			continue
		}
		for j, col := range s.cols {
			c := j + colToRow
			if s.hand == layout.Left && i == int(layout.JumperKey.Row) && c == int(layout.JumperKey.Col) {
				continue
			}
			if high, err := col.Read(); err == nil {
				dst = s.set(dst, i, c, high)
			}
		}
		release(row)
	}
	return dst
}

func (s *DuplexScanner) set(dst []KeyEvent, row, col int, pressed bool) []KeyEvent {
	if s.down[row][col] == pressed {
		return dst
	}
	s.down[row][col] = pressed
	return append(dst, KeyEvent{Row: uint8(row), Col: uint8(col), Pressed: pressed})
}

func drive(p GPIOPin) bool {
	if err := p.Configure(GPIOModeOutput, GPIOPullNone); err != nil {
		return false
	}
	return p.Write(true) == nil
}

func release(p GPIOPin) {
	_ = p.Write(false)
	_ = p.Configure(GPIOModeInput, GPIOPullDown)
}
