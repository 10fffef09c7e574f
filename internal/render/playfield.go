package render

import "math"

// MsPerRow is how much song time one terminal row covers at scroll speed 1.
const MsPerRow = 45.0

const laneSpacing = 6

type Layout struct {
	Cols, Rows int
	HitRow     int
	Lanes      []int // column of each lane
	SideCol    int   // column of the score panel
	Downscroll bool
}

func NewLayout(cols, rows, keyCount int, downscroll bool) Layout {
	l := Layout{Cols: cols, Rows: rows, Downscroll: downscroll, HitRow: 3}
	if downscroll {
		l.HitRow = rows - 2
	}
	mid := cols / 2
	left := mid - laneSpacing*(keyCount-1)/2
	for i := 0; i < keyCount; i++ {
		l.Lanes = append(l.Lanes, left+i*laneSpacing)
	}
	l.SideCol = left - 32
	if l.SideCol < 2 {
		l.SideCol = 2
	}
	return l
}

// NoteRow is the terminal row of a note at strum time when the song is at
// pos. Notes approach the hit row from below, or from above with downscroll.
func NoteRow(hitRow int, pos, strum, speed float64, downscroll bool) int {
	d := int(math.Round((strum - pos) * speed / MsPerRow))
	if downscroll {
		return hitRow - d
	}
	return hitRow + d
}

func (l Layout) Row(pos, strum, speed float64) int {
	return NoteRow(l.HitRow, pos, strum, speed, l.Downscroll)
}

// Visible reports whether row is inside the playfield.
func (l Layout) Visible(row int) bool {
	return row >= 1 && row <= l.Rows
}
