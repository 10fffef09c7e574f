package render

import "time"

type Renderer interface {
	Init() error
	Deinit() error
	Size() (cols, rows int)
	AddDecoration(col, row int, content string, frames int)
	// RenderLoop calls render once per frame with the seconds since the
	// previous frame until it returns false.
	RenderLoop(framePeriod time.Duration, render func(dt float64) bool)
	Fill(row, column int, message string)
	Clear()
}
