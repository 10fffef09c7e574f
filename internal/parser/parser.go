package parser

import (
	"errors"

	"git.lost.host/meutraa/moon4k/internal/game"
)

var (
	ErrNotFound     = errors.New("chart not found")
	ErrInvalidChart = errors.New("chart is not a valid score")
)

type Parser interface {
	// Load reads the chart of a song at the given difficulty.
	Load(song, difficulty string) (*game.Song, error)
	Parse(data []byte) (*game.Song, error)
}
