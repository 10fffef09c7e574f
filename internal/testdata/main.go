package testdata

import (
	"os"
	"path/filepath"

	"git.lost.host/meutraa/moon4k/internal/game"
)

// Song builds a valid single section chart around the given entries.
func Song(bpm float64, entries ...game.NoteEntry) *game.Song {
	return &game.Song{
		Name:     "test",
		BPM:      bpm,
		Speed:    1,
		KeyCount: 4,
		Sections: 1,
		Notes: []game.Section{{
			LengthInSteps:  16,
			MustHitSection: true,
			SectionNotes:   entries,
		}},
		ValidScore: true,
	}
}

// WriteChart stores data as <dir>/<song>/<name>.moon and returns the path.
func WriteChart(dir, song, name string, data []byte) (string, error) {
	folder := filepath.Join(dir, song)
	if err := os.MkdirAll(folder, 0o755); nil != err {
		return "", err
	}
	p := filepath.Join(folder, name+".moon")
	return p, os.WriteFile(p, data, 0o644)
}
