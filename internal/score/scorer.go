package score

import (
	"time"

	"git.lost.host/meutraa/moon4k/internal/game"
)

type Scorer interface {
	Init() error
	Deinit()

	// Keep the best result for the song and difficulty
	SaveScore(song, difficulty string, score, misses int, accuracy float64, totalNotesHit int, rank game.Rank) error
	HighScore(song, difficulty string) (SongScore, bool, error)
	// All best results of a song, highest score first
	AllScores(song string) ([]SongScore, error)

	// Save the state of this performance
	SavePlay(play *Play) error
	// Load up previous performances of the chart
	Plays(song, difficulty string) ([]Play, error)
}

type SongScore struct {
	SongName      string
	Difficulty    string
	Score         int
	Misses        int
	Accuracy      float64
	TotalNotesHit int
	Rank          game.Rank
}

type Play struct {
	ID         string
	SongName   string
	Difficulty string
	Outcome    string
	Score      int
	Accuracy   float64
	PlayedAt   time.Time
	Inputs     []game.Input
}
