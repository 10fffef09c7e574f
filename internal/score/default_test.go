package score

import (
	"path/filepath"
	"testing"
	"time"

	"git.lost.host/meutraa/moon4k/internal/game"
)

func newScorer(t *testing.T) *DefaultScorer {
	t.Helper()
	s := &DefaultScorer{Path: filepath.Join(t.TempDir(), "db", "scores.db")}
	if err := s.Init(); nil != err {
		t.Fatal(err)
	}
	t.Cleanup(s.Deinit)
	return s
}

func TestSaveScoreKeepsBest(t *testing.T) {
	s := newScorer(t)

	if _, ok, err := s.HighScore("bopeebo", "hard"); nil != err || ok {
		t.Fatalf("score before any play: %v %v", ok, err)
	}
	if err := s.SaveScore("bopeebo", "hard", 700, 1, 66.67, 2, game.RankF); nil != err {
		t.Fatal(err)
	}
	if err := s.SaveScore("bopeebo", "hard", 350, 0, 100, 1, game.RankP); nil != err {
		t.Fatal(err)
	}
	sc, ok, err := s.HighScore("bopeebo", "hard")
	if nil != err || !ok {
		t.Fatalf("high score: %v %v", ok, err)
	}
	if sc.Score != 700 || sc.Misses != 1 || sc.Rank != game.RankF || sc.TotalNotesHit != 2 {
		t.Errorf("lower score replaced the best: %+v", sc)
	}

	if err := s.SaveScore("bopeebo", "hard", 1050, 0, 100, 3, game.RankP); nil != err {
		t.Fatal(err)
	}
	sc, _, _ = s.HighScore("bopeebo", "hard")
	if sc.Score != 1050 || sc.Accuracy != 100 || sc.Rank != game.RankP {
		t.Errorf("higher score not kept: %+v", sc)
	}
}

func TestAllScores(t *testing.T) {
	s := newScorer(t)
	for diff, score := range map[string]int{"easy": 100, "normal": 900, "hard": 500} {
		if err := s.SaveScore("fresh", diff, score, 0, 100, 1, game.RankP); nil != err {
			t.Fatal(err)
		}
	}
	if err := s.SaveScore("other", "hard", 5000, 0, 100, 1, game.RankP); nil != err {
		t.Fatal(err)
	}

	scores, err := s.AllScores("fresh")
	if nil != err {
		t.Fatal(err)
	}
	expected := []string{"normal", "hard", "easy"}
	if len(scores) != len(expected) {
		t.Fatalf("got %v scores", len(scores))
	}
	for i, diff := range expected {
		if scores[i].Difficulty != diff || scores[i].SongName != "fresh" {
			t.Errorf("score %v is %+v, expected %v", i, scores[i], diff)
		}
	}

	if scores, err := s.AllScores("missing"); nil != err || len(scores) != 0 {
		t.Errorf("missing song: %v %v", scores, err)
	}
}

func TestPlays(t *testing.T) {
	s := newScorer(t)
	when := time.UnixMilli(1700000000000)
	play := &Play{
		SongName:   "bopeebo",
		Difficulty: "hard",
		Outcome:    "completed",
		Score:      350,
		Accuracy:   100,
		PlayedAt:   when,
		Inputs:     []game.Input{{Lane: 2, Time: 1000.5}},
	}
	if err := s.SavePlay(play); nil != err {
		t.Fatal(err)
	}
	if play.ID == "" {
		t.Fatal("play was not given an id")
	}
	if err := s.SavePlay(&Play{SongName: "bopeebo", Difficulty: "hard", Outcome: "failed", PlayedAt: when.Add(time.Second)}); nil != err {
		t.Fatal(err)
	}

	plays, err := s.Plays("bopeebo", "hard")
	if nil != err {
		t.Fatal(err)
	}
	if len(plays) != 2 {
		t.Fatalf("got %v plays", len(plays))
	}
	first := plays[0]
	if first.ID != play.ID || first.Outcome != "completed" || !first.PlayedAt.Equal(when) {
		t.Errorf("first play %+v", first)
	}
	if len(first.Inputs) != 1 || first.Inputs[0] != (game.Input{Lane: 2, Time: 1000.5}) {
		t.Errorf("inputs %+v", first.Inputs)
	}
	if plays[1].Outcome != "failed" || len(plays[1].Inputs) != 0 {
		t.Errorf("second play %+v", plays[1])
	}
}
