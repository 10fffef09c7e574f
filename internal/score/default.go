package score

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.lost.host/meutraa/moon4k/internal/game"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

type DefaultScorer struct {
	Path string
	db   *sql.DB
}

type InputsCompact struct {
	Lane  int
	Times []float64
}

func compactInputs(inputs []game.Input) []InputsCompact {
	laneCount := 0
	for _, i := range inputs {
		if i.Lane+1 > laneCount {
			laneCount = i.Lane + 1
		}
	}
	ins := make([]InputsCompact, laneCount)
	for l := range ins {
		ins[l].Lane = l
		ins[l].Times = []float64{}
	}
	for _, i := range inputs {
		ins[i.Lane].Times = append(ins[i.Lane].Times, i.Time)
	}
	return ins
}

func uncompactInputs(inputs []InputsCompact) []game.Input {
	ins := []game.Input{}
	for _, i := range inputs {
		for _, t := range i.Times {
			ins = append(ins, game.Input{Lane: i.Lane, Time: t})
		}
	}
	return ins
}

const initStatement = `
create table if not exists scores
  (
	  song_name text not null,
	  difficulty text not null,
	  score integer not null,
	  misses integer not null,
	  accuracy real not null,
	  total_notes_hit integer not null,
	  rank text not null,
	  primary key (song_name, difficulty)
  );
create table if not exists plays
  (
	  id text not null primary key,
	  song_name text not null,
	  difficulty text not null,
	  outcome text not null,
	  score integer not null,
	  accuracy real not null,
	  played_at integer not null,
	  inputs blob
  );
`

func (s *DefaultScorer) Init() error {
	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); nil != err {
			return fmt.Errorf("unable to create score directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", s.Path)
	if err != nil {
		return err
	}
	if _, err = db.Exec(initStatement); nil != err {
		db.Close()
		return fmt.Errorf("unable to initialise scores: %w", err)
	}
	s.db = db
	return nil
}

func (s *DefaultScorer) Deinit() {
	if nil != s.db {
		s.db.Close()
		s.db = nil
	}
}

func (s *DefaultScorer) SaveScore(song, difficulty string, score, misses int, accuracy float64, totalNotesHit int, rank game.Rank) error {
	res, err := s.db.Exec(`
	insert into scores(song_name, difficulty, score, misses, accuracy, total_notes_hit, rank)
	values(?, ?, ?, ?, ?, ?, ?)
	on conflict(song_name, difficulty) do update set
	  score = excluded.score,
	  misses = excluded.misses,
	  accuracy = excluded.accuracy,
	  total_notes_hit = excluded.total_notes_hit,
	  rank = excluded.rank
	where excluded.score > scores.score`,
		song, difficulty, score, misses, accuracy, totalNotesHit, string(rank))
	if nil != err {
		return fmt.Errorf("unable to save score: %w", err)
	}
	if n, err := res.RowsAffected(); nil == err && n > 0 {
		slog.Info("saved high score", "song", song, "difficulty", difficulty, "score", score)
	}
	return nil
}

func scanScore(row interface{ Scan(...any) error }) (SongScore, error) {
	var sc SongScore
	var rank string
	err := row.Scan(&sc.SongName, &sc.Difficulty, &sc.Score, &sc.Misses, &sc.Accuracy, &sc.TotalNotesHit, &rank)
	sc.Rank = game.Rank(rank)
	return sc, err
}

func (s *DefaultScorer) HighScore(song, difficulty string) (SongScore, bool, error) {
	row := s.db.QueryRow(`select song_name, difficulty, score, misses, accuracy, total_notes_hit, rank
	from scores where song_name = ? and difficulty = ?`, song, difficulty)
	sc, err := scanScore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SongScore{}, false, nil
	}
	if nil != err {
		return SongScore{}, false, fmt.Errorf("unable to load score: %w", err)
	}
	return sc, true, nil
}

func (s *DefaultScorer) AllScores(song string) ([]SongScore, error) {
	rows, err := s.db.Query(`select song_name, difficulty, score, misses, accuracy, total_notes_hit, rank
	from scores where song_name = ? order by score desc, difficulty`, song)
	if nil != err {
		return nil, fmt.Errorf("unable to load scores: %w", err)
	}
	defer rows.Close()
	scores := []SongScore{}
	for rows.Next() {
		sc, err := scanScore(rows)
		if nil != err {
			return nil, fmt.Errorf("unable to read score: %w", err)
		}
		scores = append(scores, sc)
	}
	return scores, rows.Err()
}

func (s *DefaultScorer) SavePlay(play *Play) error {
	if play.ID == "" {
		play.ID = uuid.NewString()
	}
	if play.PlayedAt.IsZero() {
		play.PlayedAt = time.Now()
	}
	data, err := json.Marshal(compactInputs(play.Inputs))
	if nil != err {
		return fmt.Errorf("unable to marshal inputs: %w", err)
	}
	_, err = s.db.Exec(`insert into plays(id, song_name, difficulty, outcome, score, accuracy, played_at, inputs)
	values(?, ?, ?, ?, ?, ?, ?, ?)`,
		play.ID, play.SongName, play.Difficulty, play.Outcome, play.Score, play.Accuracy, play.PlayedAt.UnixMilli(), data)
	if nil != err {
		return fmt.Errorf("unable to save play: %w", err)
	}
	return nil
}

func (s *DefaultScorer) Plays(song, difficulty string) ([]Play, error) {
	plays := []Play{}
	rows, err := s.db.Query(`select id, song_name, difficulty, outcome, score, accuracy, played_at, inputs
	from plays where song_name = ? and difficulty = ? order by played_at`, song, difficulty)
	if nil != err {
		return plays, fmt.Errorf("unable to load plays: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p Play
		var playedAt int64
		var inputs []byte
		if err := rows.Scan(&p.ID, &p.SongName, &p.Difficulty, &p.Outcome, &p.Score, &p.Accuracy, &playedAt, &inputs); nil != err {
			return plays, fmt.Errorf("unable to read play: %w", err)
		}
		p.PlayedAt = time.UnixMilli(playedAt)
		var ins []InputsCompact
		if err := json.Unmarshal(inputs, &ins); nil != err {
			slog.Warn("unable to unmarshal input history", "play", p.ID, "err", err)
		}
		p.Inputs = uncompactInputs(ins)
		plays = append(plays, p)
	}
	return plays, rows.Err()
}
