package session

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"git.lost.host/meutraa/moon4k/internal/conductor"
	"git.lost.host/meutraa/moon4k/internal/game"
	"git.lost.host/meutraa/moon4k/internal/judge"
	"git.lost.host/meutraa/moon4k/internal/scheduler"
	"git.lost.host/meutraa/moon4k/internal/stats"
)

// countdownBeats is the length of the pre-roll before the song starts.
const countdownBeats = 5

var ErrNotLoading = errors.New("session is not loading")

type Phase int

const (
	Loading Phase = iota
	Countdown
	Playing
	Ended
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Countdown:
		return "countdown"
	case Playing:
		return "playing"
	case Ended:
		return "ended"
	}
	return "unknown"
}

type Outcome int

const (
	Unfinished Outcome = iota
	Completed
	Failed
	Aborted
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Aborted:
		return "aborted"
	}
	return "unfinished"
}

// Audio is the backing track.
type Audio interface {
	Load(path string) error
	Play()
	Pause()
	Resume()
	Stop()
	IsPlaying() bool
	Duration() time.Duration
}

// Saver persists the best result of a song and difficulty.
type Saver interface {
	SaveScore(song, difficulty string, score, misses int, accuracy float64, totalNotesHit int, rank game.Rank) error
}

type Options struct {
	Song         string
	Difficulty   string
	GhostTapping bool
	SongOffset   float64 // ms
	Strums       int
	Health       stats.HealthConfig
	// RequireAudio turns a backing track load failure into a load failure
	RequireAudio bool
}

type Result struct {
	Song       string
	Difficulty string
	Outcome    Outcome
	Stats      stats.Stats
	Inputs     []game.Input
}

// Session sequences one play of a chart. All of its methods are called from
// the frame loop.
type Session struct {
	opts  Options
	audio Audio
	saver Saver

	phase    Phase
	outcome  Outcome
	paused   bool
	hasAudio bool
	started  bool

	song      *game.Song
	Conductor *conductor.Conductor
	Scheduler *scheduler.Scheduler
	Engine    *judge.Engine
	Stats     *stats.Stats

	inputs []game.Input
}

// New creates a session in the Loading phase. audio and saver may be nil.
func New(opts Options, audio Audio, saver Saver) *Session {
	c := conductor.New()
	st := stats.New(opts.Health)
	sch := scheduler.New(c, scheduler.Options{
		SongOffset: opts.SongOffset,
		Strums:     opts.Strums,
	})
	return &Session{
		opts:      opts,
		audio:     audio,
		saver:     saver,
		phase:     Loading,
		Conductor: c,
		Scheduler: sch,
		Stats:     st,
	}
}

// Load prepares the chart and the backing track and starts the countdown.
// A failed load leaves the session in Loading.
func (s *Session) Load(song *game.Song, audioPath string) error {
	if s.phase != Loading {
		return ErrNotLoading
	}
	if nil == song || !song.ValidScore {
		return fmt.Errorf("load %s: %w", s.opts.Song, scheduler.ErrInvalidChart)
	}

	s.Conductor.ChangeBPM(song.BPM)
	if err := s.Scheduler.Generate(song); nil != err {
		return fmt.Errorf("schedule %s: %w", s.opts.Song, err)
	}
	s.Conductor.MapBPMChanges(song)

	s.hasAudio = false
	if nil != s.audio && audioPath != "" {
		if err := s.audio.Load(audioPath); nil != err {
			if s.opts.RequireAudio {
				return fmt.Errorf("load audio %s: %w", audioPath, err)
			}
			slog.Error("unable to load audio, playing silently", "path", audioPath, "err", err)
		} else {
			s.hasAudio = true
		}
	}

	s.song = song
	s.Engine = judge.New(s.Conductor, s.Scheduler, s.Stats, judge.Options{
		GhostTapping: s.opts.GhostTapping,
		KeyCount:     s.Scheduler.KeyCount(),
	})
	s.startCountdown()
	return nil
}

func (s *Session) startCountdown() {
	s.Conductor.SongPosition = -s.Conductor.Crochet * countdownBeats
	s.phase = Countdown
	slog.Info("countdown started", "song", s.opts.Song, "position", s.Conductor.SongPosition)
}

func (s *Session) startSong() {
	s.phase = Playing
	s.started = true
	if s.hasAudio {
		s.audio.Play()
		// A track that never started cannot end the song
		if !s.audio.IsPlaying() {
			slog.Error("audio did not start, playing silently", "song", s.opts.Song)
			s.hasAudio = false
		}
	}
	slog.Info("song started", "song", s.opts.Song, "audio", s.hasAudio)
}

// Update advances the session by dt seconds.
func (s *Session) Update(dt float64, in judge.Input) Phase {
	if s.paused {
		return s.phase
	}
	switch s.phase {
	case Countdown:
		s.Conductor.Advance(dt)
		if s.Conductor.SongPosition >= 0 {
			s.startSong()
		}
	case Playing:
		s.play(dt, in)
	}
	return s.phase
}

func (s *Session) play(dt float64, in judge.Input) {
	s.Conductor.Advance(dt)
	s.Scheduler.Promote()
	s.Engine.Refresh()
	s.Engine.SweepMisses()
	s.record(in)
	s.Engine.HandleInput(in)

	s.Stats.Drain(dt)
	if s.Stats.Dead {
		s.end(Failed)
		return
	}

	s.Scheduler.Cleanup()
	if s.songFinished() {
		s.end(Completed)
	}
}

func (s *Session) record(in judge.Input) {
	for lane := 0; lane < s.Scheduler.KeyCount(); lane++ {
		if in.JustPressed(lane) {
			s.inputs = append(s.inputs, game.Input{Lane: lane, Time: s.Conductor.SongPosition})
		}
	}
}

func (s *Session) songFinished() bool {
	if s.hasAudio {
		return !s.audio.IsPlaying()
	}
	return s.Scheduler.Drained()
}

func (s *Session) end(outcome Outcome) {
	s.phase = Ended
	s.outcome = outcome
	if s.hasAudio && s.started {
		s.audio.Stop()
	}
	slog.Info("session ended",
		"song", s.opts.Song,
		"outcome", outcome.String(),
		"score", s.Stats.Score,
		"misses", s.Stats.Misses,
		"accuracy", s.Stats.Accuracy,
		"rank", s.Stats.Rank,
	)
	if outcome != Completed || nil == s.saver {
		return
	}
	if err := s.saver.SaveScore(
		s.opts.Song,
		s.opts.Difficulty,
		s.Stats.Score,
		s.Stats.Misses,
		s.Stats.Accuracy,
		int(s.Stats.TotalNotesHit),
		s.Stats.Rank,
	); nil != err {
		slog.Error("unable to save score", "song", s.opts.Song, "err", err)
	}
}

func (s *Session) Pause() {
	if s.paused || s.phase == Loading || s.phase == Ended {
		return
	}
	s.paused = true
	if s.hasAudio && s.started {
		s.audio.Pause()
	}
}

func (s *Session) Resume() {
	if !s.paused {
		return
	}
	s.paused = false
	if s.hasAudio && s.started {
		s.audio.Resume()
	}
}

func (s *Session) Paused() bool {
	return s.paused
}

// Abort ends the session without saving.
func (s *Session) Abort() {
	if s.phase == Ended {
		return
	}
	s.paused = false
	s.end(Aborted)
}

func (s *Session) Phase() Phase {
	return s.phase
}

func (s *Session) Song() *game.Song {
	return s.song
}

// CountdownSeconds is the whole number of seconds left before the song
// starts, 0 once it has.
func (s *Session) CountdownSeconds() int {
	if s.phase != Countdown {
		return 0
	}
	return int(math.Ceil(-s.Conductor.SongPosition / 1000))
}

func (s *Session) Result() Result {
	return Result{
		Song:       s.opts.Song,
		Difficulty: s.opts.Difficulty,
		Outcome:    s.outcome,
		Stats:      *s.Stats,
		Inputs:     s.inputs,
	}
}
