package main

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"git.lost.host/meutraa/moon4k/internal/audio"
	"git.lost.host/meutraa/moon4k/internal/config"
	"git.lost.host/meutraa/moon4k/internal/game"
	"git.lost.host/meutraa/moon4k/internal/input"
	"git.lost.host/meutraa/moon4k/internal/judge"
	"git.lost.host/meutraa/moon4k/internal/parser"
	"git.lost.host/meutraa/moon4k/internal/render"
	"git.lost.host/meutraa/moon4k/internal/score"
	"git.lost.host/meutraa/moon4k/internal/session"
	"git.lost.host/meutraa/moon4k/internal/theme"
)

func play(o *config.Options, cfg config.GameConfig) error {
	psr := &parser.DefaultParser{Directory: o.Charts}
	// Ensure our Default implementations are used as interfaces
	var scorer score.Scorer = &score.DefaultScorer{Path: o.ScoresFile}

	song, err := psr.Load(o.Song, o.Difficulty)
	if nil != err {
		return err
	}
	if err := scorer.Init(); nil != err {
		return err
	}
	defer scorer.Deinit()

	opts := session.Options{
		Song:         game.ChartName(o.Song, ""),
		Difficulty:   strings.ToLower(o.Difficulty),
		GhostTapping: cfg.GhostTapping,
		SongOffset:   cfg.SongOffset,
		Health:       cfg.Health,
		RequireAudio: o.RequireAudio,
	}
	var s *session.Session
	audioPath := ""
	if o.NoAudio {
		s = session.New(opts, nil, scorer)
	} else {
		player := &audio.Player{}
		defer player.Close()
		s = session.New(opts, player, scorer)
		audioPath = psr.AudioPath(o.Song)
		if audioPath == "" && o.RequireAudio {
			return fmt.Errorf("no audio found for %v", o.Song)
		} else if audioPath == "" {
			slog.Warn("no audio found, playing silently", "song", o.Song)
		}
	}
	if err := s.Load(song, audioPath); nil != err {
		return err
	}

	bindings := input.NewBindings(cfg.Binds.Main.Lanes(), cfg.Binds.Alt.Lanes())
	var src input.Source
	if o.Device != "" {
		src, err = input.OpenDevice(o.Device, bindings)
	} else {
		src, err = input.OpenKeyboard(bindings, o.HoldTimeout, o.RepeatWindow)
	}
	if nil != err {
		return err
	}
	defer func() {
		if err := src.Close(); nil != err {
			slog.Warn("unable to close input", "err", err)
		}
	}()

	if err := playLoop(s, src, cfg, o.FramePeriod); nil != err {
		return err
	}

	res := s.Result()
	if res.Outcome != session.Aborted {
		if err := scorer.SavePlay(&score.Play{
			SongName:   res.Song,
			Difficulty: res.Difficulty,
			Outcome:    res.Outcome.String(),
			Score:      res.Stats.Score,
			Accuracy:   res.Stats.Accuracy,
			Inputs:     res.Inputs,
		}); nil != err {
			slog.Error("unable to save play", "err", err)
		}
	}
	best, hasBest, err := scorer.HighScore(res.Song, res.Difficulty)
	if nil != err {
		slog.Error("unable to load high score", "err", err)
	}
	fmt.Print(summary(res, best, hasBest))
	return nil
}

// playLoop owns the terminal until the session ends.
func playLoop(s *session.Session, src input.Source, cfg config.GameConfig, framePeriod time.Duration) error {
	var r render.Renderer = &render.DefaultRenderer{}
	th := theme.NewDefaultTheme(cfg.Noteskin)
	if err := r.Init(); nil != err {
		return err
	}
	defer func() {
		// Restore the terminal state
		if err := r.Deinit(); nil != err {
			slog.Error("unable to restore terminal", "err", err)
		}
	}()

	keyCount := s.Scheduler.KeyCount()
	cols, rows := r.Size()
	layout := render.NewLayout(cols, rows, keyCount, cfg.Downscroll)
	speed := cfg.ScrollSpeed * s.Song().Speed
	st := input.NewState(keyCount)

	judgement := ""
	s.Engine.Hooks = judge.Hooks{
		OnHit: func(note *game.Note) {
			judgement = th.RenderJudgement(true)
		},
		OnMiss: func(lane int) {
			judgement = th.RenderJudgement(false)
			if lane >= 0 && lane < len(layout.Lanes) {
				r.AddDecoration(layout.Lanes[lane]-1, layout.HitRow, "\033[1;31m╳\033[0m", 30)
			}
		},
	}

	r.RenderLoop(framePeriod, func(dt float64) bool {
		st.Frame()
		switch src.Poll(st, time.Now()) {
		case input.Quit:
			s.Abort()
			return false
		case input.Pause:
			if s.Paused() {
				s.Resume()
			} else {
				s.Pause()
				st.ReleaseAll()
			}
		}

		phase := s.Update(dt, st)

		r.Clear()
		pos := s.Conductor.SongPosition
		for lane, col := range layout.Lanes {
			r.Fill(layout.HitRow, col, th.RenderReceptor(lane, st.Pressed(lane)))
		}
		for _, id := range s.Scheduler.Active() {
			note := s.Scheduler.Note(id)
			if !note.ShouldHit || note.WasGoodHit || note.TooLate || note.Direction >= len(layout.Lanes) {
				continue
			}
			row := layout.Row(pos, note.StrumTime, speed)
			if !layout.Visible(row) || row == layout.HitRow {
				continue
			}
			kind := theme.Tap
			if note.IsEndNote {
				kind = theme.HoldEnd
			} else if note.IsSustainNote {
				kind = theme.Hold
			}
			r.Fill(row, layout.Lanes[note.Direction], th.RenderNote(note.Direction, kind))
		}

		stats := s.Stats
		side := layout.SideCol
		r.Fill(2, side, fmt.Sprintf("     Score:  %8v", stats.Score))
		r.Fill(3, side, fmt.Sprintf("    Misses:  %8v", stats.Misses))
		r.Fill(4, side, fmt.Sprintf("     Combo:  %8v", stats.Combo))
		r.Fill(5, side, fmt.Sprintf("  Accuracy:  %7.2f%%", stats.Accuracy))
		r.Fill(6, side, "      Rank:         "+th.RenderRank(stats.Rank))
		r.Fill(7, side, "    Health:  "+healthBar(stats.Health, 10))
		r.Fill(8, side, fmt.Sprintf("  Progress:  %7v%%", progress(pos, s.Scheduler.LastStrumTime())))
		r.Fill(9, side, judgement)
		switch {
		case s.Paused():
			r.Fill(11, side, "    Paused, enter to resume")
		case phase == session.Countdown:
			r.Fill(11, side, fmt.Sprintf("  Starting in %v", s.CountdownSeconds()))
		}

		return phase != session.Ended
	})
	return nil
}

func healthBar(health float64, width int) string {
	filled := int(math.Round(health * float64(width)))
	if filled < 0 {
		filled = 0
	} else if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// progress is how far through the chart pos is, as a whole percentage.
func progress(pos, last float64) int {
	if last <= 0 || pos <= 0 {
		return 0
	}
	if pos >= last {
		return 100
	}
	return int(pos / last * 100)
}
