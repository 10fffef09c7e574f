package judge

import (
	"git.lost.host/meutraa/moon4k/internal/conductor"
	"git.lost.host/meutraa/moon4k/internal/game"
	"git.lost.host/meutraa/moon4k/internal/scheduler"
	"git.lost.host/meutraa/moon4k/internal/stats"
)

// opponentLead is how early in ms an opponent note resolves itself.
const opponentLead = 45.0

// Input is the per frame state of the lanes.
type Input interface {
	Pressed(lane int) bool
	JustPressed(lane int) bool
	JustReleased(lane int) bool
}

// Hooks receive judgment outcomes for visual feedback. Any may be nil.
type Hooks struct {
	OnHit         func(note *game.Note)
	OnMiss        func(lane int)
	OnOpponentHit func(note *game.Note)
	OnPress       func(lane int)
	OnRelease     func(lane int)
}

type Options struct {
	GhostTapping bool
	KeyCount     int
}

type Engine struct {
	conductor *conductor.Conductor
	scheduler *scheduler.Scheduler
	stats     *stats.Stats
	opts      Options
	Hooks     Hooks
}

func New(c *conductor.Conductor, s *scheduler.Scheduler, st *stats.Stats, opts Options) *Engine {
	if opts.KeyCount <= 0 {
		opts.KeyCount = game.DefaultKeyCount
	}
	return &Engine{
		conductor: c,
		scheduler: s,
		stats:     st,
		opts:      opts,
	}
}

// Refresh recomputes the hit window flags of every active note and
// resolves opponent notes that have reached their strum.
func (e *Engine) Refresh() {
	position := e.conductor.SongPosition
	safeZone := e.conductor.SafeZoneOffset
	for _, id := range e.scheduler.Active() {
		note := e.scheduler.Note(id)
		if note.Kill {
			continue
		}
		if !note.ShouldHit {
			e.resolveOpponent(note, position, safeZone)
			continue
		}
		note.CanBeHit = canBeHit(note, position, safeZone)
		if note.StrumTime < position-safeZone && !note.Judged() {
			note.TooLate = true
		}
	}
}

func canBeHit(note *game.Note, position, safeZone float64) bool {
	early, late := safeZone, safeZone
	if note.IsSustainNote {
		if note.Holding {
			early, late = 0.2*safeZone, 0.3*safeZone
		} else {
			early, late = 0.5*safeZone, 1.5*safeZone
		}
	}
	return note.StrumTime > position-late && note.StrumTime < position+early
}

func (e *Engine) resolveOpponent(note *game.Note, position, safeZone float64) {
	if note.Judged() {
		return
	}
	diff := note.StrumTime - position
	if diff > opponentLead || diff < -safeZone {
		return
	}
	note.CanBeHit = true
	note.WasGoodHit = true
	note.Kill = true
	if nil != e.Hooks.OnOpponentHit {
		e.Hooks.OnOpponentHit(note)
	}
}

// SweepMisses resolves every player note that went past its window unhit.
func (e *Engine) SweepMisses() {
	for _, id := range e.scheduler.Active() {
		note := e.scheduler.Note(id)
		if note.ShouldHit && note.TooLate && !note.Judged() && !note.Kill {
			e.NoteMiss(note.Direction)
			note.Kill = true
		}
	}
}

// HandleInput judges one frame of lane input.
func (e *Engine) HandleInput(in Input) {
	for lane := 0; lane < e.opts.KeyCount; lane++ {
		switch {
		case in.JustPressed(lane):
			if nil != e.Hooks.OnPress {
				e.Hooks.OnPress(lane)
			}
			if id, ok := e.firstHittable(lane, false); ok {
				e.GoodNoteHit(id)
			} else if !e.opts.GhostTapping {
				e.NoteMiss(lane)
			}
		case in.Pressed(lane):
			for {
				id, ok := e.firstHittable(lane, true)
				if !ok {
					break
				}
				e.GoodNoteHit(id)
			}
		case in.JustReleased(lane):
			if nil != e.Hooks.OnRelease {
				e.Hooks.OnRelease(lane)
			}
		}
	}
}

// firstHittable finds the earliest unjudged player note in the lane.
func (e *Engine) firstHittable(lane int, sustainOnly bool) (game.NoteID, bool) {
	for _, id := range e.scheduler.Active() {
		note := e.scheduler.Note(id)
		if !note.ShouldHit || note.Judged() || note.Kill || note.Direction != lane || !note.CanBeHit {
			continue
		}
		if sustainOnly && !note.IsSustainNote {
			continue
		}
		return id, true
	}
	return game.NoNote, false
}

// GoodNoteHit applies a hit once. It reports whether the note was judged
// by this call.
func (e *Engine) GoodNoteHit(id game.NoteID) bool {
	note := e.scheduler.Note(id)
	if nil == note || note.Judged() {
		return false
	}
	note.WasGoodHit = true

	e.stats.Hit(!note.IsSustainNote)

	if !note.IsSustainNote || note.IsEndNote {
		note.Kill = true
	}
	if next := e.scheduler.Note(note.NextNote); nil != next && next.IsSustainNote {
		next.Holding = true
	}

	if nil != e.Hooks.OnHit {
		e.Hooks.OnHit(note)
	}
	return true
}

func (e *Engine) NoteMiss(lane int) {
	e.stats.Miss()
	if nil != e.Hooks.OnMiss {
		e.Hooks.OnMiss(lane)
	}
}
