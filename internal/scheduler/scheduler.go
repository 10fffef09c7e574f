package scheduler

import (
	"errors"
	"log/slog"
	"math"
	"sort"

	"git.lost.host/meutraa/moon4k/internal/conductor"
	"git.lost.host/meutraa/moon4k/internal/game"
)

const (
	// SpawnHorizon is how far ahead of the song position a note becomes active.
	SpawnHorizon = 1500.0
	// StaleAfter is how far behind the song position an active note is dropped.
	StaleAfter = 5000.0
)

var ErrInvalidChart = errors.New("chart is not a valid score")

type Options struct {
	SongOffset float64 // ms added to every strum time
	// Strums is the number of configured strum targets, 0 means one per lane
	Strums int
}

// Scheduler owns every note of a session. Notes live in an arena that is
// only reset by Generate, so chain links stay valid whatever order the
// active set retires them in.
type Scheduler struct {
	conductor *conductor.Conductor
	opts      Options
	keyCount  int

	arena        []game.Note
	spawnNotes   []game.NoteID
	unspawnNotes []game.NoteID
	notes        []game.NoteID
}

func New(c *conductor.Conductor, opts Options) *Scheduler {
	return &Scheduler{
		conductor: c,
		opts:      opts,
		keyCount:  game.DefaultKeyCount,
	}
}

func (s *Scheduler) newNote(n game.Note) game.NoteID {
	n.ID = game.NoteID(len(s.arena))
	s.arena = append(s.arena, n)
	return n.ID
}

// Generate expands the chart into time ordered note instances.
func (s *Scheduler) Generate(song *game.Song) error {
	if nil == song || !song.ValidScore {
		return ErrInvalidChart
	}

	s.arena = s.arena[:0]
	s.spawnNotes = nil
	s.unspawnNotes = nil
	s.notes = nil

	s.keyCount = song.KeyCount
	if s.keyCount <= 0 {
		s.keyCount = game.DefaultKeyCount
	}
	strums := s.opts.Strums
	if strums <= 0 {
		strums = s.keyCount
	}

	slog.Info("generating notes", "sections", len(song.Notes), "keyCount", s.keyCount)

	c := s.conductor
	for _, section := range song.Notes {
		if section.ChangeBPM && section.BPM > 0 {
			c.SetBPM(section.BPM)
		}
		c.RecalculateStuff(1)

		for _, entry := range section.SectionNotes {
			if entry.Lane >= s.keyCount || entry.Lane < 0 {
				slog.Info("skipping note outside of key count", "lane", entry.Lane, "keyCount", s.keyCount)
				continue
			}
			direction := entry.Lane % s.keyCount
			if direction >= strums {
				slog.Error("no strum target for lane", "lane", direction)
				continue
			}

			strumTime := entry.StrumTime + s.opts.SongOffset
			oldNote := game.NoNote
			if len(s.spawnNotes) > 0 {
				oldNote = s.spawnNotes[len(s.spawnNotes)-1]
			}

			head := s.newNote(game.Note{
				Direction:     direction,
				StrumTime:     strumTime,
				SustainLength: entry.SustainLength,
				ShouldHit:     section.MustHitSection,
				LastNote:      oldNote,
				NextNote:      game.NoNote,
			})
			s.spawnNotes = append(s.spawnNotes, head)

			s.generateSustain(head, entry.SustainLength)
		}
	}

	c.SetBPM(song.BPM)
	c.RecalculateStuff(1)

	sort.SliceStable(s.spawnNotes, func(i, j int) bool {
		return s.arena[s.spawnNotes[i]].StrumTime < s.arena[s.spawnNotes[j]].StrumTime
	})

	s.unspawnNotes = make([]game.NoteID, len(s.spawnNotes))
	copy(s.unspawnNotes, s.spawnNotes)

	slog.Info("generated notes", "total", len(s.spawnNotes))
	return nil
}

// generateSustain chains one segment per whole step of the hold behind head.
// Holds shorter than a step produce no segments.
func (s *Scheduler) generateSustain(head game.NoteID, sustainLength float64) {
	stepCrochet := s.conductor.StepCrochet
	if sustainLength <= 0 || stepCrochet <= 0 {
		return
	}
	steps := int(math.Floor(sustainLength / stepCrochet))
	prev := head
	for i := 0; i < steps; i++ {
		base := s.arena[prev]
		id := s.newNote(game.Note{
			Direction:     base.Direction,
			StrumTime:     s.arena[head].StrumTime + stepCrochet*float64(i+1),
			IsSustainNote: true,
			IsEndNote:     i == steps-1,
			ShouldHit:     base.ShouldHit,
			LastNote:      prev,
			NextNote:      game.NoNote,
		})
		s.arena[prev].NextNote = id
		s.spawnNotes = append(s.spawnNotes, id)
		prev = id
	}
}

// Promote moves every note within the spawn horizon into the active set.
func (s *Scheduler) Promote() {
	position := s.conductor.SongPosition
	for len(s.unspawnNotes) > 0 {
		next := s.unspawnNotes[0]
		if s.arena[next].StrumTime-position > SpawnHorizon {
			break
		}
		s.notes = append(s.notes, next)
		s.unspawnNotes = s.unspawnNotes[1:]
	}
}

// Cleanup retires killed and stale notes, keeping the active set in time order.
func (s *Scheduler) Cleanup() {
	position := s.conductor.SongPosition
	kept := s.notes[:0]
	for _, id := range s.notes {
		note := &s.arena[id]
		if note.Kill || note.StrumTime < position-StaleAfter {
			continue
		}
		kept = append(kept, id)
	}
	s.notes = kept
}

func (s *Scheduler) Update() {
	s.Promote()
	s.Cleanup()
}

// Note returns the arena entry for id, nil when it does not exist.
func (s *Scheduler) Note(id game.NoteID) *game.Note {
	if id < 0 || int(id) >= len(s.arena) {
		return nil
	}
	return &s.arena[id]
}

// Active is the active set in time order. It must not be modified.
func (s *Scheduler) Active() []game.NoteID {
	return s.notes
}

func (s *Scheduler) Unspawned() []game.NoteID {
	return s.unspawnNotes
}

func (s *Scheduler) Spawned() []game.NoteID {
	return s.spawnNotes
}

func (s *Scheduler) KeyCount() int {
	return s.keyCount
}

func (s *Scheduler) Len() int {
	return len(s.arena)
}

// Drained reports whether every note has been spawned and retired.
func (s *Scheduler) Drained() bool {
	return len(s.unspawnNotes) == 0 && len(s.notes) == 0
}

// LastStrumTime is the strum time of the latest note, 0 for empty charts.
func (s *Scheduler) LastStrumTime() float64 {
	if len(s.spawnNotes) == 0 {
		return 0
	}
	return s.arena[s.spawnNotes[len(s.spawnNotes)-1]].StrumTime
}
