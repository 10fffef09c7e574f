package scheduler

import (
	"testing"

	"git.lost.host/meutraa/moon4k/internal/conductor"
	"git.lost.host/meutraa/moon4k/internal/game"
	"git.lost.host/meutraa/moon4k/internal/testdata"
)

func newScheduler(bpm float64, opts Options) (*conductor.Conductor, *Scheduler) {
	c := conductor.New()
	c.ChangeBPM(bpm)
	return c, New(c, opts)
}

func isActive(s *Scheduler, id game.NoteID) bool {
	for _, a := range s.Active() {
		if a == id {
			return true
		}
	}
	return false
}

func TestGenerateRejectsInvalidChart(t *testing.T) {
	_, s := newScheduler(100, Options{})
	song := testdata.Song(100)
	song.ValidScore = false
	if err := s.Generate(song); err != ErrInvalidChart {
		t.Fatalf("expected ErrInvalidChart, got %v", err)
	}
	if err := s.Generate(nil); err != ErrInvalidChart {
		t.Fatalf("expected ErrInvalidChart for nil chart, got %v", err)
	}
}

func TestGenerateOrdersAcrossSections(t *testing.T) {
	_, s := newScheduler(150, Options{})
	song := testdata.Song(150,
		game.NoteEntry{StrumTime: 3000, Lane: 0},
		game.NoteEntry{StrumTime: 1000, Lane: 1, SustainLength: 250},
	)
	song.Notes = append(song.Notes, game.Section{
		LengthInSteps:  16,
		MustHitSection: true,
		SectionNotes: []game.NoteEntry{
			{StrumTime: 500, Lane: 2},
			{StrumTime: 1100, Lane: 3},
			{StrumTime: 1100, Lane: 0},
		},
	})
	if err := s.Generate(song); nil != err {
		t.Fatal(err)
	}

	// 5 heads and 2 sustain segments
	if len(s.Spawned()) != 7 || len(s.Unspawned()) != 7 {
		t.Fatalf("spawned %v unspawned %v, expected 7", len(s.Spawned()), len(s.Unspawned()))
	}
	last := -1e9
	for _, id := range s.Unspawned() {
		n := s.Note(id)
		if n.StrumTime < last {
			t.Fatalf("note %v at %v is before %v", id, n.StrumTime, last)
		}
		last = n.StrumTime
	}
	if s.LastStrumTime() != 3000 {
		t.Errorf("last strum time %v, expected 3000", s.LastStrumTime())
	}

	// Equal strum times keep generation order, the segment at 1100 was
	// generated before the lane 3 note of the second section.
	var at1100 []game.Note
	for _, id := range s.Spawned() {
		if n := s.Note(id); n.StrumTime == 1100 {
			at1100 = append(at1100, *n)
		}
	}
	if len(at1100) != 3 || !at1100[0].IsSustainNote || at1100[1].Direction != 3 || at1100[2].Direction != 0 {
		t.Errorf("unstable ordering at 1100: %+v", at1100)
	}
}

func TestGenerateDropsLanesOutsideKeyCount(t *testing.T) {
	_, s := newScheduler(100, Options{})
	song := testdata.Song(100,
		game.NoteEntry{StrumTime: 100, Lane: 4},
		game.NoteEntry{StrumTime: 200, Lane: 7},
		game.NoteEntry{StrumTime: 300, Lane: 3},
	)
	if err := s.Generate(song); nil != err {
		t.Fatal(err)
	}
	if s.Len() != 1 || s.Note(0).Direction != 3 {
		t.Fatalf("expected a single lane 3 note, got %v notes", s.Len())
	}
}

func TestGenerateSkipsLanesWithoutStrum(t *testing.T) {
	_, s := newScheduler(100, Options{Strums: 2})
	song := testdata.Song(100,
		game.NoteEntry{StrumTime: 100, Lane: 1},
		game.NoteEntry{StrumTime: 200, Lane: 2},
	)
	if err := s.Generate(song); nil != err {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected the lane 2 note to be skipped, got %v notes", s.Len())
	}
}

func TestGenerateAppliesOffset(t *testing.T) {
	_, s := newScheduler(100, Options{SongOffset: -25})
	if err := s.Generate(testdata.Song(100, game.NoteEntry{StrumTime: 1000})); nil != err {
		t.Fatal(err)
	}
	if st := s.Note(0).StrumTime; st != 975 {
		t.Errorf("strum time %v, expected 975", st)
	}
}

func TestSustainChain(t *testing.T) {
	_, s := newScheduler(150, Options{})
	if err := s.Generate(testdata.Song(150, game.NoteEntry{StrumTime: 1000, Lane: 2, SustainLength: 350})); nil != err {
		t.Fatal(err)
	}
	if s.Len() != 4 {
		t.Fatalf("expected a head and 3 segments, got %v notes", s.Len())
	}

	head := s.Note(0)
	if head.IsSustainNote || head.SustainLength != 350 || head.LastNote != game.NoNote {
		t.Errorf("bad head %+v", head)
	}

	prev := head
	for i := 1; i <= 3; i++ {
		seg := s.Note(prev.NextNote)
		if nil == seg {
			t.Fatalf("segment %v missing", i)
		}
		if !seg.IsSustainNote || seg.Direction != 2 {
			t.Errorf("segment %v is %+v", i, seg)
		}
		if seg.StrumTime != 1000+float64(i)*100 {
			t.Errorf("segment %v at %v, expected %v", i, seg.StrumTime, 1000+i*100)
		}
		if seg.LastNote != prev.ID {
			t.Errorf("segment %v links back to %v, expected %v", i, seg.LastNote, prev.ID)
		}
		if seg.IsEndNote != (i == 3) {
			t.Errorf("segment %v end flag %v", i, seg.IsEndNote)
		}
		prev = seg
	}
	if prev.NextNote != game.NoNote {
		t.Errorf("end segment links forward to %v", prev.NextNote)
	}
}

func TestShortSustainIsATap(t *testing.T) {
	for _, length := range []float64{-50, 0, 99.9} {
		_, s := newScheduler(150, Options{})
		if err := s.Generate(testdata.Song(150, game.NoteEntry{StrumTime: 1000, SustainLength: length})); nil != err {
			t.Fatal(err)
		}
		if s.Len() != 1 || s.Note(0).SustainLength != length {
			t.Errorf("sustain %v: %v notes", length, s.Len())
		}
	}
}

func TestSustainFollowsSectionBPM(t *testing.T) {
	c, s := newScheduler(150, Options{})
	song := testdata.Song(150)
	song.Notes = append(song.Notes, game.Section{
		LengthInSteps:  16,
		MustHitSection: true,
		ChangeBPM:      true,
		BPM:            300,
		SectionNotes:   []game.NoteEntry{{StrumTime: 2000, SustainLength: 100}},
	})
	if err := s.Generate(song); nil != err {
		t.Fatal(err)
	}
	// 300bpm is a 50ms step, so two segments
	if s.Len() != 3 {
		t.Fatalf("expected 3 notes, got %v", s.Len())
	}
	if c.BPM != 150 || c.StepCrochet != 100 {
		t.Errorf("song tempo not restored: bpm %v step %v", c.BPM, c.StepCrochet)
	}
}

func TestHorizonPromotion(t *testing.T) {
	c, s := newScheduler(100, Options{})
	if err := s.Generate(testdata.Song(100, game.NoteEntry{StrumTime: 2000})); nil != err {
		t.Fatal(err)
	}

	c.SongPosition = 0
	s.Update()
	if isActive(s, 0) || len(s.Unspawned()) != 1 {
		t.Fatal("note spawned 2000ms ahead")
	}

	c.SongPosition = 499
	s.Update()
	if isActive(s, 0) {
		t.Fatal("note spawned 1501ms ahead")
	}

	c.SongPosition = 500
	s.Update()
	if !isActive(s, 0) || len(s.Unspawned()) != 0 {
		t.Fatal("note not spawned 1500ms ahead")
	}
}

func TestPromotionStopsAtFirstFutureNote(t *testing.T) {
	c, s := newScheduler(100, Options{})
	song := testdata.Song(100,
		game.NoteEntry{StrumTime: 100},
		game.NoteEntry{StrumTime: 1400, Lane: 1},
		game.NoteEntry{StrumTime: 1600, Lane: 2},
		game.NoteEntry{StrumTime: 4000, Lane: 3},
	)
	if err := s.Generate(song); nil != err {
		t.Fatal(err)
	}
	c.SongPosition = 0
	s.Promote()
	if len(s.Active()) != 2 || len(s.Unspawned()) != 2 {
		t.Fatalf("active %v unspawned %v", len(s.Active()), len(s.Unspawned()))
	}
	front := s.Note(s.Unspawned()[0])
	if front.StrumTime != 1600 {
		t.Errorf("queue front at %v, expected 1600", front.StrumTime)
	}
}

func TestStaleCleanup(t *testing.T) {
	c, s := newScheduler(100, Options{})
	if err := s.Generate(testdata.Song(100, game.NoteEntry{StrumTime: 1000})); nil != err {
		t.Fatal(err)
	}

	c.SongPosition = 0
	s.Update()
	c.SongPosition = 5999
	s.Update()
	if !isActive(s, 0) {
		t.Fatal("note removed before going stale")
	}
	c.SongPosition = 6001
	s.Update()
	if isActive(s, 0) || !s.Drained() {
		t.Fatal("stale note not removed")
	}
}

func TestKilledNotesRetire(t *testing.T) {
	c, s := newScheduler(150, Options{})
	if err := s.Generate(testdata.Song(150,
		game.NoteEntry{StrumTime: 1000, SustainLength: 200},
		game.NoteEntry{StrumTime: 1050, Lane: 1},
	)); nil != err {
		t.Fatal(err)
	}
	c.SongPosition = 0
	s.Promote()
	if len(s.Active()) != 4 {
		t.Fatalf("expected 4 active notes, got %v", len(s.Active()))
	}

	// Retiring the middle of a chain leaves its neighbours reachable
	mid := s.Note(s.Note(0).NextNote)
	mid.Kill = true
	s.Cleanup()
	if len(s.Active()) != 3 {
		t.Fatalf("expected 3 active notes, got %v", len(s.Active()))
	}
	if s.Note(mid.NextNote) == nil || s.Note(mid.LastNote) == nil {
		t.Fatal("chain links dangle after retirement")
	}

	last := -1e9
	for _, id := range s.Active() {
		if st := s.Note(id).StrumTime; st < last {
			t.Fatal("active set lost its order")
		} else {
			last = st
		}
	}
}

func TestEmptyChart(t *testing.T) {
	c, s := newScheduler(100, Options{})
	if err := s.Generate(testdata.Song(100)); nil != err {
		t.Fatal(err)
	}
	c.SongPosition = 10000
	s.Update()
	if !s.Drained() || s.LastStrumTime() != 0 {
		t.Fatal("empty chart should be drained")
	}
}
