package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"git.lost.host/meutraa/moon4k/internal/game"
	"git.lost.host/meutraa/moon4k/internal/testdata"
)

func TestParse(t *testing.T) {
	psr := DefaultParser{}
	song, err := psr.Parse(testdata.Bopeebo)
	if nil != err {
		t.Fatal(err)
	}
	if song.Name != "Bopeebo" || song.BPM != 100 || song.Speed != 1.6 || song.KeyCount != 4 || !song.ValidScore {
		t.Fatalf("unexpected song %+v", song)
	}
	if len(song.Timescale) != 2 || song.Sections != 2 || len(song.Notes) != 2 {
		t.Fatalf("timescale %v sections %v notes %v", song.Timescale, song.Sections, len(song.Notes))
	}

	first := song.Notes[0]
	expected := []game.NoteEntry{
		{StrumTime: 1200, Lane: 2},
		{StrumTime: 600, Lane: 0, SustainLength: 350},
		{StrumTime: 1800, Lane: 5},
	}
	if len(first.SectionNotes) != len(expected) {
		t.Fatalf("first section has %v notes", len(first.SectionNotes))
	}
	for i, entry := range expected {
		if first.SectionNotes[i] != entry {
			t.Errorf("note %v is %+v, expected %+v", i, first.SectionNotes[i], entry)
		}
	}
	if !first.MustHitSection || first.LengthInSteps != 16 {
		t.Errorf("first section %+v", first)
	}

	second := song.Notes[1]
	if second.MustHitSection || !second.ChangeBPM || second.BPM != 120 {
		t.Errorf("second section %+v", second)
	}
	if second.SectionNotes[0] != (game.NoteEntry{StrumTime: 2400, Lane: 1}) {
		t.Errorf("short note parsed as %+v", second.SectionNotes[0])
	}
	if song.NoteCount() != 5 {
		t.Errorf("note count %v", song.NoteCount())
	}
}

func TestParseDefaults(t *testing.T) {
	psr := DefaultParser{}
	song, err := psr.Parse([]byte(`{"song": {"song": {"name": "Named"}, "notes": [{}, {"sectionNotes": [[1], ["x", 2], [5, 1, 0]]}]}}`))
	if nil != err {
		t.Fatal(err)
	}
	if song.Name != "Named" || song.BPM != 100 || song.Speed != 1 || song.KeyCount != 4 {
		t.Errorf("defaults not applied: %+v", song)
	}
	if len(song.Notes) != 2 || !song.Notes[0].MustHitSection || song.Notes[0].LengthInSteps != 16 {
		t.Fatalf("section defaults not applied: %+v", song.Notes)
	}
	// [1] is too short and "x" is dropped leaving [2], only [5, 1, 0] survives
	if notes := song.Notes[1].SectionNotes; len(notes) != 1 || notes[0] != (game.NoteEntry{StrumTime: 5, Lane: 1}) {
		t.Errorf("unexpected notes %+v", notes)
	}
}

func TestParseInvalid(t *testing.T) {
	psr := DefaultParser{}
	song, err := psr.Parse(testdata.Nameless)
	if !errors.Is(err, ErrInvalidChart) || song.ValidScore {
		t.Errorf("nameless chart: %v", err)
	}
	if _, err := psr.Parse([]byte(`{"song": "zero", "bpm": 0}`)); !errors.Is(err, ErrInvalidChart) {
		t.Errorf("zero bpm chart: %v", err)
	}
	if _, err := psr.Parse(testdata.Broken); nil == err || errors.Is(err, ErrInvalidChart) {
		t.Errorf("broken chart: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	psr := DefaultParser{Directory: dir}
	if _, err := testdata.WriteChart(dir, "bopeebo", "bopeebo-hard", testdata.Bopeebo); nil != err {
		t.Fatal(err)
	}

	song, err := psr.Load("Bopeebo", "Hard")
	if nil != err {
		t.Fatal(err)
	}
	if song.Name != "Bopeebo" {
		t.Errorf("loaded %q", song.Name)
	}

	if _, err := psr.Load("bopeebo", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing chart: %v", err)
	}
}

func TestAudioPath(t *testing.T) {
	dir := t.TempDir()
	psr := DefaultParser{Directory: dir}
	folder := filepath.Join(dir, "tune")
	if err := os.MkdirAll(folder, 0o755); nil != err {
		t.Fatal(err)
	}
	if p := psr.AudioPath("tune"); p != "" {
		t.Errorf("found audio %q in an empty folder", p)
	}
	for _, name := range []string{"tune.wav", "tune.mp3", "tune.moon"} {
		if err := os.WriteFile(filepath.Join(folder, name), nil, 0o644); nil != err {
			t.Fatal(err)
		}
	}
	if p := psr.AudioPath("Tune"); p != filepath.Join(folder, "tune.mp3") {
		t.Errorf("picked %q, expected the mp3", p)
	}
	if p := psr.AudioPath("missing"); p != "" {
		t.Errorf("found audio %q for a missing song", p)
	}
}
