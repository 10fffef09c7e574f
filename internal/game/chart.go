package game

// NoteEntry is one raw note of a chart section.
type NoteEntry struct {
	StrumTime     float64
	Lane          int
	Unused        float64
	SustainLength float64
}

type Section struct {
	LengthInSteps  int
	MustHitSection bool
	TypeOfSection  int
	BPM            float64
	ChangeBPM      bool
	AltAnim        bool
	SectionNotes   []NoteEntry
}

// Song is a parsed chart, consumed read-only by the scheduler.
type Song struct {
	Name       string
	BPM        float64
	Speed      float64
	KeyCount   int
	Sections   int
	Timescale  []int
	Notes      []Section
	ValidScore bool
}

// NoteCount is the number of raw note entries across all sections.
func (s *Song) NoteCount() int {
	count := 0
	for _, section := range s.Notes {
		count += len(section.SectionNotes)
	}
	return count
}
