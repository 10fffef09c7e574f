package game

// NoteID indexes a note in the scheduler arena.
type NoteID int

// NoNote marks an absent chain link.
const NoNote NoteID = -1

type Note struct {
	ID            NoteID
	Direction     int     // The lane, in [0, keyCount)
	StrumTime     float64 // The song position in ms the note should be hit
	SustainLength float64 // Hold length in ms, only set on the head of a hold
	IsSustainNote bool
	IsEndNote     bool // Last segment of a hold chain

	// Lane ownership, false for notes the game resolves on its own
	ShouldHit bool

	// This is state
	Holding    bool // The previous link of this hold chain has been hit
	CanBeHit   bool
	WasGoodHit bool
	TooLate    bool
	Kill       bool

	LastNote NoteID
	NextNote NoteID
}

// Judged reports whether the note has already been resolved as a hit.
func (note *Note) Judged() bool {
	return note.WasGoodHit
}
