package input

import (
	"strings"
	"time"
)

type Action int

const (
	None Action = iota
	Pause
	Quit
)

// Source feeds key presses into a State once per frame.
type Source interface {
	Poll(st *State, now time.Time) Action
	Close() error
}

// State tracks which lanes are held and which changed since the last Frame.
type State struct {
	held     []bool
	pressed  []bool
	released []bool
}

func NewState(lanes int) *State {
	return &State{
		held:     make([]bool, lanes),
		pressed:  make([]bool, lanes),
		released: make([]bool, lanes),
	}
}

// Frame forgets the edges of the previous frame.
func (s *State) Frame() {
	for i := range s.pressed {
		s.pressed[i] = false
		s.released[i] = false
	}
}

func (s *State) valid(lane int) bool {
	return lane >= 0 && lane < len(s.held)
}

func (s *State) Press(lane int) {
	if !s.valid(lane) || s.held[lane] {
		return
	}
	s.held[lane] = true
	s.pressed[lane] = true
}

func (s *State) Release(lane int) {
	if !s.valid(lane) || !s.held[lane] {
		return
	}
	s.held[lane] = false
	s.released[lane] = true
}

// ReleaseAll lets go of every lane, as when the game is paused.
func (s *State) ReleaseAll() {
	for lane := range s.held {
		s.Release(lane)
	}
}

// Pressed also reports a lane tapped and let go within the same frame.
func (s *State) Pressed(lane int) bool {
	return s.valid(lane) && (s.held[lane] || s.pressed[lane])
}

func (s *State) JustPressed(lane int) bool {
	return s.valid(lane) && s.pressed[lane]
}

func (s *State) JustReleased(lane int) bool {
	return s.valid(lane) && s.released[lane]
}

// Bindings maps key names onto lanes. Names are case insensitive.
type Bindings map[string]int

func NewBindings(sets ...[]string) Bindings {
	b := Bindings{}
	for _, set := range sets {
		for lane, name := range set {
			if name == "" {
				continue
			}
			key := strings.ToUpper(name)
			if _, ok := b[key]; !ok {
				b[key] = lane
			}
		}
	}
	return b
}

func (b Bindings) Lane(name string) (int, bool) {
	lane, ok := b[strings.ToUpper(name)]
	return lane, ok
}

func actionFor(name string) Action {
	switch strings.ToUpper(name) {
	case "ESCAPE":
		return Quit
	case "ENTER":
		return Pause
	}
	return None
}
