package input

import (
	"fmt"
	"strings"
	"time"

	"github.com/eiannone/keyboard"
)

// Keyboard reads the terminal. A terminal only reports presses and their
// auto repeat, so a lane counts as held until no repeat arrives within
// HoldTimeout. A report further than RepeatWindow from the previous one on
// the same lane is a new press.
type Keyboard struct {
	HoldTimeout  time.Duration
	RepeatWindow time.Duration
	bindings     Bindings
	events       <-chan keyboard.KeyEvent
	lastSeen     map[int]time.Time
}

func OpenKeyboard(bindings Bindings, holdTimeout, repeatWindow time.Duration) (*Keyboard, error) {
	events, err := keyboard.GetKeys(128)
	if nil != err {
		return nil, fmt.Errorf("unable to open keyboard: %w", err)
	}
	return newKeyboard(bindings, holdTimeout, repeatWindow, events), nil
}

func newKeyboard(bindings Bindings, holdTimeout, repeatWindow time.Duration, events <-chan keyboard.KeyEvent) *Keyboard {
	return &Keyboard{
		HoldTimeout:  holdTimeout,
		RepeatWindow: repeatWindow,
		bindings:     bindings,
		events:       events,
		lastSeen:     map[int]time.Time{},
	}
}

func keyName(ev keyboard.KeyEvent) string {
	switch ev.Key {
	case keyboard.KeyArrowLeft:
		return "Left"
	case keyboard.KeyArrowDown:
		return "Down"
	case keyboard.KeyArrowUp:
		return "Up"
	case keyboard.KeyArrowRight:
		return "Right"
	case keyboard.KeySpace:
		return "Space"
	case keyboard.KeyEnter:
		return "Enter"
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		return "Escape"
	}
	if ev.Rune != 0 {
		return strings.ToUpper(string(ev.Rune))
	}
	return ""
}

// Feed applies one key report seen at now.
func (k *Keyboard) Feed(st *State, name string, now time.Time) Action {
	if a := actionFor(name); a != None {
		return a
	}
	lane, ok := k.bindings.Lane(name)
	if !ok {
		return None
	}
	if last, ok := k.lastSeen[lane]; ok && now.Sub(last) > k.RepeatWindow {
		st.Release(lane)
	}
	k.lastSeen[lane] = now
	st.Press(lane)
	return None
}

func (k *Keyboard) Poll(st *State, now time.Time) Action {
	action := None
	for i := len(k.events); i > 0; i-- {
		ev := <-k.events
		if nil != ev.Err {
			continue
		}
		if a := k.Feed(st, keyName(ev), now); a != None {
			action = a
		}
	}
	for lane, seen := range k.lastSeen {
		if now.Sub(seen) > k.HoldTimeout {
			st.Release(lane)
			delete(k.lastSeen, lane)
		}
	}
	return action
}

func (k *Keyboard) Close() error {
	return keyboard.Close()
}
