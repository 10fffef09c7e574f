package input

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// https://github.com/torvalds/linux/blob/master/include/uapi/linux/input-event-codes.h
const evKey = 0x01

var keyCodes = map[uint16]string{
	1: "Escape", 28: "Enter", 57: "Space",
	103: "Up", 105: "Left", 106: "Right", 108: "Down",
	16: "Q", 17: "W", 18: "E", 19: "R", 20: "T", 21: "Y", 22: "U", 23: "I", 24: "O", 25: "P",
	30: "A", 31: "S", 32: "D", 33: "F", 34: "G", 35: "H", 36: "J", 37: "K", 38: "L",
	44: "Z", 45: "X", 46: "C", 47: "V", 48: "B", 49: "N", 50: "M",
}

type keyEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

type Event struct {
	Pressed  bool
	Released bool
	Code     uint16
	Time     time.Time
}

// Device reads key events straight from an evdev node, which reports
// releases as well as presses.
type Device struct {
	bindings Bindings
	file     *os.File
	events   chan *Event
}

func OpenDevice(path string, bindings Bindings) (*Device, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open input device: %w", err)
	}
	d := &Device{bindings: bindings, file: file, events: make(chan *Event, 128)}
	go d.read()
	return d, nil
}

func (d *Device) read() {
	defer close(d.events)
	var ev keyEvent
	for {
		if err := binary.Read(d.file, binary.LittleEndian, &ev); nil != err {
			slog.Warn("unable to read keyboard input", "err", err)
			return
		}
		// Value 2 is auto repeat
		if ev.Type != evKey || ev.Value > 1 {
			continue
		}
		d.events <- &Event{
			Pressed:  ev.Value == 1,
			Released: ev.Value == 0,
			Code:     ev.Code,
			Time:     time.Unix(ev.Time.Unix()),
		}
	}
}

// Apply feeds one device event into the state.
func (d *Device) Apply(st *State, ev *Event) Action {
	name := keyCodes[ev.Code]
	if ev.Pressed {
		if a := actionFor(name); a != None {
			return a
		}
	}
	lane, ok := d.bindings.Lane(name)
	if !ok {
		return None
	}
	if ev.Pressed {
		st.Press(lane)
	} else if ev.Released {
		st.Release(lane)
	}
	return None
}

func (d *Device) Poll(st *State, now time.Time) Action {
	action := None
	for i := len(d.events); i > 0; i-- {
		ev, ok := <-d.events
		if !ok {
			break
		}
		if a := d.Apply(st, ev); a != None {
			action = a
		}
	}
	return action
}

func (d *Device) Close() error {
	return d.file.Close()
}
