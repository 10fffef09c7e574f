package conductor

import (
	"math"

	"git.lost.host/meutraa/moon4k/internal/game"
)

// safeFrames is the hit window expressed in frames at 60fps.
const safeFrames = 10

// BPMChange is a checkpoint where the tempo of the song changes.
type BPMChange struct {
	StepTime int
	SongTime float64 // ms
	BPM      float64
}

// Conductor is the musical clock of a session. It is written once per frame
// by the session and read by the scheduler and the judgment engine.
type Conductor struct {
	SongPosition   float64 // ms, negative during the countdown
	BPM            float64
	Crochet        float64 // ms per beat
	StepCrochet    float64 // ms per step
	SafeZoneOffset float64 // ms
	BPMChangeMap   []BPMChange

	multiplier float64
}

func New() *Conductor {
	return &Conductor{
		SafeZoneOffset: safeFrames / 60.0 * 1000,
		multiplier:     1,
	}
}

// ChangeBPM resets the clock to a single tempo.
func (c *Conductor) ChangeBPM(bpm float64) {
	c.BPM = bpm
	c.multiplier = 1
	c.Crochet = 60000 / bpm
	c.StepCrochet = c.Crochet / 4
	c.BPMChangeMap = []BPMChange{{StepTime: 0, SongTime: 0, BPM: bpm}}
}

// SetBPM changes the tempo used by the next RecalculateStuff without
// touching the change map.
func (c *Conductor) SetBPM(bpm float64) {
	c.BPM = bpm
}

// RecalculateStuff re-derives the crochets from the current tempo.
func (c *Conductor) RecalculateStuff(multiplier float64) {
	if multiplier <= 0 {
		multiplier = 1
	}
	c.multiplier = multiplier
	c.Crochet = 60000 / c.BPM / multiplier
	c.StepCrochet = c.Crochet / 4
}

// MapBPMChanges appends a checkpoint for every section that declares a new
// tempo. The map must have been reset with ChangeBPM first.
func (c *Conductor) MapBPMChanges(song *game.Song) {
	curBPM := song.BPM
	totalSteps := 0
	totalPos := 0.0
	for _, section := range song.Notes {
		if section.ChangeBPM && section.BPM > 0 && section.BPM != curBPM {
			curBPM = section.BPM
			c.BPMChangeMap = append(c.BPMChangeMap, BPMChange{
				StepTime: totalSteps,
				SongTime: totalPos,
				BPM:      curBPM,
			})
		}
		steps := section.LengthInSteps
		totalSteps += steps
		totalPos += 60000 / curBPM / 4 * float64(steps)
	}
}

// lastChange finds the governing checkpoint for the song position. The map
// is scanned in full so an unsorted map still yields the latest qualifying
// entry instead of failing.
func (c *Conductor) lastChange() BPMChange {
	last := BPMChange{}
	found := false
	for _, change := range c.BPMChangeMap {
		if change.SongTime > c.SongPosition {
			continue
		}
		if !found || change.SongTime >= last.SongTime {
			last = change
			found = true
		}
	}
	return last
}

// CurrentStep is the step index at the song position, floored towards
// negative infinity so the countdown yields negative steps.
func (c *Conductor) CurrentStep() int {
	if c.StepCrochet == 0 {
		panic("conductor: step computed before ChangeBPM")
	}
	change := c.lastChange()
	stepsSinceChange := (c.SongPosition - change.SongTime) / c.StepCrochet
	return change.StepTime + int(math.Floor(stepsSinceChange))
}

func (c *Conductor) CurrentBeat() int {
	return floorDiv(c.CurrentStep(), 4)
}

// Advance moves the clock by dt seconds and follows tempo changes.
func (c *Conductor) Advance(dt float64) {
	c.SongPosition += dt * 1000
	if len(c.BPMChangeMap) < 2 {
		return
	}
	if change := c.lastChange(); change.BPM > 0 && change.BPM != c.BPM {
		c.BPM = change.BPM
		c.RecalculateStuff(c.multiplier)
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
