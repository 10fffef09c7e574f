package stats

import (
	"math"

	"git.lost.host/meutraa/moon4k/internal/game"
)

const (
	HitReward   = 350
	MissPenalty = 10
)

// HealthConfig sets the health bar behaviour. Loss should outweigh Gain.
type HealthConfig struct {
	Start float64 `toml:"start"`
	Gain  float64 `toml:"gain"`
	Loss  float64 `toml:"loss"`
	Drain float64 `toml:"drain"` // per second while playing
}

func DefaultHealth() HealthConfig {
	return HealthConfig{
		Start: 1,
		Gain:  0.04,
		Loss:  0.10,
		Drain: 0.005,
	}
}

// Stats is the running result of a session.
type Stats struct {
	Score         int
	Misses        int
	Combo         int
	MaxCombo      int
	TotalNotesHit float64
	TotalPlayed   int
	Accuracy      float64 // percentage, two decimals
	Rank          game.Rank
	Health        float64
	Dead          bool

	health HealthConfig
}

func New(health HealthConfig) *Stats {
	s := &Stats{health: health}
	s.Reset()
	return s
}

func (s *Stats) Reset() {
	*s = Stats{
		Rank:   game.RankP,
		Health: clamp(s.health.Start),
		health: s.health,
	}
}

// Hit applies a good hit. Only tallied notes count towards accuracy.
func (s *Stats) Hit(tally bool) {
	s.Combo++
	if s.Combo > s.MaxCombo {
		s.MaxCombo = s.Combo
	}
	s.Score += HitReward
	s.gainHealth(s.health.Gain)
	if tally {
		s.TotalNotesHit++
		s.UpdateAccuracy()
	}
}

func (s *Stats) Miss() {
	s.Combo = 0
	s.Misses++
	s.Score -= MissPenalty
	if s.Score < 0 {
		s.Score = 0
	}
	s.UpdateAccuracy()
	s.loseHealth(s.health.Loss)
}

// Drain applies the passive health loss for dt seconds.
func (s *Stats) Drain(dt float64) {
	s.loseHealth(s.health.Drain * dt)
}

// UpdateAccuracy counts one more judged note and regrades.
func (s *Stats) UpdateAccuracy() {
	s.TotalPlayed++
	s.Accuracy = accuracy(s.TotalNotesHit, s.TotalPlayed, s.Misses)
	s.Rank = game.RankFor(s.Accuracy)
}

func accuracy(hit float64, played, misses int) float64 {
	if played == 0 {
		return 0
	}
	acc := math.Round(hit/float64(played)*100*100) / 100
	// A miss somewhere means this is not a real perfect
	if acc >= 100 && misses > 0 {
		return 99.98
	}
	return acc
}

func (s *Stats) gainHealth(amount float64) {
	if s.Dead {
		return
	}
	s.Health = clamp(s.Health + amount)
}

func (s *Stats) loseHealth(amount float64) {
	if s.Dead {
		return
	}
	s.Health = clamp(s.Health - amount)
	if s.Health <= 0 {
		s.Dead = true
	}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
