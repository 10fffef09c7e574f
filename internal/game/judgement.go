package game

type Rank string

const (
	RankP Rank = "P"
	RankA Rank = "A"
	RankB Rank = "B"
	RankC Rank = "C"
	RankD Rank = "D"
	RankF Rank = "F"
)

// RankFor grades an accuracy percentage. Only an exact 100 is a P.
func RankFor(accuracy float64) Rank {
	switch {
	case accuracy == 100:
		return RankP
	case accuracy >= 90:
		return RankA
	case accuracy >= 80:
		return RankB
	case accuracy >= 70:
		return RankC
	case accuracy >= 60:
		return RankD
	}
	return RankF
}

// Input is a lane press recorded at a song position in ms.
type Input struct {
	Lane int
	Time float64
}
