package theme

import "git.lost.host/meutraa/moon4k/internal/game"

type NoteKind int

const (
	Tap NoteKind = iota
	Hold
	HoldEnd
)

type Theme interface {
	RenderNote(lane int, kind NoteKind) string
	RenderReceptor(lane int, pressed bool) string
	RenderRank(rank game.Rank) string
	RenderJudgement(hit bool) string
}
