package theme

import (
	"log/slog"

	"git.lost.host/meutraa/moon4k/internal/game"
	"github.com/charmbracelet/lipgloss"
)

type skin struct {
	syms    [4]string
	hold    string
	holdEnd string
	bar     string
}

var (
	skins = map[string]skin{
		"default": {syms: [4]string{"←", "↓", "↑", "→"}, hold: "┃", holdEnd: "╹", bar: "─"},
		"circle":  {syms: [4]string{"⬤", "⬤", "⬤", "⬤"}, hold: "│", holdEnd: "╵", bar: "-"},
	}
	laneColors = [4]lipgloss.Color{
		"#C24B99", // purple
		"#00FFFF", // blue
		"#12FA05", // green
		"#F9393F", // red
	}
	rankColors = map[game.Rank]lipgloss.Color{
		game.RankP: "13",
		game.RankA: "10",
		game.RankB: "14",
		game.RankC: "11",
		game.RankD: "208",
		game.RankF: "9",
	}
)

type DefaultTheme struct {
	skin  skin
	lanes [4]lipgloss.Style
	dim   lipgloss.Style
	hit   lipgloss.Style
	miss  lipgloss.Style
}

func NewDefaultTheme(noteskin string) *DefaultTheme {
	s, ok := skins[noteskin]
	if !ok {
		slog.Warn("unknown noteskin, using default", "noteskin", noteskin)
		s = skins["default"]
	}
	t := &DefaultTheme{
		skin: s,
		dim:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		hit:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		miss: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
	for i, c := range laneColors {
		t.lanes[i] = lipgloss.NewStyle().Foreground(c)
	}
	return t
}

func (t *DefaultTheme) lane(lane int) lipgloss.Style {
	return t.lanes[lane%len(t.lanes)]
}

func (t *DefaultTheme) RenderNote(lane int, kind NoteKind) string {
	switch kind {
	case Hold:
		return t.lane(lane).Render(t.skin.hold)
	case HoldEnd:
		return t.lane(lane).Render(t.skin.holdEnd)
	}
	return t.lane(lane).Bold(true).Render(t.skin.syms[lane%len(t.skin.syms)])
}

func (t *DefaultTheme) RenderReceptor(lane int, pressed bool) string {
	if pressed {
		return t.lane(lane).Reverse(true).Render(t.skin.syms[lane%len(t.skin.syms)])
	}
	return t.dim.Render(t.skin.syms[lane%len(t.skin.syms)])
}

func (t *DefaultTheme) RenderRank(rank game.Rank) string {
	c, ok := rankColors[rank]
	if !ok {
		return string(rank)
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render(string(rank))
}

func (t *DefaultTheme) RenderJudgement(hit bool) string {
	if hit {
		return t.hit.Render(" Sick!")
	}
	return t.miss.Render("  Miss")
}

// Bar is the hit line drawn between receptors.
func (t *DefaultTheme) Bar() string {
	return t.dim.Render(t.skin.bar)
}
