package main

import (
	"fmt"
	"strings"

	"git.lost.host/meutraa/moon4k/internal/score"
	"git.lost.host/meutraa/moon4k/internal/session"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func difficultyName(d string) string {
	if d == "" {
		return "normal"
	}
	return d
}

func renderScores(scores []score.SongScore) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Difficulty", "Score", "Accuracy", "Misses", "Notes hit", "Rank"})
	for _, s := range scores {
		tw.AppendRow(table.Row{
			difficultyName(s.Difficulty),
			s.Score,
			fmt.Sprintf("%.2f%%", s.Accuracy),
			s.Misses,
			s.TotalNotesHit,
			string(s.Rank),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	return tw.Render()
}

// summary is printed once the terminal is restored after a play.
func summary(res session.Result, best score.SongScore, hasBest bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v (%v): %v\n", res.Song, difficultyName(res.Difficulty), res.Outcome)
	st := res.Stats
	fmt.Fprintf(&b, "  Score:     %8v\n", st.Score)
	fmt.Fprintf(&b, "  Accuracy:  %7.2f%%\n", st.Accuracy)
	fmt.Fprintf(&b, "  Misses:    %8v\n", st.Misses)
	fmt.Fprintf(&b, "  Notes hit: %8v\n", int(st.TotalNotesHit))
	fmt.Fprintf(&b, "  Max combo: %8v\n", st.MaxCombo)
	fmt.Fprintf(&b, "  Rank:      %8v\n", st.Rank)
	if hasBest {
		fmt.Fprintf(&b, "  Best:      %8v (%v)\n", best.Score, best.Rank)
	}
	return b.String()
}
