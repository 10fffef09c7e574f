package game

import "strings"

const DefaultKeyCount = 4

// ChartName is the file stem of a song chart for the given difficulty.
// An empty difficulty names the base chart.
func ChartName(song, difficulty string) string {
	song = strings.ToLower(strings.TrimSpace(song))
	difficulty = strings.ToLower(strings.TrimSpace(difficulty))
	if difficulty == "" {
		return song
	}
	return song + "-" + difficulty
}
