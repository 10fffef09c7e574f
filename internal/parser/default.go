package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"git.lost.host/meutraa/moon4k/internal/game"
)

const chartExt = ".moon"

// AudioExts are the backing track formats, in order of preference.
var AudioExts = []string{".ogg", ".mp3", ".wav"}

// DefaultParser reads .moon JSON charts from <Directory>/<song>/.
type DefaultParser struct {
	Directory string
}

func (p *DefaultParser) ChartPath(song, difficulty string) string {
	folder := game.ChartName(song, "")
	return filepath.Join(p.Directory, folder, game.ChartName(song, difficulty)+chartExt)
}

func (p *DefaultParser) Load(song, difficulty string) (*game.Song, error) {
	file := p.ChartPath(song, difficulty)
	data, err := os.ReadFile(file)
	if nil != err {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", file, ErrNotFound)
		}
		return nil, fmt.Errorf("unable to read chart: %w", err)
	}
	s, err := p.Parse(data)
	if nil != err {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return s, nil
}

// AudioPath finds the backing track in the song folder, "" when there is none.
func (p *DefaultParser) AudioPath(song string) string {
	folder := filepath.Join(p.Directory, game.ChartName(song, ""))
	found := map[string]string{}
	if err := filepath.WalkDir(folder, func(pth string, d fs.DirEntry, err error) error {
		if nil != err {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(path.Ext(d.Name()))
		if _, ok := found[ext]; !ok {
			found[ext] = pth
		}
		return nil
	}); nil != err {
		slog.Warn("unable to walk song directory", "folder", folder, "err", err)
		return ""
	}
	for _, ext := range AudioExts {
		if pth, ok := found[ext]; ok {
			return pth
		}
	}
	return ""
}

type rawSection struct {
	LengthInSteps  *int              `json:"lengthInSteps"`
	MustHitSection *bool             `json:"mustHitSection"`
	TypeOfSection  int               `json:"typeOfSection"`
	BPM            float64           `json:"bpm"`
	ChangeBPM      bool              `json:"changeBPM"`
	AltAnim        bool              `json:"altAnim"`
	SectionNotes   []json.RawMessage `json:"sectionNotes"`
}

type rawSong struct {
	Song      json.RawMessage   `json:"song"`
	BPM       *float64          `json:"bpm"`
	Speed     *float64          `json:"speed"`
	Sections  int               `json:"sections"`
	KeyCount  *int              `json:"keyCount"`
	Timescale []json.RawMessage `json:"timescale"`
	Notes     []json.RawMessage `json:"notes"`
}

type objectNote struct {
	NoteStrum float64 `json:"noteStrum"`
	NoteData  int     `json:"noteData"`
	NoteSus   float64 `json:"noteSus"`
}

// trim drops anything after the final closing brace.
func trim(data []byte) []byte {
	end := bytes.LastIndexByte(data, '}')
	if end < 0 {
		return bytes.TrimSpace(data)
	}
	return data[:end+1]
}

func (p *DefaultParser) Parse(data []byte) (*game.Song, error) {
	data = trim(data)

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); nil != err {
		return nil, fmt.Errorf("unable to parse chart: %w", err)
	}
	body := data
	if inner, ok := top["song"]; ok && isObject(inner) {
		body = inner
	}

	var raw rawSong
	if err := json.Unmarshal(body, &raw); nil != err {
		return nil, fmt.Errorf("unable to parse chart: %w", err)
	}

	s := &game.Song{
		Name:     songName(raw.Song),
		BPM:      100,
		Speed:    1,
		KeyCount: game.DefaultKeyCount,
		Sections: raw.Sections,
	}
	if nil != raw.BPM {
		s.BPM = *raw.BPM
	}
	if nil != raw.Speed {
		s.Speed = *raw.Speed
	}
	if nil != raw.KeyCount {
		s.KeyCount = *raw.KeyCount
	}
	for _, v := range raw.Timescale {
		var n float64
		if err := json.Unmarshal(v, &n); nil == err {
			s.Timescale = append(s.Timescale, int(n))
		}
	}

	for _, rs := range raw.Notes {
		s.Notes = append(s.Notes, parseSection(rs))
	}

	s.ValidScore = s.Name != "" && s.BPM > 0
	if !s.ValidScore {
		return s, ErrInvalidChart
	}

	slog.Info("parsed song",
		"song", s.Name,
		"bpm", s.BPM,
		"keyCount", s.KeyCount,
		"sections", s.Sections,
		"notes", len(s.Notes),
	)
	return s, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// songName accepts either a plain string or an object with a name.
func songName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var name string
	if err := json.Unmarshal(raw, &name); nil == err {
		return name
	}
	var named struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &named); nil == err {
		return named.Name
	}
	return ""
}

func parseSection(raw json.RawMessage) game.Section {
	section := game.Section{LengthInSteps: 16, MustHitSection: true}
	if !isObject(raw) {
		return section
	}
	var rs rawSection
	if err := json.Unmarshal(raw, &rs); nil != err {
		slog.Warn("unable to parse section", "err", err)
		return section
	}
	if nil != rs.LengthInSteps {
		section.LengthInSteps = *rs.LengthInSteps
	}
	if nil != rs.MustHitSection {
		section.MustHitSection = *rs.MustHitSection
	}
	section.TypeOfSection = rs.TypeOfSection
	section.BPM = rs.BPM
	section.ChangeBPM = rs.ChangeBPM
	section.AltAnim = rs.AltAnim

	for _, rn := range rs.SectionNotes {
		if entry, ok := parseNote(rn); ok {
			section.SectionNotes = append(section.SectionNotes, entry)
		}
	}
	return section
}

// parseNote reads either {noteStrum, noteData, noteSus} or a positional
// array of numbers, where numeric strings are accepted and anything else is
// skipped.
func parseNote(raw json.RawMessage) (game.NoteEntry, bool) {
	if isObject(raw) {
		var on objectNote
		if err := json.Unmarshal(raw, &on); nil != err {
			return game.NoteEntry{}, false
		}
		return game.NoteEntry{StrumTime: on.NoteStrum, Lane: on.NoteData, SustainLength: on.NoteSus}, true
	}

	var values []json.RawMessage
	if err := json.Unmarshal(raw, &values); nil != err {
		return game.NoteEntry{}, false
	}
	fields := make([]float64, 0, len(values))
	for _, v := range values {
		var n float64
		if err := json.Unmarshal(v, &n); nil == err {
			fields = append(fields, n)
			continue
		}
		var str string
		if err := json.Unmarshal(v, &str); nil == err {
			if n, err := strconv.ParseFloat(strings.TrimSpace(str), 64); nil == err {
				fields = append(fields, n)
			}
		}
	}
	// A note needs at least a time and a lane
	if len(fields) < 2 {
		return game.NoteEntry{}, false
	}
	entry := game.NoteEntry{StrumTime: fields[0], Lane: int(fields[1])}
	if len(fields) > 2 {
		entry.Unused = fields[2]
	}
	if len(fields) > 3 {
		entry.SustainLength = fields[3]
	}
	return entry, true
}
