package config

import (
	"strings"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"
)

const (
	PlayCommand    = "play"
	ScoresCommand  = "scores"
	OptionsCommand = "options"
)

type Options struct {
	Charts       string
	ConfigFile   string
	ScoresFile   string
	LogFile      string
	FramePeriod  time.Duration
	Device       string
	HoldTimeout  time.Duration
	RepeatWindow time.Duration
	NoAudio      bool
	RequireAudio bool

	Song       string
	Difficulty string

	ScoresSong string

	Downscroll   *bool
	GhostTapping *bool
	Noteskin     *string
	ScrollSpeed  *float64
	SongOffset   *float64
}

// Parse reads the command line, returning the selected command.
func Parse(args []string) (string, *Options, error) {
	o := &Options{}
	app := kingpin.New("moon4k", "A four lane rhythm game for the terminal")
	app.Version("0.1.0")
	app.Flag("charts", "Song/chart directory").Default("assets/charts").Short('c').StringVar(&o.Charts)
	app.Flag("config", "Game options file").Default("assets/config.toml").StringVar(&o.ConfigFile)
	app.Flag("scores", "Score database").Default("assets/scores.db").StringVar(&o.ScoresFile)
	app.Flag("log", "Log file").Default("moon4k.log").Short('l').StringVar(&o.LogFile)

	play := app.Command(PlayCommand, "Play a chart")
	play.Arg("song", "Song name").Required().StringVar(&o.Song)
	play.Arg("difficulty", "Chart difficulty").Default("").StringVar(&o.Difficulty)
	play.Flag("frame-period", "Render frame period").Default("4ms").Short('p').DurationVar(&o.FramePeriod)
	play.Flag("device", "Read key presses from an evdev device instead of the terminal").Short('d').StringVar(&o.Device)
	play.Flag("hold-timeout", "Terminal key repeat window that counts as holding").Default("550ms").DurationVar(&o.HoldTimeout)
	play.Flag("repeat-window", "Terminal key reports closer than this are auto repeat, further apart they are new presses").Default("100ms").DurationVar(&o.RepeatWindow)
	play.Flag("no-audio", "Play without the backing track").BoolVar(&o.NoAudio)
	play.Flag("require-audio", "Fail when the backing track cannot be loaded").BoolVar(&o.RequireAudio)

	scores := app.Command(ScoresCommand, "List best scores of a song")
	scores.Arg("song", "Song name").Required().StringVar(&o.ScoresSong)

	options := app.Command(OptionsCommand, "Show or change game options")
	o.Downscroll = options.Flag("downscroll", "Notes scroll down towards the receptors").Bool()
	o.GhostTapping = options.Flag("ghost-tapping", "Pressing an empty lane is not a miss").Bool()
	o.Noteskin = options.Flag("noteskin", "Note skin").String()
	o.ScrollSpeed = options.Flag("scroll-speed", "Scroll speed multiplier").Float64()
	o.SongOffset = options.Flag("song-offset", "Offset added to every note in ms").Float64()

	cmd, err := app.Parse(args)
	if nil != err {
		return "", nil, err
	}

	// Only explicitly given options are applied
	if !flagSet(args, "downscroll") {
		o.Downscroll = nil
	}
	if !flagSet(args, "ghost-tapping") {
		o.GhostTapping = nil
	}
	if !flagSet(args, "noteskin") {
		o.Noteskin = nil
	}
	if !flagSet(args, "scroll-speed") {
		o.ScrollSpeed = nil
	}
	if !flagSet(args, "song-offset") {
		o.SongOffset = nil
	}
	return cmd, o, nil
}

func flagSet(args []string, name string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		a = strings.SplitN(a, "=", 2)[0]
		if a == "--"+name || a == "--no-"+name {
			return true
		}
	}
	return false
}
