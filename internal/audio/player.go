package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

var ErrUnsupported = errors.New("unsupported audio format")

// Player streams one backing track through the speaker.
type Player struct {
	mu       sync.Mutex
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	playing  bool
	// sample rate the speaker was initialised with, zero before the first Play
	speakerRate beep.SampleRate
}

func decode(file *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(path.Ext(file.Name())) {
	case ".ogg":
		return vorbis.Decode(file)
	case ".mp3":
		return mp3.Decode(file)
	case ".wav":
		return wav.Decode(file)
	}
	return nil, beep.Format{}, fmt.Errorf("%s: %w", file.Name(), ErrUnsupported)
}

func (p *Player) Load(file string) error {
	f, err := os.Open(file)
	if nil != err {
		return fmt.Errorf("unable to open audio: %w", err)
	}
	streamer, format, err := decode(f)
	if nil != err {
		f.Close()
		return fmt.Errorf("unable to decode audio: %w", err)
	}

	p.Stop()
	p.mu.Lock()
	defer p.mu.Unlock()
	if nil != p.streamer {
		p.streamer.Close()
	}
	p.streamer = streamer
	p.format = format
	slog.Info("loaded audio", "file", file, "sampleRate", format.SampleRate, "length", format.SampleRate.D(streamer.Len()))
	return nil
}

func (p *Player) Play() {
	p.mu.Lock()
	if nil == p.streamer {
		p.mu.Unlock()
		return
	}
	if p.speakerRate == 0 {
		if err := speaker.Init(p.format.SampleRate, p.format.SampleRate.N(time.Second/60)); nil != err {
			p.mu.Unlock()
			slog.Error("unable to initialise speaker", "err", err)
			return
		}
		p.speakerRate = p.format.SampleRate
	}
	if err := p.streamer.Seek(0); nil != err {
		slog.Warn("unable to rewind audio", "err", err)
	}

	var s beep.Streamer = p.streamer
	if p.format.SampleRate != p.speakerRate {
		s = beep.Resample(4, p.format.SampleRate, p.speakerRate, s)
	}
	ctrl := &beep.Ctrl{Streamer: s}
	p.ctrl = ctrl
	p.playing = true
	p.mu.Unlock()

	// p.mu must be released here, the callback takes it on the speaker
	// goroutine.
	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		p.mu.Lock()
		if p.ctrl == ctrl {
			p.playing = false
		}
		p.mu.Unlock()
	})))
}

func (p *Player) setPaused(paused bool) {
	p.mu.Lock()
	ctrl := p.ctrl
	p.mu.Unlock()
	if nil == ctrl {
		return
	}
	speaker.Lock()
	ctrl.Paused = paused
	speaker.Unlock()
}

func (p *Player) Pause() {
	p.setPaused(true)
}

func (p *Player) Resume() {
	p.setPaused(false)
}

func (p *Player) Stop() {
	p.mu.Lock()
	active := nil != p.ctrl
	p.ctrl = nil
	p.playing = false
	p.mu.Unlock()
	if active {
		speaker.Clear()
	}
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if nil == p.streamer {
		return 0
	}
	return p.format.SampleRate.D(p.streamer.Len())
}

func (p *Player) Close() {
	p.Stop()
	p.mu.Lock()
	defer p.mu.Unlock()
	if nil != p.streamer {
		p.streamer.Close()
		p.streamer = nil
	}
}
