package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"git.lost.host/meutraa/moon4k/internal/config"
	"git.lost.host/meutraa/moon4k/internal/score"
	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(os.Args[1:]); nil != err {
		log.Fatalln(err)
	}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func setupLogging(file string) (func(), error) {
	f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if nil != err {
		return nil, fmt.Errorf("unable to open log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo})))
	return func() { f.Close() }, nil
}

func run(args []string) error {
	cmd, o, err := config.Parse(args)
	if nil != err {
		return err
	}
	closeLog, err := setupLogging(o.LogFile)
	if nil != err {
		return err
	}
	defer closeLog()

	cfg, err := config.Load(o.ConfigFile)
	if nil != err {
		return err
	}

	switch cmd {
	case config.PlayCommand:
		if !isTerminal(os.Stdout) {
			return errors.New("play needs a terminal")
		}
		lock := flock.New(filepath.Join(os.TempDir(), "moon4k.lock"))
		ok, err := lock.TryLock()
		if nil != err {
			return fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return errors.New("another moon4k instance is already playing")
		}
		defer lock.Unlock()
		return play(o, cfg)
	case config.ScoresCommand:
		return scores(o)
	case config.OptionsCommand:
		if cfg.Apply(o) {
			if err := config.Save(o.ConfigFile, cfg); nil != err {
				return err
			}
			slog.Info("saved options", "path", o.ConfigFile)
		}
		fmt.Print(cfg.String())
		return nil
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func scores(o *config.Options) error {
	scorer := &score.DefaultScorer{Path: o.ScoresFile}
	if err := scorer.Init(); nil != err {
		return err
	}
	defer scorer.Deinit()

	all, err := scorer.AllScores(o.ScoresSong)
	if nil != err {
		return err
	}
	if len(all) == 0 {
		fmt.Printf("No scores for %v\n", o.ScoresSong)
		return nil
	}
	fmt.Println(renderScores(all))
	return nil
}
