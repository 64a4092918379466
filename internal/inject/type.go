package inject

import (
	"time"

	"github.com/anvanvan/blitz-dictation/internal/config"

	"github.com/go-vgo/robotgo"
	"github.com/sirupsen/logrus"
)

// typer synthesizes keystrokes for each character. Slower than paste
// but leaves the clipboard alone.
type typer struct {
	log     *logrus.Logger
	delay   time.Duration
	typeStr func(string)
	sleep   func(time.Duration)
}

func newTyper(cfg *config.Config, log *logrus.Logger) *typer {
	return &typer{
		log:     log,
		delay:   time.Duration(cfg.Inject.KeyDelayMS) * time.Millisecond,
		typeStr: func(s string) { robotgo.TypeStr(s) },
		sleep:   time.Sleep,
	}
}

func (t *typer) Inject(text string) error {
	if text == "" {
		return nil
	}
	if t.delay > 0 {
		t.sleep(t.delay)
	}
	t.typeStr(text)
	return nil
}
