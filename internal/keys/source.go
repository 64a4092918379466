package keys

import (
	"context"
	"errors"
	"time"

	"github.com/anvanvan/blitz-dictation/internal/config"

	hook "github.com/robotn/gohook"
	"github.com/sirupsen/logrus"
)

// ErrPermissionDenied means the OS refused global key monitoring.
var ErrPermissionDenied = errors.New("input monitoring permission denied")

// Source feeds raw key state into a Tracker until ctx is cancelled.
type Source interface {
	Run(ctx context.Context) error
}

// NewSource selects the capture mechanism for the configured hotkey: a
// polling source for the macOS fn key, the global event hook otherwise.
func NewSource(cfg *config.Config, tracker *Tracker, log *logrus.Logger) (Source, error) {
	if normalize(cfg.Hotkey.Key) == "fn" {
		interval := time.Duration(cfg.Hotkey.PollIntervalMS) * time.Millisecond
		if interval <= 0 {
			interval = 10 * time.Millisecond
		}
		return newFnSource(interval, tracker, log)
	}
	code, err := Lookup(cfg.Hotkey.Key)
	if err != nil {
		return nil, err
	}
	return &hookSource{rawcode: code, tracker: tracker, log: log}, nil
}

// hookSource listens on the global keyboard hook and forwards the state
// of one rawcode. Key repeat arrives as KeyHold; the tracker dedupes.
type hookSource struct {
	rawcode uint16
	tracker *Tracker
	log     *logrus.Logger
}

func (s *hookSource) Run(ctx context.Context) error {
	events := hook.Start()
	defer hook.End()
	s.log.WithField("rawcode", s.rawcode).Info("keyboard hook started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return errors.New("keyboard hook closed")
			}
			if ev.Rawcode != s.rawcode {
				continue
			}
			switch ev.Kind {
			case hook.KeyDown, hook.KeyHold:
				s.tracker.Observe(true)
			case hook.KeyUp:
				s.tracker.Observe(false)
			}
		}
	}
}
