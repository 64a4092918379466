// Package inject places transcribed text into the focused application.
package inject

import (
	"fmt"

	"github.com/anvanvan/blitz-dictation/internal/config"

	"github.com/sirupsen/logrus"
)

// Injector delivers text to the frontmost app. Implementations are
// called from a single goroutine.
type Injector interface {
	Inject(text string) error
}

// New returns the injector selected by inject.method.
func New(cfg *config.Config, log *logrus.Logger) (Injector, error) {
	switch cfg.Inject.Method {
	case "", "paste":
		return newPaster(cfg, log), nil
	case "type":
		return newTyper(cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown inject method %q (use paste or type)", cfg.Inject.Method)
	}
}
