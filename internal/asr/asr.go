// Package asr turns captured audio into text with a local whisper model.
package asr

import (
	"context"

	"github.com/anvanvan/blitz-dictation/internal/config"

	"github.com/sirupsen/logrus"
)

// Engine transcribes one finished capture at a time.
type Engine interface {
	// Transcribe converts mono float PCM at the configured rate into
	// text. An empty string with a nil error means the engine heard
	// nothing worth writing.
	Transcribe(ctx context.Context, samples []float32) (string, error)
	Close() error
}

// New loads the configured whisper model. The model stays resident so
// the first dictation does not pay the load cost.
func New(cfg *config.Config, log *logrus.Logger) (Engine, error) {
	return newWhisperEngine(cfg, log)
}
