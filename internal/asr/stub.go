//go:build !whisper

package asr

import (
	"errors"

	"github.com/anvanvan/blitz-dictation/internal/config"

	"github.com/sirupsen/logrus"
)

func newWhisperEngine(*config.Config, *logrus.Logger) (Engine, error) {
	return nil, errors.New("blitz built without whisper support; rebuild with -tags whisper")
}
