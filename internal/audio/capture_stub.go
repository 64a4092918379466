//go:build !whisper

package audio

import (
	"errors"

	"github.com/anvanvan/blitz-dictation/internal/config"

	"github.com/sirupsen/logrus"
)

// NewRecorder requires the whisper build tag.
func NewRecorder(*config.Config, *logrus.Logger) (Recorder, error) {
	return nil, errors.New("blitz built without whisper support; rebuild with -tags whisper")
}
