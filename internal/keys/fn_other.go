//go:build !darwin

package keys

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

func newFnSource(time.Duration, *Tracker, *logrus.Logger) (Source, error) {
	return nil, errors.New(`hotkey "fn" is only available on macOS`)
}

// CheckPermission is a no-op off macOS; hook startup surfaces errors.
func CheckPermission() error { return nil }
