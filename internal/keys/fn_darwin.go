package keys

/*
#cgo LDFLAGS: -framework CoreGraphics -framework IOKit
#include <CoreGraphics/CoreGraphics.h>
#include <IOKit/hid/IOHIDLib.h>

static int fnKeyIsDown(void) {
	return CGEventSourceKeyState(kCGEventSourceStateHIDSystemState, (CGKeyCode)63) ? 1 : 0;
}

static int inputMonitoringGranted(void) {
	return IOHIDCheckAccess(kIOHIDRequestTypeListenEvent) == kIOHIDAccessTypeGranted ? 1 : 0;
}
*/
import "C"

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// fnSource polls the hardware fn key level. macOS delivers no press or
// release event for fn, so the level is sampled at a fixed interval and
// the tracker turns it into edges. Hold the key at least one interval.
type fnSource struct {
	interval time.Duration
	tracker  *Tracker
	log      *logrus.Logger
}

func newFnSource(interval time.Duration, tracker *Tracker, log *logrus.Logger) (Source, error) {
	return &fnSource{interval: interval, tracker: tracker, log: log}, nil
}

func (s *fnSource) Run(ctx context.Context) error {
	tick := time.NewTicker(s.interval)
	defer tick.Stop()
	s.log.WithField("interval", s.interval).Info("fn key poller started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			s.tracker.Observe(C.fnKeyIsDown() != 0)
		}
	}
}

// CheckPermission probes Input Monitoring access up front. Without it
// the poll reports key-up forever, which would look like a hotkey that
// is simply never pressed.
func CheckPermission() error {
	if C.inputMonitoringGranted() == 0 {
		return ErrPermissionDenied
	}
	return nil
}
