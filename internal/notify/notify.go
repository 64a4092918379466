// Package notify surfaces dictation outcomes as desktop notifications.
package notify

import (
	"github.com/anvanvan/blitz-dictation/internal/config"

	"github.com/gen2brain/beeep"
	"github.com/sirupsen/logrus"
)

const title = "blitz"

// Notifier shows desktop notifications when enabled. Failures are
// logged and dropped; a missing notification daemon must not break
// dictation.
type Notifier struct {
	enabled bool
	log     *logrus.Logger

	notify func(title, message string) error
	alert  func(title, message string) error
}

func New(cfg *config.Config, log *logrus.Logger) *Notifier {
	return &Notifier{
		enabled: cfg.Notify.Enabled,
		log:     log,
		notify:  func(t, m string) error { return beeep.Notify(t, m, "") },
		alert:   func(t, m string) error { return beeep.Alert(t, m, "") },
	}
}

// Info shows a routine status message.
func (n *Notifier) Info(message string) {
	if !n.enabled {
		return
	}
	if err := n.notify(title, message); err != nil {
		n.log.Debugf("notify: %v", err)
	}
}

// Error shows a failure message with the platform alert sound.
func (n *Notifier) Error(message string) {
	if !n.enabled {
		return
	}
	if err := n.alert(title, message); err != nil {
		n.log.Debugf("notify: %v", err)
	}
}
