package inject

import (
	"fmt"
	"runtime"
	"time"

	"github.com/anvanvan/blitz-dictation/internal/config"

	"github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"
	"github.com/sirupsen/logrus"
)

// How long the target app gets to consume the paste before the old
// clipboard content comes back.
const restoreDelay = 300 * time.Millisecond

// paster puts text on the clipboard and sends the platform paste chord.
// On a failed keystroke the text stays on the clipboard so the user can
// paste by hand.
type paster struct {
	log     *logrus.Logger
	restore bool
	delay   time.Duration

	read      func() (string, error)
	write     func(string) error
	sendChord func() error
	sleep     func(time.Duration)
}

func newPaster(cfg *config.Config, log *logrus.Logger) *paster {
	return &paster{
		log:       log,
		restore:   cfg.Inject.RestoreClipboard,
		delay:     time.Duration(cfg.Inject.KeyDelayMS) * time.Millisecond,
		read:      clipboard.ReadAll,
		write:     clipboard.WriteAll,
		sendChord: sendPasteChord,
		sleep:     time.Sleep,
	}
}

func (p *paster) Inject(text string) error {
	if text == "" {
		return nil
	}

	saved, savedOK := "", false
	if p.restore {
		if prev, err := p.read(); err == nil {
			saved, savedOK = prev, true
		} else {
			p.log.Debugf("clipboard read: %v", err)
		}
	}

	if err := p.write(text); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	if p.delay > 0 {
		p.sleep(p.delay)
	}
	if err := p.sendChord(); err != nil {
		return fmt.Errorf("paste keystroke: %w", err)
	}

	if savedOK {
		p.sleep(restoreDelay)
		if err := p.write(saved); err != nil {
			p.log.Debugf("clipboard restore: %v", err)
		}
	}
	return nil
}

// sendPasteChord presses cmd+V on macOS, ctrl+V elsewhere.
func sendPasteChord() error {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return err
	}
	kb.SetKeys(keybd_event.VK_V)
	if runtime.GOOS == "darwin" {
		kb.HasSuper(true)
	} else {
		kb.HasCTRL(true)
	}
	return kb.Launching()
}
