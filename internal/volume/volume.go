// Package volume quiets Music.app while the microphone is hot.
package volume

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anvanvan/blitz-dictation/internal/config"
)

const scriptTimeout = 2 * time.Second

// Ducker mutes Music.app during a capture and restores the previous
// volume afterwards. Every failure is logged and swallowed; dictation
// never depends on AppleScript cooperating. Methods are called from
// one goroutine.
type Ducker struct {
	log     *logrus.Logger
	enabled bool
	ducked  bool
	saved   int

	run func(ctx context.Context, script string) (string, error)
}

func NewDucker(cfg *config.Config, log *logrus.Logger) *Ducker {
	return &Ducker{
		log:     log,
		enabled: cfg.Volume.DuckMusic && runtime.GOOS == "darwin",
		run:     runOsascript,
	}
}

func runOsascript(ctx context.Context, script string) (string, error) {
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).Output()
	return strings.TrimSpace(string(out)), err
}

// Duck mutes Music if it is running and playing, remembering the
// volume it had.
func (d *Ducker) Duck(ctx context.Context) {
	if !d.enabled {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, scriptTimeout)
	defer cancel()

	running, err := d.run(ctx, `tell application "System Events" to (name of processes) contains "Music"`)
	if err != nil || running != "true" {
		return
	}
	state, err := d.run(ctx, `tell application "Music" to player state as string`)
	if err != nil {
		d.log.Debugf("music state: %v", err)
		return
	}
	if state != "playing" {
		return
	}
	raw, err := d.run(ctx, `tell application "Music" to sound volume as integer`)
	if err != nil {
		d.log.Debugf("music volume: %v", err)
		return
	}
	vol, err := strconv.Atoi(raw)
	if err != nil {
		d.log.Debugf("music volume %q: %v", raw, err)
		return
	}
	if _, err := d.run(ctx, `tell application "Music" to set sound volume to 0`); err != nil {
		d.log.Debugf("music mute: %v", err)
		return
	}
	d.saved = vol
	d.ducked = true
}

// Restore puts the volume back if Duck muted it.
func (d *Ducker) Restore(ctx context.Context) {
	if !d.ducked {
		return
	}
	d.ducked = false
	ctx, cancel := context.WithTimeout(ctx, scriptTimeout)
	defer cancel()
	script := fmt.Sprintf(`tell application "Music" to set sound volume to %d`, d.saved)
	if _, err := d.run(ctx, script); err != nil {
		d.log.Debugf("music restore: %v", err)
	}
}
