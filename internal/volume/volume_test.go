package volume

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/anvanvan/blitz-dictation/internal/logging"
)

func fakeDucker(state, vol string) (*Ducker, *[]string) {
	var scripts []string
	d := &Ducker{log: logging.NewTestLogger(), enabled: true}
	d.run = func(_ context.Context, script string) (string, error) {
		scripts = append(scripts, script)
		switch {
		case strings.Contains(script, "System Events"):
			return "true", nil
		case strings.Contains(script, "player state"):
			return state, nil
		case strings.Contains(script, "sound volume as integer"):
			return vol, nil
		default:
			return "", nil
		}
	}
	return d, &scripts
}

func TestDuckMutesAndRestoresVolume(t *testing.T) {
	d, scripts := fakeDucker("playing", "61")
	ctx := context.Background()

	d.Duck(ctx)
	if !d.ducked || d.saved != 61 {
		t.Fatalf("ducked=%v saved=%d", d.ducked, d.saved)
	}
	d.Restore(ctx)
	if d.ducked {
		t.Fatal("expected restore to clear ducked")
	}

	var sawMute, sawRestore bool
	for _, s := range *scripts {
		if strings.Contains(s, "set sound volume to 0") {
			sawMute = true
		}
		if strings.Contains(s, "set sound volume to 61") {
			sawRestore = true
		}
	}
	if !sawMute || !sawRestore {
		t.Fatalf("scripts = %v", *scripts)
	}
}

func TestDuckLeavesStoppedMusicAlone(t *testing.T) {
	d, scripts := fakeDucker("stopped", "61")
	ctx := context.Background()

	d.Duck(ctx)
	if d.ducked {
		t.Fatal("should not mute a stopped player")
	}
	before := len(*scripts)
	d.Restore(ctx)
	if len(*scripts) != before {
		t.Fatalf("restore ran scripts: %v", *scripts)
	}
}

func TestDuckSkipsUnparseableVolume(t *testing.T) {
	d, scripts := fakeDucker("playing", "loud")

	d.Duck(context.Background())
	if d.ducked {
		t.Fatal("ducked despite bad volume reply")
	}
	for _, s := range *scripts {
		if strings.Contains(s, "set sound volume") {
			t.Fatalf("mutated volume anyway: %v", *scripts)
		}
	}
}

func TestDuckSwallowsErrors(t *testing.T) {
	d := &Ducker{log: logging.NewTestLogger(), enabled: true}
	d.run = func(context.Context, string) (string, error) {
		return "", errors.New("osascript missing")
	}
	d.Duck(context.Background())
	if d.ducked {
		t.Fatal("ducked despite errors")
	}
}

func TestDuckDisabled(t *testing.T) {
	called := false
	d := &Ducker{log: logging.NewTestLogger(), enabled: false}
	d.run = func(context.Context, string) (string, error) {
		called = true
		return "", nil
	}
	d.Duck(context.Background())
	if called {
		t.Fatal("disabled ducker ran a script")
	}
}
