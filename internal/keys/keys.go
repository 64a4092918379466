// Package keys tracks the state of a single global hotkey and turns it
// into strictly alternating press and release triggers.
package keys

import (
	"fmt"
	"sort"
	"strings"
)

// Edge is a debounced key transition.
type Edge int

const (
	EdgeDown Edge = iota
	EdgeUp
)

func (e Edge) String() string {
	if e == EdgeDown {
		return "down"
	}
	return "up"
}

// Tracker folds repeated key state reports into edges. Sources may
// report the same level many times (OS key repeat, polling); only a
// level change reaches the callback.
type Tracker struct {
	down   bool
	onEdge func(Edge)
}

func NewTracker(onEdge func(Edge)) *Tracker {
	return &Tracker{onEdge: onEdge}
}

// Observe reports the current key level. Must be called from a single
// goroutine.
func (t *Tracker) Observe(pressed bool) {
	if pressed == t.down {
		return
	}
	t.down = pressed
	if pressed {
		t.onEdge(EdgeDown)
	} else {
		t.onEdge(EdgeUp)
	}
}

// Trigger turns edges into start/stop signals that strictly alternate,
// beginning with start. Redundant edges are dropped, so a stream with
// missed or duplicated transitions still yields a legal sequence.
type Trigger struct {
	held    bool
	onStart func()
	onStop  func()
}

func NewTrigger(onStart, onStop func()) *Trigger {
	return &Trigger{onStart: onStart, onStop: onStop}
}

// Feed consumes one edge. Must be called from a single goroutine.
func (g *Trigger) Feed(e Edge) {
	switch e {
	case EdgeDown:
		if g.held {
			return
		}
		g.held = true
		g.onStart()
	case EdgeUp:
		if !g.held {
			return
		}
		g.held = false
		g.onStop()
	}
}

// Held reports whether the hotkey is currently considered held.
func (g *Trigger) Held() bool { return g.held }

// Lookup resolves a configured key name to its platform rawcode.
func Lookup(name string) (uint16, error) {
	code, ok := rawcodes[normalize(name)]
	if !ok {
		return 0, fmt.Errorf("unknown hotkey %q (supported: %s)", name, supportedKeys())
	}
	return code, nil
}

func normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "control":
		return "ctrl"
	case "option":
		return "alt"
	case "command", "super", "win":
		return "cmd"
	case "function":
		return "fn"
	}
	return n
}

func supportedKeys() string {
	names := make([]string, 0, len(rawcodes))
	for k := range rawcodes {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
