// Package session holds the lifecycle of one dictation capture.
package session

import (
	"fmt"
	"sync/atomic"
	"time"
)

// State of a recording session.
type State int

const (
	Recording State = iota
	Transcribing
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Recording:
		return "recording"
	case Transcribing:
		return "transcribing"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var lastID atomic.Uint64

// Session is one push-to-talk capture, key down to final text. Only the
// dictation controller constructs and mutates sessions, from a single
// goroutine; methods are not safe for concurrent use.
type Session struct {
	ID        uint64
	StartedAt time.Time
	samples   []int16
	state     State
	text      string
	err       error
}

// New returns a Session in Recording with a process-unique ID. IDs are
// never reused within a process.
func New() *Session {
	return &Session{
		ID:        lastID.Add(1),
		StartedAt: time.Now(),
		state:     Recording,
	}
}

func (s *Session) State() State { return s.state }

// AppendSamples adds captured PCM. Panics outside Recording: audio
// arriving after capture finished is a wiring bug, not a runtime
// condition to tolerate.
func (s *Session) AppendSamples(chunk []int16) {
	s.must(Recording, "AppendSamples")
	s.samples = append(s.samples, chunk...)
}

// FinishCapture seals the buffer and moves to Transcribing.
func (s *Session) FinishCapture() {
	s.must(Recording, "FinishCapture")
	s.state = Transcribing
}

// Complete records the final text; terminal.
func (s *Session) Complete(text string) {
	s.must(Transcribing, "Complete")
	s.text = text
	s.state = Completed
}

// Fail records the terminal error.
func (s *Session) Fail(err error) {
	s.must(Transcribing, "Fail")
	s.err = err
	s.state = Failed
}

// Samples returns the captured buffer.
func (s *Session) Samples() []int16 { return s.samples }

// Text returns the transcription of a Completed session.
func (s *Session) Text() string { return s.text }

// Err returns the failure of a Failed session.
func (s *Session) Err() error { return s.err }

// Duration is the captured audio length at the given sample rate.
func (s *Session) Duration(sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(len(s.samples)) * time.Second / time.Duration(sampleRate)
}

func (s *Session) must(want State, op string) {
	if s.state != want {
		panic(fmt.Sprintf("session %d: %s in state %s", s.ID, op, s.state))
	}
}
