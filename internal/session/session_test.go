package session

import (
	"errors"
	"testing"
	"time"
)

func TestLifecycle(t *testing.T) {
	s := New()
	if s.State() != Recording {
		t.Fatalf("state = %s, want recording", s.State())
	}

	s.AppendSamples([]int16{1, 2, 3})
	s.AppendSamples([]int16{4})
	s.FinishCapture()
	if s.State() != Transcribing {
		t.Fatalf("state = %s, want transcribing", s.State())
	}
	if got := len(s.Samples()); got != 4 {
		t.Fatalf("samples = %d, want 4", got)
	}

	s.Complete("hello world")
	if s.State() != Completed || s.Text() != "hello world" {
		t.Fatalf("state=%s text=%q", s.State(), s.Text())
	}
}

func TestFail(t *testing.T) {
	s := New()
	s.FinishCapture()
	cause := errors.New("model exploded")
	s.Fail(cause)
	if s.State() != Failed {
		t.Fatalf("state = %s, want failed", s.State())
	}
	if !errors.Is(s.Err(), cause) {
		t.Fatalf("err = %v, want %v", s.Err(), cause)
	}
}

func TestIDsStrictlyIncrease(t *testing.T) {
	prev := New().ID
	for i := 0; i < 50; i++ {
		id := New().ID
		if id <= prev {
			t.Fatalf("id %d not greater than %d", id, prev)
		}
		prev = id
	}
}

func TestAppendAfterFinishPanics(t *testing.T) {
	s := New()
	s.AppendSamples([]int16{1})
	s.FinishCapture()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	s.AppendSamples([]int16{2})
}

func TestCompleteTwicePanics(t *testing.T) {
	s := New()
	s.FinishCapture()
	s.Complete("once")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	s.Complete("twice")
}

func TestCompleteWhileRecordingPanics(t *testing.T) {
	s := New()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	s.Complete("early")
}

func TestDuration(t *testing.T) {
	s := New()
	s.AppendSamples(make([]int16, 16000))
	if got := s.Duration(16000); got != time.Second {
		t.Fatalf("duration = %v, want 1s", got)
	}
	if got := s.Duration(0); got != 0 {
		t.Fatalf("duration with zero rate = %v, want 0", got)
	}
}
