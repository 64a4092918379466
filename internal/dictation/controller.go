// Package dictation orchestrates one push-to-talk cycle at a time:
// capture while the hotkey is held, transcribe on release, inject the
// text into the focused app.
package dictation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/anvanvan/blitz-dictation/internal/asr"
	"github.com/anvanvan/blitz-dictation/internal/audio"
	"github.com/anvanvan/blitz-dictation/internal/config"
	"github.com/anvanvan/blitz-dictation/internal/inject"
	"github.com/anvanvan/blitz-dictation/internal/session"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrTooShort = errors.New("audio too short")
	ErrNoSpeech = errors.New("no speech detected")
)

// State of the controller.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateProcessing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateProcessing:
		return "processing"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MusicDucker quiets background audio during capture.
type MusicDucker interface {
	Duck(ctx context.Context)
	Restore(ctx context.Context)
}

// StatusNotifier surfaces outcomes to the user.
type StatusNotifier interface {
	Info(message string)
	Error(message string)
}

// Result is the outcome of one session, delivered once it reaches a
// terminal state.
type Result struct {
	SessionID uint64
	StartedAt time.Time
	Duration  time.Duration
	Text      string
	Err       error // terminal session error, nil when completed
	Injected  bool
	InjectErr error // set when completed but injection failed
}

// Deps are the controller's collaborators. Serve builds the real set;
// tests substitute fakes.
type Deps struct {
	Recorder audio.Recorder
	Engine   asr.Engine
	Injector inject.Injector
	Ducker   MusicDucker
	Notifier StatusNotifier
	OnResult func(Result)
}

type signalKind int

const (
	sigStart signalKind = iota
	sigStop
	sigResult
)

type signal struct {
	kind signalKind
	id   uint64
	text string
	err  error
}

// Controller is a single-goroutine state machine. Press, Release, and
// worker results all funnel through one channel, so every decision is
// serialized; nothing here needs a mutex except the state mirror that
// the status endpoint reads.
type Controller struct {
	cfg *config.Config
	log *logrus.Logger
	d   Deps

	signals chan signal
	mirror  atomic.Int32

	// owned by the Run goroutine
	state  State
	sess   *session.Session
	chunks <-chan []int16
}

func New(cfg *config.Config, log *logrus.Logger, d Deps) *Controller {
	if d.Ducker == nil {
		d.Ducker = nopDucker{}
	}
	if d.Notifier == nil {
		d.Notifier = nopNotifier{}
	}
	return &Controller{
		cfg:     cfg,
		log:     log,
		d:       d,
		signals: make(chan signal, 16),
	}
}

// Press reports the hotkey going down. Called from the key source
// goroutine; never blocks.
func (c *Controller) Press() { c.send(signal{kind: sigStart}) }

// Release reports the hotkey coming up.
func (c *Controller) Release() { c.send(signal{kind: sigStop}) }

func (c *Controller) send(s signal) {
	select {
	case c.signals <- s:
	default:
		c.log.Warn("controller queue full, dropping signal")
	}
}

// Snapshot returns the state as of the last transition.
func (c *Controller) Snapshot() State { return State(c.mirror.Load()) }

// Run drives the controller until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	c.log.Info("dictation controller ready")
	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return ctx.Err()
		case sig := <-c.signals:
			switch sig.kind {
			case sigStart:
				c.handleStart(ctx)
			case sigStop:
				c.handleStop(ctx)
			case sigResult:
				c.handleResult(sig)
			}
		case chunk, ok := <-c.chunks:
			c.handleChunk(ctx, chunk, ok)
		}
	}
}

func (c *Controller) setState(s State) {
	c.state = s
	c.mirror.Store(int32(s))
}

func (c *Controller) handleStart(ctx context.Context) {
	if c.state != StateIdle {
		// A second start can only mean a missed release or a press
		// mid-transcription; both are dropped, never queued.
		c.log.WithField("state", c.state.String()).Debug("start ignored")
		return
	}
	c.sess = session.New()
	chunks, err := c.d.Recorder.Start(ctx)
	if err != nil {
		c.d.Notifier.Error("Microphone unavailable")
		c.failCapture(fmt.Errorf("capture start: %w", err))
		return
	}
	c.chunks = chunks
	c.setState(StateRecording)
	c.d.Ducker.Duck(ctx)
	c.log.WithField("session", c.sess.ID).Info("recording")
}

func (c *Controller) handleChunk(ctx context.Context, chunk []int16, ok bool) {
	if !ok {
		// The stream ended on its own: capture died while the key is
		// still held.
		c.chunks = nil
		if c.state != StateRecording {
			return
		}
		err := c.d.Recorder.Stop()
		if err == nil {
			err = errors.New("capture stream ended unexpectedly")
		}
		c.d.Ducker.Restore(ctx)
		c.d.Notifier.Error("Recording failed")
		c.failCapture(fmt.Errorf("capture: %w", err))
		return
	}
	if c.state == StateRecording {
		c.sess.AppendSamples(chunk)
	}
}

func (c *Controller) handleStop(ctx context.Context) {
	if c.state != StateRecording {
		c.log.WithField("state", c.state.String()).Debug("stop ignored")
		return
	}
	captureErr := c.d.Recorder.Stop()
	c.drainChunks()
	c.chunks = nil
	c.d.Ducker.Restore(ctx)

	s := c.sess
	s.FinishCapture()

	if captureErr != nil {
		c.d.Notifier.Error("Recording failed")
		s.Fail(fmt.Errorf("capture: %w", captureErr))
		c.finish(s, false, nil)
		return
	}

	minDur := time.Duration(c.cfg.Session.MinDurationMS) * time.Millisecond
	if minDur > 0 && s.Duration(c.cfg.Audio.SampleRate) <= minDur {
		c.log.WithField("session", s.ID).Info("too short audio, skipping")
		c.d.Notifier.Info("Too short audio")
		s.Fail(ErrTooShort)
		c.finish(s, false, nil)
		return
	}

	samples := s.Samples()
	if c.cfg.Session.TrimSilence {
		trimmed, err := audio.TrimSilence(samples, c.cfg.Audio.SampleRate, c.cfg.Session.VADAggressiveness)
		switch {
		case err != nil:
			c.log.Warnf("trim silence: %v", err)
		case len(trimmed) == 0:
			c.d.Notifier.Info("No speech detected")
			s.Fail(ErrNoSpeech)
			c.finish(s, false, nil)
			return
		default:
			samples = trimmed
		}
	}

	if c.cfg.Session.KeepAudio {
		c.dumpAudio(s.ID, samples)
	}

	c.setState(StateProcessing)
	c.log.WithField("session", s.ID).Info("transcribing")
	go c.transcribe(ctx, s.ID, samples)
}

func (c *Controller) transcribe(ctx context.Context, id uint64, samples []int16) {
	text, err := c.d.Engine.Transcribe(ctx, audio.ToFloat32(samples))
	select {
	case c.signals <- signal{kind: sigResult, id: id, text: text, err: err}:
	case <-ctx.Done():
	}
}

func (c *Controller) handleResult(sig signal) {
	if c.state != StateProcessing || c.sess == nil || c.sess.ID != sig.id {
		c.log.WithField("session", sig.id).Debug("stale result dropped")
		return
	}
	s := c.sess
	if sig.err != nil {
		c.d.Notifier.Error("Transcription failed")
		s.Fail(fmt.Errorf("transcribe: %w", sig.err))
		c.finish(s, false, nil)
		return
	}

	text := strings.TrimSpace(sig.text)
	s.Complete(text)
	if text == "" {
		c.d.Notifier.Info("No speech detected")
		c.finish(s, false, nil)
		return
	}

	var injectErr error
	if err := c.d.Injector.Inject(text); err != nil {
		// Session stays completed: the text survives on the clipboard
		// even though the keystroke failed.
		injectErr = err
		c.log.Errorf("inject: %v", err)
		c.d.Notifier.Error("Paste failed; text is on the clipboard")
	} else {
		c.log.WithFields(logrus.Fields{"session": s.ID, "chars": len(text)}).Info("dictated")
	}
	c.finish(s, injectErr == nil, injectErr)
}

// drainChunks appends whatever the capture loop delivered before the
// channel closed. Recorder.Stop waits for the loop, so this cannot
// block.
func (c *Controller) drainChunks() {
	if c.chunks == nil {
		return
	}
	for chunk := range c.chunks {
		c.sess.AppendSamples(chunk)
	}
}

// failCapture finalizes a session that never reached transcription.
func (c *Controller) failCapture(err error) {
	s := c.sess
	s.FinishCapture()
	s.Fail(err)
	c.finish(s, false, nil)
}

func (c *Controller) finish(s *session.Session, injected bool, injectErr error) {
	if s.State() == session.Failed {
		c.log.WithField("session", s.ID).Errorf("dictation failed: %v", s.Err())
	}
	res := Result{
		SessionID: s.ID,
		StartedAt: s.StartedAt,
		Duration:  s.Duration(c.cfg.Audio.SampleRate),
		Text:      s.Text(),
		Err:       s.Err(),
		Injected:  injected,
		InjectErr: injectErr,
	}
	c.sess = nil
	c.chunks = nil
	c.setState(StateIdle)
	if c.d.OnResult != nil {
		c.d.OnResult(res)
	}
}

func (c *Controller) dumpAudio(id uint64, samples []int16) {
	name := fmt.Sprintf("capture-%d-%s.wav", id, uuid.NewString()[:8])
	path := filepath.Join(c.cfg.Paths.StateDir, "captures", name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		c.log.Warnf("capture dump: %v", err)
		return
	}
	if err := audio.WriteWAV(path, samples, c.cfg.Audio.SampleRate); err != nil {
		c.log.Warnf("capture dump: %v", err)
		return
	}
	c.log.WithField("path", path).Debug("capture saved")
}

func (c *Controller) shutdown() {
	if c.state == StateRecording {
		_ = c.d.Recorder.Stop()
		c.d.Ducker.Restore(context.Background())
	}
	c.log.Info("dictation controller stopped")
}

type nopDucker struct{}

func (nopDucker) Duck(context.Context)    {}
func (nopDucker) Restore(context.Context) {}

type nopNotifier struct{}

func (nopNotifier) Info(string)  {}
func (nopNotifier) Error(string) {}
