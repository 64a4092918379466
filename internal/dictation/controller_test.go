package dictation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anvanvan/blitz-dictation/internal/config"
	"github.com/anvanvan/blitz-dictation/internal/logging"
)

type fakeRecorder struct {
	mu       sync.Mutex
	starts   int
	startErr error
	stopErr  error
	feed     [][]int16
	ch       chan []int16
}

func (f *fakeRecorder) Start(ctx context.Context) (<-chan []int16, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.starts++
	ch := make(chan []int16, len(f.feed)+1)
	for _, c := range f.feed {
		ch <- c
	}
	f.ch = ch
	return ch, nil
}

func (f *fakeRecorder) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ch != nil {
		close(f.ch)
		f.ch = nil
	}
	return f.stopErr
}

func (f *fakeRecorder) Close() error { return nil }

func (f *fakeRecorder) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

func (f *fakeRecorder) setStartErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startErr = err
}

// killStream closes the chunk channel as if the device vanished.
func (f *fakeRecorder) killStream() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ch != nil {
		close(f.ch)
		f.ch = nil
	}
}

type engineReply struct {
	text string
	err  error
}

type fakeEngine struct {
	mu      sync.Mutex
	calls   int
	lastLen int
	queue   []engineReply
	entered chan struct{}
	block   chan struct{}
}

func (f *fakeEngine) Transcribe(ctx context.Context, samples []float32) (string, error) {
	f.mu.Lock()
	f.calls++
	f.lastLen = len(samples)
	var r engineReply
	if len(f.queue) > 0 {
		r = f.queue[0]
		f.queue = f.queue[1:]
	}
	entered, block := f.entered, f.block
	f.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return r.text, r.err
}

func (f *fakeEngine) Close() error { return nil }

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeEngine) lastSampleLen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastLen
}

type fakeInjector struct {
	mu       sync.Mutex
	err      error
	injected []string
}

func (f *fakeInjector) Inject(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.injected = append(f.injected, text)
	return nil
}

func (f *fakeInjector) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.injected...)
}

type fakeNotifier struct {
	mu     sync.Mutex
	infos  []string
	faults []string
}

func (f *fakeNotifier) Info(m string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infos = append(f.infos, m)
}

func (f *fakeNotifier) Error(m string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults = append(f.faults, m)
}

func (f *fakeNotifier) sawInfo(m string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.infos {
		if s == m {
			return true
		}
	}
	return false
}

func (f *fakeNotifier) sawError(m string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.faults {
		if s == m {
			return true
		}
	}
	return false
}

type harness struct {
	cfg     *config.Config
	rec     *fakeRecorder
	eng     *fakeEngine
	inj     *fakeInjector
	not     *fakeNotifier
	ctrl    *Controller
	results chan Result
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg.Session.TrimSilence = false
	cfg.Session.KeepAudio = false
	if mutate != nil {
		mutate(cfg)
	}
	h := &harness{
		cfg:     cfg,
		rec:     &fakeRecorder{},
		eng:     &fakeEngine{},
		inj:     &fakeInjector{},
		not:     &fakeNotifier{},
		results: make(chan Result, 16),
	}
	h.ctrl = New(cfg, logging.NewTestLogger(), Deps{
		Recorder: h.rec,
		Engine:   h.eng,
		Injector: h.inj,
		Notifier: h.not,
		OnResult: func(r Result) { h.results <- r },
	})
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = h.ctrl.Run(ctx) }()
	t.Cleanup(cancel)
	return h
}

func (h *harness) waitResult(t *testing.T) Result {
	t.Helper()
	select {
	case r := <-h.results:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a result")
		return Result{}
	}
}

// twoSeconds of 16 kHz audio, split into two chunks.
func twoSeconds() [][]int16 {
	return [][]int16{make([]int16, 16000), make([]int16, 16000)}
}

func TestHelloWorldInjectedExactlyOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.rec.feed = twoSeconds()
	h.eng.queue = []engineReply{{text: "  hello world \n"}}

	h.ctrl.Press()
	h.ctrl.Release()

	res := h.waitResult(t)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Text != "hello world" || !res.Injected {
		t.Fatalf("result = %+v", res)
	}
	if got := h.inj.texts(); len(got) != 1 || got[0] != "hello world" {
		t.Fatalf("injected = %v, want exactly one hello world", got)
	}
	if got := h.eng.lastSampleLen(); got != 32000 {
		t.Fatalf("engine saw %d samples, want 32000", got)
	}
}

func TestDuplicateStartsOneSession(t *testing.T) {
	h := newHarness(t, nil)
	h.rec.feed = twoSeconds()
	h.eng.queue = []engineReply{{text: "once"}}

	h.ctrl.Press()
	h.ctrl.Press()
	h.ctrl.Press()
	h.ctrl.Release()

	res := h.waitResult(t)
	if res.Text != "once" {
		t.Fatalf("text = %q", res.Text)
	}
	if n := h.rec.startCount(); n != 1 {
		t.Fatalf("capture started %d times, want 1", n)
	}
	select {
	case extra := <-h.results:
		t.Fatalf("unexpected extra result: %+v", extra)
	default:
	}
}

func TestStartDuringProcessingDropped(t *testing.T) {
	h := newHarness(t, nil)
	h.rec.feed = twoSeconds()
	h.eng.queue = []engineReply{{text: "one"}, {text: "two"}}
	h.eng.entered = make(chan struct{}, 2)
	h.eng.block = make(chan struct{})

	h.ctrl.Press()
	h.ctrl.Release()
	<-h.eng.entered // transcription in flight

	h.ctrl.Press() // must be dropped, not queued
	close(h.eng.block)

	first := h.waitResult(t)
	if first.Text != "one" {
		t.Fatalf("first = %+v", first)
	}
	if n := h.rec.startCount(); n != 1 {
		t.Fatalf("capture started %d times during processing, want 1", n)
	}

	// The controller must be idle again and accept a fresh press.
	h.eng.block = nil
	h.ctrl.Press()
	h.ctrl.Release()
	second := h.waitResult(t)
	if second.Text != "two" {
		t.Fatalf("second = %+v", second)
	}
	if n := h.rec.startCount(); n != 2 {
		t.Fatalf("capture started %d times total, want 2", n)
	}
}

func TestStopWithoutStartIgnored(t *testing.T) {
	h := newHarness(t, nil)
	h.rec.feed = twoSeconds()
	h.eng.queue = []engineReply{{text: "fine"}}

	h.ctrl.Release()
	h.ctrl.Press()
	h.ctrl.Release()

	res := h.waitResult(t)
	if res.Err != nil || res.Text != "fine" {
		t.Fatalf("result = %+v", res)
	}
	select {
	case extra := <-h.results:
		t.Fatalf("unexpected extra result: %+v", extra)
	default:
	}
}

func TestEngineFailureThenRecovery(t *testing.T) {
	boom := errors.New("model exploded")
	h := newHarness(t, nil)
	h.rec.feed = twoSeconds()
	h.eng.queue = []engineReply{{err: boom}, {text: "back"}}

	h.ctrl.Press()
	h.ctrl.Release()
	first := h.waitResult(t)
	if !errors.Is(first.Err, boom) {
		t.Fatalf("err = %v, want wrapped %v", first.Err, boom)
	}
	if len(h.inj.texts()) != 0 {
		t.Fatalf("injected despite failure: %v", h.inj.texts())
	}
	if !h.not.sawError("Transcription failed") {
		t.Fatal("expected transcription failure notification")
	}

	// No process restart needed: the next dictation succeeds.
	h.ctrl.Press()
	h.ctrl.Release()
	second := h.waitResult(t)
	if second.Err != nil || second.Text != "back" {
		t.Fatalf("second = %+v", second)
	}
	if got := h.inj.texts(); len(got) != 1 || got[0] != "back" {
		t.Fatalf("injected = %v", got)
	}
}

func TestEmptyTranscriptionSkipsInjection(t *testing.T) {
	h := newHarness(t, nil)
	h.rec.feed = twoSeconds()
	h.eng.queue = []engineReply{{text: "   \n"}}

	h.ctrl.Press()
	h.ctrl.Release()

	res := h.waitResult(t)
	if res.Err != nil {
		t.Fatalf("empty text is not an error: %v", res.Err)
	}
	if res.Text != "" || res.Injected {
		t.Fatalf("result = %+v", res)
	}
	if len(h.inj.texts()) != 0 {
		t.Fatalf("injected empty text: %v", h.inj.texts())
	}
	if !h.not.sawInfo("No speech detected") {
		t.Fatal("expected no-speech notification")
	}
}

func TestTooShortCaptureSkipsEngine(t *testing.T) {
	h := newHarness(t, nil)
	h.rec.feed = [][]int16{make([]int16, 8000)} // half a second

	h.ctrl.Press()
	h.ctrl.Release()

	res := h.waitResult(t)
	if !errors.Is(res.Err, ErrTooShort) {
		t.Fatalf("err = %v, want ErrTooShort", res.Err)
	}
	if n := h.eng.callCount(); n != 0 {
		t.Fatalf("engine called %d times for short audio", n)
	}
	if !h.not.sawInfo("Too short audio") {
		t.Fatal("expected too-short notification")
	}
}

func TestCaptureStopFailure(t *testing.T) {
	gone := errors.New("device gone")
	h := newHarness(t, nil)
	h.rec.feed = twoSeconds()
	h.rec.stopErr = gone

	h.ctrl.Press()
	h.ctrl.Release()

	res := h.waitResult(t)
	if !errors.Is(res.Err, gone) {
		t.Fatalf("err = %v, want wrapped %v", res.Err, gone)
	}
	if n := h.eng.callCount(); n != 0 {
		t.Fatalf("engine called %d times after capture failure", n)
	}
}

func TestCaptureStartFailureRecovers(t *testing.T) {
	h := newHarness(t, nil)
	h.rec.setStartErr(errors.New("mic busy"))

	h.ctrl.Press()
	res := h.waitResult(t)
	if res.Err == nil {
		t.Fatal("expected capture start error")
	}
	if !h.not.sawError("Microphone unavailable") {
		t.Fatal("expected microphone notification")
	}

	h.rec.setStartErr(nil)
	h.rec.feed = twoSeconds()
	h.eng.queue = []engineReply{{text: "ok now"}}
	h.ctrl.Press()
	h.ctrl.Release()
	if res := h.waitResult(t); res.Err != nil || res.Text != "ok now" {
		t.Fatalf("recovery result = %+v", res)
	}
}

func TestInjectionFailureKeepsSessionCompleted(t *testing.T) {
	h := newHarness(t, nil)
	h.rec.feed = twoSeconds()
	h.eng.queue = []engineReply{{text: "kept"}}
	h.inj.err = errors.New("no accessibility permission")

	h.ctrl.Press()
	h.ctrl.Release()

	res := h.waitResult(t)
	if res.Err != nil {
		t.Fatalf("session must stay completed: %v", res.Err)
	}
	if res.Injected || res.InjectErr == nil {
		t.Fatalf("result = %+v", res)
	}
	if !h.not.sawError("Paste failed; text is on the clipboard") {
		t.Fatal("expected clipboard fallback notification")
	}
}

func TestMidCaptureStreamDeath(t *testing.T) {
	h := newHarness(t, nil)
	h.rec.feed = twoSeconds()
	h.rec.stopErr = errors.New("device unplugged")

	h.ctrl.Press()
	deadline := time.Now().Add(2 * time.Second)
	for h.rec.startCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("capture never started")
		}
		time.Sleep(time.Millisecond)
	}
	h.rec.killStream()

	res := h.waitResult(t)
	if res.Err == nil {
		t.Fatal("expected capture error")
	}
	if n := h.eng.callCount(); n != 0 {
		t.Fatalf("engine called %d times", n)
	}

	// The eventual key release lands in idle and is ignored.
	h.ctrl.Release()
	select {
	case extra := <-h.results:
		t.Fatalf("unexpected extra result: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSessionIDsIncrease(t *testing.T) {
	h := newHarness(t, nil)
	h.rec.feed = twoSeconds()
	h.eng.queue = []engineReply{{text: "a"}, {text: "b"}}

	h.ctrl.Press()
	h.ctrl.Release()
	first := h.waitResult(t)

	h.ctrl.Press()
	h.ctrl.Release()
	second := h.waitResult(t)

	if second.SessionID <= first.SessionID {
		t.Fatalf("ids %d then %d, want strictly increasing", first.SessionID, second.SessionID)
	}
}
