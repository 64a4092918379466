package run

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anvanvan/blitz-dictation/internal/asr"
	"github.com/anvanvan/blitz-dictation/internal/audio"
	"github.com/anvanvan/blitz-dictation/internal/config"
	"github.com/anvanvan/blitz-dictation/internal/control"
	"github.com/anvanvan/blitz-dictation/internal/dictation"
	"github.com/anvanvan/blitz-dictation/internal/hook"
	"github.com/anvanvan/blitz-dictation/internal/inject"
	"github.com/anvanvan/blitz-dictation/internal/keys"
	"github.com/anvanvan/blitz-dictation/internal/notify"
	"github.com/anvanvan/blitz-dictation/internal/volume"
)

const hookQueueSize = 16

// Server owns the dictation controller plus the daemon side channels:
// hook dispatch, metrics, transcripts, and the control socket.
type Server struct {
	cfg       *config.Config
	logger    *logrus.Logger
	ctrl      *dictation.Controller
	hook      *hook.Runner
	startedAt time.Time
	lastDone  atomic.Int64

	lastMu    sync.Mutex
	lastText  string
	lastError string

	transcriptsMu sync.Mutex
	transcripts   []control.Transcript

	metrics metrics
	hookCh  chan hook.Job

	wg sync.WaitGroup
}

// Serve runs the daemon until interrupted or a fatal wiring error occurs.
func Serve(cfg *config.Config, logger *logrus.Logger) error {
	if err := config.MustStatePaths(cfg); err != nil {
		return err
	}
	if err := keys.CheckPermission(); err != nil {
		return fmt.Errorf("cannot watch the hotkey: %w (grant Input Monitoring in System Settings and restart)", err)
	}

	recorder, err := audio.NewRecorder(cfg, logger)
	if err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			logger.Warnf("audio close: %v", err)
		}
	}()
	engine, err := asr.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("asr: %w", err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Warnf("asr close: %v", err)
		}
	}()
	injector, err := inject.New(cfg, logger)
	if err != nil {
		return err
	}

	// Write pid file.
	if err := os.WriteFile(cfg.Paths.PidPath, []byte(fmt.Sprintf("%d", os.Getpid())), 0o644); err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(cfg.Paths.PidPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warnf("remove pid file: %v", err)
		}
	}()
	// Ensure socket removed
	if err := os.Remove(cfg.Paths.SocketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Debugf("remove stale socket: %v", err)
	}

	srv := &Server{
		cfg:         cfg,
		logger:      logger,
		hook:        hook.NewRunner(cfg, logger),
		startedAt:   time.Now(),
		transcripts: make([]control.Transcript, 0, cfg.UI.StatusTail),
		hookCh:      make(chan hook.Job, hookQueueSize),
	}
	srv.metrics.reset()

	srv.ctrl = dictation.New(cfg, logger, dictation.Deps{
		Recorder: recorder,
		Engine:   engine,
		Injector: injector,
		Ducker:   volume.NewDucker(cfg, logger),
		Notifier: notify.New(cfg, logger),
		OnResult: srv.onResult,
	})

	trigger := keys.NewTrigger(srv.ctrl.Press, srv.ctrl.Release)
	tracker := keys.NewTracker(trigger.Feed)
	source, err := keys.NewSource(cfg, tracker, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fatalCh := make(chan error, 1)

	srv.wg.Add(1)
	go func() {
		defer srv.wg.Done()
		_ = srv.ctrl.Run(ctx)
	}()

	go func() {
		if err := source.Run(ctx); err != nil && ctx.Err() == nil {
			select {
			case fatalCh <- fmt.Errorf("hotkey source: %w", err):
			default:
			}
		}
	}()

	// Control socket
	go srv.controlLoop(ctx)

	// Hook dispatcher
	srv.wg.Add(1)
	go func() {
		defer srv.wg.Done()
		srv.dispatchHooks(ctx)
	}()

	// Metrics server
	if cfg.Metrics.Enabled {
		go srv.metricsServe(ctx.Done(), cfg.Metrics.Addr, logger)
	}

	// Watchdog
	go srv.watchdog(ctx.Done())

	logger.WithFields(logrus.Fields{
		"hotkey": cfg.Hotkey.Key,
		"model":  cfg.ASR.ModelPath,
		"inject": cfg.Inject.Method,
	}).Info("blitz ready, hold the hotkey to dictate")

	// Handle signals
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	var fatal error
	select {
	case s := <-sigCh:
		logger.Infof("received signal %s, shutting down", s)
	case fatal = <-fatalCh:
		logger.Errorf("shutting down: %v", fatal)
	case <-ctx.Done():
	}
	cancel()
	srv.wg.Wait()
	return fatal
}

// onResult runs on the controller goroutine after every finished session.
func (s *Server) onResult(r dictation.Result) {
	s.lastDone.Store(time.Now().UnixNano())
	s.metrics.incSessions()

	s.lastMu.Lock()
	s.lastText, s.lastError = r.Text, ""
	if r.Err != nil {
		s.lastError = r.Err.Error()
	}
	s.lastMu.Unlock()

	if r.Err != nil {
		s.metrics.incFailed()
		if errors.Is(r.Err, dictation.ErrTooShort) {
			s.metrics.incTooShort()
		}
		return
	}
	s.metrics.incCompleted()
	if r.Injected {
		s.metrics.incInjected()
	}
	if r.InjectErr != nil {
		s.metrics.incInjectFailed()
	}
	if r.Text == "" {
		return
	}
	s.recordTranscript(r.SessionID, r.Text)
	if !s.hook.Enabled() {
		return
	}
	job := hook.Job{Text: r.Text, SessionID: r.SessionID, Timestamp: time.Now()}
	select {
	case s.hookCh <- job:
	default:
		s.metrics.incHooksDropped()
		s.logger.Warn("hook queue full, dropping job")
	}
}

func (s *Server) recordTranscript(session uint64, text string) {
	if !s.cfg.Transcripts.Enabled {
		return
	}
	entry := control.Transcript{
		Session:   session,
		Text:      text,
		Timestamp: time.Now(),
	}
	s.transcriptsMu.Lock()
	defer s.transcriptsMu.Unlock()
	s.transcripts = append(s.transcripts, entry)
	if len(s.transcripts) > s.cfg.UI.StatusTail {
		s.transcripts = s.transcripts[len(s.transcripts)-s.cfg.UI.StatusTail:]
	}
	// append to file
	f, err := os.OpenFile(s.cfg.Paths.TranscriptPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err == nil {
		if _, err := fmt.Fprintf(f, "%s\t%d\t%s\n", entry.Timestamp.Format(time.RFC3339), entry.Session, entry.Text); err != nil {
			s.logger.Warnf("write transcript: %v", err)
		}
		_ = f.Close()
	}
}

func (s *Server) watchdog(done <-chan struct{}) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			idle := "never"
			if last := s.lastDone.Load(); last > 0 {
				idle = time.Since(time.Unix(0, last)).Round(time.Second).String()
			}
			s.logger.WithFields(logrus.Fields{
				"state":          s.ctrl.Snapshot().String(),
				"sessions":       s.metrics.sessions.Load(),
				"last_dictation": idle,
			}).Debug("heartbeat")
		}
	}
}

func (s *Server) controlLoop(ctx context.Context) {
	ln, err := net.Listen("unix", s.cfg.Paths.SocketPath)
	if err != nil {
		s.logger.Errorf("control listen: %v", err)
		return
	}
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	defer func() {
		if err := os.Remove(s.cfg.Paths.SocketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Debugf("remove socket: %v", err)
		}
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Errorf("control accept: %v", err)
			continue
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer func() {
		if err := conn.Close(); err != nil && ctx.Err() == nil {
			s.logger.Warnf("control connection close: %v", err)
		}
	}()
	sc := bufio.NewScanner(conn)
	if !sc.Scan() {
		return
	}
	var req control.Request
	if err := json.Unmarshal(sc.Bytes(), &req); err != nil {
		return
	}
	switch req.Op {
	case control.OpStatus:
		_ = json.NewEncoder(conn).Encode(s.status())
	case control.OpHealth:
		_ = json.NewEncoder(conn).Encode(control.SimpleResponse{OK: true, Message: "ok"})
	default:
		_ = json.NewEncoder(conn).Encode(control.SimpleResponse{Message: fmt.Sprintf("unknown op %q", req.Op)})
	}
}

func (s *Server) status() control.Status {
	s.lastMu.Lock()
	lastText, lastError := s.lastText, s.lastError
	s.lastMu.Unlock()
	return control.Status{
		Running:     true,
		State:       s.ctrl.Snapshot().String(),
		UptimeSec:   time.Since(s.startedAt).Seconds(),
		Sessions:    s.metrics.sessions.Load(),
		Completed:   s.metrics.completed.Load(),
		Failed:      s.metrics.failed.Load(),
		Injected:    s.metrics.injected.Load(),
		LastText:    lastText,
		LastError:   lastError,
		Transcripts: s.copyTranscripts(),
	}
}

func (s *Server) copyTranscripts() []control.Transcript {
	s.transcriptsMu.Lock()
	defer s.transcriptsMu.Unlock()
	out := make([]control.Transcript, len(s.transcripts))
	copy(out, s.transcripts)
	return out
}
