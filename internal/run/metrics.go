package run

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

type metrics struct {
	sessions     atomic.Int64
	completed    atomic.Int64
	failed       atomic.Int64
	tooShort     atomic.Int64
	injected     atomic.Int64
	injectFailed atomic.Int64
	hooksSent    atomic.Int64
	hooksDropped atomic.Int64
}

func (m *metrics) reset() {
	m.sessions.Store(0)
	m.completed.Store(0)
	m.failed.Store(0)
	m.tooShort.Store(0)
	m.injected.Store(0)
	m.injectFailed.Store(0)
	m.hooksSent.Store(0)
	m.hooksDropped.Store(0)
}

func (m *metrics) incSessions()     { m.sessions.Add(1) }
func (m *metrics) incCompleted()    { m.completed.Add(1) }
func (m *metrics) incFailed()       { m.failed.Add(1) }
func (m *metrics) incTooShort()     { m.tooShort.Add(1) }
func (m *metrics) incInjected()     { m.injected.Add(1) }
func (m *metrics) incInjectFailed() { m.injectFailed.Add(1) }
func (m *metrics) incHooksSent()    { m.hooksSent.Add(1) }
func (m *metrics) incHooksDropped() { m.hooksDropped.Add(1) }

func (s *Server) metricsServe(ctxDone <-chan struct{}, addr string, logger interface {
	Infof(string, ...any)
	Warnf(string, ...any)
}) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "blitz_sessions_total %d\n", s.metrics.sessions.Load())
		fmt.Fprintf(w, "blitz_sessions_completed_total %d\n", s.metrics.completed.Load())
		fmt.Fprintf(w, "blitz_sessions_failed_total %d\n", s.metrics.failed.Load())
		fmt.Fprintf(w, "blitz_sessions_too_short_total %d\n", s.metrics.tooShort.Load())
		fmt.Fprintf(w, "blitz_injected_total %d\n", s.metrics.injected.Load())
		fmt.Fprintf(w, "blitz_inject_failed_total %d\n", s.metrics.injectFailed.Load())
		fmt.Fprintf(w, "blitz_hooks_sent_total %d\n", s.metrics.hooksSent.Load())
		fmt.Fprintf(w, "blitz_hooks_dropped_total %d\n", s.metrics.hooksDropped.Load())
	})
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		<-ctxDone
		_ = server.Close()
	}()
	logger.Infof("metrics listening on http://%s/metrics", addr)
	if err := server.ListenAndServe(); err != nil && err.Error() != "http: Server closed" {
		logger.Warnf("metrics server: %v", err)
	}
}
