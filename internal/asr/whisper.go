//go:build whisper

package asr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/anvanvan/blitz-dictation/internal/config"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/sirupsen/logrus"
)

// whisperEngine wraps a resident whisper.cpp model. One transcription
// runs at a time; the mutex keeps contexts from overlapping.
type whisperEngine struct {
	cfg *config.Config
	log *logrus.Logger

	mu    sync.Mutex
	model whisper.Model
}

func newWhisperEngine(cfg *config.Config, log *logrus.Logger) (Engine, error) {
	model, err := whisper.New(cfg.ASR.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", cfg.ASR.ModelPath, err)
	}
	log.WithField("model", cfg.ASR.ModelPath).Info("whisper model loaded")
	return &whisperEngine{cfg: cfg, log: log, model: model}, nil
}

func (e *whisperEngine) Transcribe(ctx context.Context, samples []float32) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}

	wctx, err := e.model.NewContext()
	if err != nil {
		return "", err
	}
	threads := e.cfg.ASR.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	wctx.SetThreads(uint(threads))
	if lang := strings.TrimSpace(e.cfg.ASR.Language); lang != "" {
		if err := wctx.SetLanguage(lang); err != nil {
			e.log.Warnf("set language %q: %v", lang, err)
		}
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper process: %w", err)
	}

	var parts []string
	for {
		seg, err := wctx.NextSegment()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
		if t := strings.TrimSpace(seg.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " "), nil
}

func (e *whisperEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model.Close()
}
