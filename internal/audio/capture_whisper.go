//go:build whisper

package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/anvanvan/blitz-dictation/internal/config"

	"github.com/gordonklaus/portaudio"
	"github.com/sirupsen/logrus"
)

// portaudioRecorder opens an input stream per capture. The stream loop
// runs in its own goroutine; Stop waits for it to unwind so the chunk
// channel is closed before Stop returns.
type portaudioRecorder struct {
	cfg *config.Config
	log *logrus.Logger

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	readErr error
}

// NewRecorder initializes portaudio for the process lifetime.
func NewRecorder(cfg *config.Config, log *logrus.Logger) (Recorder, error) {
	if cfg.Audio.Channels != 1 {
		return nil, fmt.Errorf("only mono input supported; set audio.channels = 1")
	}
	switch cfg.Audio.SampleRate {
	case 8000, 16000, 32000, 48000:
	default:
		return nil, fmt.Errorf("sample_rate must be 8k/16k/32k/48k (got %d)", cfg.Audio.SampleRate)
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	return &portaudioRecorder{cfg: cfg, log: log}, nil
}

func (r *portaudioRecorder) Start(ctx context.Context) (<-chan []int16, error) {
	dev, err := SelectDevice(r.cfg.Audio.DeviceName)
	if err != nil {
		return nil, err
	}

	frames := r.cfg.Audio.FramesPerBuffer
	if frames <= 0 {
		frames = 1024
	}
	buf := make([]int16, frames)
	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: r.cfg.Audio.Channels,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      float64(r.cfg.Audio.SampleRate),
		FramesPerBuffer: frames,
	}, &buf)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("start stream: %w", err)
	}

	r.mu.Lock()
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	r.readErr = nil
	stopC, doneC := r.stop, r.done
	r.mu.Unlock()

	chunks := make(chan []int16, 16)
	r.log.WithFields(logrus.Fields{"device": dev.Name, "rate": r.cfg.Audio.SampleRate}).Info("capture started")

	go func() {
		defer close(doneC)
		defer close(chunks)
		defer func() {
			_ = stream.Stop()
			_ = stream.Close()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stopC:
				return
			default:
			}
			if err := stream.Read(); err != nil {
				if errors.Is(err, portaudio.InputOverflowed) {
					r.log.Warn("input overflow")
					continue
				}
				r.mu.Lock()
				r.readErr = fmt.Errorf("stream read: %w", err)
				r.mu.Unlock()
				return
			}
			cpy := make([]int16, len(buf))
			copy(cpy, buf)
			select {
			case chunks <- cpy:
			default:
				r.log.Warn("capture queue full, dropping chunk")
			}
		}
	}()
	return chunks, nil
}

func (r *portaudioRecorder) Stop() error {
	r.mu.Lock()
	stopC, doneC := r.stop, r.done
	r.mu.Unlock()
	if stopC == nil {
		return nil
	}
	select {
	case <-stopC:
	default:
		close(stopC)
	}
	<-doneC
	r.mu.Lock()
	err := r.readErr
	r.stop, r.done, r.readErr = nil, nil, nil
	r.mu.Unlock()
	return err
}

func (r *portaudioRecorder) Close() error {
	return portaudio.Terminate()
}

// SelectDevice picks the input device whose name contains preferred,
// or the system default.
func SelectDevice(preferred string) (*portaudio.DeviceInfo, error) {
	devs, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	if preferred != "" {
		for _, d := range devs {
			if d.MaxInputChannels > 0 && strings.Contains(strings.ToLower(d.Name), strings.ToLower(preferred)) {
				return d, nil
			}
		}
	}
	if def, err := portaudio.DefaultInputDevice(); err == nil && def != nil {
		return def, nil
	}
	for _, d := range devs {
		if d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no input devices found")
}
