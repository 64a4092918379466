//go:build whisper

package audio

import (
	"encoding/binary"
	"fmt"

	vad "github.com/maxhawkins/go-webrtcvad"
)

// TrimSilence drops leading and trailing non-speech using webrtc VAD on
// 20 ms frames, keeping one frame of padding on each side. Returns nil
// when no frame is voiced.
func TrimSilence(samples []int16, sampleRate, aggressiveness int) ([]int16, error) {
	switch sampleRate {
	case 8000, 16000, 32000, 48000:
	default:
		return nil, fmt.Errorf("vad needs 8k/16k/32k/48k rate (got %d)", sampleRate)
	}
	v, err := vad.New()
	if err != nil {
		return nil, fmt.Errorf("vad init: %w", err)
	}
	if err := v.SetMode(aggressiveness); err != nil {
		return nil, fmt.Errorf("vad mode: %w", err)
	}

	frame := sampleRate * 20 / 1000
	n := len(samples) / frame
	if n == 0 {
		return samples, nil
	}

	frameBytes := make([]byte, frame*2)
	first, last := -1, -1
	for i := 0; i < n; i++ {
		seg := samples[i*frame : (i+1)*frame]
		for j, s := range seg {
			binary.LittleEndian.PutUint16(frameBytes[j*2:], uint16(s))
		}
		voiced, err := v.Process(sampleRate, frameBytes)
		if err != nil {
			return nil, fmt.Errorf("vad process: %w", err)
		}
		if voiced {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return nil, nil
	}
	if first > 0 {
		first--
	}
	end := (last + 1) * frame
	if last < n-1 {
		end += frame
	} else {
		end = len(samples)
	}
	return samples[first*frame : end], nil
}
