// Package audio captures microphone PCM and converts between the forms
// the rest of the pipeline wants.
package audio

import "context"

// Recorder captures mono 16-bit PCM from the microphone. One capture
// runs at a time: Start delivers chunks on the returned channel until
// Stop, which reports any error the stream hit. The channel closes
// after the final chunk.
type Recorder interface {
	Start(ctx context.Context) (<-chan []int16, error)
	Stop() error
	Close() error
}

// ToFloat32 converts 16-bit PCM to the [-1, 1) float form whisper wants.
func ToFloat32(pcm []int16) []float32 {
	out := make([]float32, len(pcm))
	for i, s := range pcm {
		out[i] = float32(s) / 32768.0
	}
	return out
}

// ResampleLinear converts between sample rates with linear
// interpolation. Good enough for speech input; not for music.
func ResampleLinear(in []float32, srcSR, dstSR int) []float32 {
	if srcSR == dstSR || len(in) == 0 {
		out := make([]float32, len(in))
		copy(out, in)
		return out
	}
	ratio := float64(dstSR) / float64(srcSR)
	outLen := int(float64(len(in))*ratio + 0.9999)
	out := make([]float32, outLen)
	for i := 0; i < outLen; i++ {
		pos := float64(i) / ratio
		idx := int(pos)
		if idx >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = in[idx]*(1-frac) + in[idx+1]*frac
	}
	return out
}
