//go:build !whisper

package audio

// TrimSilence passes audio through without the whisper build tag.
func TrimSilence(samples []int16, sampleRate, aggressiveness int) ([]int16, error) {
	return samples, nil
}
