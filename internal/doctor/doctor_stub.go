//go:build !whisper

package doctor

func checkPortAudio() Result {
	return Result{Name: "portaudio init", Pass: false, Detail: "built without whisper support; rebuild with -tags whisper"}
}
