package doctor

import (
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/anvanvan/blitz-dictation/internal/config"
	"github.com/anvanvan/blitz-dictation/internal/keys"
)

// Result represents a diagnostic check.
type Result struct {
	Name   string
	Pass   bool
	Detail string
}

// Run executes doctor checks.
func Run(cfg *config.Config) []Result {
	results := []Result{
		checkFile("config path", cfg.Paths.ConfigPath),
		checkFile("model file", cfg.ASR.ModelPath),
		checkHotkey(cfg.Hotkey.Key),
		checkInputMonitoring(),
		checkHookExecutable(cfg.Hook.Command),
		checkOsascript(cfg.Volume.DuckMusic),
		checkPortAudioPkgConfig(),
	}
	results = append(results, checkPortAudio())
	return results
}

func checkFile(label, path string) Result {
	if path == "" {
		return Result{Name: label, Pass: false, Detail: "not set"}
	}
	info, err := os.Stat(os.ExpandEnv(path))
	if err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	if info.Size() == 0 {
		return Result{Name: label, Pass: false, Detail: "file is empty, likely an aborted download"}
	}
	return Result{Name: label, Pass: true, Detail: path}
}

func checkHotkey(name string) Result {
	label := "hotkey"
	if _, err := keys.Lookup(name); err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: name}
}

func checkInputMonitoring() Result {
	label := "input access"
	if err := keys.CheckPermission(); err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error() + " (System Settings > Privacy & Security > Input Monitoring)"}
	}
	return Result{Name: label, Pass: true, Detail: "granted"}
}

// checkHookExecutable leans on exec.LookPath for both spellings: a
// bare name searches PATH, anything with a separator is stat'd and
// mode-checked directly.
func checkHookExecutable(cmdName string) Result {
	label := "hook.command"
	if cmdName == "" {
		return Result{Name: label, Pass: true, Detail: "not set (hook disabled)"}
	}
	resolved, err := exec.LookPath(os.ExpandEnv(cmdName))
	if err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: resolved}
}

func checkOsascript(duckMusic bool) Result {
	label := "osascript"
	if !duckMusic {
		return Result{Name: label, Pass: true, Detail: "not needed (volume.duck_music off)"}
	}
	if runtime.GOOS != "darwin" {
		return Result{Name: label, Pass: true, Detail: "not applicable on this platform"}
	}
	path, err := exec.LookPath("osascript")
	if err != nil {
		return Result{Name: label, Pass: false, Detail: "not found; music ducking will be skipped"}
	}
	return Result{Name: label, Pass: true, Detail: path}
}

func checkPortAudioPkgConfig() Result {
	pkgConfig, err := exec.LookPath("pkg-config")
	if err != nil {
		return Result{Name: "pkg-config", Pass: false, Detail: "not found (brew install pkg-config)"}
	}
	out, err := exec.Command(pkgConfig, "--modversion", "portaudio-2.0").Output()
	if err != nil {
		return Result{Name: "portaudio", Pass: false, Detail: "portaudio-2.0 not found (brew install portaudio)"}
	}
	return Result{Name: "portaudio", Pass: true, Detail: strings.TrimSpace(string(out))}
}
