package doctor

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestCheckFile(t *testing.T) {
	if r := checkFile("model file", filepath.Join(t.TempDir(), "nope.bin")); r.Pass {
		t.Fatalf("missing file passed: %+v", r)
	}
	path := filepath.Join(t.TempDir(), "model.bin")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := checkFile("model file", path); !r.Pass {
		t.Fatalf("existing file failed: %+v", r)
	}
	if r := checkFile("model file", ""); r.Pass {
		t.Fatalf("empty path passed: %+v", r)
	}
	empty := filepath.Join(t.TempDir(), "zero.bin")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if r := checkFile("model file", empty); r.Pass {
		t.Fatalf("zero-byte file passed: %+v", r)
	}
}

func TestCheckHotkey(t *testing.T) {
	if r := checkHotkey("ctrl"); !r.Pass {
		t.Fatalf("ctrl rejected: %+v", r)
	}
	if r := checkHotkey("hyperdrive"); r.Pass {
		t.Fatalf("unknown key accepted: %+v", r)
	}
}

func TestCheckOsascriptDisabled(t *testing.T) {
	r := checkOsascript(false)
	if !r.Pass {
		t.Fatalf("disabled ducking failed: %+v", r)
	}
}

func TestCheckOsascriptEnabled(t *testing.T) {
	r := checkOsascript(true)
	if runtime.GOOS != "darwin" {
		if !r.Pass {
			t.Fatalf("non-darwin should pass: %+v", r)
		}
		return
	}
	// osascript ships with macOS.
	if !r.Pass {
		t.Fatalf("osascript not found: %+v", r)
	}
}

func TestCheckHookExecutableUnset(t *testing.T) {
	r := checkHookExecutable("")
	if !r.Pass || r.Detail != "not set (hook disabled)" {
		t.Fatalf("empty hook: %+v", r)
	}
}

func TestCheckHookExecutablePath(t *testing.T) {
	dir := t.TempDir()
	if r := checkHookExecutable(dir); r.Pass {
		t.Fatalf("directory passed: %+v", r)
	}

	script := filepath.Join(dir, "hook.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := checkHookExecutable(script); r.Pass {
		t.Fatalf("non-executable passed: %+v", r)
	}

	if err := os.Chmod(script, 0o755); err != nil {
		t.Fatal(err)
	}
	if r := checkHookExecutable(script); !r.Pass {
		t.Fatalf("executable failed: %+v", r)
	}
}
