package service

import (
	"os"
	"strings"
	"testing"
)

func TestAgentInstall(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	agent := Agent{
		Label:      "com.anvanvan.blitz",
		Binary:     "/usr/local/bin/blitz",
		ConfigPath: os.Getenv("HOME") + "/.config/blitz/config.toml",
		LogPath:    "/tmp/blitz-launchd.log",
		Env:        map[string]string{"BLITZ_METRICS_ADDR": "127.0.0.1:9343"},
	}
	path, err := agent.Install()
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if path != PlistPath("com.anvanvan.blitz") {
		t.Fatalf("path = %q, want %q", path, PlistPath("com.anvanvan.blitz"))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	plist := string(raw)
	for _, want := range []string{
		"<string>/usr/local/bin/blitz</string>",
		"<string>serve</string>",
		"<string>--config</string>",
		"<key>BLITZ_METRICS_ADDR</key><string>127.0.0.1:9343</string>",
		"<key>RunAtLoad</key><true/>",
		"<key>LimitLoadToSessionType</key><string>Aqua</string>",
	} {
		if !strings.Contains(plist, want) {
			t.Fatalf("plist missing %q:\n%s", want, plist)
		}
	}
	// launchd supervises the process itself; the plist must run the
	// foreground serve command, not the detaching start command.
	if strings.Contains(plist, "<string>start</string>") {
		t.Fatalf("plist invokes start:\n%s", plist)
	}

	if got, ok := Installed("com.anvanvan.blitz"); !ok || got != path {
		t.Fatalf("Installed = %q, %v", got, ok)
	}
}

func TestAgentInstallWithoutEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	agent := Agent{
		Label:      "com.anvanvan.blitz",
		Binary:     "/usr/local/bin/blitz",
		ConfigPath: os.Getenv("HOME") + "/.config/blitz/config.toml",
		LogPath:    "/tmp/blitz-launchd.log",
	}
	path, err := agent.Install()
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "EnvironmentVariables") {
		t.Fatalf("empty env rendered a dict:\n%s", raw)
	}

	if _, ok := Installed("com.example.absent"); ok {
		t.Fatal("absent label reported installed")
	}
}
