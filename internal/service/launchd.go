// Package service installs blitz as a macOS launch agent.
package service

import (
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// Agent describes the launchd job for the dictation daemon. The job
// must live in the user's Aqua session: the keyboard hook and the
// paste keystroke only work inside the logged-in GUI session, so the
// plist pins LimitLoadToSessionType accordingly.
type Agent struct {
	Label      string
	Binary     string
	ConfigPath string
	LogPath    string
	Env        map[string]string
}

// launchd needs a foreground process to supervise, so the job runs
// the hidden serve command rather than the self-detaching start.
const plistTemplate = `<?xml version='1.0' encoding='UTF-8'?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
  <key>Label</key><string>{{.Label}}</string>
  <key>ProgramArguments</key>
  <array>
    <string>{{.Binary}}</string>
    <string>serve</string>
    <string>--config</string>
    <string>{{.ConfigPath}}</string>
  </array>
  <key>LimitLoadToSessionType</key><string>Aqua</string>
  <key>RunAtLoad</key><true/>
  <key>KeepAlive</key><dict><key>SuccessfulExit</key><false/></dict>
  <key>ThrottleInterval</key><integer>5</integer>
  <key>StandardOutPath</key><string>{{.LogPath}}</string>
  <key>StandardErrorPath</key><string>{{.LogPath}}</string>
  {{- if .Env }}
  <key>EnvironmentVariables</key>
  <dict>
    {{- range $k, $v := .Env }}
    <key>{{$k}}</key><string>{{$v}}</string>
    {{- end }}
  </dict>
  {{- end }}
</dict>
</plist>
`

// PlistPath returns where the agent's plist lives for this user.
func (a Agent) PlistPath() string {
	return PlistPath(a.Label)
}

// PlistPath returns the per-user LaunchAgents path for a label.
func PlistPath(label string) string {
	return filepath.Join(os.Getenv("HOME"), "Library", "LaunchAgents", label+".plist")
}

// Install renders the plist into ~/Library/LaunchAgents and returns
// its path. Loading the job is left to the operator via launchctl.
func (a Agent) Install() (string, error) {
	var buf strings.Builder
	tpl := template.Must(template.New("agent").Parse(plistTemplate))
	if err := tpl.Execute(&buf, a); err != nil {
		return "", err
	}
	path := a.PlistPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(buf.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Installed reports whether a plist for the label is on disk.
func Installed(label string) (string, bool) {
	path := PlistPath(label)
	_, err := os.Stat(path)
	return path, err == nil
}
