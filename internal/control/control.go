// Package control implements the CLI side of the daemon's unix
// control socket, plus the operator commands that run in-process.
package control

import "time"

// Ops understood by the daemon's control socket.
const (
	OpStatus = "status"
	OpHealth = "health"
)

// Request is one control-socket call. The protocol is one JSON
// request, one JSON reply, then the connection closes.
type Request struct {
	Op string `json:"op"`
}

// Status is the daemon's reply to OpStatus.
type Status struct {
	Running     bool         `json:"running"`
	State       string       `json:"state"`
	UptimeSec   float64      `json:"uptime_sec"`
	Sessions    int64        `json:"sessions"`
	Completed   int64        `json:"completed"`
	Failed      int64        `json:"failed"`
	Injected    int64        `json:"injected"`
	LastText    string       `json:"last_text,omitempty"`
	LastError   string       `json:"last_error,omitempty"`
	Transcripts []Transcript `json:"transcripts"`
}

type SimpleResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Transcript is one completed dictation in the status ring.
type Transcript struct {
	Session   uint64    `json:"session"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
