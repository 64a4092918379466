package hook

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/anvanvan/blitz-dictation/internal/config"
	"github.com/anvanvan/blitz-dictation/internal/logging"
)

func TestEnabled(t *testing.T) {
	cfg, _ := config.Default()
	r := NewRunner(cfg, logging.NewTestLogger())
	if r.Enabled() {
		t.Fatal("no command configured, should be disabled")
	}
	cfg.Hook.Command = "/bin/echo"
	if !r.Enabled() {
		t.Fatal("command configured, should be enabled")
	}
}

func TestRunUsesPrefixAndEnv(t *testing.T) {
	cfg, _ := config.Default()
	cfg.Hook.Command = "/bin/echo"
	cfg.Hook.Prefix = "pref: "

	r := NewRunner(cfg, logging.NewTestLogger())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Run(ctx, Job{Text: "hello", SessionID: 7, Timestamp: time.Now()}); err != nil {
		t.Fatalf("run echo: %v", err)
	}
}

func TestRunWithoutCommand(t *testing.T) {
	cfg, _ := config.Default()
	r := NewRunner(cfg, logging.NewTestLogger())
	if err := r.Run(context.Background(), Job{Text: "x"}); err == nil {
		t.Fatal("expected error with no command")
	}
}

func TestParseArgs(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"", []string{}},
		{"   ", []string{}},
		{"send --fast", []string{"send", "--fast"}},
		{`say "two words"`, []string{"say", "two words"}},
	}
	for _, c := range cases {
		got, err := ParseArgs(c.raw)
		if err != nil {
			t.Fatalf("ParseArgs(%q): %v", c.raw, err)
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("ParseArgs(%q) = %v, want %v", c.raw, got, c.want)
		}
	}
}
