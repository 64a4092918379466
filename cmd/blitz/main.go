package main

import (
	"fmt"
	"os"

	"github.com/anvanvan/blitz-dictation/internal/control"
	"github.com/anvanvan/blitz-dictation/internal/daemon"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	root := &cobra.Command{
		Use:   "blitz",
		Short: "Blitz — push-to-talk local dictation daemon",
		Long: `Blitz records while you hold a key (default: fn), transcribes the clip
locally with whisper.cpp, and pastes the text into whatever app has focus.
Nothing leaves the machine.`,
		Example: `  blitz start --hotkey fn
  blitz mic list
  blitz mic set --index 1
  blitz models download ggml-small.en.bin
  blitz models set ggml-small.en.bin
  blitz service install --env BLITZ_METRICS_ADDR=127.0.0.1:9343
  blitz test-inject "make it so"
  blitz transcribe memo.wav`,
		DisableFlagsInUseLine: true,
	}

	root.Version = version
	root.SetVersionTemplate("Blitz v{{.Version}}\n")

	cfgPath := root.PersistentFlags().StringP("config", "c", "", "Path to config file (TOML). Defaults to ~/.config/blitz/config.toml")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(daemon.NewStartCmd(cfgPath))
	root.AddCommand(daemon.NewStopCmd(cfgPath))
	root.AddCommand(daemon.NewRestartCmd(cfgPath))
	root.AddCommand(control.NewStatusCmd(cfgPath))
	root.AddCommand(control.NewTailLogCmd(cfgPath))
	root.AddCommand(control.NewMicCmd(cfgPath))
	root.AddCommand(control.NewTestHookCmd(cfgPath))
	root.AddCommand(control.NewTestInjectCmd(cfgPath))
	root.AddCommand(control.NewDoctorCmd(cfgPath))
	root.AddCommand(control.NewServiceCmd(cfgPath))
	root.AddCommand(control.NewSetupCmd(cfgPath))
	root.AddCommand(control.NewHealthCmd(cfgPath))
	root.AddCommand(control.NewTranscribeCmd(cfgPath))
	root.AddCommand(control.NewModelsCmd(cfgPath))

	// Hidden internal serve command used by start.
	root.AddCommand(daemon.NewServeCmd(cfgPath))

	applyColorHelp(root)

	if err := root.Execute(); err != nil {
		return err
	}
	return nil
}

func applyColorHelp(root *cobra.Command) {
	const (
		boldBlue = "\033[1;34m"
		green    = "\033[32m"
		bold     = "\033[1m"
		dim      = "\033[2m"
		reset    = "\033[0m"
	)
	tour := []struct{ use, blurb string }{
		{"start|stop|restart", "run or bounce the daemon"},
		{"status [--json]", "state, uptime and recent transcripts"},
		{"mic list|set", "pick the capture device"},
		{"doctor", "diagnose model, hotkey and audio setup"},
		{"setup", "first-run model download"},
		{"models list|download|set", "manage whisper.cpp checkpoints"},
		{"service install|uninstall|status", "launch agent for login autostart (macOS)"},
		{"health", "ping the daemon over its socket"},
		{"tail-log [-n]", "print the end of the daemon log"},
		{"test-inject \"text\"", "paste text as if it had been dictated"},
	}
	knobs := []struct{ flag, blurb string }{
		{"--hotkey <key>", "push-to-talk key for this run (fn, rctrl, f13, ...)"},
		{"--metrics-addr <addr>", "serve Prometheus-style /metrics"},
		{"-c, --config <path>", "config file, default ~/.config/blitz/config.toml"},
	}
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		write := func(format string, args ...any) { _, _ = fmt.Fprintf(out, format, args...) }

		write("%sBlitz%s — push-to-talk local dictation daemon %s(v%s)%s\n", boldBlue, reset, dim, version, reset)
		write("%sHold a key, speak, release: the transcript lands in the focused app.%s\n\n", dim, reset)

		write("%sUsage%s\n  blitz [command] [flags]\n\n", bold, reset)

		write("%sEveryday commands%s\n", bold, reset)
		for _, t := range tour {
			write("  %-32s %s\n", t.use, t.blurb)
		}
		write("\n%sFlags & environment%s\n", bold, reset)
		for _, k := range knobs {
			write("  %-32s %s\n", k.flag, k.blurb)
		}
		write("  %-32s %s\n", "BLITZ_* vars", "HOTKEY, METRICS_ADDR, LOG_LEVEL, LOG_FORMAT,")
		write("  %-32s %s\n", "", "TRANSCRIPTS_ENABLED, NOTIFY_ENABLED, DUCK_MUSIC")

		if cmd.Example != "" {
			write("\n%sExamples%s\n%s\n", bold, reset, cmd.Example)
		}

		write("\n%sAll commands%s\n", bold, reset)
		for _, c := range cmd.Commands() {
			if c.Hidden {
				continue
			}
			write("  %s%-15s%s %s\n", green, c.Name(), reset, c.Short)
		}
	})
}
