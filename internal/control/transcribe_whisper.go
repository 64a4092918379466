//go:build whisper

package control

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/anvanvan/blitz-dictation/internal/asr"
	"github.com/anvanvan/blitz-dictation/internal/audio"
	"github.com/anvanvan/blitz-dictation/internal/config"
	"github.com/anvanvan/blitz-dictation/internal/hook"
	"github.com/anvanvan/blitz-dictation/internal/inject"
	"github.com/anvanvan/blitz-dictation/internal/logging"
)

// NewTranscribeCmd transcribes a WAV file and optionally injects or hooks the text.
func NewTranscribeCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcribe <wavfile>",
		Short: "Transcribe a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			logger, err := logging.Configure(cfg)
			if err != nil {
				return err
			}
			wantInject, _ := cmd.Flags().GetBool("inject")
			wantHook, _ := cmd.Flags().GetBool("hook")

			samples, rate, err := audio.ReadWAV(args[0])
			if err != nil {
				return err
			}
			pcm := audio.ToFloat32(samples)
			if rate != 16000 {
				pcm = audio.ResampleLinear(pcm, rate, 16000)
			}

			engine, err := asr.New(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = engine.Close() }()
			text, err := engine.Transcribe(cmd.Context(), pcm)
			if err != nil {
				return err
			}
			text = strings.TrimSpace(text)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), text)
			if text == "" {
				return nil
			}

			if wantInject {
				inj, err := inject.New(cfg, logger)
				if err != nil {
					return err
				}
				if err := inj.Inject(text); err != nil {
					return err
				}
			}
			if wantHook {
				r := hook.NewRunner(cfg, logger)
				return r.Run(cmd.Context(), hook.Job{Text: text, Timestamp: time.Now()})
			}
			return nil
		},
	}
	cmd.Flags().Bool("inject", false, "also inject the text into the focused app")
	cmd.Flags().Bool("hook", false, "also send the text through the configured hook")
	return cmd
}
