//go:build !whisper

package control

import (
	"errors"

	"github.com/spf13/cobra"
)

// NewTranscribeCmd matches the whisper build's flag surface so help
// output stays the same, but running it only explains the rebuild.
func NewTranscribeCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcribe <wavfile>",
		Short: "Transcribe a WAV file (build with -tags whisper)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("transcription requires a build with '-tags whisper'")
		},
	}
	cmd.Flags().Bool("inject", false, "also inject the text into the focused app")
	cmd.Flags().Bool("hook", false, "also send the text through the configured hook")
	return cmd
}
