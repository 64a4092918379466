package control

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/anvanvan/blitz-dictation/internal/config"
)

const fallbackModel = "ggml-base.en.bin"

// NewSetupCmd gets a fresh install to a working state: it fetches the
// configured model, or the base English one when the config points at
// a model the registry does not know.
func NewSetupCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Download the default whisper model if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			modelPath := os.ExpandEnv(cfg.ASR.ModelPath)
			if _, err := os.Stat(modelPath); err == nil {
				cmd.Println("model already present at", modelPath)
				return nil
			}
			name := filepath.Base(modelPath)
			url, ok := modelRegistry[name]
			if !ok {
				name = fallbackModel
				url = modelRegistry[name]
				modelPath = filepath.Join(filepath.Dir(modelPath), name)
			}
			if err := os.MkdirAll(filepath.Dir(modelPath), 0o755); err != nil {
				return err
			}
			cmd.Printf("downloading %s to %s\n", name, modelPath)
			if err := downloadFile(url, modelPath); err != nil {
				return err
			}
			cmd.Println("model download complete; run: blitz doctor")
			return nil
		},
	}
}
