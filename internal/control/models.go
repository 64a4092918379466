package control

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anvanvan/blitz-dictation/internal/config"
)

// Known ggml checkpoints, smallest to largest. English-only variants
// are preferred for dictation latency; the turbo large is there for
// accuracy at the cost of load time.
var modelRegistry = map[string]string{
	"ggml-tiny.en.bin":             "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-tiny.en.bin",
	"ggml-base.en.bin":             "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.en.bin",
	"ggml-small.en.bin":            "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small.en.bin",
	"ggml-small.en-q5_1.bin":       "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small.en-q5_1.bin",
	"ggml-medium.en-q5_0.bin":      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-medium.en-q5_0.bin",
	"ggml-large-v3-turbo-q8_0.bin": "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3-turbo-q8_0.bin",
}

func modelsDir(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.StateDir, "models")
}

// NewModelsCmd wires up the models subcommands (list/download/set).
func NewModelsCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List/download/set whisper models",
	}
	cmd.AddCommand(newModelsListCmd(cfgPath))
	cmd.AddCommand(newModelsDownloadCmd(cfgPath))
	cmd.AddCommand(newModelsSetCmd(cfgPath))
	return cmd
}

func newModelsListCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known models and those present locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			current := filepath.Base(os.ExpandEnv(cfg.ASR.ModelPath))
			for _, name := range registryNames() {
				marker := " "
				if name == current {
					marker = "*"
				}
				note := ""
				if info, err := os.Stat(filepath.Join(modelsDir(cfg), name)); err == nil {
					note = fmt.Sprintf("downloaded, %d MB", info.Size()/(1<<20))
				}
				fmt.Fprintf(out, "%s %-30s %s\n", marker, name, note)
			}
			fmt.Fprintln(out, "\n* = configured in asr.model_path")
			return nil
		},
	}
}

func registryNames() []string {
	names := make([]string, 0, len(modelRegistry))
	for n := range modelRegistry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func newModelsDownloadCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "download <model-name>",
		Short: "Download a model from the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			name := args[0]
			url, ok := modelRegistry[name]
			if !ok {
				return fmt.Errorf("unknown model %q; run models list", name)
			}
			dest := filepath.Join(modelsDir(cfg), name)
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return err
			}
			cmd.Printf("downloading %s -> %s\n", name, dest)
			return downloadFile(url, dest)
		},
	}
}

// downloadFile fetches into dest.part and renames on success, so an
// interrupted download never leaves a truncated model in place.
func downloadFile(url, dest string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}
	tmp := dest + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, dest)
}

func newModelsSetCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <model-name-or-path>",
		Short: "Point asr.model_path at a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			val := args[0]
			// short names resolve inside the models dir
			if !strings.Contains(val, "/") {
				val = filepath.Join(modelsDir(cfg), val)
			}
			cfg.ASR.ModelPath = val
			if err := config.Save(cfg, cfg.Paths.ConfigPath); err != nil {
				return err
			}
			cmd.Printf("asr.model_path = %s\n", val)
			if _, err := os.Stat(os.ExpandEnv(val)); err != nil {
				cmd.Printf("note: %s does not exist yet; fetch it with: blitz models download %s\n",
					val, filepath.Base(val))
			}
			return nil
		},
	}
}
