package control

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anvanvan/blitz-dictation/internal/config"
	"github.com/anvanvan/blitz-dictation/internal/service"
)

const launchdLabel = "com.anvanvan.blitz"

func newServiceInstallCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install user launchd service (macOS)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			exe, err := os.Executable()
			if err != nil {
				return err
			}
			envPairs, _ := cmd.Flags().GetStringArray("env")
			env, err := parseEnvPairs(envPairs)
			if err != nil {
				return err
			}
			agent := service.Agent{
				Label:      launchdLabel,
				Binary:     exe,
				ConfigPath: cfg.Paths.ConfigPath,
				LogPath:    cfg.Paths.LogPath,
				Env:        env,
			}
			path, err := agent.Install()
			if err != nil {
				return err
			}
			fmt.Printf("launchd plist written: %s\n", path)
			fmt.Printf("Load:   launchctl bootstrap gui/$(id -u) %s\n", path)
			fmt.Printf("Start:  launchctl kickstart gui/$(id -u)/%s\n", agent.Label)
			fmt.Printf("Unload: launchctl bootout gui/$(id -u)/%s\n", agent.Label)
			return nil
		},
	}
	cmd.Flags().StringArray("env", nil, "Env to set in launchd plist (KEY=VAL)")
	return cmd
}

func parseEnvPairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("bad env %q, want KEY=VAL", p)
		}
		env[k] = v
	}
	return env, nil
}

func newServiceUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Remove user launchd plist (macOS)",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, ok := service.Installed(launchdLabel)
			if !ok {
				fmt.Printf("no plist at %s, nothing to do\n", path)
				return nil
			}
			if err := os.Remove(path); err != nil {
				return err
			}
			fmt.Printf("removed %s\n", path)
			fmt.Printf("Unload a running job with: launchctl bootout gui/$(id -u)/%s\n", launchdLabel)
			return nil
		},
	}
}

func newServiceStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show launchd plist path and load state",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, ok := service.Installed(launchdLabel)
			fmt.Printf("plist: %s\n", path)
			if !ok {
				fmt.Println("status: not installed (run: blitz service install)")
				return nil
			}
			if runtime.GOOS == "darwin" && launchdJobLoaded(launchdLabel) {
				fmt.Println("status: installed, loaded")
			} else {
				fmt.Printf("status: installed (load with: launchctl bootstrap gui/$(id -u) %s)\n", path)
			}
			return nil
		},
	}
}

func launchdJobLoaded(label string) bool {
	target := fmt.Sprintf("gui/%d/%s", os.Getuid(), label)
	return exec.Command("launchctl", "print", target).Run() == nil
}
