// Package daemon holds the CLI commands that manage the background
// process: start forks a hidden serve child, stop signals it through
// the pid file, restart chains the two.
package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/anvanvan/blitz-dictation/internal/config"
	"github.com/anvanvan/blitz-dictation/internal/logging"
	"github.com/anvanvan/blitz-dictation/internal/run"
)

const (
	startupWait  = 2 * time.Second
	shutdownWait = 5 * time.Second
)

// NewStartCmd launches the daemon in the background.
func NewStartCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start blitz daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if pid, running := daemonPID(cfg.Paths.PidPath); running {
				return fmt.Errorf("already running with pid %d", pid)
			}
			if err := os.MkdirAll(filepath.Dir(cfg.Paths.PidPath), 0o755); err != nil {
				return err
			}
			self, err := os.Executable()
			if err != nil {
				return err
			}
			child := exec.Command(self, "serve", "--config", cfg.Paths.ConfigPath)
			child.Env = append(os.Environ(), overrideEnv(cmd)...)
			child.Stdout = os.Stdout
			child.Stderr = os.Stderr
			if err := child.Start(); err != nil {
				return err
			}
			if !waitForPidFile(cfg.Paths.PidPath, startupWait) {
				fmt.Printf("blitz launched (pid %d) but the pid file has not appeared yet; check %s\n",
					child.Process.Pid, cfg.Paths.LogPath)
				return nil
			}
			fmt.Printf("blitz started (pid %d)\n", child.Process.Pid)
			return nil
		},
	}
	addRuntimeFlags(cmd)
	return cmd
}

// NewServeCmd runs the daemon in the foreground. Hidden: start and
// launchd are the supported entry points.
func NewServeCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:    "serve",
		Short:  "Run blitz daemon (internal)",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flags become env overrides so config.Load sees them the
			// same way whether set here or inherited from start.
			for _, pair := range overrideEnv(cmd) {
				k, v, _ := strings.Cut(pair, "=")
				if err := os.Setenv(k, v); err != nil {
					return fmt.Errorf("set %s: %w", k, err)
				}
			}
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			logger, err := logging.Configure(cfg)
			if err != nil {
				return err
			}
			return run.Serve(cfg, logger)
		},
	}
	addRuntimeFlags(cmd)
	return cmd
}

// NewStopCmd signals the daemon and waits for it to exit.
func NewStopCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop blitz daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			pid, running := daemonPID(cfg.Paths.PidPath)
			if !running {
				fmt.Println("blitz is not running")
				return nil
			}
			proc, err := os.FindProcess(pid)
			if err != nil {
				return err
			}
			if err := proc.Signal(syscall.SIGTERM); err != nil {
				return err
			}
			if err := waitForExit(cfg.Paths.PidPath, shutdownWait); err != nil {
				return err
			}
			fmt.Println("blitz stopped")
			return nil
		},
	}
}

// NewRestartCmd stops the daemon if running, then starts it.
func NewRestartCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart blitz daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stopCmd := NewStopCmd(cfgPath)
			if err := stopCmd.RunE(stopCmd, args); err != nil {
				return err
			}
			startCmd := NewStartCmd(cfgPath)
			return startCmd.RunE(startCmd, args)
		},
	}
}

func addRuntimeFlags(cmd *cobra.Command) {
	cmd.Flags().String("hotkey", "", "override the push-to-talk key for this run")
	cmd.Flags().String("metrics-addr", "", "enable metrics at address (e.g., 127.0.0.1:9343) for this run")
}

// overrideEnv translates runtime flags into BLITZ_* pairs.
func overrideEnv(cmd *cobra.Command) []string {
	var env []string
	if key := cmd.Flag("hotkey").Value.String(); key != "" {
		env = append(env, "BLITZ_HOTKEY="+key)
	}
	if addr := cmd.Flag("metrics-addr").Value.String(); addr != "" {
		env = append(env, "BLITZ_METRICS_ADDR="+addr)
	}
	return env
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("pid file %s: %w", path, err)
	}
	return pid, nil
}

// daemonPID reports the pid from the pid file and whether that
// process is alive. A stale or unreadable pid file counts as not
// running.
func daemonPID(pidPath string) (int, bool) {
	pid, err := readPID(pidPath)
	if err != nil {
		return 0, false
	}
	return pid, processAlive(pid)
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

func waitForPidFile(path string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}
	return false
}

// waitForExit polls until the pid file's process is gone, clearing a
// stale file if the process died without cleaning up.
func waitForExit(pidPath string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		pid, err := readPID(pidPath)
		if err != nil {
			return nil
		}
		if !processAlive(pid) {
			_ = os.Remove(pidPath)
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("daemon did not stop within %s", timeout)
}
