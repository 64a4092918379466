package control

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/anvanvan/blitz-dictation/internal/config"
	"github.com/anvanvan/blitz-dictation/internal/doctor"
	"github.com/anvanvan/blitz-dictation/internal/hook"
	"github.com/anvanvan/blitz-dictation/internal/inject"
	"github.com/anvanvan/blitz-dictation/internal/logging"
)

const dialTimeout = 2 * time.Second

// callDaemon sends one op over the control socket and decodes the
// reply into out.
func callDaemon(cfg *config.Config, op string, out any) error {
	conn, err := net.DialTimeout("unix", cfg.Paths.SocketPath, dialTimeout)
	if err != nil {
		return fmt.Errorf("cannot connect to daemon (is it running?): %w", err)
	}
	defer conn.Close()
	if err := json.NewEncoder(conn).Encode(Request{Op: op}); err != nil {
		return err
	}
	return json.NewDecoder(conn).Decode(out)
}

// NewStatusCmd queries daemon status.
func NewStatusCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			var status Status
			if err := callDaemon(cfg, OpStatus, &status); err != nil {
				return err
			}
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(status)
			}
			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "output JSON")
	return cmd
}

func printStatus(out io.Writer, status Status) {
	fmt.Fprintf(out, "running: %v\nstate: %s\nuptime: %.1fs\n", status.Running, status.State, status.UptimeSec)
	fmt.Fprintf(out, "sessions: %d (completed %d, failed %d, injected %d)\n",
		status.Sessions, status.Completed, status.Failed, status.Injected)
	if status.LastText != "" {
		fmt.Fprintf(out, "last: %s\n", status.LastText)
	}
	if status.LastError != "" {
		fmt.Fprintf(out, "last error: %s\n", status.LastError)
	}
	for _, t := range status.Transcripts {
		fmt.Fprintf(out, "%s  [%d] %s\n", t.Timestamp.Format("15:04:05"), t.Session, t.Text)
	}
}

// NewHealthCmd pings the daemon control socket.
func NewHealthCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check daemon liveness",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			var resp SimpleResponse
			if err := callDaemon(cfg, OpHealth, &resp); err != nil {
				return err
			}
			if !resp.OK {
				return fmt.Errorf("unhealthy: %s", resp.Message)
			}
			cmd.Println("ok")
			return nil
		},
	}
}

// NewTailLogCmd prints the last lines of the daemon log.
func NewTailLogCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tail-log",
		Short: "Show the end of the daemon log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			n, _ := cmd.Flags().GetInt("lines")
			return tailFile(cmd.OutOrStdout(), cfg.Paths.LogPath, n)
		},
	}
	cmd.Flags().IntP("lines", "n", 50, "number of lines to show")
	return cmd
}

func tailFile(w io.Writer, path string, n int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	lines := strings.Split(string(data), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	start := len(lines) - n
	if start < 0 {
		start = 0
	}
	for _, line := range lines[start:] {
		fmt.Fprintln(w, line)
	}
	return nil
}

// NewTestHookCmd sends sample text through the configured hook
// without recording anything.
func NewTestHookCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "test-hook \"some text\"",
		Short: "Send sample text through the hook",
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
			runner := hook.NewRunner(cfg, logger)
			return runner.Run(cmd.Context(), hook.Job{Text: args[0], Timestamp: time.Now()})
		},
	}
}

// NewTestInjectCmd injects sample text into whatever has focus.
func NewTestInjectCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test-inject \"some text\"",
		Short: "Inject sample text into the focused app",
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
			inj, err := inject.New(cfg, logger)
			if err != nil {
				return err
			}
			delay, _ := cmd.Flags().GetInt("delay")
			if delay > 0 {
				cmd.Printf("focus the target field; injecting in %ds\n", delay)
				time.Sleep(time.Duration(delay) * time.Second)
			}
			return inj.Inject(args[0])
		},
	}
	cmd.Flags().Int("delay", 3, "seconds to wait before injecting")
	return cmd
}

// NewDoctorCmd runs environment checks.
func NewDoctorCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check dependencies and config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			failed := 0
			for _, r := range doctor.Run(cfg) {
				mark := "ok  "
				if !r.Pass {
					mark = "FAIL"
					failed++
				}
				fmt.Fprintf(out, "%s %-18s %s\n", mark, r.Name, r.Detail)
			}
			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
}

// NewServiceCmd groups launchd subcommands (macOS).
func NewServiceCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage launchd service (macOS)",
	}
	cmd.AddCommand(newServiceInstallCmd(cfgPath))
	cmd.AddCommand(newServiceUninstallCmd())
	cmd.AddCommand(newServiceStatusCmd())
	return cmd
}
