package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/chatmon/internal/adapters/socket"
	"github.com/corey/chatmon/internal/app"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows project paths, daemon status and the effective settings. No daemon required.",
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths := app.NewPaths(root)
	sockPath := socket.SocketPath(root)

	daemonRunning := socket.NewClient(sockPath).Ping()
	daemonStatus := fmt.Sprintf("%s✗ not running%s", colorYellow, colorReset)
	if daemonRunning {
		daemonStatus = fmt.Sprintf("%s✓ running%s", colorGreen, colorReset)
	}

	dataset := settings.Dataset
	if dataset == "" {
		dataset = "(bundled corpus)"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s⚡ chatmon config%s\n", colorBold, colorReset)
	fmt.Fprintf(out, "  Root:     %s\n", root)
	fmt.Fprintf(out, "  Config:   %s\n", paths.Config)
	fmt.Fprintf(out, "  Dataset:  %s\n", dataset)
	if settings.IsFileDataset() {
		watch := "off"
		if settings.Watch {
			watch = "on (reloads on change)"
		}
		fmt.Fprintf(out, "  Watch:    %s\n", watch)
	}
	fmt.Fprintf(out, "  DB:       %s\n", paths.DB)
	fmt.Fprintf(out, "  Socket:   %s\n", sockPath)
	fmt.Fprintf(out, "  Daemon:   %s\n", daemonStatus)
	if daemonRunning {
		if addr, err := os.ReadFile(paths.AddrFile); err == nil {
			fmt.Fprintf(out, "  HTTP:     http://%s\n", strings.TrimSpace(string(addr)))
		}
	}

	data, err := settings.Marshal()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%sSettings%s\n%s", colorBold, colorReset, data)
	return nil
}
