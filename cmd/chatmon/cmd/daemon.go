package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/corey/chatmon/internal/adapters/socket"
	"github.com/corey/chatmon/internal/app"
	"github.com/corey/chatmon/internal/logger"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the chatmon daemon",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon in the foreground",
	Long:  "Loads the dataset once and serves questions over a Unix socket and the HTTP API until interrupted or stopped.",
	RunE:  runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	RunE:  runDaemonStop,
}

func init() {
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	sockPath := socket.SocketPath(root)

	client := socket.NewClient(sockPath)
	if client.Ping() {
		fmt.Println("⚡ daemon already running")
		return nil
	}

	paths := app.NewPaths(root)
	if err := paths.EnsureDirs(); err != nil {
		return err
	}

	// The daemon always keeps a log file.
	if settings.Log.File == "" {
		settings.Log.File = paths.DaemonLog
		if err := logger.Initialize(settings.Log.Level, settings.Log.File); err != nil {
			return err
		}
	}

	a, err := app.New(app.Config{ProjectRoot: root, Settings: settings})
	if err != nil {
		if isDBLockError(err) {
			return fmt.Errorf("cannot start: %s", diagnoseDBLock(root))
		}
		return fmt.Errorf("init: %w", err)
	}
	if err := a.Start(); err != nil {
		a.Close()
		return err
	}
	if err := os.WriteFile(paths.PIDFile, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		logger.Log.Warn("write pid file", zap.Error(err))
	}

	report, loaded := a.LoadReport()
	fmt.Printf("⚡ chatmon daemon started at %s\n", sockPath)
	fmt.Print(formatDatasetSummary(a.Health(), report, loaded))
	if a.WebServer != nil && a.WebServer.Addr() != "" {
		fmt.Printf("  http:    %s\n", a.WebServer.URL())
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-a.Server.ShutdownCh():
	}

	fmt.Println("\n⚡ shutting down...")
	err = a.Stop()
	paths.CleanEphemeral()
	return err
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	sockPath := socket.SocketPath(projectRoot())
	client := socket.NewClient(sockPath)

	if !client.Ping() {
		if _, err := os.Stat(sockPath); err == nil {
			os.Remove(sockPath)
			fmt.Println("⚡ daemon is not running (removed stale socket)")
			return nil
		}
		fmt.Println("⚡ daemon is not running")
		return nil
	}
	if err := client.Shutdown(); err != nil {
		return err
	}
	fmt.Println("⚡ daemon stopped")
	return nil
}
