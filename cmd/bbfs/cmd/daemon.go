package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/corey/bbfs/internal/adapters/socket"
	"github.com/corey/bbfs/internal/app"
	"github.com/corey/bbfs/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the bbfs daemon",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon (socket, HTTP API and inbox)",
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
	level := settings.LogLevel
	if verbose {
		level = "debug"
	}
	log, err := logging.New(level, paths.DaemonLog)
	if err != nil {
		return err
	}
	defer log.Sync()

	a, err := app.New(app.Config{ProjectRoot: root, Settings: settings, Logger: log})
	if err != nil {
		if isDBLockError(err) {
			return fmt.Errorf("%s", diagnoseDBLock(root))
		}
		return fmt.Errorf("init: %w", err)
	}

	if err := a.Start(); err != nil {
		a.Stop()
		return err
	}

	fmt.Printf("⚡ bbfs daemon started at %s\n", sockPath)
	if port := a.WebServer.Port(); port != 0 {
		fmt.Printf("  HTTP:   %s\n", a.WebServer.URL())
	}
	fmt.Printf("  Inbox:  %s\n", a.Paths.InboxDir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Info("signal received", zap.String("signal", sig.String()))
	case <-a.Server.ShutdownCh():
		log.Info("remote shutdown requested")
	}

	fmt.Println("\n⚡ shutting down...")
	return a.Stop()
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	client := socket.NewClient(socket.SocketPath(projectRoot()))

	if !client.Ping() {
		fmt.Println("⚡ daemon is not running")
		return nil
	}

	if err := client.Shutdown(); err != nil {
		return err
	}

	fmt.Println("⚡ daemon stopped")
	return nil
}
