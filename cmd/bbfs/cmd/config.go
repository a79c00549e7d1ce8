package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/corey/bbfs/internal/adapters/socket"
	"github.com/corey/bbfs/internal/app"
	"github.com/corey/bbfs/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows resolved settings, paths, socket and daemon status. No daemon required.",
	RunE:  runConfig,
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default settings to .bbfs/config.yaml",
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths := app.NewPaths(root).WithInbox(settings.InboxDir, root)
	sockPath := socket.SocketPath(root)

	client := socket.NewClient(sockPath)
	daemonRunning := client.Ping()
	daemonStatus := fmt.Sprintf("%s✗ not running%s", colorYellow, colorReset)
	if daemonRunning {
		daemonStatus = fmt.Sprintf("%s✓ running%s", colorGreen, colorReset)
	}

	configStatus := "defaults"
	if _, err := os.Stat(paths.Config); err == nil {
		configStatus = paths.Config
	}

	fmt.Printf("%s⚡ bbfs config%s\n", colorBold, colorReset)
	fmt.Printf("  Root:       %s\n", root)
	fmt.Printf("  Config:     %s\n", configStatus)
	fmt.Printf("  DB:         %s\n", paths.DB)
	fmt.Printf("  Socket:     %s\n", sockPath)
	fmt.Printf("  Inbox:      %s\n", paths.InboxDir)
	fmt.Printf("  Reports:    %s\n", paths.ReportsDir)
	fmt.Printf("  Top N:      %d\n", settings.TopN)
	fmt.Printf("  Upload TTL: %s\n", settings.UploadTTL)
	fmt.Printf("  Log level:  %s\n", settings.LogLevel)
	fmt.Printf("  Daemon:     %s\n", daemonStatus)

	if daemonRunning {
		if portData, err := os.ReadFile(paths.PortFile); err == nil {
			fmt.Printf("  HTTP:       http://localhost:%s\n", strings.TrimSpace(string(portData)))
		}
	}

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	paths := app.NewPaths(projectRoot())
	if _, err := os.Stat(paths.Config); err == nil && !configInitForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", paths.Config)
	}
	if err := config.Write(paths.Config, config.Default()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("⚡ wrote %s\n", paths.Config)
	return nil
}
