package cmd

import (
	"fmt"

	"github.com/corey/bbfs/internal/adapters/socket"
	"github.com/corey/bbfs/internal/app"
	"github.com/corey/bbfs/internal/domain/status"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check daemon status",
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	client := socket.NewClient(socket.SocketPath(root))

	if !client.Ping() {
		fmt.Println("⚡ bbfs daemon is not running")
		return nil
	}

	health, err := client.Health()
	if err != nil {
		return err
	}

	fmt.Print(formatHealth(health))
	if sd, err := status.ReadJSON(app.NewPaths(root).Status); err == nil {
		fmt.Print(formatStatus(sd))
	}
	return nil
}
