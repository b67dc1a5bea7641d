package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/chatmon/internal/adapters/socket"
)

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Make the daemon refetch its dataset",
	RunE:  runReload,
}

func runReload(cmd *cobra.Command, args []string) error {
	client := socket.NewClient(socket.SocketPath(projectRoot()))
	if !client.Ping() {
		return fmt.Errorf("daemon not running. Start with: chatmon daemon start")
	}

	result, err := client.Reload()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatReload(*result))
	return nil
}
