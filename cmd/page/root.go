package page

import (
	"github.com/basset-hound/houndctl/cmd/util"
	"github.com/basset-hound/houndctl/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcClient *client.Client

	// PageCommands represents the page command group
	PageCommands = &cobra.Command{
		Use:                "page",
		Short:              "Navigate the current tab and capture it",
		PersistentPreRunE:  setupPageClient,
		PersistentPostRunE: closePageClient,
	}
)

func init() {
	// Add common RPC flags to the page command
	util.SetupRPCClientFlags(PageCommands)

	// Add subcommands
	PageCommands.AddCommand(navigateCmd)
	PageCommands.AddCommand(urlCmd)
	PageCommands.AddCommand(titleCmd)
	PageCommands.AddCommand(backCmd)
	PageCommands.AddCommand(forwardCmd)
	PageCommands.AddCommand(reloadCmd)
	PageCommands.AddCommand(screenshotCmd)
}

// setupPageClient connects the client used by all page commands
func setupPageClient(cmd *cobra.Command, _ []string) error {
	c, err := util.NewClient(cmd)
	if err != nil {
		return err
	}
	if err := c.Connect(cmd.Context()); err != nil {
		return err
	}
	rpcClient = c
	return nil
}

func closePageClient(_ *cobra.Command, _ []string) error {
	if rpcClient != nil {
		rpcClient.Disconnect()
	}
	return nil
}
