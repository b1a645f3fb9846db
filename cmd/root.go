package cmd

import (
	"fmt"
	"github.com/basset-hound/houndctl/cmd/call"
	"github.com/basset-hound/houndctl/cmd/page"
	"github.com/basset-hound/houndctl/cmd/perf"
	"github.com/basset-hound/houndctl/cmd/serve"
	"github.com/basset-hound/houndctl/cmd/util"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "11.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "houndctl",
		Short: "remote control for the Basset Hound browser engine",
		Long: fmt.Sprintf(`houndctl (v%s)

Sends commands to a running Basset Hound browser engine over its WebSocket
remote control interface and prints the results as JSON.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of houndctl",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("houndctl v%s\n", Version)
		},
	}
)

func init() {
	// Initialize viper for every command
	cobra.OnInitialize(util.InitClientConfig)

	// Add Commands
	RootCmd.AddCommand(call.CallCmd)
	RootCmd.AddCommand(page.PageCommands)
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(perf.PerfCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
