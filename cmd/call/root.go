package call

import (
	"github.com/basset-hound/houndctl/cmd/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CallCmd sends a single command with free-form parameters
var CallCmd = &cobra.Command{
	Use:   "call [command] [key=value ...]",
	Short: "Send a command to the engine and print the result",
	Long: `Send a command to the engine and print the result as JSON.

Parameters are given as key=value pairs. Values that are valid JSON (numbers,
booleans, arrays, objects) keep their type, everything else is sent as a
string. Alternatively pass all parameters as one JSON object with --params.

Example:
  houndctl call navigate url=https://example.com wait_until=networkidle
  houndctl call get_network_requests --params '{"filter_type": "xhr"}'`,
	Args: cobra.MinimumNArgs(1),
	RunE: run,
}

func init() {
	util.SetupRPCClientFlags(CallCmd)

	key := "params"
	CallCmd.Flags().String(key, "", util.WrapString("Command parameters as a JSON object, merged with the key=value arguments"))
}

func run(cmd *cobra.Command, args []string) error {
	c, err := util.NewClient(cmd)
	if err != nil {
		return err
	}

	params, err := util.ParseParams(args[1:], viper.GetString("params"))
	if err != nil {
		return err
	}

	if err := c.Connect(cmd.Context()); err != nil {
		return err
	}
	defer c.Disconnect()

	result, err := c.Invoke(cmd.Context(), args[0], params)
	if err != nil {
		return err
	}
	return util.PrintResult(cmd.OutOrStdout(), result)
}
