package page

import (
	"fmt"
	"github.com/basset-hound/houndctl/cmd/util"
	"github.com/basset-hound/houndctl/rpc/commands"
	"github.com/spf13/cobra"
	"os"
)

var (
	navigateCmd = &cobra.Command{
		Use:   "navigate [url]",
		Short: "Open a URL in the current tab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			waitUntil, _ := cmd.Flags().GetString("wait-until")
			result, err := commands.Navigate(cmd.Context(), rpcClient, args[0], waitUntil)
			if err != nil {
				return err
			}
			return util.PrintResult(cmd.OutOrStdout(), result)
		},
	}
	urlCmd = &cobra.Command{
		Use:   "url",
		Short: "Print the URL of the current page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := commands.GetURL(cmd.Context(), rpcClient)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
	titleCmd = &cobra.Command{
		Use:   "title",
		Short: "Print the title of the current page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			title, err := commands.GetTitle(cmd.Context(), rpcClient)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), title)
			return nil
		},
	}
	backCmd = &cobra.Command{
		Use:   "back",
		Short: "Go back in the history of the current tab",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.GoBack(cmd.Context(), rpcClient)
			if err != nil {
				return err
			}
			return util.PrintResult(cmd.OutOrStdout(), result)
		},
	}
	forwardCmd = &cobra.Command{
		Use:   "forward",
		Short: "Go forward in the history of the current tab",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.GoForward(cmd.Context(), rpcClient)
			if err != nil {
				return err
			}
			return util.PrintResult(cmd.OutOrStdout(), result)
		},
	}
	reloadCmd = &cobra.Command{
		Use:   "reload",
		Short: "Reload the current page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ignoreCache, _ := cmd.Flags().GetBool("ignore-cache")
			result, err := commands.Reload(cmd.Context(), rpcClient, ignoreCache)
			if err != nil {
				return err
			}
			return util.PrintResult(cmd.OutOrStdout(), result)
		},
	}
	screenshotCmd = &cobra.Command{
		Use:   "screenshot [file]",
		Short: "Capture the current page and write the image to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts commands.ScreenshotOptions
			opts.FullPage, _ = cmd.Flags().GetBool("full-page")
			opts.Format, _ = cmd.Flags().GetString("format")
			opts.Quality, _ = cmd.Flags().GetInt("quality")

			image, err := commands.Screenshot(cmd.Context(), rpcClient, opts)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], image, 0o644); err != nil {
				return fmt.Errorf("failed to write screenshot: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", len(image), args[0])
			return nil
		},
	}
)

func init() {
	navigateCmd.Flags().String("wait-until", commands.WaitLoad, util.WrapString("When navigation counts as finished (load, domcontentloaded, networkidle)"))
	reloadCmd.Flags().Bool("ignore-cache", false, util.WrapString("Bypass the browser cache"))
	screenshotCmd.Flags().Bool("full-page", false, util.WrapString("Capture the whole page instead of the viewport"))
	screenshotCmd.Flags().String("format", "png", util.WrapString("Image format (png, jpeg)"))
	screenshotCmd.Flags().Int("quality", 80, util.WrapString("JPEG quality (1-100)"))
}
