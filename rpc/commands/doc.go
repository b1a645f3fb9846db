// Package commands provides typed wrappers for the browser engine's commands.
// Every wrapper is a plain function that shapes the parameters and calls
// Invoker.Invoke, so the groups (navigation, extraction, interaction,
// network, cookies, tabs, identity, screenshots, evidence) are independent of
// each other and of the client. Optional parameters left at their zero value
// are not sent.
//
// Usage Example:
//
//	c := client.New(config)
//	if _, err := commands.Navigate(ctx, c, "https://example.com", commands.WaitNetworkIdle); err != nil {
//		return err
//	}
//	title, err := commands.GetTitle(ctx, c)
package commands
