// Package cmd implements the command-line interface houndctl. It provides a
// hierarchical command structure for talking to a browser engine and for
// running a local mock engine.
//
// The package is organized into several subpackages:
//
//   - call: Send any command with free-form parameters
//   - page: Navigation and screenshot shortcuts
//   - serve: Start the mock engine
//   - perf: Round trip benchmark against an engine
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// All connection flags can also be set as environment variables with the
// prefix HOUND_ (e.g. HOUND_PORT=9000) or in a .env file.
//
// See houndctl -help for a list of all commands.
package cmd
