// Package common provides core data structures and utilities shared across
// the browser engine client. It defines the wire types, the error taxonomy,
// configuration structures and logging used by the other packages.
//
// The package focuses on:
//   - Envelope/Response definitions of the JSON command protocol
//   - The error taxonomy surfaced to callers (connection, command, timeout)
//   - Configuration structures for the client and the mock engine
//   - Custom logging implementation integrated with the dragonboat logger
//
// Key Components:
//
//   - Envelope: one outbound command, flattened on the wire next to its id
//     and command name.
//
//   - Response / Result: one inbound message and its decoded payload. A
//     response without a success field counts as successful.
//
//   - ConnectionError, CommandError, TimeoutError, RemovedCommandError: the
//     failure variants. KindOf classifies any error into an ErrorKind.
//
//   - ClientConfig / Endpoint: how to reach the engine and how long to wait.
//
//   - InitLoggers: installs the custom log format for all package loggers.
package common
