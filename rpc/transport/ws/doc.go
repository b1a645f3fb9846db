// Package ws implements the transport layer over WebSocket using
// github.com/coder/websocket.
//
// The client side plugs a WebSocket connector into the connection manager of
// package base. Every message is one text frame holding one JSON object.
// The read limit is raised to ClientConfig.MaxMessageBytes since screenshots
// and page captures are far larger than the library default.
//
// The server side (ServerTransport) is used by the mock engine. It serves
// every connection with base.ServeConnection and can drop all connections at
// once to simulate an engine crash.
package ws
