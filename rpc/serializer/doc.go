// Package serializer converts between the protocol's wire messages and the
// Envelope/Response types of the common package.
//
// The engine speaks one JSON object per WebSocket text message. Command
// parameters are not nested but flattened next to the id and command fields,
// and response payload fields sit next to id, success and error:
//
//	-> {"id": "4f1c...", "command": "navigate", "url": "https://example.com"}
//	<- {"id": "4f1c...", "success": true, "url": "https://example.com/"}
//	<- {"id": "4f1c...", "success": false, "error": "Navigation timeout"}
//
// A response without a success field is decoded as successful. This keeps
// older engine versions working and is a compatibility shim, not part of the
// designed contract.
//
// Thread Safety:
//
//	The JSON serializer is stateless and safe for concurrent use.
package serializer
