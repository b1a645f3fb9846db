package serializer

import "github.com/basset-hound/houndctl/rpc/common"

// IRPCSerializer is the interface for all message serializers.
// The client side uses SerializeEnvelope/DeserializeResponse, the mock
// engine the other two.
type IRPCSerializer interface {
	// SerializeEnvelope encodes an outbound command into one message
	// It returns an error if the envelope is invalid or not encodable
	SerializeEnvelope(env common.Envelope) ([]byte, error)
	// DeserializeEnvelope decodes one message into an envelope
	DeserializeEnvelope(b []byte, env *common.Envelope) error
	// SerializeResponse encodes a response into one message
	SerializeResponse(resp common.Response) ([]byte, error)
	// DeserializeResponse decodes one message into a response
	// It returns an error if the message is not a JSON object
	DeserializeResponse(b []byte, resp *common.Response) error
}
