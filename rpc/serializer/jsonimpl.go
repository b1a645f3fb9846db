package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/basset-hound/houndctl/rpc/common"
)

// NewJSONSerializer creates a new serializer using json encoding
func NewJSONSerializer() IRPCSerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the IRPCSerializer interface using json encoding
type jsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) SerializeEnvelope(env common.Envelope) ([]byte, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}

	flat := make(map[string]any, len(env.Params)+2)
	for k, v := range env.Params {
		flat[k] = v
	}
	flat[common.FieldID] = env.ID
	flat[common.FieldCommand] = env.Command

	b, err := json.Marshal(flat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode command %q: %w", env.Command, err)
	}
	return b, nil
}

func (j jsonSerializerImpl) DeserializeEnvelope(b []byte, env *common.Envelope) error {
	fields, err := decodeObject(b)
	if err != nil {
		return err
	}

	id, _ := fields[common.FieldID].(string)
	command, _ := fields[common.FieldCommand].(string)
	delete(fields, common.FieldID)
	delete(fields, common.FieldCommand)

	*env = common.Envelope{ID: id, Command: command, Params: fields}
	return nil
}

func (j jsonSerializerImpl) SerializeResponse(resp common.Response) ([]byte, error) {
	flat := make(map[string]any, len(resp.Fields)+3)
	for k, v := range resp.Fields {
		flat[k] = v
	}
	flat[common.FieldID] = resp.ID
	flat[common.FieldSuccess] = resp.Success
	if !resp.Success {
		flat[common.FieldError] = resp.Error
	}

	return json.Marshal(flat)
}

func (j jsonSerializerImpl) DeserializeResponse(b []byte, resp *common.Response) error {
	fields, err := decodeObject(b)
	if err != nil {
		return err
	}

	id, _ := fields[common.FieldID].(string)

	// Compatibility shim: responses of older engines carry no success
	// field at all and are treated as successful. A present field that is
	// not a bool counts by its truthiness (0, "", null, [] and {} fail).
	success := true
	if raw, ok := fields[common.FieldSuccess]; ok {
		success = truthy(raw)
	}

	message := ""
	if !success {
		switch v := fields[common.FieldError].(type) {
		case string:
			message = v
		case nil:
			message = common.UnknownError
		default:
			message = fmt.Sprint(v)
		}
		if message == "" {
			message = common.UnknownError
		}
	}

	*resp = common.Response{
		ID:      id,
		Success: success,
		Error:   message,
		Fields:  fields,
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// decodeObject decodes a single JSON object. Arrays, scalars and trailing
// data are rejected.
func decodeObject(b []byte) (common.Result, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return nil, fmt.Errorf("message is not a JSON object")
	}

	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}
	return fields, nil
}

// truthy reports whether a decoded JSON value counts as true
func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}
