package validate

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// ArgsError describes a failed schema check of tool arguments.
type ArgsError struct {
	Message string
	Cause   error
}

func (e *ArgsError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ArgsError) Unwrap() error { return e.Cause }

// ValidateArgs checks an arguments map against a tool's declared input
// schema. A nil schema accepts any arguments.
func ValidateArgs(schema *jsonschema.Schema, args map[string]interface{}) error {
	if schema == nil {
		return nil
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return &ArgsError{Message: "failed to resolve input schema", Cause: err}
	}
	if err := resolved.Validate(args); err != nil {
		return &ArgsError{Message: "argument validation failed", Cause: err}
	}
	return nil
}

// SchemaFromMap converts a JSON-Schema-shaped map, as found in tool
// definition files, into a schema object. An empty map yields nil.
func SchemaFromMap(m map[string]interface{}) (*jsonschema.Schema, error) {
	if len(m) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("invalid JSON schema definition: %w", err)
	}
	return &schema, nil
}
