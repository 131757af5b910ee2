package tools

import (
	"context"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dslh/mcp-fieldgate/internal/registry"
	"github.com/dslh/mcp-fieldgate/internal/script"
	"github.com/dslh/mcp-fieldgate/internal/tooldef"
	"github.com/dslh/mcp-fieldgate/internal/validate"
)

// RegisterScriptedTools loads the operator-authored tool definitions from
// dir and registers each one. Scripted tool arguments are validated against
// the declared schema before execution; failures of any kind are domain
// errors, not protocol errors.
func RegisterScriptedTools(reg *registry.Registry, dir string) error {
	defs, err := tooldef.ListDir(dir)
	if err != nil {
		return err
	}

	for _, def := range defs {
		schema, err := validate.SchemaFromMap(def.InputSchema)
		if err != nil {
			log.Printf("Warning: skipping scripted tool %s: %v", def.Name, err)
			continue
		}

		code := def.Code
		handler := func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			if err := validate.ValidateArgs(schema, args); err != nil {
				return ErrorResponse("%v", err), nil
			}
			result, err := script.Run(code, args)
			if err != nil {
				return nil, err
			}
			if result.Error != "" {
				return ErrorResponse("Tool error: %s", result.Error), nil
			}
			return JSONResponse(result.Value), nil
		}

		if err := reg.Register(&mcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: schema,
		}, handler); err != nil {
			log.Printf("Warning: skipping scripted tool %s: %v", def.Name, err)
			continue
		}
		log.Printf("Registered scripted tool: %s", def.Name)
	}
	return nil
}
