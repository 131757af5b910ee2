// Package dispatch routes JSON-RPC requests to their MCP method handlers.
//
// Protocol faults (bad version, unknown method, missing params) become
// JSON-RPC error envelopes. Tool failures, including unknown tool names on
// tools/call and errors raised by tool behaviors, become successful
// envelopes whose result carries isError, so clients can tell "the protocol
// worked, the tool failed" apart from a malformed request. Client retry
// logic depends on that asymmetry; it must not be collapsed into uniform
// error codes.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dslh/mcp-fieldgate/internal/protocol"
	"github.com/dslh/mcp-fieldgate/internal/registry"
	"github.com/dslh/mcp-fieldgate/internal/validate"
)

// Dispatcher holds the read-only collaborators needed to serve requests.
// It keeps no mutable state, so one Dispatcher safely serves concurrent
// requests.
type Dispatcher struct {
	registry *registry.Registry
	rules    validate.RuleSet
	info     protocol.ServerInfo
}

// New creates a dispatcher over a populated registry.
func New(reg *registry.Registry, rules validate.RuleSet, name, version string) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		rules:    rules,
		info:     protocol.ServerInfo{Name: name, Version: version},
	}
}

// Handle processes one JSON-RPC request and always produces a response
// envelope. The version tag is checked before any method dispatch.
func (d *Dispatcher) Handle(ctx context.Context, req *protocol.Request) *protocol.Response {
	if req.JSONRPC != protocol.Version {
		return protocol.NewError(req.ID, protocol.CodeInvalidRequest,
			fmt.Sprintf("unsupported jsonrpc version %q", req.JSONRPC), nil)
	}

	switch req.Method {
	case "initialize":
		return protocol.NewResult(req.ID, protocol.InitializeResult{
			ProtocolVersion: protocol.MCPProtocolVersion,
			ServerInfo:      d.info,
		})
	case "tools/list":
		return protocol.NewResult(req.ID, protocol.ToolsListResult{Tools: d.registry.Tools()})
	case "tools/call":
		return d.callTool(ctx, req)
	case "tools/validate":
		return d.validateTool(req)
	case "prompts/list":
		return protocol.NewResult(req.ID, protocol.PromptsListResult{Prompts: []interface{}{}})
	case "resources/list":
		return protocol.NewResult(req.ID, protocol.ResourcesListResult{Resources: []interface{}{}})
	case "prompts/get":
		return protocol.NewError(req.ID, protocol.CodeInvalidParams,
			"prompts are not hosted by this server", nil)
	case "resources/read":
		return protocol.NewError(req.ID, protocol.CodeInvalidParams,
			"resources are not hosted by this server", nil)
	default:
		return protocol.NewError(req.ID, protocol.CodeMethodNotFound,
			fmt.Sprintf("Method not found: %s", req.Method), nil)
	}
}

// callTool invokes a registered tool. Tool-level failures, including an
// unknown tool name, are domain results: successful envelopes flagged with
// isError.
func (d *Dispatcher) callTool(ctx context.Context, req *protocol.Request) *protocol.Response {
	var params protocol.CallParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return protocol.NewError(req.ID, protocol.CodeInvalidParams,
				"malformed tools/call params", nil)
		}
	}
	if params.Name == "" {
		return protocol.NewError(req.ID, protocol.CodeInvalidParams,
			"missing required parameter: name", nil)
	}

	reg, ok := d.registry.Lookup(params.Name)
	if !ok {
		return protocol.NewResult(req.ID, toolError("Unknown tool: %s", params.Name))
	}

	args := params.Arguments
	if args == nil {
		args = map[string]interface{}{}
	}

	result, err := reg.Handler(ctx, args)
	if err != nil {
		return protocol.NewResult(req.ID, toolError("Tool execution failed: %v", err))
	}
	return protocol.NewResult(req.ID, result)
}

// validateTool runs the pre-flight parameter check and categorizes missing
// required parameters. Unlike tools/call, an unknown tool here is a
// protocol-level invalid-params error.
func (d *Dispatcher) validateTool(req *protocol.Request) *protocol.Response {
	var params protocol.ValidateParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return protocol.NewError(req.ID, protocol.CodeInvalidParams,
				"malformed tools/validate params", nil)
		}
	}
	if params.Name == "" {
		return protocol.NewError(req.ID, protocol.CodeInvalidParams,
			"missing required parameter: name", nil)
	}
	if _, ok := d.registry.Lookup(params.Name); !ok {
		return protocol.NewError(req.ID, protocol.CodeInvalidParams,
			fmt.Sprintf("Unknown tool: %s", params.Name), nil)
	}

	required, err := d.registry.RequiredParams(params.Name)
	if err != nil {
		log.Printf("Schema introspection failed for tool %s: %v", params.Name, err)
		return protocol.NewError(req.ID, protocol.CodeInternalError,
			"schema introspection failed", nil)
	}

	args := params.Arguments
	if args == nil {
		args = map[string]interface{}{}
	}
	context := params.Context
	if context == nil {
		context = map[string]interface{}{}
	}

	report := validate.BuildReport(params.Name, required, args, context, d.rules)
	return protocol.NewResult(req.ID, report)
}

// toolError wraps a human-readable message as a domain-level tool failure.
func toolError(format string, args ...interface{}) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
		IsError: true,
	}
}
