// Package protocol defines the JSON-RPC 2.0 envelopes and MCP method types
// spoken by the fieldgate server.
package protocol

import (
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is the JSON-RPC protocol version tag required on every request.
const Version = "2.0"

// MCPProtocolVersion is the MCP revision advertised by initialize.
const MCPProtocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Request is a JSON-RPC 2.0 request envelope. The id is kept as raw JSON so
// it can be echoed back unmodified whatever its type.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response envelope. Exactly one of Result and
// Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewResult builds a success envelope.
func NewResult(id json.RawMessage, result interface{}) *Response {
	return &Response{JSONRPC: Version, ID: id, Result: result}
}

// NewError builds an error envelope.
func NewError(id json.RawMessage, code int, message string, data interface{}) *Response {
	return &Response{JSONRPC: Version, ID: id, Error: &Error{Code: code, Message: message, Data: data}}
}

// ServerInfo identifies this server in the initialize handshake.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Capabilities advertises which MCP capability groups the server handles.
type Capabilities struct {
	Tools     struct{} `json:"tools"`
	Prompts   struct{} `json:"prompts"`
	Resources struct{} `json:"resources"`
}

// InitializeResult is the response to initialize.
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

// ToolsListResult is the response to tools/list, in registry order.
type ToolsListResult struct {
	Tools []*mcp.Tool `json:"tools"`
}

// CallParams are the params for tools/call.
type CallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

// ValidateParams are the params for tools/validate. Context carries the
// caller's known fields for missing-parameter resolution.
type ValidateParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

// PromptsListResult is the (always empty) response to prompts/list; prompt
// hosting is delegated to a remote server.
type PromptsListResult struct {
	Prompts []interface{} `json:"prompts"`
}

// ResourcesListResult is the (always empty) response to resources/list.
type ResourcesListResult struct {
	Resources []interface{} `json:"resources"`
}
