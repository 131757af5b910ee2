// Package registry holds the catalog of callable tools. The registry is
// populated during startup and read-only afterwards, so it may be shared
// across concurrent requests without locking.
package registry

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handler executes a tool's behavior. Domain failures should be returned as
// results with IsError set; a non-nil error is reserved for unexpected
// faults and is still reported to the caller as a tool failure, never as a
// protocol error.
type Handler func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error)

// Registration pairs a tool descriptor with its behavior.
type Registration struct {
	Tool    *mcp.Tool
	Handler Handler
}

// Registry maps tool names to registrations, preserving registration order
// for tools/list.
type Registry struct {
	order   []string
	entries map[string]*Registration
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*Registration)}
}

// Register adds a tool. Names must be unique.
func (r *Registry) Register(tool *mcp.Tool, handler Handler) error {
	if tool == nil || tool.Name == "" {
		return fmt.Errorf("tool must have a name")
	}
	if handler == nil {
		return fmt.Errorf("tool %q has no handler", tool.Name)
	}
	if _, exists := r.entries[tool.Name]; exists {
		return fmt.Errorf("tool %q already registered", tool.Name)
	}
	r.entries[tool.Name] = &Registration{Tool: tool, Handler: handler}
	r.order = append(r.order, tool.Name)
	return nil
}

// Lookup returns the registration for a tool name.
func (r *Registry) Lookup(name string) (*Registration, bool) {
	reg, ok := r.entries[name]
	return reg, ok
}

// Tools returns all tool descriptors in registration order.
func (r *Registry) Tools() []*mcp.Tool {
	tools := make([]*mcp.Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.entries[name].Tool)
	}
	return tools
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}

// RequiredParams returns the required parameter names declared by a tool's
// input schema, in schema order, without invoking the tool. It fails when
// the tool is unregistered or declares no schema.
func (r *Registry) RequiredParams(name string) ([]string, error) {
	reg, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	if reg.Tool.InputSchema == nil {
		return nil, fmt.Errorf("no schema info for tool %s", name)
	}
	return append([]string(nil), reg.Tool.InputSchema.Required...), nil
}
