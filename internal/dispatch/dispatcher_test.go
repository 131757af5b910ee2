package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dslh/mcp-fieldgate/internal/protocol"
	"github.com/dslh/mcp-fieldgate/internal/registry"
	"github.com/dslh/mcp-fieldgate/internal/validate"
)

func testDispatcher(t *testing.T) *Dispatcher {
	t.Helper()

	reg := registry.New()

	mustRegister := func(tool *mcp.Tool, handler registry.Handler) {
		if err := reg.Register(tool, handler); err != nil {
			t.Fatalf("Failed to register %s: %v", tool.Name, err)
		}
	}

	mustRegister(&mcp.Tool{
		Name:        "create_facility",
		Description: "Register a new monitoring facility",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"name": {Type: "string"},
				"code": {Type: "string"},
			},
			Required: []string{"name", "code"},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("created %v", args["name"])}},
		}, nil
	})

	mustRegister(&mcp.Tool{
		Name: "failing_tool",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
		return nil, errors.New("sensor offline")
	})

	mustRegister(&mcp.Tool{
		Name: "schemaless_tool",
	}, func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
		return &mcp.CallToolResult{}, nil
	})

	return New(reg, validate.DefaultRules(), "mcp-fieldgate", "0.1.0")
}

func request(method string, params interface{}) *protocol.Request {
	req := &protocol.Request{
		JSONRPC: protocol.Version,
		ID:      json.RawMessage(`1`),
		Method:  method,
	}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			panic(err)
		}
		req.Params = data
	}
	return req
}

func resultText(t *testing.T, result interface{}) string {
	t.Helper()
	callResult, ok := result.(*mcp.CallToolResult)
	if !ok {
		t.Fatalf("Expected *mcp.CallToolResult, got %T", result)
	}
	if len(callResult.Content) == 0 {
		t.Fatal("Expected content in tool result")
	}
	text, ok := callResult.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", callResult.Content[0])
	}
	return text.Text
}

// Any request with the wrong protocol version is rejected before method
// dispatch, whatever the method.
func TestVersionCheckedBeforeDispatch(t *testing.T) {
	d := testDispatcher(t)

	for _, method := range []string{"initialize", "tools/list", "tools/call", "tools/validate", "no/such/method"} {
		t.Run(method, func(t *testing.T) {
			req := request(method, nil)
			req.JSONRPC = "1.0"
			resp := d.Handle(context.Background(), req)
			if resp.Error == nil {
				t.Fatal("Expected error envelope")
			}
			if resp.Error.Code != protocol.CodeInvalidRequest {
				t.Errorf("Expected code %d, got %d", protocol.CodeInvalidRequest, resp.Error.Code)
			}
			if resp.Result != nil {
				t.Error("Error envelope must not carry a result")
			}
		})
	}
}

func TestInitialize(t *testing.T) {
	d := testDispatcher(t)
	resp := d.Handle(context.Background(), request("initialize", nil))
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(protocol.InitializeResult)
	if !ok {
		t.Fatalf("Expected InitializeResult, got %T", resp.Result)
	}
	if result.ProtocolVersion != protocol.MCPProtocolVersion {
		t.Errorf("Unexpected protocol version: %s", result.ProtocolVersion)
	}
	if result.ServerInfo.Name != "mcp-fieldgate" || result.ServerInfo.Version != "0.1.0" {
		t.Errorf("Unexpected server info: %+v", result.ServerInfo)
	}
}

func TestToolsListIsOrderedAndIdempotent(t *testing.T) {
	d := testDispatcher(t)

	var listings [][]string
	for i := 0; i < 2; i++ {
		resp := d.Handle(context.Background(), request("tools/list", nil))
		if resp.Error != nil {
			t.Fatalf("Unexpected error: %v", resp.Error)
		}
		result, ok := resp.Result.(protocol.ToolsListResult)
		if !ok {
			t.Fatalf("Expected ToolsListResult, got %T", resp.Result)
		}
		var names []string
		for _, tool := range result.Tools {
			names = append(names, tool.Name)
		}
		listings = append(listings, names)
	}

	expected := []string{"create_facility", "failing_tool", "schemaless_tool"}
	if !reflect.DeepEqual(listings[0], expected) {
		t.Errorf("Expected %v, got %v", expected, listings[0])
	}
	if !reflect.DeepEqual(listings[0], listings[1]) {
		t.Errorf("tools/list not idempotent: %v vs %v", listings[0], listings[1])
	}
}

func TestCallTool(t *testing.T) {
	d := testDispatcher(t)

	resp := d.Handle(context.Background(), request("tools/call", protocol.CallParams{
		Name:      "create_facility",
		Arguments: map[string]interface{}{"name": "North Ridge", "code": "NR-1"},
	}))
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result := resp.Result.(*mcp.CallToolResult)
	if result.IsError {
		t.Error("Expected success result")
	}
	if text := resultText(t, resp.Result); text != "created North Ridge" {
		t.Errorf("Unexpected result text: %q", text)
	}
}

// An unknown tool on tools/call is a domain result, not a protocol fault:
// the envelope is a success carrying an isError result.
func TestCallUnknownToolIsDomainError(t *testing.T) {
	d := testDispatcher(t)

	resp := d.Handle(context.Background(), request("tools/call", protocol.CallParams{Name: "foo"}))
	if resp.Error != nil {
		t.Fatalf("Unknown tool must not produce a protocol error, got %v", resp.Error)
	}

	result := resp.Result.(*mcp.CallToolResult)
	if !result.IsError {
		t.Error("Expected isError result")
	}
	if text := resultText(t, resp.Result); text != "Unknown tool: foo" {
		t.Errorf("Unexpected message: %q", text)
	}
}

// A tool behavior failure is likewise wrapped in a successful envelope.
func TestCallToolBehaviorFailureIsDomainError(t *testing.T) {
	d := testDispatcher(t)

	resp := d.Handle(context.Background(), request("tools/call", protocol.CallParams{Name: "failing_tool"}))
	if resp.Error != nil {
		t.Fatalf("Tool failure must not produce a protocol error, got %v", resp.Error)
	}

	result := resp.Result.(*mcp.CallToolResult)
	if !result.IsError {
		t.Error("Expected isError result")
	}
	if text := resultText(t, resp.Result); text != "Tool execution failed: sensor offline" {
		t.Errorf("Unexpected message: %q", text)
	}
}

func TestCallToolMissingName(t *testing.T) {
	d := testDispatcher(t)

	resp := d.Handle(context.Background(), request("tools/call", map[string]interface{}{}))
	if resp.Error == nil || resp.Error.Code != protocol.CodeInvalidParams {
		t.Fatalf("Expected -32602, got %+v", resp.Error)
	}
}

func TestValidateTool(t *testing.T) {
	d := testDispatcher(t)

	tests := []struct {
		name       string
		params     protocol.ValidateParams
		missing    []string
		resolvable []string
		mustAsk    []string
		confidence int
	}{
		{
			name: "missing code must be asked without context",
			params: protocol.ValidateParams{
				Name:      "create_facility",
				Arguments: map[string]interface{}{"name": "A"},
				Context:   map[string]interface{}{},
			},
			missing:    []string{"code"},
			resolvable: []string{},
			mustAsk:    []string{"code"},
			confidence: 0,
		},
		{
			name: "code resolvable from facilityCode",
			params: protocol.ValidateParams{
				Name:      "create_facility",
				Arguments: map[string]interface{}{"name": "A"},
				Context:   map[string]interface{}{"facilityCode": "X"},
			},
			missing:    []string{"code"},
			resolvable: []string{"code"},
			mustAsk:    []string{},
			confidence: 0,
		},
		{
			name: "complete arguments",
			params: protocol.ValidateParams{
				Name:      "create_facility",
				Arguments: map[string]interface{}{"name": "A", "code": "X"},
			},
			missing:    []string{},
			resolvable: []string{},
			mustAsk:    []string{},
			confidence: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := d.Handle(context.Background(), request("tools/validate", tt.params))
			if resp.Error != nil {
				t.Fatalf("Unexpected error: %v", resp.Error)
			}

			report, ok := resp.Result.(validate.Report)
			if !ok {
				t.Fatalf("Expected validate.Report, got %T", resp.Result)
			}
			if !reflect.DeepEqual(report.MissingParams, tt.missing) {
				t.Errorf("MissingParams: expected %v, got %v", tt.missing, report.MissingParams)
			}
			if !reflect.DeepEqual(report.Categorization.Resolvable, tt.resolvable) {
				t.Errorf("Resolvable: expected %v, got %v", tt.resolvable, report.Categorization.Resolvable)
			}
			if !reflect.DeepEqual(report.Categorization.MustAskUser, tt.mustAsk) {
				t.Errorf("MustAskUser: expected %v, got %v", tt.mustAsk, report.Categorization.MustAskUser)
			}
			if len(report.Categorization.CanInfer) != 0 {
				t.Errorf("Unexpected canInfer: %v", report.Categorization.CanInfer)
			}
			if report.Confidence != tt.confidence {
				t.Errorf("Confidence: expected %d, got %d", tt.confidence, report.Confidence)
			}
		})
	}
}

func TestValidateToolErrors(t *testing.T) {
	d := testDispatcher(t)

	tests := []struct {
		name   string
		params interface{}
		code   int
	}{
		{
			name:   "missing name",
			params: map[string]interface{}{},
			code:   protocol.CodeInvalidParams,
		},
		{
			name:   "unknown tool",
			params: protocol.ValidateParams{Name: "foo"},
			code:   protocol.CodeInvalidParams,
		},
		{
			name:   "tool without schema",
			params: protocol.ValidateParams{Name: "schemaless_tool"},
			code:   protocol.CodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := d.Handle(context.Background(), request("tools/validate", tt.params))
			if resp.Error == nil {
				t.Fatal("Expected error envelope")
			}
			if resp.Error.Code != tt.code {
				t.Errorf("Expected code %d, got %d", tt.code, resp.Error.Code)
			}
		})
	}
}

func TestDelegatedCapabilities(t *testing.T) {
	d := testDispatcher(t)

	t.Run("prompts/list is empty", func(t *testing.T) {
		resp := d.Handle(context.Background(), request("prompts/list", nil))
		if resp.Error != nil {
			t.Fatalf("Unexpected error: %v", resp.Error)
		}
		result := resp.Result.(protocol.PromptsListResult)
		if len(result.Prompts) != 0 {
			t.Errorf("Expected empty prompts, got %v", result.Prompts)
		}
	})

	t.Run("resources/list is empty", func(t *testing.T) {
		resp := d.Handle(context.Background(), request("resources/list", nil))
		if resp.Error != nil {
			t.Fatalf("Unexpected error: %v", resp.Error)
		}
		result := resp.Result.(protocol.ResourcesListResult)
		if len(result.Resources) != 0 {
			t.Errorf("Expected empty resources, got %v", result.Resources)
		}
	})

	for _, method := range []string{"prompts/get", "resources/read"} {
		t.Run(method+" rejected", func(t *testing.T) {
			resp := d.Handle(context.Background(), request(method, map[string]interface{}{"uri": "file:///x"}))
			if resp.Error == nil || resp.Error.Code != protocol.CodeInvalidParams {
				t.Fatalf("Expected -32602, got %+v", resp.Error)
			}
		})
	}
}

func TestMethodNotFound(t *testing.T) {
	d := testDispatcher(t)

	resp := d.Handle(context.Background(), request("no/such/method", nil))
	if resp.Error == nil || resp.Error.Code != protocol.CodeMethodNotFound {
		t.Fatalf("Expected -32601, got %+v", resp.Error)
	}
}

func TestIDEchoedUnmodified(t *testing.T) {
	d := testDispatcher(t)

	for _, id := range []string{`1`, `"abc-123"`, `42.5`} {
		req := request("initialize", nil)
		req.ID = json.RawMessage(id)
		resp := d.Handle(context.Background(), req)
		if string(resp.ID) != id {
			t.Errorf("Expected id %s echoed back, got %s", id, resp.ID)
		}
	}
}
