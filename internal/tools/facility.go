// Package tools registers the built-in fieldgate tools and the
// operator-authored scripted tools.
package tools

import (
	"context"
	"errors"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dslh/mcp-fieldgate/internal/registry"
	"github.com/dslh/mcp-fieldgate/internal/store"
)

// facilityView is the JSON shape tools return for a facility.
type facilityView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Region    string `json:"region,omitempty"`
	CreatedAt string `json:"createdAt"`
}

func viewFacility(f *store.Facility) facilityView {
	return facilityView{
		ID:        f.ID,
		Name:      f.Name,
		Code:      f.Code,
		Region:    f.Region,
		CreatedAt: f.CreatedAt.Format(time.RFC3339),
	}
}

// RegisterFacilityTools registers the facility management tools against the
// given store.
func RegisterFacilityTools(reg *registry.Registry, st *store.Store) error {
	if err := reg.Register(&mcp.Tool{
		Name:        "create_facility",
		Description: "Register a new monitoring facility",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"name":   {Type: "string", Description: "Display name of the facility"},
				"code":   {Type: "string", Description: "Short unique facility code"},
				"region": {Type: "string", Description: "Geographic region the facility sits in"},
			},
			Required: []string{"name", "code"},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
		return handleCreateFacility(ctx, st, args)
	}); err != nil {
		return err
	}

	if err := reg.Register(&mcp.Tool{
		Name:        "get_facility",
		Description: "Fetch a single facility by id or code",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"facilityId":   {Type: "integer", Description: "Facility identifier"},
				"facilityCode": {Type: "string", Description: "Facility code, accepted in place of facilityId"},
			},
			Required: []string{"facilityId"},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
		facility, errResp := resolveFacility(ctx, st, args)
		if errResp != nil {
			return errResp, nil
		}
		return JSONResponse(viewFacility(facility)), nil
	}); err != nil {
		return err
	}

	return reg.Register(&mcp.Tool{
		Name:        "list_facilities",
		Description: "List all registered monitoring facilities",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
		facilities, err := st.ListFacilities(ctx)
		if err != nil {
			return nil, err
		}
		views := make([]facilityView, 0, len(facilities))
		for _, f := range facilities {
			views = append(views, viewFacility(f))
		}
		return JSONResponse(views), nil
	})
}

func handleCreateFacility(ctx context.Context, st *store.Store, args map[string]interface{}) (*mcp.CallToolResult, error) {
	name, _ := args["name"].(string)
	code, _ := args["code"].(string)
	region, _ := args["region"].(string)

	if name == "" {
		return ErrorResponse("Error: facility name is required"), nil
	}
	if code == "" {
		return ErrorResponse("Error: facility code is required"), nil
	}

	facility, err := st.CreateFacility(ctx, name, code, region)
	if errors.Is(err, store.ErrDuplicateCode) {
		return ErrorResponse("Error: facility code %q is already in use", code), nil
	}
	if err != nil {
		return nil, err
	}
	return TextResponse("Facility '%s' (%s) created with id %d", facility.Name, facility.Code, facility.ID), nil
}

// resolveFacility finds the facility named by the call arguments. The
// identifier may arrive as facilityId, or as facilityCode when the caller
// only knows the code, the same alternates the parameter categorizer
// advertises as resolvable.
func resolveFacility(ctx context.Context, st *store.Store, args map[string]interface{}) (*store.Facility, *mcp.CallToolResult) {
	if id, ok := asID(args["facilityId"]); ok {
		facility, err := st.GetFacility(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrorResponse("Error: no facility with id %d", id)
		}
		if err != nil {
			return nil, ErrorResponse("Error: facility lookup failed: %v", err)
		}
		return facility, nil
	}

	if code, _ := args["facilityCode"].(string); code != "" {
		facility, err := st.GetFacilityByCode(ctx, code)
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrorResponse("Error: no facility with code %q", code)
		}
		if err != nil {
			return nil, ErrorResponse("Error: facility lookup failed: %v", err)
		}
		return facility, nil
	}

	return nil, ErrorResponse("Error: facilityId (or facilityCode) is required")
}

// asID extracts an integer identifier from a JSON-decoded argument value.
func asID(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case float64:
		return int64(val), true
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}
