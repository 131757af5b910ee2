package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dslh/mcp-fieldgate/internal/registry"
	"github.com/dslh/mcp-fieldgate/internal/store"
)

type detectionView struct {
	ID         int64  `json:"id"`
	FacilityID int64  `json:"facilityId"`
	Subject    string `json:"subject"`
	DetectedAt string `json:"detectedAt"`
	EnteredAt  string `json:"enteredAt,omitempty"`
	ExitedAt   string `json:"exitedAt,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

func viewDetection(d *store.Detection) detectionView {
	v := detectionView{
		ID:         d.ID,
		FacilityID: d.FacilityID,
		Subject:    d.Subject,
		DetectedAt: d.DetectedAt.Format(time.RFC3339),
		Notes:      d.Notes,
	}
	if d.EnteredAt != nil {
		v.EnteredAt = d.EnteredAt.Format(time.RFC3339)
	}
	if d.ExitedAt != nil {
		v.ExitedAt = d.ExitedAt.Format(time.RFC3339)
	}
	return v
}

// RegisterDetectionTools registers the detection recording tools against
// the given store.
func RegisterDetectionTools(reg *registry.Registry, st *store.Store) error {
	if err := reg.Register(&mcp.Tool{
		Name:        "record_detection",
		Description: "Record a subject detection at a facility",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"facilityId":   {Type: "integer", Description: "Facility the detection was made at"},
				"facilityCode": {Type: "string", Description: "Facility code, accepted in place of facilityId"},
				"subject":      {Type: "string", Description: "What was detected"},
				"detectedAt":   {Type: "string", Description: "RFC 3339 detection timestamp; defaults to now"},
				"enteredAt":    {Type: "string", Description: "RFC 3339 entry timestamp"},
				"exitedAt":     {Type: "string", Description: "RFC 3339 exit timestamp"},
				"notes":        {Type: "string", Description: "Free-form observer notes"},
			},
			Required: []string{"facilityId", "subject", "detectedAt"},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
		return handleRecordDetection(ctx, st, args)
	}); err != nil {
		return err
	}

	return reg.Register(&mcp.Tool{
		Name:        "list_detections",
		Description: "List the detections recorded at a facility",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"facilityId":   {Type: "integer", Description: "Facility to list detections for"},
				"facilityCode": {Type: "string", Description: "Facility code, accepted in place of facilityId"},
			},
			Required: []string{"facilityId"},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
		facility, errResp := resolveFacility(ctx, st, args)
		if errResp != nil {
			return errResp, nil
		}
		detections, err := st.ListDetections(ctx, facility.ID)
		if err != nil {
			return nil, err
		}
		views := make([]detectionView, 0, len(detections))
		for _, d := range detections {
			views = append(views, viewDetection(d))
		}
		return JSONResponse(views), nil
	})
}

func handleRecordDetection(ctx context.Context, st *store.Store, args map[string]interface{}) (*mcp.CallToolResult, error) {
	facility, errResp := resolveFacility(ctx, st, args)
	if errResp != nil {
		return errResp, nil
	}

	subject, _ := args["subject"].(string)
	if subject == "" {
		return ErrorResponse("Error: subject is required"), nil
	}

	// detectedAt is declared required but defaulted here: the execution
	// engine fills in call time when the caller omits it.
	detectedAt, err := timestampArg(args, "detectedAt")
	if err != nil {
		return ErrorResponse("Error: %v", err), nil
	}
	if detectedAt == nil {
		now := time.Now().UTC()
		detectedAt = &now
	}

	enteredAt, err := timestampArg(args, "enteredAt")
	if err != nil {
		return ErrorResponse("Error: %v", err), nil
	}
	exitedAt, err := timestampArg(args, "exitedAt")
	if err != nil {
		return ErrorResponse("Error: %v", err), nil
	}
	notes, _ := args["notes"].(string)

	detection, err := st.RecordDetection(ctx, &store.Detection{
		FacilityID: facility.ID,
		Subject:    subject,
		DetectedAt: *detectedAt,
		EnteredAt:  enteredAt,
		ExitedAt:   exitedAt,
		Notes:      notes,
	})
	if err != nil {
		return nil, err
	}
	return TextResponse("Detection %d (%s) recorded at facility %s", detection.ID, detection.Subject, facility.Code), nil
}

// timestampArg parses an optional RFC 3339 timestamp argument. Absent or
// empty values yield nil.
func timestampArg(args map[string]interface{}, key string) (*time.Time, error) {
	raw, ok := args[key]
	if !ok || raw == nil || raw == "" {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%s must be an RFC 3339 timestamp string", key)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s timestamp %q", key, s)
	}
	utc := t.UTC()
	return &utc, nil
}
