package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pipetrace/pkg/model"
	"github.com/m-mizutani/pipetrace/pkg/utils/logging"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tracer is the trace surface exposed as MCP tools
type Tracer interface {
	ListFrames(ctx context.Context) ([]*model.FrameSummary, error)
	ListSuggestions(ctx context.Context) ([]*model.SuggestionSummary, error)
	GetFrameTrace(ctx context.Context, id model.FrameID) (*model.FrameTrace, error)
	GetSuggestionTrace(ctx context.Context, id model.SuggestionID) (*model.SuggestionTrace, error)
	GetScreenshot(ctx context.Context, id model.FrameID) (string, error)
	CheckIntegrity(ctx context.Context) ([]*model.Anomaly, error)
}

type frameParams struct {
	FrameID string `json:"frame_id" jsonschema:"Frame identifier such as frame_1700000000000_before"`
}

type suggestionParams struct {
	SuggestionID string `json:"suggestion_id" jsonschema:"Suggestion identifier"`
}

type handler struct {
	tracer Tracer
}

// NewServer builds an MCP server whose tools answer from tracer
func NewServer(tracer Tracer, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "pipetrace",
		Version: version,
	}, nil)

	h := &handler{tracer: tracer}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_frames",
		Description: "List every captured frame, newest first, with its analysis and gate status",
	}, h.listFrames)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_suggestions",
		Description: "List every generated suggestion, newest first, with status and resolved support",
	}, h.listSuggestions)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_frame_trace",
		Description: "Show what every pipeline stage recorded about one frame and the suggestions it fed",
	}, h.getFrameTrace)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_suggestion_trace",
		Description: "Show the generation, scoring, deduplication and live state of one suggestion",
	}, h.getSuggestionTrace)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_screenshot",
		Description: "Return the screenshot of a frame as a base64 data URI",
	}, h.getScreenshot)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_integrity",
		Description: "Report records that reference data no other stage knows about",
	}, h.checkIntegrity)

	return server
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal tool result")
	}
	return textResult(string(raw)), nil
}

func (h *handler) listFrames(ctx context.Context, req *mcp.CallToolRequest, _ *struct{}) (*mcp.CallToolResult, any, error) {
	frames, err := h.tracer.ListFrames(ctx)
	if err != nil {
		return nil, nil, err
	}
	result, err := jsonResult(frames)
	return result, nil, err
}

func (h *handler) listSuggestions(ctx context.Context, req *mcp.CallToolRequest, _ *struct{}) (*mcp.CallToolResult, any, error) {
	suggestions, err := h.tracer.ListSuggestions(ctx)
	if err != nil {
		return nil, nil, err
	}
	result, err := jsonResult(suggestions)
	return result, nil, err
}

func (h *handler) getFrameTrace(ctx context.Context, req *mcp.CallToolRequest, params *frameParams) (*mcp.CallToolResult, any, error) {
	if params.FrameID == "" {
		return nil, nil, goerr.New("frame_id is required")
	}

	tr, err := h.tracer.GetFrameTrace(ctx, model.FrameID(params.FrameID))
	if err != nil {
		return nil, nil, err
	}
	if tr == nil {
		logging.From(ctx).Debug("frame not found", "frame_id", params.FrameID)
		return textResult(fmt.Sprintf("frame not found: %s", params.FrameID)), nil, nil
	}
	result, err := jsonResult(tr)
	return result, nil, err
}

func (h *handler) getSuggestionTrace(ctx context.Context, req *mcp.CallToolRequest, params *suggestionParams) (*mcp.CallToolResult, any, error) {
	if params.SuggestionID == "" {
		return nil, nil, goerr.New("suggestion_id is required")
	}

	tr, err := h.tracer.GetSuggestionTrace(ctx, model.SuggestionID(params.SuggestionID))
	if err != nil {
		return nil, nil, err
	}
	if tr == nil {
		logging.From(ctx).Debug("suggestion not found", "suggestion_id", params.SuggestionID)
		return textResult(fmt.Sprintf("suggestion not found: %s", params.SuggestionID)), nil, nil
	}
	result, err := jsonResult(tr)
	return result, nil, err
}

func (h *handler) getScreenshot(ctx context.Context, req *mcp.CallToolRequest, params *frameParams) (*mcp.CallToolResult, any, error) {
	if params.FrameID == "" {
		return nil, nil, goerr.New("frame_id is required")
	}

	uri, err := h.tracer.GetScreenshot(ctx, model.FrameID(params.FrameID))
	if err != nil {
		return nil, nil, err
	}
	if uri == "" {
		return textResult(fmt.Sprintf("screenshot not found: %s", params.FrameID)), nil, nil
	}
	return textResult(uri), nil, nil
}

func (h *handler) checkIntegrity(ctx context.Context, req *mcp.CallToolRequest, _ *struct{}) (*mcp.CallToolResult, any, error) {
	anomalies, err := h.tracer.CheckIntegrity(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(anomalies) == 0 {
		return textResult("no anomalies found"), nil, nil
	}
	result, err := jsonResult(anomalies)
	return result, nil, err
}
