package mcp

// file: internal/mcp/handlers_tools.go

import (
	"context"
	"encoding/json"

	"github.com/dkoosis/deezerwidget/internal/mcperrors"
	"github.com/dkoosis/deezerwidget/internal/mcptypes"
)

func (d *Dispatcher) handleToolsList(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	return encodeResult(MethodToolsList, mcptypes.ListToolsResult{Tools: d.registry.Tools()})
}

// handleToolsCall validates arguments and runs the tool. Only protocol-level
// problems come back as errors; a failing tool still yields a result.
func (d *Dispatcher) handleToolsCall(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	var req mcptypes.CallToolRequest
	if err := decodeParams(MethodToolsCall, params, &req); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, mcperrors.NewInvalidParamsError("Missing tool name", nil,
			map[string]interface{}{"method": MethodToolsCall})
	}

	log := d.logger.WithContext(ctx).WithField("toolName", req.Name)
	log.Debug("Calling tool.")
	result, err := d.registry.CallTool(ctx, req.Name, req.Arguments)
	if err != nil {
		return nil, err
	}
	if result.IsError {
		log.Info("Tool reported a failure in its result.")
	}
	return encodeResult(MethodToolsCall, result)
}
