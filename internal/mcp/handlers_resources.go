package mcp

// file: internal/mcp/handlers_resources.go

import (
	"context"
	"encoding/json"

	"github.com/dkoosis/deezerwidget/internal/mcperrors"
	"github.com/dkoosis/deezerwidget/internal/mcptypes"
)

func (d *Dispatcher) handleResourcesList(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	return encodeResult(MethodResourcesList, mcptypes.ListResourcesResult{Resources: d.registry.Resources()})
}

func (d *Dispatcher) handleResourceTemplatesList(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	return encodeResult(MethodResourceTemplatesList, mcptypes.ListResourceTemplatesResult{
		ResourceTemplates: []mcptypes.ResourceTemplate{},
	})
}

func (d *Dispatcher) handleResourcesRead(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	var req mcptypes.ReadResourceRequest
	if err := decodeParams(MethodResourcesRead, params, &req); err != nil {
		return nil, err
	}
	if req.URI == "" {
		return nil, mcperrors.NewInvalidParamsError("Missing resource uri", nil,
			map[string]interface{}{"method": MethodResourcesRead})
	}

	result, err := d.registry.ReadResource(ctx, req.URI)
	if err != nil {
		return nil, err
	}
	d.logger.WithContext(ctx).Debug("Read resource.", "uri", req.URI, "bytes", len(result.Contents[0].Text))
	return encodeResult(MethodResourcesRead, result)
}
