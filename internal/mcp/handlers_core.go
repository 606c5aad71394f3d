package mcp

// file: internal/mcp/handlers_core.go

import (
	"context"
	"encoding/json"

	"github.com/dkoosis/deezerwidget/internal/mcp/state"
	"github.com/dkoosis/deezerwidget/internal/mcptypes"
)

// negotiateProtocolVersion answers with the client's version when we speak it,
// otherwise with the newest version we support.
func negotiateProtocolVersion(requested string) string {
	for _, v := range mcptypes.SupportedProtocolVersions {
		if v == requested {
			return v
		}
	}
	return mcptypes.LatestProtocolVersion
}

func (d *Dispatcher) handleInitialize(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	var req mcptypes.InitializeRequest
	if err := decodeParams(state.MethodInitialize, params, &req); err != nil {
		return nil, err
	}

	version := negotiateProtocolVersion(req.ProtocolVersion)
	log := d.logger.WithContext(ctx)
	log.Info("Handling initialize request.",
		"clientName", req.ClientInfo.Name,
		"clientVersion", req.ClientInfo.Version,
		"clientRequestedVersion", req.ProtocolVersion,
		"negotiatedVersion", version)
	if req.ProtocolVersion != version {
		log.Warn("Client requested an unsupported protocol version; answering with the latest.",
			"clientRequested", req.ProtocolVersion)
	}

	return encodeResult(state.MethodInitialize, mcptypes.InitializeResult{
		ProtocolVersion: version,
		Capabilities: mcptypes.ServerCapabilities{
			Tools:     &mcptypes.ToolsCapability{},
			Resources: &mcptypes.ResourcesCapability{},
		},
		ServerInfo:   d.info,
		Instructions: d.instructions,
	})
}

func (d *Dispatcher) handleInitializedNotification(ctx context.Context, _ json.RawMessage) error {
	d.logger.WithContext(ctx).Info("Client reported initialization complete.")
	return nil
}

func (d *Dispatcher) handlePing(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	return encodeResult(state.MethodPing, mcptypes.EmptyResult{})
}

// handleCancelledNotification cancels the in-flight request named by the
// notification, when the serving loop tracks one.
func (d *Dispatcher) handleCancelledNotification(ctx context.Context, params json.RawMessage) error {
	var note mcptypes.CancelledNotification
	if err := decodeParams(state.MethodCancelled, params, &note); err != nil {
		return err
	}
	tracker := inflightFromContext(ctx)
	cancelled := tracker != nil && tracker.cancel(note.RequestID)
	d.logger.WithContext(ctx).Info("Received request cancellation.",
		"requestID", string(note.RequestID),
		"reason", note.Reason,
		"cancelled", cancelled)
	return nil
}
