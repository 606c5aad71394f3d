// Package mcp implements the Model Context Protocol request dispatcher and the stdio server loop.
package mcp

// file: internal/mcp/dispatcher.go

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/deezerwidget/internal/capability"
	"github.com/dkoosis/deezerwidget/internal/logging"
	"github.com/dkoosis/deezerwidget/internal/mcp/router"
	"github.com/dkoosis/deezerwidget/internal/mcp/state"
	"github.com/dkoosis/deezerwidget/internal/mcperrors"
	"github.com/dkoosis/deezerwidget/internal/mcptypes"
	"github.com/dkoosis/deezerwidget/internal/metrics"
	"github.com/dkoosis/deezerwidget/internal/transport"
)

// Dispatcher turns raw JSON-RPC frames into responses. It holds no per-connection
// state: the caller passes the session's lifecycle machine with every frame.
type Dispatcher struct {
	registry     *capability.Registry
	router       router.Router
	info         mcptypes.Implementation
	instructions string
	logger       logging.Logger
}

// NewDispatcher wires the MCP methods to registry. The registry should already be sealed.
func NewDispatcher(registry *capability.Registry, info mcptypes.Implementation, logger logging.Logger) (*Dispatcher, error) {
	if registry == nil {
		return nil, errors.New("dispatcher requires a capability registry")
	}
	if logger == nil {
		logger = logging.GetLogger("mcp_dispatcher")
	}
	d := &Dispatcher{
		registry:     registry,
		router:       router.NewRouter(logger),
		info:         info,
		instructions: fmt.Sprintf(defaultServerInstructionsFmt, info.Name),
		logger:       logger,
	}

	routes := []router.Route{
		{Method: state.MethodInitialize, Handler: d.handleInitialize},
		{Method: state.MethodInitialized, NotificationHandler: d.handleInitializedNotification},
		{Method: state.MethodCancelled, NotificationHandler: d.handleCancelledNotification},
		{Method: state.MethodPing, Handler: d.handlePing},
		{Method: MethodToolsList, Handler: d.handleToolsList},
		{Method: MethodToolsCall, Handler: d.handleToolsCall},
		{Method: MethodResourcesList, Handler: d.handleResourcesList},
		{Method: MethodResourcesRead, Handler: d.handleResourcesRead},
		{Method: MethodResourceTemplatesList, Handler: d.handleResourceTemplatesList},
	}
	for _, r := range routes {
		if err := d.router.AddRoute(r); err != nil {
			return nil, errors.Wrapf(err, "failed to register route %s", r.Method)
		}
	}
	return d, nil
}

// Methods lists the methods the dispatcher serves.
func (d *Dispatcher) Methods() []string {
	return d.router.GetRoutes()
}

// Handle processes one frame for session. It returns nil for notifications.
func (d *Dispatcher) Handle(ctx context.Context, session *state.Machine, raw []byte) *mcptypes.Response {
	req, resp := d.Admit(ctx, session, raw)
	if req == nil {
		return resp
	}
	return d.Execute(ctx, req)
}

// Admit decodes raw and applies its lifecycle transition to session. When the
// frame must not be executed, Admit returns a nil request and the response to
// send back, which is nil for a rejected notification.
func (d *Dispatcher) Admit(ctx context.Context, session *state.Machine, raw []byte) (*mcptypes.Request, *mcptypes.Response) {
	req, err := decodeRequest(raw)
	if err != nil {
		var id json.RawMessage
		if req != nil {
			id = req.ID
		}
		return nil, d.errorResponse(ctx, id, "", err)
	}

	if err := session.Accept(ctx, req.Method); err != nil {
		metrics.ObserveRequest(d.methodLabel(req.Method), metrics.OutcomeError, 0)
		if req.IsNotification() {
			d.logger.Warn("Dropping notification rejected by lifecycle.", "method", req.Method, "error", err)
			return nil, nil
		}
		return nil, d.errorResponse(ctx, req.ID, req.Method, err)
	}
	return req, nil
}

// Execute runs an admitted request and builds its response.
func (d *Dispatcher) Execute(ctx context.Context, req *mcptypes.Request) *mcptypes.Response {
	if !req.IsNotification() {
		ctx = logging.ContextWithRequestID(ctx, string(req.ID))
	}
	start := time.Now()
	result, err := d.router.Route(ctx, req.Method, req.Params, req.IsNotification())

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
	}
	metrics.ObserveRequest(d.methodLabel(req.Method), outcome, time.Since(start))

	if req.IsNotification() {
		if err != nil {
			d.logger.WithContext(ctx).Warn("Notification handler failed.", "method", req.Method, "error", err)
		}
		return nil
	}
	if err != nil {
		return d.errorResponse(ctx, req.ID, req.Method, err)
	}
	return mcptypes.NewResultResponse(req.ID, result)
}

// Reject answers a frame the transport could not accept.
func (d *Dispatcher) Reject(ctx context.Context, raw []byte, err error) *mcptypes.Response {
	var transportErr *transport.Error
	var mapped error
	switch {
	case errors.As(err, &transportErr) && transportErr.Code == transport.ErrJSONParseFailed:
		mapped = mcperrors.NewParseError("Parse error", err, nil)
	default:
		mapped = mcperrors.NewInvalidRequestError("Invalid Request", err, nil)
	}
	return d.errorResponse(ctx, peekID(raw), "", mapped)
}

func (d *Dispatcher) errorResponse(ctx context.Context, id json.RawMessage, method string, err error) *mcptypes.Response {
	code, message, data := mcperrors.MapErrorToJSONRPC(err)
	log := d.logger.WithContext(ctx)
	if code == int(mcperrors.ErrInternalError) {
		log.Error("Request failed with internal error.", "method", method, "error", fmt.Sprintf("%+v", err))
	} else {
		log.Warn("Request rejected.", "method", method, "code", code, "error", err)
	}
	return mcptypes.NewErrorResponse(id, code, message, data)
}

// methodLabel keeps unknown method names out of metric labels.
func (d *Dispatcher) methodLabel(method string) string {
	for _, m := range d.router.GetRoutes() {
		if m == method {
			return method
		}
	}
	return methodLabelUnknown
}

// decodeRequest parses a JSON-RPC request. On an invalid request it still
// returns whatever id could be recovered.
func decodeRequest(raw []byte) (*mcptypes.Request, error) {
	if !json.Valid(raw) {
		return nil, mcperrors.NewParseError("Parse error", nil, nil)
	}
	var req mcptypes.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return &mcptypes.Request{ID: peekID(raw)}, mcperrors.NewInvalidRequestError("Invalid Request", err, nil)
	}
	if !validID(req.ID) {
		return &mcptypes.Request{}, mcperrors.NewInvalidRequestError("Invalid Request: id must be a string or number", nil, nil)
	}
	if req.JSONRPC != mcptypes.JSONRPCVersion {
		return &req, mcperrors.NewInvalidRequestError("Invalid Request: jsonrpc must be \"2.0\"", nil, nil)
	}
	if req.Method == "" {
		return &req, mcperrors.NewInvalidRequestError("Invalid Request: missing method", nil, nil)
	}
	return &req, nil
}

func validID(id json.RawMessage) bool {
	id = bytes.TrimSpace(id)
	if len(id) == 0 || bytes.Equal(id, []byte("null")) {
		return true
	}
	switch id[0] {
	case '"', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return true
	default:
		return false
	}
}

// peekID recovers a usable id from a frame that failed to decode.
func peekID(raw []byte) json.RawMessage {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || !validID(probe.ID) {
		return nil
	}
	return probe.ID
}

// decodeParams unmarshals params into v. Absent params leave v untouched.
func decodeParams(method string, params json.RawMessage, v interface{}) error {
	trimmed := bytes.TrimSpace(params)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return mcperrors.NewInvalidParamsError("Invalid params for "+method, err,
			map[string]interface{}{"method": method})
	}
	return nil
}

func encodeResult(method string, v interface{}) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, mcperrors.NewInternalError("Failed to encode result", err,
			map[string]interface{}{"method": method})
	}
	return b, nil
}
