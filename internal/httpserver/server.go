// Package httpserver exposes the MCP dispatcher over Streamable HTTP, along with
// health and prometheus endpoints.
package httpserver

// file: internal/httpserver/server.go

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/deezerwidget/internal/logging"
	"github.com/dkoosis/deezerwidget/internal/mcp"
	"github.com/dkoosis/deezerwidget/internal/mcp/state"
	"github.com/dkoosis/deezerwidget/internal/mcperrors"
	"github.com/dkoosis/deezerwidget/internal/mcptypes"
	"github.com/dkoosis/deezerwidget/internal/metrics"
	"github.com/dkoosis/deezerwidget/internal/transport"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SessionHeader carries the session id assigned by initialize.
const SessionHeader = "Mcp-Session-Id"

// Options configures the HTTP server.
type Options struct {
	Address         string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	Info            mcptypes.Implementation
}

// Server serves MCP over HTTP.
type Server struct {
	dispatcher *mcp.Dispatcher
	options    Options
	router     chi.Router
	sessions   *sessionStore
	logger     logging.Logger
}

// New builds the HTTP server around d.
func New(d *mcp.Dispatcher, opts Options, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.GetLogger("http_server")
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{
		dispatcher: d,
		options:    opts,
		sessions:   newSessionStore(),
		logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.Post("/mcp", s.handlePost)
	r.Delete("/mcp", s.handleDelete)
	r.Get("/mcp", s.handleGet)
	mountOps(r, s.health)

	s.router = r
	return s
}

// Handler exposes the HTTP handler for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully and closes every session.
func (s *Server) Run(ctx context.Context) error {
	defer s.sessions.closeAll(context.Background())
	s.logger.Info("Starting HTTP server.", "address", s.options.Address)
	return ListenAndServe(ctx, s.options.Address, s.Handler(), s.options.ShutdownTimeout)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	ctx := logging.ContextWithRequestID(r.Context(), middleware.GetReqID(r.Context()))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, transport.MaxMessageSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeResponse(w, http.StatusRequestEntityTooLarge, s.dispatcher.Reject(ctx, nil,
				transport.NewMessageSizeError(int(tooLarge.Limit)+1, transport.MaxMessageSize, nil)))
			return
		}
		s.writeResponse(w, http.StatusBadRequest, s.dispatcher.Reject(ctx, nil,
			transport.NewError(transport.ErrGeneric, "failed to read request body", err)))
		return
	}
	if err := transport.ValidateMessage(body); err != nil {
		s.writeResponse(w, http.StatusBadRequest, s.dispatcher.Reject(ctx, body, err))
		return
	}

	var envelope struct {
		Method string `json:"method"`
	}
	_ = json.Unmarshal(body, &envelope)

	if envelope.Method == state.MethodInitialize {
		s.handleInitialize(ctx, w, body)
		return
	}

	session, status, err := s.sessionFor(r)
	if err != nil {
		s.writeResponse(w, status, mcptypes.NewErrorResponse(nil, int(mcperrors.ErrInvalidRequest), err.Error(), nil))
		return
	}
	resp := s.dispatcher.Handle(ctx, session, body)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	s.writeResponse(w, http.StatusOK, resp)
}

// handleInitialize opens a session. The session is kept only if initialize succeeded.
func (s *Server) handleInitialize(ctx context.Context, w http.ResponseWriter, body []byte) {
	session, err := state.NewMachine(s.logger, nil)
	if err != nil {
		s.logger.Error("Failed to create session state machine.", "error", err)
		s.writeResponse(w, http.StatusInternalServerError,
			mcptypes.NewErrorResponse(nil, int(mcperrors.ErrInternalError), "Internal error", nil))
		return
	}
	resp := s.dispatcher.Handle(ctx, session, body)
	if resp != nil && resp.Error == nil {
		id := s.sessions.add(session)
		w.Header().Set(SessionHeader, id)
		s.logger.Info("Opened MCP session.", "sessionID", id)
	}
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	s.writeResponse(w, http.StatusOK, resp)
}

// sessionFor resolves the request's session. Requests without a session id are
// served statelessly.
func (s *Server) sessionFor(r *http.Request) (*state.Machine, int, error) {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		m, err := state.NewStatelessMachine(s.logger)
		if err != nil {
			return nil, http.StatusInternalServerError, errors.Wrap(err, "failed to create stateless session")
		}
		return m, http.StatusOK, nil
	}
	m, ok := s.sessions.get(id)
	if !ok {
		return nil, http.StatusNotFound, errors.Newf("Session %s not found", id)
	}
	return m, http.StatusOK, nil
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		http.Error(w, "missing "+SessionHeader+" header", http.StatusBadRequest)
		return
	}
	if !s.sessions.remove(r.Context(), id) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	s.logger.Info("Closed MCP session.", "sessionID", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleGet refuses the optional server-to-client stream; this server never
// sends unsolicited messages.
func (s *Server) handleGet(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Allow", "POST, DELETE")
	http.Error(w, "server-initiated streams are not supported", http.StatusMethodNotAllowed)
}

func (s *Server) health() map[string]interface{} {
	return map[string]interface{}{
		"status":   "ok",
		"server":   s.options.Info,
		"sessions": s.sessions.len(),
		"runtime":  metrics.TakeSnapshot(),
	}
}

func (s *Server) writeResponse(w http.ResponseWriter, status int, resp *mcptypes.Response) {
	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("Failed to encode response.", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
