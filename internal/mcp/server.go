package mcp

// file: internal/mcp/server.go

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/deezerwidget/internal/logging"
	"github.com/dkoosis/deezerwidget/internal/mcp/state"
	"github.com/dkoosis/deezerwidget/internal/mcperrors"
	"github.com/dkoosis/deezerwidget/internal/mcptypes"
	"github.com/dkoosis/deezerwidget/internal/metrics"
	"github.com/dkoosis/deezerwidget/internal/transport"
	"golang.org/x/sync/errgroup"
)

// ServerOptions tunes the serve loop.
type ServerOptions struct {
	// MaxInFlight bounds concurrently executing requests.
	MaxInFlight int
	// RequestTimeout bounds a single request.
	RequestTimeout time.Duration
}

// Server serves one MCP connection over a message transport, usually stdio.
type Server struct {
	dispatcher *Dispatcher
	transport  transport.Transport
	options    ServerOptions
	logger     logging.Logger
}

// NewServer creates a server for one connection.
func NewServer(d *Dispatcher, t transport.Transport, opts ServerOptions, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.GetLogger("mcp_server")
	}
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = 1
	}
	return &Server{dispatcher: d, transport: t, options: opts, logger: logger}
}

// Serve reads frames until the peer closes the stream or ctx is cancelled.
// Lifecycle methods and notifications are handled in read order; other
// requests run concurrently, at most MaxInFlight at a time. Requests already
// running when ctx is cancelled are allowed to finish.
func (s *Server) Serve(ctx context.Context) error {
	session, err := state.NewMachine(s.logger, nil)
	if err != nil {
		return err
	}
	metrics.ActiveSessions.Inc()
	defer metrics.ActiveSessions.Dec()

	tracker := newInflight()
	// Request contexts outlive a shutdown signal so in-flight work can complete.
	base := withInflight(context.WithoutCancel(ctx), tracker)

	var group errgroup.Group
	group.SetLimit(s.options.MaxInFlight)
	defer func() {
		if n := tracker.len(); n > 0 {
			s.logger.Info("Waiting for in-flight requests.", "count", n)
		}
		_ = group.Wait()
		session.Close(base)
	}()

	s.logger.Info("Server processing loop started.", "maxInFlight", s.options.MaxInFlight)
	for {
		raw, err := s.transport.ReadMessage(ctx)
		if err != nil {
			if transport.IsFramingError(err) {
				s.logger.Warn("Rejecting malformed frame.", "error", err)
				s.write(base, s.dispatcher.Reject(base, raw, err))
				continue
			}
			return s.stopReason(ctx, err)
		}

		req, resp := s.dispatcher.Admit(base, session, raw)
		if req == nil {
			s.write(base, resp)
			continue
		}

		if req.IsNotification() || state.EventForMethod(req.Method) != "" {
			s.write(base, s.dispatcher.Execute(base, req))
			continue
		}

		reqCtx, cancel := s.requestContext(base)
		done := tracker.track(req.ID, cancel)
		group.Go(func() error {
			defer done()
			s.write(base, s.dispatcher.Execute(reqCtx, req))
			return nil
		})
	}
}

func (s *Server) requestContext(base context.Context) (context.Context, context.CancelFunc) {
	if s.options.RequestTimeout > 0 {
		return context.WithTimeout(base, s.options.RequestTimeout)
	}
	return context.WithCancel(base)
}

// stopReason maps the error that ended the read loop to Serve's result.
func (s *Server) stopReason(ctx context.Context, err error) error {
	switch {
	case ctx.Err() != nil:
		s.logger.Info("Context cancelled, stopping server loop.")
		return ctx.Err()
	case transport.IsClosedError(err):
		s.logger.Info("Peer closed the connection.")
		return nil
	default:
		return errors.Wrap(err, "transport read failed")
	}
}

func (s *Server) write(ctx context.Context, resp *mcptypes.Response) {
	if resp == nil {
		return
	}
	b, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("Failed to encode response.", "error", fmt.Sprintf("%+v", err))
		return
	}
	err = s.transport.WriteMessage(ctx, b)
	switch {
	case err == nil:
	case transport.IsMessageTooLargeError(err) && resp.Error == nil:
		// The peer still needs an answer for this id.
		s.logger.Warn("Response exceeds the frame limit; replying with an error.",
			"id", string(resp.ID), "size", len(b), "limit", transport.MaxMessageSize)
		s.write(ctx, s.dispatcher.errorResponse(ctx, resp.ID, "",
			mcperrors.NewInternalError("Response exceeds the maximum message size", err,
				map[string]interface{}{"id": string(resp.ID)})))
	default:
		s.logger.Error("Failed to write response.", "id", string(resp.ID), "error", err)
	}
}
