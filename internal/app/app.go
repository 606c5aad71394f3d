// Package app assembles the server from configuration: the capability registry,
// the dispatcher and the selected transport.
package app

// file: internal/app/app.go

import (
	"context"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/deezerwidget/internal/capability"
	"github.com/dkoosis/deezerwidget/internal/config"
	"github.com/dkoosis/deezerwidget/internal/deezer"
	"github.com/dkoosis/deezerwidget/internal/httpserver"
	"github.com/dkoosis/deezerwidget/internal/logging"
	"github.com/dkoosis/deezerwidget/internal/mcp"
	"github.com/dkoosis/deezerwidget/internal/mcptypes"
	"github.com/dkoosis/deezerwidget/internal/tools"
	"github.com/dkoosis/deezerwidget/internal/transport"
	"github.com/dkoosis/deezerwidget/internal/widget"
	"golang.org/x/sync/errgroup"
)

// App is a fully wired server.
type App struct {
	Config     *config.Config
	Info       mcptypes.Implementation
	Registry   *capability.Registry
	Dispatcher *mcp.Dispatcher
	Search     *deezer.Client
	logger     logging.Logger
}

// New validates cfg and builds the registry and dispatcher. version is used
// when the configuration does not name one.
func New(cfg *config.Config, version string) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	if cfg.Server.Version != "" {
		version = cfg.Server.Version
	}
	logger := logging.GetLogger("app")

	search := deezer.NewClient(cfg.Deezer.APIURL, cfg.Deezer.Limit, cfg.Deezer.Timeout)
	registry, err := BuildRegistry(cfg, search, time.Now)
	if err != nil {
		return nil, err
	}

	info := mcptypes.Implementation{Name: cfg.Server.Name, Version: version}
	dispatcher, err := mcp.NewDispatcher(registry, info, logging.GetLogger("mcp_dispatcher"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create dispatcher")
	}

	logger.Info("Server assembled.",
		"name", info.Name,
		"version", info.Version,
		"transport", cfg.Server.Transport,
		"widgetPage", cfg.Widget.BaseURL+cfg.Widget.Path,
		"tools", len(registry.Tools()),
		"resources", len(registry.Resources()))
	return &App{
		Config:     cfg,
		Info:       info,
		Registry:   registry,
		Dispatcher: dispatcher,
		Search:     search,
		logger:     logger,
	}, nil
}

// BuildRegistry registers the widget resource and both tools, then seals the registry.
func BuildRegistry(cfg *config.Config, search tools.Searcher, now func() time.Time) (*capability.Registry, error) {
	w := widget.ContentWidget(cfg.Widget.Domain)
	provider := widget.NewProvider(w, cfg.Widget.BaseURL, cfg.Widget.Path,
		widget.NewHTTPFetcher(cfg.Widget.FetchTimeout))

	registry := capability.NewRegistry()
	for _, c := range []capability.Capability{
		provider.Resource(),
		tools.ShowContent(w, now),
		tools.DeezerSearch(w, search),
	} {
		if err := registry.Register(c); err != nil {
			return nil, errors.Wrapf(err, "failed to register %s %q", c.Kind(), c.Descriptor().ID)
		}
	}
	registry.Seal()
	return registry, nil
}

// Run serves on the configured transport until ctx is cancelled or, for stdio,
// the peer closes the stream.
func (a *App) Run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	switch a.Config.Server.Transport {
	case config.TransportHTTP:
		return a.ServeHTTP(ctx)
	default:
		return a.ServeStdio(ctx, stdin, stdout)
	}
}

// ServeStdio serves one connection over newline-delimited JSON. When a metrics
// address is configured, /healthz and /metrics are served alongside.
func (a *App) ServeStdio(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	tr := transport.NewNDJSONTransport(stdin, stdout, nil)
	defer tr.Close()

	server := mcp.NewServer(a.Dispatcher, tr, mcp.ServerOptions{
		MaxInFlight:    a.Config.Server.MaxInFlight,
		RequestTimeout: a.Config.Server.RequestTimeout,
	}, logging.GetLogger("mcp_server"))

	if a.Config.Server.MetricsAddress == "" {
		return server.Serve(ctx)
	}

	g, gctx := errgroup.WithContext(ctx)
	opsCtx, stopOps := context.WithCancel(gctx)
	g.Go(func() error {
		defer stopOps()
		return server.Serve(gctx)
	})
	g.Go(func() error {
		a.logger.Info("Serving metrics.", "address", a.Config.Server.MetricsAddress)
		return httpserver.ListenAndServe(opsCtx, a.Config.Server.MetricsAddress,
			httpserver.OpsHandler(), a.Config.Server.ShutdownTimeout)
	})
	return g.Wait()
}

// ServeHTTP serves MCP over HTTP on the configured address.
func (a *App) ServeHTTP(ctx context.Context) error {
	srv := httpserver.New(a.Dispatcher, httpserver.Options{
		Address:         a.Config.Server.Address,
		RequestTimeout:  a.Config.Server.RequestTimeout,
		ShutdownTimeout: a.Config.Server.ShutdownTimeout,
		Info:            a.Info,
	}, logging.GetLogger("http_server"))
	return srv.Run(ctx)
}
