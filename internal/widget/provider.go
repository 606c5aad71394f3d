package widget

// file: internal/widget/provider.go

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/deezerwidget/internal/capability"
	"github.com/dkoosis/deezerwidget/internal/logging"
)

// Provider produces the widget document. It keeps no state between reads: the page
// is fetched again on every call.
type Provider struct {
	Widget  Widget
	BaseURL string
	Path    string
	Fetcher Fetcher
	logger  logging.Logger
}

// NewProvider creates a provider for w fetching baseURL+path.
func NewProvider(w Widget, baseURL, path string, fetcher Fetcher) *Provider {
	if path == "" {
		path = "/"
	}
	return &Provider{
		Widget:  w,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Path:    path,
		Fetcher: fetcher,
		logger:  logging.GetLogger("widget_provider"),
	}
}

// PageURL is the address the widget HTML is fetched from.
func (p *Provider) PageURL() string {
	return p.BaseURL + p.Path
}

// Produce implements capability.PayloadProducer. Fetch errors are returned as is;
// the registry reports them as an unavailable resource.
func (p *Provider) Produce(ctx context.Context, uri string) (capability.Document, error) {
	html, err := p.Fetcher.FetchText(ctx, p.PageURL())
	if err != nil {
		p.logger.Warn("Failed to fetch widget page.", "uri", uri, "pageURL", p.PageURL(), "error", err)
		return capability.Document{}, errors.Wrap(err, "widget page fetch failed")
	}
	return capability.Document{
		MIMEType: MIMEType,
		Text:     "<html>" + html + "</html>",
		Meta:     p.Widget.DocumentMeta(),
	}, nil
}

// Resource returns the capability to register for this widget.
func (p *Provider) Resource() *capability.Resource {
	return &capability.Resource{
		Info: capability.Info{
			ID:          p.Widget.ID,
			Title:       p.Widget.Title,
			Description: p.Widget.Description,
			Meta:        p.Widget.ResourceMeta(),
		},
		TemplateURI: p.Widget.TemplateURI,
		MIMEType:    MIMEType,
		Produce:     p.Produce,
	}
}
