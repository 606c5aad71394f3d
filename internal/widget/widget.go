// Package widget serves the HTML template the host renders tool results into, and
// owns the presentation metadata shared by the widget resource and the tools that
// target it.
package widget

// file: internal/widget/widget.go

import (
	"github.com/dkoosis/deezerwidget/internal/mcptypes"
)

// Fixed identity of the content widget.
const (
	ResourceID  = "content-widget"
	TemplateURI = "ui://widget/content-template.html"
	MIMEType    = "text/html+skybridge"
)

// Widget describes a renderable template and how the host should present it.
type Widget struct {
	ID          string
	Title       string
	TemplateURI string
	Invoking    string
	Invoked     string
	Description string
	Domain      string
}

// ContentWidget returns the homepage content widget with the given domain hint.
func ContentWidget(domain string) Widget {
	return Widget{
		ID:          ResourceID,
		Title:       "Show Content",
		TemplateURI: TemplateURI,
		Invoking:    "Loading content...",
		Invoked:     "Content loaded",
		Description: "Displays the homepage content",
		Domain:      domain,
	}
}

// ToolMeta is attached to every tool that renders into the widget and to each of their results.
func (w Widget) ToolMeta() mcptypes.Meta {
	return mcptypes.Meta{
		mcptypes.MetaOutputTemplate:   w.TemplateURI,
		mcptypes.MetaInvoking:         w.Invoking,
		mcptypes.MetaInvoked:          w.Invoked,
		mcptypes.MetaWidgetAccessible: false,
		mcptypes.MetaResultCanProduce: true,
	}
}

// ResourceMeta is attached to the resource descriptor.
func (w Widget) ResourceMeta() mcptypes.Meta {
	return mcptypes.Meta{
		mcptypes.MetaWidgetDescription:   w.Description,
		mcptypes.MetaWidgetPrefersBorder: true,
	}
}

// DocumentMeta is the document-specific metadata added on every read.
func (w Widget) DocumentMeta() mcptypes.Meta {
	return mcptypes.Meta{
		mcptypes.MetaWidgetDomain: w.Domain,
	}
}
