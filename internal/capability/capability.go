// Package capability holds the resources and tools the server advertises to the host.
// A Capability is either a *Tool or a *Resource. Both are registered once at startup
// into a Registry which is read-only afterwards.
package capability

// file: internal/capability/capability.go

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/deezerwidget/internal/mcptypes"
)

// Kind distinguishes the two capability variants.
type Kind string

// Capability kinds.
const (
	KindTool     Kind = "tool"
	KindResource Kind = "resource"
)

// Info is the metadata common to every capability.
type Info struct {
	// ID is unique within a registry and never changes after registration.
	ID          string
	Title       string
	Description string
	// Meta is presentation metadata echoed to the host.
	Meta mcptypes.Meta
}

// Capability is implemented by *Tool and *Resource only.
type Capability interface {
	Kind() Kind
	Descriptor() Info
	sealed()
}

// Arguments are tool arguments that have passed schema validation.
type Arguments map[string]interface{}

// String returns the named argument as a string. Validation guarantees the type for
// declared string parameters; undeclared or absent ones yield "".
func (a Arguments) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// ToolHandler runs a tool with validated arguments. It has no error return: any
// failure inside the tool must be reported as a result.
type ToolHandler func(ctx context.Context, args Arguments) mcptypes.CallToolResult

// Tool is an invocable capability.
type Tool struct {
	Info
	Schema  InputSchema
	Handler ToolHandler
}

// Kind implements Capability.
func (t *Tool) Kind() Kind { return KindTool }

// Descriptor implements Capability.
func (t *Tool) Descriptor() Info { return t.Info }

func (t *Tool) sealed() {}

// Document is what a resource payload producer returns.
type Document struct {
	MIMEType string
	Text     string
	// Meta is document-specific metadata merged over the resource's own.
	Meta mcptypes.Meta
}

// PayloadProducer builds a resource document for the requested URI.
type PayloadProducer func(ctx context.Context, uri string) (Document, error)

// Resource is a readable capability addressed by TemplateURI.
type Resource struct {
	Info
	TemplateURI string
	MIMEType    string
	Produce     PayloadProducer
}

// Kind implements Capability.
func (r *Resource) Kind() Kind { return KindResource }

// Descriptor implements Capability.
func (r *Resource) Descriptor() Info { return r.Info }

func (r *Resource) sealed() {}

// validateMeta rejects keys the host doesn't understand and non-primitive values.
func validateMeta(id string, meta mcptypes.Meta) error {
	for k, v := range meta {
		if !k.IsKnown() {
			return errors.Newf("capability %q: unknown metadata key %q", id, k)
		}
		switch v.(type) {
		case string, bool, int, int64, float64:
		default:
			return errors.Newf("capability %q: metadata %q must be a string, number or boolean, got %T", id, k, v)
		}
	}
	return nil
}
