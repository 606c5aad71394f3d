package capability

// file: internal/capability/registry.go

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/deezerwidget/internal/logging"
	"github.com/dkoosis/deezerwidget/internal/mcperrors"
	"github.com/dkoosis/deezerwidget/internal/mcptypes"
)

// Registry holds the declared capabilities. Register is only valid until Seal;
// afterwards the registry is read-only and safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	sealed    bool
	ids       map[string]Kind
	tools     map[string]*registeredTool
	toolOrder []string
	resources map[string]*Resource
	resOrder  []string
	logger    logging.Logger
}

type registeredTool struct {
	tool      *Tool
	validator *argumentValidator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ids:       make(map[string]Kind),
		tools:     make(map[string]*registeredTool),
		resources: make(map[string]*Resource),
		logger:    logging.GetLogger("capability_registry"),
	}
}

// ErrSealed is returned by Register once the registry has been sealed.
var ErrSealed = errors.New("capability registry is sealed")

// Register adds a capability. It fails with a DuplicateCapabilityError if the id, or
// a resource's template URI, is already registered.
func (r *Registry) Register(c Capability) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrSealed
	}
	info := c.Descriptor()
	if info.ID == "" {
		return errors.New("capability id must not be empty")
	}
	if _, taken := r.ids[info.ID]; taken {
		return mcperrors.NewDuplicateCapabilityError(string(c.Kind()), info.ID)
	}
	if err := validateMeta(info.ID, info.Meta); err != nil {
		return err
	}

	switch v := c.(type) {
	case *Tool:
		if v.Handler == nil {
			return errors.Newf("tool %q has no handler", info.ID)
		}
		validator, err := compileInputSchema(info.ID, v.Schema)
		if err != nil {
			return err
		}
		r.tools[info.ID] = &registeredTool{tool: v, validator: validator}
		r.toolOrder = append(r.toolOrder, info.ID)
	case *Resource:
		if v.TemplateURI == "" {
			return errors.Newf("resource %q has no template URI", info.ID)
		}
		if v.Produce == nil {
			return errors.Newf("resource %q has no payload producer", info.ID)
		}
		if _, taken := r.resources[v.TemplateURI]; taken {
			return mcperrors.NewDuplicateCapabilityError(string(KindResource), v.TemplateURI)
		}
		r.resources[v.TemplateURI] = v
		r.resOrder = append(r.resOrder, v.TemplateURI)
	default:
		return errors.Newf("unsupported capability type %T", c)
	}

	r.ids[info.ID] = c.Kind()
	r.logger.Debug("Capability registered.", "kind", c.Kind(), "id", info.ID)
	return nil
}

// MustRegister is Register for startup code where a failure is a programming error.
func (r *Registry) MustRegister(caps ...Capability) {
	for _, c := range caps {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
}

// Seal freezes the registry.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// LookupTool returns the tool with the given id or a NotFoundError.
func (r *Registry) LookupTool(id string) (*Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.tools[id]
	if !ok {
		return nil, mcperrors.NewNotFoundError(mcperrors.KindTool, id)
	}
	return rt.tool, nil
}

// LookupResource returns the resource registered under uri or a NotFoundError.
func (r *Registry) LookupResource(uri string) (*Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resources[uri]
	if !ok {
		return nil, mcperrors.NewNotFoundError(mcperrors.KindResource, uri)
	}
	return res, nil
}

// Tools returns the public descriptors of all tools in registration order.
func (r *Registry) Tools() []mcptypes.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]mcptypes.Tool, 0, len(r.toolOrder))
	for _, id := range r.toolOrder {
		rt := r.tools[id]
		out = append(out, mcptypes.Tool{
			Name:        rt.tool.ID,
			Title:       rt.tool.Title,
			Description: rt.tool.Description,
			InputSchema: rt.validator.doc,
			Meta:        rt.tool.Meta.Clone(),
		})
	}
	return out
}

// Resources returns the public descriptors of all resources in registration order.
func (r *Registry) Resources() []mcptypes.Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]mcptypes.Resource, 0, len(r.resOrder))
	for _, uri := range r.resOrder {
		res := r.resources[uri]
		out = append(out, mcptypes.Resource{
			URI:         res.TemplateURI,
			Name:        res.ID,
			Title:       res.Title,
			Description: res.Description,
			MimeType:    res.MIMEType,
			Meta:        res.Meta.Clone(),
		})
	}
	return out
}

// CallTool validates raw arguments against the tool's schema and runs its handler.
// A validation failure never reaches the handler.
func (r *Registry) CallTool(ctx context.Context, id string, raw json.RawMessage) (mcptypes.CallToolResult, error) {
	r.mu.RLock()
	rt, ok := r.tools[id]
	r.mu.RUnlock()
	if !ok {
		return mcptypes.CallToolResult{}, mcperrors.NewNotFoundError(mcperrors.KindTool, id)
	}

	args, err := rt.validator.validate(raw)
	if err != nil {
		return mcptypes.CallToolResult{}, err
	}

	result := rt.tool.Handler(ctx, args)
	if result.StructuredContent == nil {
		result.StructuredContent = map[string]interface{}{}
	}
	if result.Content == nil {
		result.Content = []mcptypes.Content{}
	}
	return result, nil
}

// ReadResource produces the document for uri, wrapped with the resource's metadata.
// Producer failures become a ResourceUnavailableError.
func (r *Registry) ReadResource(ctx context.Context, uri string) (mcptypes.ReadResourceResult, error) {
	res, err := r.LookupResource(uri)
	if err != nil {
		return mcptypes.ReadResourceResult{}, err
	}

	doc, err := res.Produce(ctx, uri)
	if err != nil {
		return mcptypes.ReadResourceResult{}, mcperrors.NewResourceUnavailableError(uri, err)
	}
	mime := doc.MIMEType
	if mime == "" {
		mime = res.MIMEType
	}
	return mcptypes.ReadResourceResult{
		Contents: []mcptypes.ResourceContents{{
			URI:      uri,
			MimeType: mime,
			Text:     doc.Text,
			Meta:     res.Meta.Merge(doc.Meta),
		}},
	}, nil
}
