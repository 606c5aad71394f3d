// Package mcptypes defines the MCP wire types shared by the dispatcher, the capability
// registry and the tool handlers. Keeping them here avoids import cycles.
// file: internal/mcptypes/types.go
package mcptypes

import (
	"encoding/json"
)

// Protocol versions the server can speak, newest first.
var SupportedProtocolVersions = []string{"2025-06-18", "2025-03-26", "2024-11-05"}

// LatestProtocolVersion is answered when the client asks for a version we don't know.
const LatestProtocolVersion = "2025-06-18"

// MetaKey is a presentation metadata key understood by the host.
type MetaKey string

// Known metadata keys. The host ignores anything else, so registration rejects unknown keys.
const (
	MetaOutputTemplate      MetaKey = "openai/outputTemplate"
	MetaInvoking            MetaKey = "openai/toolInvocation/invoking"
	MetaInvoked             MetaKey = "openai/toolInvocation/invoked"
	MetaWidgetAccessible    MetaKey = "openai/widgetAccessible"
	MetaResultCanProduce    MetaKey = "openai/resultCanProduceWidget"
	MetaWidgetDescription   MetaKey = "openai/widgetDescription"
	MetaWidgetPrefersBorder MetaKey = "openai/widgetPrefersBorder"
	MetaWidgetDomain        MetaKey = "openai/widgetDomain"
	MetaLocale              MetaKey = "openai/locale"
)

var knownMetaKeys = map[MetaKey]struct{}{
	MetaOutputTemplate:      {},
	MetaInvoking:            {},
	MetaInvoked:             {},
	MetaWidgetAccessible:    {},
	MetaResultCanProduce:    {},
	MetaWidgetDescription:   {},
	MetaWidgetPrefersBorder: {},
	MetaWidgetDomain:        {},
	MetaLocale:              {},
}

// IsKnown reports whether the host understands k.
func (k MetaKey) IsKnown() bool {
	_, ok := knownMetaKeys[k]
	return ok
}

// Meta is presentation metadata: known keys mapped to primitive values.
type Meta map[MetaKey]interface{}

// Clone returns a shallow copy so callers can't mutate registered metadata.
func (m Meta) Clone() Meta {
	if m == nil {
		return nil
	}
	out := make(Meta, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge returns a copy of m overlaid with extra.
func (m Meta) Merge(extra Meta) Meta {
	out := m.Clone()
	if out == nil && len(extra) > 0 {
		out = make(Meta, len(extra))
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// --- Lifecycle ---.

// Implementation describes the name and version of an MCP client or server.
type Implementation struct {
	Name    string `json:"name"`
	Title   string `json:"title,omitempty"`
	Version string `json:"version"`
}

// ServerCapabilities describes features supported by the server.
type ServerCapabilities struct {
	Tools     *ToolsCapability     `json:"tools,omitempty"`
	Resources *ResourcesCapability `json:"resources,omitempty"`
}

// ToolsCapability indicates server support for tools.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ResourcesCapability indicates server support for resources.
type ResourcesCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
	Subscribe   bool `json:"subscribe,omitempty"`
}

// InitializeRequest holds the params of 'initialize'.
type InitializeRequest struct {
	ProtocolVersion string          `json:"protocolVersion"`
	ClientInfo      Implementation  `json:"clientInfo"`
	Capabilities    json.RawMessage `json:"capabilities,omitempty"`
}

// InitializeResult is the result of 'initialize'.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      Implementation     `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitempty"`
}

// CancelledNotification holds the params of 'notifications/cancelled'.
type CancelledNotification struct {
	RequestID json.RawMessage `json:"requestId"`
	Reason    string          `json:"reason,omitempty"`
}

// --- Tools ---.

// Tool is the public descriptor of a tool as listed by 'tools/list'.
type Tool struct {
	Name        string          `json:"name"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema"`
	Meta        Meta            `json:"_meta,omitempty"`
}

// ListToolsResult is the result of 'tools/list'.
type ListToolsResult struct {
	Tools      []Tool `json:"tools"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// CallToolRequest holds the params of 'tools/call'.
type CallToolRequest struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Content is a display block. Only text blocks are produced by this server.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// TextContent returns a text block.
func TextContent(text string) Content {
	return Content{Type: "text", Text: text}
}

// CallToolResult is the result of 'tools/call'.
// StructuredContent is always serialized, even when a tool failed.
type CallToolResult struct {
	Content           []Content   `json:"content"`
	StructuredContent interface{} `json:"structuredContent"`
	IsError           bool        `json:"isError,omitempty"`
	Meta              Meta        `json:"_meta,omitempty"`
}

// --- Resources ---.

// Resource is the public descriptor of a resource as listed by 'resources/list'.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
	Meta        Meta   `json:"_meta,omitempty"`
}

// ListResourcesResult is the result of 'resources/list'.
type ListResourcesResult struct {
	Resources  []Resource `json:"resources"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// ResourceTemplate describes a parameterized resource.
type ResourceTemplate struct {
	URITemplate string `json:"uriTemplate"`
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ListResourceTemplatesResult is the result of 'resources/templates/list'.
type ListResourceTemplatesResult struct {
	ResourceTemplates []ResourceTemplate `json:"resourceTemplates"`
}

// ReadResourceRequest holds the params of 'resources/read'.
type ReadResourceRequest struct {
	URI string `json:"uri"`
}

// ResourceContents is one document returned by 'resources/read'.
type ResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text"`
	Meta     Meta   `json:"_meta,omitempty"`
}

// ReadResourceResult is the result of 'resources/read'.
type ReadResourceResult struct {
	Contents []ResourceContents `json:"contents"`
}

// EmptyResult is returned by 'ping'.
type EmptyResult struct{}
