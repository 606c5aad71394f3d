package mcp

// file: internal/mcp/types.go

// Operational methods served by the dispatcher. Lifecycle methods live in the state package.
const (
	MethodToolsList              = "tools/list"
	MethodToolsCall              = "tools/call"
	MethodResourcesList          = "resources/list"
	MethodResourcesRead          = "resources/read"
	MethodResourceTemplatesList  = "resources/templates/list"
	methodLabelUnknown           = "unknown"
	defaultServerInstructionsFmt = "%s exposes a content widget and a Deezer track search tool."
)
