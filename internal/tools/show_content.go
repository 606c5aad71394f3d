// Package tools implements the tool handlers advertised by the server.
package tools

// file: internal/tools/show_content.go

import (
	"context"
	"time"

	"github.com/dkoosis/deezerwidget/internal/capability"
	"github.com/dkoosis/deezerwidget/internal/mcptypes"
	"github.com/dkoosis/deezerwidget/internal/widget"
)

// Tool ids.
const (
	ShowContentID  = "show_content"
	DeezerSearchID = "deezer_search"
)

// TimestampLayout is a millisecond-precision RFC 3339 layout ending in Z for UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ShowContentOutput is the structured content of show_content.
type ShowContentOutput struct {
	Name      string `json:"name"`
	Timestamp string `json:"timestamp"`
}

// ShowContent returns the echo tool. now may be nil.
func ShowContent(w widget.Widget, now func() time.Time) *capability.Tool {
	if now == nil {
		now = time.Now
	}
	return &capability.Tool{
		Info: capability.Info{
			ID:          ShowContentID,
			Title:       w.Title,
			Description: "Fetch and display the homepage content with the name of the user",
			Meta:        w.ToolMeta(),
		},
		Schema: capability.InputSchema{
			{Name: "name", Type: capability.TypeString, Required: true,
				Description: "The name of the user to display on the homepage"},
		},
		Handler: func(_ context.Context, args capability.Arguments) mcptypes.CallToolResult {
			name := args.String("name")
			return mcptypes.CallToolResult{
				Content: []mcptypes.Content{mcptypes.TextContent(name)},
				StructuredContent: ShowContentOutput{
					Name:      name,
					Timestamp: now().UTC().Format(TimestampLayout),
				},
				Meta: w.ToolMeta(),
			}
		},
	}
}
