package tools

// file: internal/tools/deezer_search.go

import (
	"context"
	"fmt"

	"github.com/dkoosis/deezerwidget/internal/capability"
	"github.com/dkoosis/deezerwidget/internal/deezer"
	"github.com/dkoosis/deezerwidget/internal/logging"
	"github.com/dkoosis/deezerwidget/internal/mcptypes"
	"github.com/dkoosis/deezerwidget/internal/widget"
)

// Searcher runs one track search. *deezer.Client implements it.
type Searcher interface {
	Search(ctx context.Context, query string) (deezer.SearchResult, error)
}

// SearchOutput is the structured content of deezer_search, on success and on failure.
type SearchOutput struct {
	Name    string         `json:"name"`
	Query   string         `json:"query"`
	Results []deezer.Track `json:"results"`
	Total   int64          `json:"total"`
}

// DeezerSearch returns the search tool.
func DeezerSearch(w widget.Widget, s Searcher) *capability.Tool {
	logger := logging.GetLogger("tool_deezer_search")
	return &capability.Tool{
		Info: capability.Info{
			ID:          DeezerSearchID,
			Title:       "Deezer Search",
			Description: "Search Deezer tracks by query string and return a list of results",
			Meta:        w.ToolMeta(),
		},
		Schema: capability.InputSchema{
			{Name: "query", Type: capability.TypeString, Required: true,
				Description: "Search query to send to Deezer's search API"},
		},
		Handler: func(ctx context.Context, args capability.Arguments) mcptypes.CallToolResult {
			return RunSearch(ctx, s, args.String("query"), w.ToolMeta(), logger)
		},
	}
}

// RunSearch performs the search and shapes the result. Failures are reported in the
// result itself: the structured content keeps its shape with no results.
func RunSearch(ctx context.Context, s Searcher, query string, meta mcptypes.Meta, logger logging.Logger) mcptypes.CallToolResult {
	res, err := s.Search(ctx, query)
	if err != nil {
		logger.WithContext(ctx).Warn("Search failed; returning empty result.", "query", query, "error", err)
		failure := fmt.Sprintf(`Search failed for "%s"`, query)
		return mcptypes.CallToolResult{
			Content: []mcptypes.Content{mcptypes.TextContent(failure + ": " + err.Error())},
			StructuredContent: SearchOutput{
				Name:    failure,
				Query:   query,
				Results: []deezer.Track{},
				Total:   0,
			},
			Meta: meta,
		}
	}

	results := res.Results
	if results == nil {
		results = []deezer.Track{}
	}
	summary := fmt.Sprintf(`Found %d track(s) for "%s"`, len(results), query)
	return mcptypes.CallToolResult{
		Content: []mcptypes.Content{mcptypes.TextContent(summary)},
		StructuredContent: SearchOutput{
			Name:    summary,
			Query:   query,
			Results: results,
			Total:   res.Total,
		},
		Meta: meta,
	}
}
