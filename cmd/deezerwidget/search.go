package main

// file: cmd/deezerwidget/search.go

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dkoosis/deezerwidget/internal/app"
	"github.com/dkoosis/deezerwidget/internal/deezer"
	"github.com/dkoosis/deezerwidget/internal/logging"
	"github.com/dkoosis/deezerwidget/internal/tools"
	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run deezer_search locally and print the tracks",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			a, err := app.New(cfg, Version)
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			result := tools.RunSearch(cmd.Context(), a.Search, query, nil, logging.GetLogger("cli_search"))
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, result.Content[0].Text)

			output, ok := result.StructuredContent.(tools.SearchOutput)
			if !ok || len(output.Results) == 0 {
				return nil
			}
			return renderTracks(out, output.Results, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of tracks to print")
	return cmd
}

// renderTracks prints up to limit tracks, the way the widget lists them.
func renderTracks(w io.Writer, tracks []deezer.Track, limit int) error {
	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTITLE\tARTIST\tALBUM\tTIME")
	for i, t := range tracks {
		var seconds int64
		if t.Duration != nil {
			seconds = *t.Duration
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1,
			orDash(t.Title), orDash(artistName(t)), orDash(albumTitle(t)), deezer.FormatDuration(seconds))
	}
	return tw.Flush()
}

func artistName(t deezer.Track) *string {
	if t.Artist == nil {
		return nil
	}
	return t.Artist.Name
}

func albumTitle(t deezer.Track) *string {
	if t.Album == nil {
		return nil
	}
	return t.Album.Title
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
