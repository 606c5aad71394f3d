package deezer

// file: internal/deezer/normalize.go

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
)

// rawObject is a JSON object whose members are decoded lazily, one field at a time,
// so a single malformed member never discards the rest of the record.
type rawObject map[string]json.RawMessage

// asObject decodes raw as a JSON object, returning nil for anything else.
func asObject(raw json.RawMessage) rawObject {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var obj rawObject
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil
	}
	return obj
}

// field decodes obj[key] as T. Missing, null and wrong-typed members yield nil.
func field[T any](obj rawObject, key string) *T {
	raw, ok := obj[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

// Normalize parses an upstream search body. A body that is not JSON is an error; any
// JSON shape without a "data" array yields zero results.
func Normalize(body []byte) (SearchResult, error) {
	if !json.Valid(body) {
		return SearchResult{Results: []Track{}}, errors.New("upstream returned invalid JSON")
	}

	top := asObject(body)
	var items []json.RawMessage
	if raw, ok := top["data"]; ok {
		if err := json.Unmarshal(raw, &items); err != nil {
			items = nil
		}
	}

	results := make([]Track, 0, len(items))
	for _, item := range items {
		results = append(results, normalizeTrack(item))
	}

	total := int64(len(results))
	if declared := field[int64](top, "total"); declared != nil {
		total = *declared
	}
	return SearchResult{Results: results, Total: total}, nil
}

func normalizeTrack(raw json.RawMessage) Track {
	obj := asObject(raw)
	t := Track{
		ID:             field[int64](obj, "id"),
		Readable:       field[bool](obj, "readable"),
		Title:          field[string](obj, "title"),
		TitleShort:     field[string](obj, "title_short"),
		TitleVersion:   field[string](obj, "title_version"),
		Link:           field[string](obj, "link"),
		Duration:       field[int64](obj, "duration"),
		Rank:           field[int64](obj, "rank"),
		ExplicitLyrics: field[bool](obj, "explicit_lyrics"),
		Preview:        field[string](obj, "preview"),
	}
	if a := asObject(obj["artist"]); a != nil {
		t.Artist = &Artist{
			ID:            field[int64](a, "id"),
			Name:          field[string](a, "name"),
			Link:          field[string](a, "link"),
			Picture:       field[string](a, "picture"),
			PictureSmall:  field[string](a, "picture_small"),
			PictureMedium: field[string](a, "picture_medium"),
			PictureBig:    field[string](a, "picture_big"),
			PictureXL:     field[string](a, "picture_xl"),
		}
	}
	if a := asObject(obj["album"]); a != nil {
		t.Album = &Album{
			ID:          field[int64](a, "id"),
			Title:       field[string](a, "title"),
			Cover:       field[string](a, "cover"),
			CoverSmall:  field[string](a, "cover_small"),
			CoverMedium: field[string](a, "cover_medium"),
			CoverBig:    field[string](a, "cover_big"),
			CoverXL:     field[string](a, "cover_xl"),
		}
	}
	return t
}

// FormatDuration renders whole seconds as m:ss.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
