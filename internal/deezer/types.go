package deezer

// file: internal/deezer/types.go

// Track is the normalized view of one upstream search record. Pointer fields are nil
// when the upstream record lacks them or carries a value of the wrong type, and are
// then omitted from JSON. Artist and Album serialize as null when absent.
type Track struct {
	ID             *int64  `json:"id,omitempty"`
	Readable       *bool   `json:"readable,omitempty"`
	Title          *string `json:"title,omitempty"`
	TitleShort     *string `json:"title_short,omitempty"`
	TitleVersion   *string `json:"title_version,omitempty"`
	Link           *string `json:"link,omitempty"`
	Duration       *int64  `json:"duration,omitempty"`
	Rank           *int64  `json:"rank,omitempty"`
	ExplicitLyrics *bool   `json:"explicit_lyrics,omitempty"`
	Preview        *string `json:"preview,omitempty"`
	Artist         *Artist `json:"artist"`
	Album          *Album  `json:"album"`
}

// Artist is the normalized artist sub-object of a track.
type Artist struct {
	ID            *int64  `json:"id,omitempty"`
	Name          *string `json:"name,omitempty"`
	Link          *string `json:"link,omitempty"`
	Picture       *string `json:"picture,omitempty"`
	PictureSmall  *string `json:"picture_small,omitempty"`
	PictureMedium *string `json:"picture_medium,omitempty"`
	PictureBig    *string `json:"picture_big,omitempty"`
	PictureXL     *string `json:"picture_xl,omitempty"`
}

// Album is the normalized album sub-object of a track.
type Album struct {
	ID          *int64  `json:"id,omitempty"`
	Title       *string `json:"title,omitempty"`
	Cover       *string `json:"cover,omitempty"`
	CoverSmall  *string `json:"cover_small,omitempty"`
	CoverMedium *string `json:"cover_medium,omitempty"`
	CoverBig    *string `json:"cover_big,omitempty"`
	CoverXL     *string `json:"cover_xl,omitempty"`
}

// SearchResult is a normalized search response.
type SearchResult struct {
	// Results is never nil.
	Results []Track
	// Total is the upstream-declared total, or len(Results) when the upstream omitted it.
	Total int64
}
