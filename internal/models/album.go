package models

import "time"

// SlideAlbum is the metadata record of one slide album: a wiring drawing plus
// its animation, circuit-type and highlighter documents. Albums are keyed by
// (Title, Customer).
type SlideAlbum struct {
	Title      string    `json:"title"`
	Customer   string    `json:"customer"`
	SVGFile    string    `json:"svg"`
	LockedBy   string    `json:"locked,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// Key returns the stable album identity used for persistence and locking.
func (a *SlideAlbum) Key() string { return AlbumKey(a.Title, a.Customer) }

// AlbumKey builds the composite album identity from title and customer.
func AlbumKey(title, customer string) string { return title + "@" + customer }

// HighlighterSettings are the per-diagram persisted highlighter options.
type HighlighterSettings struct {
	Width          float64 `json:"width"`
	Intensity      float64 `json:"intensity"`
	HighlightColor string  `json:"highlightColor"`
	ClickColor     string  `json:"clickColor"`
}

// HighlightSelection maps selected wire ids to their chosen highlight color.
type HighlightSelection map[string]string
