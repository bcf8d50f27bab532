// Package diag carries a request-scoped diagnostics trace through the
// search pipeline. A nil *Trace disables collection, so callers never have
// to guard their notes.
package diag

import "sync"

// StageNote records a harvesting stage outcome, e.g. result counts.
type StageNote struct {
	Name   string         `json:"name"`
	Counts map[string]int `json:"counts,omitempty"`
}

// ListingNote records one listing-page expansion attempt.
type ListingNote struct {
	URL     string `json:"url"`
	Status  int    `json:"status"`
	Anchors int    `json:"anchors"`
	JSONLD  int    `json:"jsonld"`
	RawJSON int    `json:"rawjson"`
	BotWall bool   `json:"botWall"`
}

// CheckNote records one price-verification attempt.
type CheckNote struct {
	URL    string `json:"url"`
	Status int    `json:"status"`
	Price  *int   `json:"price"`
	Reason string `json:"reason,omitempty"`
}

// Trace accumulates diagnostics for a single request. Safe for concurrent
// appends from parallel per-URL fetches.
type Trace struct {
	mu       sync.Mutex
	Query    string        `json:"q"`
	Stages   []StageNote   `json:"stages"`
	Listings []ListingNote `json:"listings,omitempty"`
	Checks   []CheckNote   `json:"checks,omitempty"`
}

// New creates an empty trace for one request.
func New(query string) *Trace {
	return &Trace{Query: query}
}

// Stage appends a stage note.
func (t *Trace) Stage(name string, counts map[string]int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Stages = append(t.Stages, StageNote{Name: name, Counts: counts})
}

// Listing appends a listing-expansion note.
func (t *Trace) Listing(n ListingNote) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Listings = append(t.Listings, n)
}

// Check appends a price-verification note.
func (t *Trace) Check(n CheckNote) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Checks = append(t.Checks, n)
}
