package store

import (
	"slices"

	"github.com/dmitrijs2005/secretkey/internal/client/models"
)

// Snapshot is a read-only copy of the Store state. Mutating it does not
// affect the Store.
type Snapshot struct {
	Records       []models.PlatformCredential
	PageIndex     int
	PageSize      int
	TotalPages    int
	TotalElements int
	Loading       bool

	// Error is the last failure of a load, search or mutation, empty when none.
	Error string
	// SearchError is the last failure of FindByName, cleared by ClearSearch.
	SearchError string

	Overlay *models.PlatformCredential
}

// Visible is what the view shows: the overlay alone when one is pinned,
// otherwise the current page.
func (s Snapshot) Visible() []models.PlatformCredential {
	if s.Overlay != nil {
		return []models.PlatformCredential{*s.Overlay}
	}
	return s.Records
}

// Lookup finds a record by id in the overlay or the current page.
func (s Snapshot) Lookup(id string) (models.PlatformCredential, bool) {
	if s.Overlay != nil && s.Overlay.ID == id {
		return *s.Overlay, true
	}
	i := slices.IndexFunc(s.Records, func(r models.PlatformCredential) bool { return r.ID == id })
	if i < 0 {
		return models.PlatformCredential{}, false
	}
	return s.Records[i], true
}

// HasNext reports whether a page follows the current one.
func (s Snapshot) HasNext() bool {
	return s.PageIndex+1 < s.TotalPages
}

// HasPrev reports whether a page precedes the current one.
func (s Snapshot) HasPrev() bool {
	return s.PageIndex > 0
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Records = slices.Clone(s.Records)
	if out.Records == nil {
		out.Records = []models.PlatformCredential{}
	}
	if s.Overlay != nil {
		o := *s.Overlay
		out.Overlay = &o
	}
	return out
}
